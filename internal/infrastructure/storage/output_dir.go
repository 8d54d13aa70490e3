package storage

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/pricefeed/internal/domain/entity"
)

var (
	// ErrUnsafeOutputDir root yoki bo'sh papkani o'chirishga urinish
	ErrUnsafeOutputDir = errors.New("refusing to replace unsafe output directory")
	// ErrUnsafeArtifactPath fayl yo'li papkadan tashqariga chiqadi
	ErrUnsafeArtifactPath = errors.New("artifact path escapes output directory")
)

// OutputDir generatsiya qilingan fayllar papkasi
type OutputDir struct {
	root string
}

// NewOutputDir yangi output papka
func NewOutputDir(root string) *OutputDir {
	return &OutputDir{root: root}
}

// Root papka yo'li
func (o *OutputDir) Root() string {
	return o.root
}

// Replace papkani to'liq o'chirib, fayllarni qaytadan yozish
func (o *OutputDir) Replace(artifacts []entity.Artifact) error {
	root := filepath.Clean(o.root)
	if o.root == "" || root == "." || root == string(filepath.Separator) {
		return fmt.Errorf("%w: %q", ErrUnsafeOutputDir, o.root)
	}

	// Yo'llarni avval tekshiramiz: yaroqsiz fayl bo'lsa eski natija saqlanib qoladi
	targets := make([]string, len(artifacts))
	for i, a := range artifacts {
		target, err := o.resolve(a.Path)
		if err != nil {
			return err
		}
		targets[i] = target
	}

	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("failed to remove %s: %w", root, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", root, err)
	}

	for i, a := range artifacts {
		if err := os.MkdirAll(filepath.Dir(targets[i]), 0o755); err != nil {
			return fmt.Errorf("failed to create dir for %s: %w", a.Path, err)
		}
		if err := os.WriteFile(targets[i], a.Body, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", a.Path, err)
		}
	}

	log.Printf("💾 Wrote %d files to %s", len(artifacts), root)
	return nil
}

func (o *OutputDir) resolve(artifactPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(artifactPath))
	if artifactPath == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeArtifactPath, artifactPath)
	}
	return filepath.Join(o.root, clean), nil
}

// WriteZip papkadagi barcha fayllarni zip arxiv sifatida yozish
func (o *OutputDir) WriteZip(w io.Writer) error {
	zw := zip.NewWriter(w)

	err := filepath.WalkDir(o.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(o.root, p)
		if err != nil {
			return err
		}

		fw, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(fw, f)
		return err
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("failed to archive %s: %w", o.root, err)
	}

	return zw.Close()
}
