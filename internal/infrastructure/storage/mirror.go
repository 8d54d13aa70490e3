package storage

import (
	"mime"
	"path"
	"strings"

	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/infrastructure/render"
)

// pagesPrefix mahsulot sahifalari joylashgan kalit prefiksi.
// Tozalash faqat shu papka ichida ishlaydi, bucket ning qolgan qismi tegilmaydi.
func pagesPrefix(prefix string) string {
	return objectKey(prefix, render.PagesDir) + "/"
}

// staleKeys pagesPrefix ostidagi, joriy artifactlarda yo'q kalitlar
func staleKeys(existing []string, prefix string, artifacts []entity.Artifact) []string {
	keep := make(map[string]struct{}, len(artifacts))
	for _, a := range artifacts {
		keep[objectKey(prefix, a.Path)] = struct{}{}
	}
	pages := pagesPrefix(prefix)

	var stale []string
	for _, key := range existing {
		if !strings.HasPrefix(key, pages) {
			continue
		}
		if _, ok := keep[key]; !ok {
			stale = append(stale, key)
		}
	}
	return stale
}

// objectKey prefix bilan storage kaliti
func objectKey(prefix, artifactPath string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return artifactPath
	}
	return path.Join(prefix, artifactPath)
}

// contentType fayl kengaytmasi bo'yicha
func contentType(artifactPath string) string {
	switch strings.ToLower(path.Ext(artifactPath)) {
	case ".yml", ".yaml":
		return "application/xml; charset=utf-8"
	case ".xml":
		return "application/xml; charset=utf-8"
	case ".html":
		return "text/html; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	}
	if ct := mime.TypeByExtension(path.Ext(artifactPath)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
