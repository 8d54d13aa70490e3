package source

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"time"

	"github.com/yourusername/pricefeed/internal/domain/repository"
	"github.com/yourusername/pricefeed/internal/infrastructure/parser"
)

// ErrNoSpreadsheet arxivda .xls/.xlsx fayl yo'q
var ErrNoSpreadsheet = errors.New("no spreadsheet found in archive")

const userAgent = "pricefeed/1.0 (+price list feed generator)"

type httpSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource prays-list arxivini URL dan yuklovchi source
func NewHTTPSource(url string, timeout time.Duration) repository.PriceSource {
	return &httpSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch arxivni yuklab, ichidagi spreadsheet ni qaytarish
func (s *httpSource) Fetch(ctx context.Context) ([]byte, string, error) {
	log.Printf("⬇️ Downloading price list from %s", s.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download price list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("price list download failed with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	log.Printf("📦 Unpacking archive (%d bytes)", len(body))
	return ExtractSpreadsheet(body)
}

// ExtractSpreadsheet zip arxivdan birinchi .xls/.xlsx faylni olish
func ExtractSpreadsheet(archive []byte) ([]byte, string, error) {
	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open archive: %w", err)
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !parser.IsSpreadsheet(f.Name) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", f.Name, err)
		}

		log.Printf("📄 Found spreadsheet '%s'", f.Name)
		return data, path.Base(f.Name), nil
	}

	return nil, "", ErrNoSpreadsheet
}
