package repository

import (
	"context"

	"github.com/yourusername/pricefeed/internal/domain/entity"
)

// PriceSource prays-list arxivini yuklab beradi
type PriceSource interface {
	// Fetch spreadsheet fayl tarkibi va nomini qaytaradi
	Fetch(ctx context.Context) ([]byte, string, error)
}

// PriceListParser prays-list faylini katalogga aylantiradi
type PriceListParser interface {
	// ParseFile fayldan o'qish
	ParseFile(ctx context.Context, filePath string) (*entity.Catalog, error)

	// ParseBytes byte array dan parse qilish
	ParseBytes(ctx context.Context, data []byte, filename string) (*entity.Catalog, error)
}
