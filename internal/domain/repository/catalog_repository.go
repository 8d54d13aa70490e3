package repository

import (
	"context"
	"errors"

	"github.com/yourusername/pricefeed/internal/domain/entity"
)

// ErrNotFound so'ralgan obyekt topilmadi
var ErrNotFound = errors.New("not found")

// CatalogRepository oxirgi generatsiya qilingan katalog bilan ishlash uchun interface
type CatalogRepository interface {
	// UpdateCatalog butun katalogni yangilash
	UpdateCatalog(ctx context.Context, catalog entity.Catalog) error

	// GetCatalog katalogni olish
	GetCatalog(ctx context.Context) (*entity.Catalog, error)

	// GetOffer ID bo'yicha mahsulotni olish
	GetOffer(ctx context.Context, id string) (*entity.Offer, error)

	// Search mahsulot qidirish
	Search(ctx context.Context, query string) ([]entity.Offer, error)

	// GetByCategory kategoriya bo'yicha mahsulotlarni olish
	GetByCategory(ctx context.Context, categoryID string) ([]entity.Offer, error)
}
