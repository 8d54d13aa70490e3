package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/domain/repository"
)

// CategorySummary bo'lim va undagi mahsulotlar soni
type CategorySummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Offers int    `json:"offers"`
}

// CatalogSummary katalog haqida qisqa ma'lumot
type CatalogSummary struct {
	Source      string            `json:"source"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Offers      int               `json:"offers"`
	Currencies  []string          `json:"currencies"`
	Categories  []CategorySummary `json:"categories"`
}

// CatalogUseCase oxirgi generatsiya qilingan katalog bo'yicha so'rovlar
type CatalogUseCase interface {
	// GetCatalog to'liq katalog
	GetCatalog(ctx context.Context) (*entity.Catalog, error)

	// Summary bo'limlar bo'yicha statistika
	Summary(ctx context.Context) (*CatalogSummary, error)

	// Search mahsulot qidirish
	Search(ctx context.Context, query string) ([]entity.Offer, error)

	// GetByCategory bo'lim bo'yicha mahsulotlar
	GetByCategory(ctx context.Context, categoryID string) ([]entity.Offer, error)

	// GetOffer ID bo'yicha mahsulot
	GetOffer(ctx context.Context, id string) (*entity.Offer, error)
}

type catalogUseCase struct {
	catalogRepo repository.CatalogRepository
}

// NewCatalogUseCase yangi CatalogUseCase yaratish
func NewCatalogUseCase(catalogRepo repository.CatalogRepository) CatalogUseCase {
	return &catalogUseCase{catalogRepo: catalogRepo}
}

// GetCatalog to'liq katalog
func (u *catalogUseCase) GetCatalog(ctx context.Context) (*entity.Catalog, error) {
	catalog, err := u.catalogRepo.GetCatalog(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCatalogNotReady
	}
	return catalog, err
}

// Summary bo'limlar bo'yicha statistika, bo'limlar prays-list tartibida
func (u *catalogUseCase) Summary(ctx context.Context) (*CatalogSummary, error) {
	catalog, err := u.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, offer := range catalog.Offers {
		counts[offer.CategoryID]++
	}

	summary := &CatalogSummary{
		Source:      catalog.Source,
		GeneratedAt: catalog.GeneratedAt,
		Offers:      len(catalog.Offers),
		Currencies:  catalog.Currencies.Sorted(),
		Categories:  make([]CategorySummary, 0, len(catalog.Categories)),
	}
	for _, cat := range catalog.Categories {
		summary.Categories = append(summary.Categories, CategorySummary{
			ID:     cat.ID,
			Name:   cat.Name,
			Offers: counts[cat.ID],
		})
	}
	return summary, nil
}

// Search mahsulot qidirish
func (u *catalogUseCase) Search(ctx context.Context, query string) ([]entity.Offer, error) {
	if _, err := u.GetCatalog(ctx); err != nil {
		return nil, err
	}
	return u.catalogRepo.Search(ctx, query)
}

// GetByCategory bo'lim bo'yicha mahsulotlar
func (u *catalogUseCase) GetByCategory(ctx context.Context, categoryID string) ([]entity.Offer, error) {
	if _, err := u.GetCatalog(ctx); err != nil {
		return nil, err
	}
	return u.catalogRepo.GetByCategory(ctx, categoryID)
}

// GetOffer ID bo'yicha mahsulot
func (u *catalogUseCase) GetOffer(ctx context.Context, id string) (*entity.Offer, error) {
	if _, err := u.GetCatalog(ctx); err != nil {
		return nil, err
	}
	return u.catalogRepo.GetOffer(ctx, id)
}
