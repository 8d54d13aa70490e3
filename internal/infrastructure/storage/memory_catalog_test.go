package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/domain/repository"
)

func testCatalog() entity.Catalog {
	return entity.Catalog{
		Categories: []entity.Category{
			{ID: "1", Name: "Программы 1С:Предприятие"},
			{ID: "2", Name: "Сервисы ИТС"},
		},
		Offers: []entity.Offer{
			{ID: "4601546", Name: "1С:Бухгалтерия 8. Базовая версия", Price: decimal.NewFromInt(5200), CurrencyID: "RUR", CategoryID: "1"},
			{ID: "4601547", Name: "1С:Зарплата и управление персоналом", Price: decimal.NewFromInt(9800), CurrencyID: "RUR", CategoryID: "1"},
			{ID: "2900", Name: "ИТС ПРОФ на 12 месяцев", Price: decimal.NewFromInt(48000), CurrencyID: "RUR", CategoryID: "2"},
			{ID: "2900", Name: "ИТС ПРОФ на 12 месяцев (продление)", Price: decimal.NewFromInt(45000), CurrencyID: "RUR", CategoryID: "2"},
		},
	}
}

func newLoadedRepo(t *testing.T) repository.CatalogRepository {
	t.Helper()
	repo := NewMemoryCatalogRepository()
	if err := repo.UpdateCatalog(context.Background(), testCatalog()); err != nil {
		t.Fatalf("UpdateCatalog failed: %v", err)
	}
	return repo
}

func TestMemoryCatalogEmpty(t *testing.T) {
	repo := NewMemoryCatalogRepository()
	ctx := context.Background()

	if _, err := repo.GetCatalog(ctx); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetOffer(ctx, "1"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryCatalogGetOfferLastDuplicateWins(t *testing.T) {
	repo := newLoadedRepo(t)

	offer, err := repo.GetOffer(context.Background(), "2900")
	if err != nil {
		t.Fatalf("GetOffer failed: %v", err)
	}
	if !offer.Price.Equal(decimal.NewFromInt(45000)) {
		t.Errorf("expected last duplicate, got price %s", offer.Price)
	}
}

func TestMemoryCatalogSearch(t *testing.T) {
	repo := newLoadedRepo(t)
	ctx := context.Background()

	tests := []struct {
		query string
		want  []string
	}{
		{"бухгалтерия", []string{"4601546"}},
		{"  ЗАРПЛАТА ", []string{"4601547"}},
		{"460154", []string{"4601546", "4601547"}},
		{"итс проф", []string{"2900"}},
		{"сервисы продление", []string{"2900"}},
		{"", nil},
		{"самолёт", nil},
	}

	for _, tt := range tests {
		got, err := repo.Search(ctx, tt.query)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", tt.query, err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("Search(%q): expected %d results, got %d", tt.query, len(tt.want), len(got))
			continue
		}
		for i := range got {
			if got[i].ID != tt.want[i] {
				t.Errorf("Search(%q)[%d] = %s, expected %s", tt.query, i, got[i].ID, tt.want[i])
			}
		}
	}
}

func TestMemoryCatalogSearchFuzzy(t *testing.T) {
	repo := newLoadedRepo(t)

	got, err := repo.Search(context.Background(), "бухгалтерии")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "4601546" {
		t.Errorf("expected fuzzy match 4601546, got %+v", got)
	}
}

func TestMemoryCatalogGetByCategory(t *testing.T) {
	repo := newLoadedRepo(t)
	ctx := context.Background()

	got, err := repo.GetByCategory(ctx, "1")
	if err != nil {
		t.Fatalf("GetByCategory failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 offers in category 1, got %d", len(got))
	}

	got, _ = repo.GetByCategory(ctx, "99")
	if len(got) != 0 {
		t.Errorf("expected no offers for unknown category, got %d", len(got))
	}
}
