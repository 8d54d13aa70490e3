package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/domain/repository"
)

// maxFuzzyResults o'xshashlik bo'yicha qaytariladigan eng ko'p natija
const maxFuzzyResults = 6

type memoryCatalogRepository struct {
	mu      sync.RWMutex
	offers  map[string]entity.Offer // key: offer ID, takrorda oxirgisi
	order   []string                // prays-listdagi tartib
	catalog *entity.Catalog
}

// NewMemoryCatalogRepository in-memory katalog repository yaratish
func NewMemoryCatalogRepository() repository.CatalogRepository {
	return &memoryCatalogRepository{
		offers: make(map[string]entity.Offer),
	}
}

// UpdateCatalog butun katalogni yangilash
func (m *memoryCatalogRepository) UpdateCatalog(ctx context.Context, catalog entity.Catalog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.offers = make(map[string]entity.Offer, len(catalog.Offers))
	m.order = m.order[:0]
	for _, offer := range catalog.Offers {
		if _, exists := m.offers[offer.ID]; !exists {
			m.order = append(m.order, offer.ID)
		}
		m.offers[offer.ID] = offer
	}

	m.catalog = &catalog
	return nil
}

// GetCatalog katalogni olish
func (m *memoryCatalogRepository) GetCatalog(ctx context.Context) (*entity.Catalog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.catalog == nil {
		return nil, fmt.Errorf("catalog: %w", repository.ErrNotFound)
	}
	return m.catalog, nil
}

// GetOffer ID bo'yicha mahsulotni olish
func (m *memoryCatalogRepository) GetOffer(ctx context.Context, id string) (*entity.Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	offer, exists := m.offers[id]
	if !exists {
		return nil, fmt.Errorf("offer %s: %w", id, repository.ErrNotFound)
	}
	return &offer, nil
}

// Search nom, kod yoki bo'lim nomi bo'yicha qidirish.
// To'g'ridan-to'g'ri moslik bo'lmasa, eng o'xshash mahsulotlar qaytariladi.
func (m *memoryCatalogRepository) Search(ctx context.Context, query string) ([]entity.Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	compactQuery := normalizeAlphaNum(query)
	tokens := normalizeTokens(queryTokens(query))

	var results []entity.Offer
	var scored []scoredOffer

	for _, id := range m.order {
		offer := m.offers[id]
		nameLower := strings.ToLower(offer.Name)
		nameCompact := normalizeAlphaNum(offer.Name)
		catCompact := normalizeAlphaNum(m.categoryName(offer.CategoryID))

		if strings.Contains(nameLower, query) ||
			strings.HasPrefix(offer.ID, query) ||
			(compactQuery != "" && strings.Contains(nameCompact, compactQuery)) ||
			matchAllTokens(tokens, nameCompact, catCompact) {
			results = append(results, offer)
			continue
		}

		if score := similarityScore(tokens, compactQuery, nameCompact, catCompact); score >= 5 {
			scored = append(scored, scoredOffer{Offer: offer, Score: score})
		}
	}

	if len(results) == 0 && len(scored) > 0 {
		sort.SliceStable(scored, func(i, j int) bool {
			if scored[i].Score == scored[j].Score {
				return scored[i].Offer.Price.LessThan(scored[j].Offer.Price)
			}
			return scored[i].Score > scored[j].Score
		})
		for _, so := range scored {
			if so.Score >= 8 && len(results) < maxFuzzyResults {
				results = append(results, so.Offer)
			}
		}
	}

	return results, nil
}

// GetByCategory bo'lim bo'yicha mahsulotlarni olish
func (m *memoryCatalogRepository) GetByCategory(ctx context.Context, categoryID string) ([]entity.Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	categoryID = strings.TrimSpace(categoryID)
	var results []entity.Offer
	for _, id := range m.order {
		if offer := m.offers[id]; offer.CategoryID == categoryID {
			results = append(results, offer)
		}
	}
	return results, nil
}

// categoryName lock ostida chaqiriladi
func (m *memoryCatalogRepository) categoryName(id string) string {
	if m.catalog == nil {
		return ""
	}
	if cat, ok := m.catalog.CategoryByID(id); ok {
		return cat.Name
	}
	return ""
}

// Qidiruv yordamchi funksiyalar

func queryTokens(q string) []string {
	q = strings.ToLower(q)
	separators := []string{",", ".", "?", "!", ";", ":", "/", "\\", "-", "_"}
	for _, sep := range separators {
		q = strings.ReplaceAll(q, sep, " ")
	}

	var tokens []string
	for _, f := range strings.Fields(q) {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// normalizeAlphaNum faqat harf va raqamlar (kirill ham), kichik harfda
func normalizeAlphaNum(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeTokens(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if n := normalizeAlphaNum(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// matchAllTokens har bir token kamida bitta maydonda uchrashi kerak
func matchAllTokens(tokens []string, parts ...string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		found := false
		for _, p := range parts {
			if strings.Contains(p, t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type scoredOffer struct {
	Offer entity.Offer
	Score int
}

func similarityScore(tokens []string, compactQuery, nameCompact, catCompact string) int {
	score := 0
	for _, t := range tokens {
		switch {
		case strings.Contains(nameCompact, t):
			score += 4
		case strings.Contains(catCompact, t):
			score += 2
		}
	}

	if compactQuery != "" {
		if lcs := longestCommonSubstringLength([]rune(compactQuery), []rune(nameCompact)); lcs >= 3 {
			score += lcs
		}
	}
	return score
}

func longestCommonSubstringLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	maxLen := 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > maxLen {
					maxLen = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return maxLen
}
