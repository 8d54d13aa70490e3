package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/domain/repository"
)

type mockSource struct {
	data     []byte
	filename string
	err      error
	calls    int
}

func (m *mockSource) Fetch(ctx context.Context) ([]byte, string, error) {
	m.calls++
	return m.data, m.filename, m.err
}

type mockParser struct {
	catalog  *entity.Catalog
	err      error
	lastFile string
}

func (m *mockParser) ParseFile(ctx context.Context, path string) (*entity.Catalog, error) {
	m.lastFile = path
	return m.catalog, m.err
}

func (m *mockParser) ParseBytes(ctx context.Context, data []byte, filename string) (*entity.Catalog, error) {
	m.lastFile = filename
	return m.catalog, m.err
}

type mockWriter struct {
	written [][]entity.Artifact
	err     error
}

func (m *mockWriter) Replace(artifacts []entity.Artifact) error {
	if m.err != nil {
		return m.err
	}
	m.written = append(m.written, artifacts)
	return nil
}

type mockCatalogRepo struct {
	mu      sync.Mutex
	catalog *entity.Catalog
}

func (m *mockCatalogRepo) UpdateCatalog(ctx context.Context, catalog entity.Catalog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog = &catalog
	return nil
}

func (m *mockCatalogRepo) GetCatalog(ctx context.Context) (*entity.Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.catalog == nil {
		return nil, repository.ErrNotFound
	}
	return m.catalog, nil
}

func (m *mockCatalogRepo) GetOffer(ctx context.Context, id string) (*entity.Offer, error) {
	c, err := m.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	for i := range c.Offers {
		if c.Offers[i].ID == id {
			return &c.Offers[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockCatalogRepo) Search(ctx context.Context, query string) ([]entity.Offer, error) {
	c, _ := m.GetCatalog(ctx)
	var out []entity.Offer
	for _, o := range c.Offers {
		if strings.Contains(strings.ToLower(o.Name), strings.ToLower(query)) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) GetByCategory(ctx context.Context, categoryID string) ([]entity.Offer, error) {
	c, _ := m.GetCatalog(ctx)
	var out []entity.Offer
	for _, o := range c.Offers {
		if o.CategoryID == categoryID {
			out = append(out, o)
		}
	}
	return out, nil
}

type mockRuns struct {
	runs         []entity.Run
	descriptions map[string]string
}

func newMockRuns() *mockRuns {
	return &mockRuns{descriptions: make(map[string]string)}
}

func (m *mockRuns) SaveRun(ctx context.Context, run entity.Run) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockRuns) ListRuns(ctx context.Context, limit int) ([]entity.Run, error) {
	out := make([]entity.Run, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

func (m *mockRuns) LastRun(ctx context.Context) (*entity.Run, error) {
	if len(m.runs) == 0 {
		return nil, repository.ErrNotFound
	}
	return &m.runs[len(m.runs)-1], nil
}

func (m *mockRuns) GetDescription(ctx context.Context, offerID string) (string, bool, error) {
	d, ok := m.descriptions[offerID]
	return d, ok, nil
}

func (m *mockRuns) PutDescription(ctx context.Context, offerID, description string) error {
	m.descriptions[offerID] = description
	return nil
}

type mockDescriber struct {
	calls []string
	fail  map[string]bool
}

func (m *mockDescriber) Describe(ctx context.Context, offer entity.Offer) (string, error) {
	m.calls = append(m.calls, offer.ID)
	if m.fail[offer.ID] {
		return "", errors.New("quota exceeded")
	}
	return "Описание " + offer.Name, nil
}

type mockMirror struct {
	uploaded int
	err      error
}

func (m *mockMirror) Name() string { return "mock-mirror" }

func (m *mockMirror) Upload(ctx context.Context, artifacts []entity.Artifact) error {
	m.uploaded += len(artifacts)
	return m.err
}

type mockNotifier struct {
	urls [][]string
	err  error
}

func (m *mockNotifier) Name() string { return "mock-notifier" }

func (m *mockNotifier) Notify(ctx context.Context, urls []string) error {
	m.urls = append(m.urls, urls)
	return m.err
}

type mockReporter struct {
	reports []entity.Run
	err     error
}

func (m *mockReporter) Report(ctx context.Context, run entity.Run) error {
	m.reports = append(m.reports, run)
	return m.err
}

func sampleCatalog() *entity.Catalog {
	currencies := entity.NewCurrencySet()
	currencies.Add("USD")
	return &entity.Catalog{
		Categories: []entity.Category{{ID: "1", Name: "Программы"}, {ID: "2", Name: "Сервисы"}},
		Offers: []entity.Offer{
			{ID: "100", Name: "Бухгалтерия", Price: decimal.NewFromInt(5200), CurrencyID: "RUR", CategoryID: "1"},
			{ID: "101", Name: "Зарплата", Price: decimal.NewFromInt(9800), CurrencyID: "RUR", CategoryID: "1"},
			{ID: "200", Name: "ИТС", Price: decimal.NewFromInt(480), CurrencyID: "USD", CategoryID: "2"},
		},
		Currencies: currencies,
		Source:     "price_1c.xls",
	}
}

// stubBuild har bir mahsulot uchun bitta fayl va havola
func stubBuild(catalog *entity.Catalog, now time.Time) (*entity.Publication, error) {
	pub := &entity.Publication{}
	pub.Artifacts = append(pub.Artifacts, entity.Artifact{Path: "price_feed.yml", Body: []byte(now.Format("2006-01-02 15:04"))})
	for _, o := range catalog.Offers {
		pub.Artifacts = append(pub.Artifacts, entity.Artifact{Path: "product/" + o.ID + ".html", Body: []byte(o.DisplayDescription())})
		pub.URLs = append(pub.URLs, "https://shop.example/product/"+o.ID)
	}
	return pub, nil
}
