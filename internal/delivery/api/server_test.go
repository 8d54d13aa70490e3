package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/infrastructure/storage"
	"github.com/yourusername/pricefeed/internal/usecase"
)

type stubFeed struct {
	runs      []entity.Run
	generated int
	err       error
	lastCtx   context.Context
}

func (s *stubFeed) Generate(ctx context.Context) (*entity.Run, error) {
	s.generated++
	s.lastCtx = ctx
	run := &entity.Run{ID: "manual", Status: entity.RunSuccess}
	return run, s.err
}

func (s *stubFeed) GenerateFromFile(ctx context.Context, path string) (*entity.Run, error) {
	return s.Generate(ctx)
}

func (s *stubFeed) History(ctx context.Context, limit int) ([]entity.Run, error) {
	if limit < len(s.runs) {
		return s.runs[:limit], nil
	}
	return s.runs, nil
}

func (s *stubFeed) LastRun(ctx context.Context) (*entity.Run, error) {
	if len(s.runs) == 0 {
		return nil, nil
	}
	return &s.runs[0], nil
}

type testEnv struct {
	server  *Server
	repo    interface{ UpdateCatalog(context.Context, entity.Catalog) error }
	feed    *stubFeed
	out     *storage.OutputDir
	outPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	outPath := filepath.Join(t.TempDir(), "public")
	out := storage.NewOutputDir(outPath)
	repo := storage.NewMemoryCatalogRepository()
	feed := &stubFeed{runs: []entity.Run{{ID: "r2"}, {ID: "r1"}}}

	server := NewServer(Options{
		Catalog:     usecase.NewCatalogUseCase(repo),
		Feed:        feed,
		OutputDir:   outPath,
		DownloadKey: "s3cret",
		Archive:     out,
	})
	return &testEnv{server: server, repo: repo, feed: feed, out: out, outPath: outPath}
}

func (e *testEnv) load(t *testing.T) {
	t.Helper()
	catalog := entity.Catalog{
		Categories: []entity.Category{{ID: "1", Name: "Программы"}},
		Offers: []entity.Offer{
			{ID: "4601546", Name: "1С:Бухгалтерия 8", Price: decimal.NewFromInt(5200), CurrencyID: "RUR", CategoryID: "1"},
			{ID: "4601547", Name: "1С:Зарплата", Price: decimal.NewFromInt(9800), CurrencyID: "RUR", CategoryID: "1"},
		},
		Currencies: entity.NewCurrencySet(),
	}
	if err := e.repo.UpdateCatalog(context.Background(), catalog); err != nil {
		t.Fatalf("UpdateCatalog failed: %v", err)
	}
	err := e.out.Replace([]entity.Artifact{
		{Path: "price_feed.yml", Body: []byte("<yml_catalog/>")},
		{Path: "product/4601546.html", Body: []byte("<h1>1С:Бухгалтерия 8</h1>")},
	})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
}

func (e *testEnv) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var body struct {
		Status  string      `json:"status"`
		LastRun *entity.Run `json:"lastRun"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid health response: %v", err)
	}
	if body.Status != "ok" || body.LastRun == nil || body.LastRun.ID != "r2" {
		t.Errorf("expected last run r2, got %s", w.Body.String())
	}

	env.feed.runs = nil
	w = env.do(http.MethodGet, "/health")
	body.LastRun = nil
	json.Unmarshal(w.Body.Bytes(), &body)
	if w.Code != http.StatusOK || body.LastRun != nil {
		t.Errorf("expected null last run before any generation, got %s", w.Body.String())
	}
}

func TestCatalogUnavailableBeforeGeneration(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/api/catalog", "/api/catalog/summary", "/api/offers/1", "/api/catalog/search?q=1C"} {
		if w := env.do(http.MethodGet, target); w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", target, w.Code)
		}
	}
}

func TestCatalogAfterGeneration(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	w := env.do(http.MethodGet, "/api/catalog")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Categories []entity.Category `json:"categories"`
		Offers     []entity.Offer    `json:"offers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body.Categories) != 1 || len(body.Offers) != 2 {
		t.Errorf("unexpected catalog %+v", body)
	}
	if !body.Offers[0].Price.Equal(decimal.NewFromInt(5200)) {
		t.Errorf("unexpected price %s", body.Offers[0].Price)
	}
}

func TestSearchAndLookups(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	if w := env.do(http.MethodGet, "/api/catalog/search"); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without q, got %d", w.Code)
	}

	w := env.do(http.MethodGet, "/api/catalog/search?q=%D0%B7%D0%B0%D1%80%D0%BF%D0%BB%D0%B0%D1%82%D0%B0")
	var found struct {
		Offers []entity.Offer `json:"offers"`
	}
	json.Unmarshal(w.Body.Bytes(), &found)
	if w.Code != http.StatusOK || len(found.Offers) != 1 || found.Offers[0].ID != "4601547" {
		t.Errorf("unexpected search result %d %s", w.Code, w.Body.String())
	}

	if w := env.do(http.MethodGet, "/api/offers/4601546"); w.Code != http.StatusOK {
		t.Errorf("expected 200 for known offer, got %d", w.Code)
	}
	if w := env.do(http.MethodGet, "/api/offers/999"); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown offer, got %d", w.Code)
	}

	w = env.do(http.MethodGet, "/api/categories/1/offers")
	var byCat struct {
		Offers []entity.Offer `json:"offers"`
	}
	json.Unmarshal(w.Body.Bytes(), &byCat)
	if len(byCat.Offers) != 2 {
		t.Errorf("expected 2 offers in category, got %d", len(byCat.Offers))
	}

	w = env.do(http.MethodGet, "/api/categories/42/offers")
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"offers":[]`)) {
		t.Errorf("expected empty list for unknown category, got %s", w.Body.String())
	}
}

func TestDownloadSiteFiles(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(http.MethodGet, "/api/download-site-files?key=wrong"); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 on wrong key, got %d", w.Code)
	}
	if w := env.do(http.MethodGet, "/api/download-site-files"); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 without key, got %d", w.Code)
	}
	if w := env.do(http.MethodGet, "/api/download-site-files?key=s3cret"); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 before output exists, got %d", w.Code)
	}

	env.load(t)
	w := env.do(http.MethodGet, "/api/download-site-files?key=s3cret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("expected application/zip, got %s", ct)
	}

	r, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatalf("invalid zip: %v", err)
	}
	if len(r.File) != 2 {
		t.Errorf("expected 2 files in archive, got %d", len(r.File))
	}
}

func TestProductPageAndStaticFiles(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	w := env.do(http.MethodGet, "/product/4601546")
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("Бухгалтерия")) {
		t.Errorf("expected product page, got %d %s", w.Code, w.Body.String())
	}
	if w := env.do(http.MethodGet, "/product/000"); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing page, got %d", w.Code)
	}
	if w := env.do(http.MethodGet, "/product/.hidden"); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for dot file, got %d", w.Code)
	}

	w = env.do(http.MethodGet, "/price_feed.yml")
	if w.Code != http.StatusOK || w.Body.String() != "<yml_catalog/>" {
		t.Errorf("expected feed file, got %d %q", w.Code, w.Body.String())
	}
}

func TestRunsAndGenerate(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/runs?limit=1")
	var body struct {
		Runs []entity.Run `json:"runs"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if w.Code != http.StatusOK || len(body.Runs) != 1 || body.Runs[0].ID != "r2" {
		t.Errorf("unexpected runs response %d %s", w.Code, w.Body.String())
	}
	if w := env.do(http.MethodGet, "/api/runs?limit=abc"); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", w.Code)
	}

	if w := env.do(http.MethodPost, "/api/generate?key=nope"); w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	env.feed.err = usecase.ErrRunInProgress
	if w := env.do(http.MethodPost, "/api/generate?key=s3cret"); w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	env.feed.err = nil
	if w := env.do(http.MethodPost, "/api/generate?key=s3cret"); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if env.feed.generated != 2 {
		t.Errorf("expected 2 generate calls, got %d", env.feed.generated)
	}
}

func TestGenerateOutlivesClientDisconnect(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/generate?key=s3cret", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if env.feed.lastCtx == nil || env.feed.lastCtx.Err() != nil {
		t.Errorf("generation context must not follow the request cancellation")
	}
}
