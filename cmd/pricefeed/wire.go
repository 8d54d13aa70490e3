package main

import (
	"context"
	"log"
	"time"

	"github.com/yourusername/pricefeed/config"
	"github.com/yourusername/pricefeed/internal/delivery/telegram"
	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/domain/repository"
	"github.com/yourusername/pricefeed/internal/infrastructure/gemini"
	"github.com/yourusername/pricefeed/internal/infrastructure/indexing"
	"github.com/yourusername/pricefeed/internal/infrastructure/parser"
	"github.com/yourusername/pricefeed/internal/infrastructure/render"
	"github.com/yourusername/pricefeed/internal/infrastructure/source"
	"github.com/yourusername/pricefeed/internal/infrastructure/storage"
	"github.com/yourusername/pricefeed/internal/usecase"
)

// ledger run tarixi va tavsif keshi bitta storage da
type ledger interface {
	repository.RunRepository
	repository.DescriptionCache
}

type app struct {
	feed    usecase.FeedUseCase
	catalog usecase.CatalogUseCase
	output  *storage.OutputDir
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp konfiguratsiya bo'yicha barcha komponentlarni yig'ish.
// Ixtiyoriy komponentlar sozlanmagan yoki ishga tushmasa o'chiriladi.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{output: storage.NewOutputDir(cfg.OutputDir)}

	runs, closeRuns, err := openLedger(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeRuns)

	shop := render.ShopInfo{Name: cfg.ShopName, Company: cfg.CompanyName, URL: cfg.ShopURL}
	build := func(catalog *entity.Catalog, now time.Time) (*entity.Publication, error) {
		return render.BuildPublication(catalog, shop, cfg.StaticPaths, now)
	}

	catalogRepo := storage.NewMemoryCatalogRepository()
	deps := usecase.FeedDeps{
		Source: source.NewHTTPSource(cfg.PriceURL, cfg.FetchTimeout),
		Parser: parser.NewPriceListParser(parser.Options{
			ShopURL:    cfg.ShopURL,
			PictureURL: cfg.ProductImageURL,
			HeaderRows: cfg.HeaderRows,
			Columns:    parser.DefaultColumns,
		}),
		Build:         build,
		Writer:        a.output,
		Catalog:       catalogRepo,
		Runs:          runs,
		Descriptions:  runs,
		DescribeLimit: cfg.DescribeLimit,
	}

	if cfg.GeminiAPIKey != "" && cfg.DescribeLimit > 0 {
		describer, err := gemini.NewDescriber(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("⚠️ Gemini describer disabled: %v", err)
		} else {
			deps.Describer = describer
			a.closers = append(a.closers, func() { describer.Close() })
			log.Printf("📝 Description enrichment enabled (limit %d per run)", cfg.DescribeLimit)
		}
	}

	if cfg.R2Enabled() {
		mirror, err := storage.NewR2Mirror(ctx, storage.R2Options{
			Endpoint:  cfg.R2Endpoint,
			AccessKey: cfg.R2AccessKey,
			SecretKey: cfg.R2SecretKey,
			Bucket:    cfg.R2Bucket,
			Prefix:    cfg.MirrorKeyPrefix,
		})
		if err != nil {
			log.Printf("⚠️ R2 mirror disabled: %v", err)
		} else {
			deps.Mirrors = append(deps.Mirrors, mirror)
		}
	}
	if cfg.GCSBucket != "" {
		mirror, err := storage.NewGCSMirror(ctx, cfg.GCSBucket, cfg.GCSCredentials, cfg.MirrorKeyPrefix)
		if err != nil {
			log.Printf("⚠️ GCS mirror disabled: %v", err)
		} else {
			deps.Mirrors = append(deps.Mirrors, mirror)
			a.closers = append(a.closers, func() { mirror.Close() })
		}
	}

	if cfg.GoogleIndexingCredentials != "" {
		notifier, err := indexing.NewGoogleNotifier(ctx, cfg.GoogleIndexingCredentials)
		if err != nil {
			log.Printf("⚠️ Google indexing disabled: %v", err)
		} else {
			deps.Notifiers = append(deps.Notifiers, notifier)
		}
	}
	if cfg.IndexNowKey != "" {
		notifier, err := indexing.NewIndexNowNotifier(cfg.IndexNowEndpoint, cfg.IndexNowKey)
		if err != nil {
			log.Printf("⚠️ IndexNow disabled: %v", err)
		} else {
			deps.Notifiers = append(deps.Notifiers, notifier)
		}
	}

	if cfg.TelegramEnabled() {
		reporter, err := telegram.NewReporter(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("⚠️ Telegram reporter disabled: %v", err)
		} else {
			deps.Reporter = reporter
		}
	}

	a.feed = usecase.NewFeedUseCase(deps)
	a.catalog = usecase.NewCatalogUseCase(catalogRepo)
	return a, nil
}

// openLedger DATABASE_URL bo'lsa Postgres, aks holda SQLite.
// SQLite ochilmasa xotiradagi ledger ishlatiladi.
func openLedger(ctx context.Context, cfg *config.Config) (ledger, func(), error) {
	if cfg.DatabaseURL != "" {
		repo, err := storage.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	}

	repo, err := storage.NewSQLiteRunRepository(cfg.RunDBPath)
	if err != nil {
		log.Printf("⚠️ Run ledger falls back to memory: %v", err)
		return storage.NewMemoryRunRepository(), func() {}, nil
	}
	log.Printf("🗄 Run ledger: %s", cfg.RunDBPath)
	return repo, func() { repo.Close() }, nil
}
