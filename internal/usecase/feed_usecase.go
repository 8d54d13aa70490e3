package usecase

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/domain/repository"
)

// PublicationBuilder katalogdan chiqish fayllari va havolalarni yig'adi
type PublicationBuilder func(catalog *entity.Catalog, now time.Time) (*entity.Publication, error)

// FeedDeps FeedUseCase bog'liqliklari. Ixtiyoriy maydonlar nil bo'lishi mumkin.
type FeedDeps struct {
	Source  repository.PriceSource
	Parser  repository.PriceListParser
	Build   PublicationBuilder
	Writer  repository.ArtifactWriter
	Catalog repository.CatalogRepository
	Runs    repository.RunRepository

	// ixtiyoriy
	Describer     repository.Describer
	Descriptions  repository.DescriptionCache
	DescribeLimit int
	Mirrors       []repository.ArtifactMirror
	Notifiers     []repository.IndexNotifier
	Reporter      repository.RunReporter
	Now           func() time.Time
}

// FeedUseCase prays-listdan feed va sahifalarni generatsiya qilish
type FeedUseCase interface {
	// Generate prays-listni yuklab, to'liq pipeline ni bajarish
	Generate(ctx context.Context) (*entity.Run, error)

	// GenerateFromFile lokal fayldan (yuklamasdan) generatsiya
	GenerateFromFile(ctx context.Context, path string) (*entity.Run, error)

	// History oxirgi generatsiyalar
	History(ctx context.Context, limit int) ([]entity.Run, error)

	// LastRun oxirgi generatsiya; hali bo'lmagan bo'lsa nil
	LastRun(ctx context.Context) (*entity.Run, error)
}

type feedUseCase struct {
	deps FeedDeps
	mu   sync.Mutex
}

// NewFeedUseCase yangi FeedUseCase yaratish
func NewFeedUseCase(deps FeedDeps) FeedUseCase {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &feedUseCase{deps: deps}
}

// Generate prays-listni yuklab, to'liq pipeline ni bajarish
func (u *feedUseCase) Generate(ctx context.Context) (*entity.Run, error) {
	return u.run(ctx, func(run *entity.Run) (*entity.Catalog, error) {
		data, filename, err := u.deps.Source.Fetch(ctx)
		if err != nil {
			return nil, NewStageError(StageAcquire, err)
		}
		run.Source = filename
		catalog, err := u.deps.Parser.ParseBytes(ctx, data, filename)
		if err != nil {
			return nil, NewStageError(StageParse, err)
		}
		return catalog, nil
	})
}

// GenerateFromFile lokal fayldan generatsiya
func (u *feedUseCase) GenerateFromFile(ctx context.Context, path string) (*entity.Run, error) {
	return u.run(ctx, func(run *entity.Run) (*entity.Catalog, error) {
		run.Source = path
		catalog, err := u.deps.Parser.ParseFile(ctx, path)
		if err != nil {
			return nil, NewStageError(StageParse, err)
		}
		return catalog, nil
	})
}

// History oxirgi generatsiyalar
func (u *feedUseCase) History(ctx context.Context, limit int) ([]entity.Run, error) {
	return u.deps.Runs.ListRuns(ctx, limit)
}

// LastRun oxirgi generatsiya
func (u *feedUseCase) LastRun(ctx context.Context) (*entity.Run, error) {
	run, err := u.deps.Runs.LastRun(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return run, err
}

func (u *feedUseCase) run(ctx context.Context, load func(run *entity.Run) (*entity.Catalog, error)) (*entity.Run, error) {
	if !u.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer u.mu.Unlock()

	run := &entity.Run{
		ID:        uuid.New().String(),
		StartedAt: u.deps.Now(),
	}
	log.Printf("🚀 Generation %s started", run.ID)

	catalog, err := load(run)
	if err != nil {
		return u.fail(ctx, run, err)
	}
	run.Categories = len(catalog.Categories)
	run.Offers = len(catalog.Offers)

	if catalog.IsEmpty() {
		// Eski fayllar joyida qoladi
		log.Printf("⚠️ %s: no offers found, output left untouched", run.Source)
		run.Status = entity.RunEmpty
		run.Error = ErrEmptyCatalog.Error()
		u.finish(ctx, run)
		return run, nil
	}

	u.describe(ctx, catalog)

	pub, err := u.deps.Build(catalog, run.StartedAt)
	if err != nil {
		return u.fail(ctx, run, NewStageError(StageRender, err))
	}
	if err := u.deps.Writer.Replace(pub.Artifacts); err != nil {
		return u.fail(ctx, run, NewStageError(StageWrite, err))
	}

	if err := u.deps.Catalog.UpdateCatalog(ctx, *catalog); err != nil {
		log.Printf("⚠️ Failed to update catalog store: %v", err)
	}

	for _, m := range u.deps.Mirrors {
		if err := m.Upload(ctx, pub.Artifacts); err != nil {
			log.Printf("⚠️ Mirror %s failed: %v", m.Name(), err)
		}
	}

	for _, n := range u.deps.Notifiers {
		if err := n.Notify(ctx, pub.URLs); err != nil {
			log.Printf("⚠️ Notifier %s failed: %v", n.Name(), err)
		}
	}

	run.URLs = pub.URLs
	run.Status = entity.RunSuccess
	u.finish(ctx, run)

	log.Printf("✅ Generation %s done: %d categories, %d offers, %d files in %s",
		run.ID, run.Categories, run.Offers, len(pub.Artifacts), run.Duration().Round(time.Millisecond))
	return run, nil
}

func (u *feedUseCase) fail(ctx context.Context, run *entity.Run, err error) (*entity.Run, error) {
	log.Printf("❌ Generation %s failed: %v", run.ID, err)
	run.Status = entity.RunFailed
	run.Error = err.Error()
	u.finish(ctx, run)
	return run, err
}

// finish ledger ga yozish va hisobot yuborish; xatolar faqat loglanadi
func (u *feedUseCase) finish(ctx context.Context, run *entity.Run) {
	run.FinishedAt = u.deps.Now()

	if u.deps.Runs != nil {
		if err := u.deps.Runs.SaveRun(ctx, *run); err != nil {
			log.Printf("⚠️ Failed to save run %s: %v", run.ID, err)
		}
	}
	if u.deps.Reporter != nil {
		if err := u.deps.Reporter.Report(ctx, *run); err != nil {
			log.Printf("⚠️ Failed to send report: %v", err)
		}
	}
}

// describe keshdagi tavsiflarni qo'yish va limitgacha yangilarini yozdirish
func (u *feedUseCase) describe(ctx context.Context, catalog *entity.Catalog) {
	if u.deps.Describer == nil || u.deps.Descriptions == nil || u.deps.DescribeLimit <= 0 {
		return
	}

	generated, cached, failed := 0, 0, 0
	done := make(map[string]string)
	for i := range catalog.Offers {
		offer := &catalog.Offers[i]
		if desc, ok := done[offer.ID]; ok {
			offer.Description = desc
			continue
		}

		desc, ok, err := u.deps.Descriptions.GetDescription(ctx, offer.ID)
		if err != nil {
			log.Printf("⚠️ Description cache read failed for %s: %v", offer.ID, err)
		}
		if ok {
			cached++
		} else {
			if generated+failed >= u.deps.DescribeLimit {
				continue
			}
			desc, err = u.deps.Describer.Describe(ctx, *offer)
			if err != nil {
				failed++
				log.Printf("⚠️ %v", err)
				continue
			}
			generated++
			if err := u.deps.Descriptions.PutDescription(ctx, offer.ID, desc); err != nil {
				log.Printf("⚠️ Description cache write failed for %s: %v", offer.ID, err)
			}
		}

		offer.Description = desc
		done[offer.ID] = desc
	}

	log.Printf("📝 Descriptions: %d cached, %d generated, %d failed", cached, generated, failed)
}
