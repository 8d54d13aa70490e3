package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/domain/repository"
)

// PostgresRunRepository generatsiyalar tarixi va tavsif keshi PostgreSQL da
type PostgresRunRepository struct {
	db *pgxpool.Pool
}

var (
	_ repository.RunRepository    = (*PostgresRunRepository)(nil)
	_ repository.DescriptionCache = (*PostgresRunRepository)(nil)
)

// ConnectPostgres pool ochish, ping va schema
func ConnectPostgres(ctx context.Context, dsn string) (*PostgresRunRepository, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL bo'sh bo'lmasligi kerak")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("DATABASE_URL noto'g'ri: %w", err)
	}
	cfg.MaxConns = 5
	cfg.MinConns = 1
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres pool ochilmadi: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	repo := NewPostgresRunRepository(pool)
	if err := repo.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

// NewPostgresRunRepository mavjud pool bilan repository
func NewPostgresRunRepository(pool *pgxpool.Pool) *PostgresRunRepository {
	return &PostgresRunRepository{db: pool}
}

func (r *PostgresRunRepository) initSchema(ctx context.Context) error {
	runsSQL := `
		CREATE TABLE IF NOT EXISTS feed_runs (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			status VARCHAR(20) NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			categories INTEGER NOT NULL DEFAULT 0,
			offers INTEGER NOT NULL DEFAULT 0,
			urls TEXT[] NOT NULL DEFAULT '{}',
			error TEXT NOT NULL DEFAULT ''
		)
	`
	if _, err := r.db.Exec(ctx, runsSQL); err != nil {
		return fmt.Errorf("feed_runs jadvali yaratilmadi: %w", err)
	}

	descriptionsSQL := `
		CREATE TABLE IF NOT EXISTS offer_descriptions (
			offer_id TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.db.Exec(ctx, descriptionsSQL); err != nil {
		return fmt.Errorf("offer_descriptions jadvali yaratilmadi: %w", err)
	}

	log.Println("✅ Schema initialized successfully")
	return nil
}

// Close pool ni yopish
func (r *PostgresRunRepository) Close() {
	r.db.Close()
}

// SaveRun generatsiya natijasini saqlash
func (r *PostgresRunRepository) SaveRun(ctx context.Context, run entity.Run) error {
	urls := run.URLs
	if urls == nil {
		urls = []string{}
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO feed_runs (id, started_at, finished_at, status, source, categories, offers, urls, error)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			status = EXCLUDED.status,
			source = EXCLUDED.source,
			categories = EXCLUDED.categories,
			offers = EXCLUDED.offers,
			urls = EXCLUDED.urls,
			error = EXCLUDED.error
	`,
		run.ID,
		run.StartedAt,
		run.FinishedAt,
		string(run.Status),
		run.Source,
		run.Categories,
		run.Offers,
		urls,
		run.Error,
	)
	return err
}

// ListRuns oxirgi generatsiyalar (yangidan eskiga)
func (r *PostgresRunRepository) ListRuns(ctx context.Context, limit int) ([]entity.Run, error) {
	query := `
		SELECT id, started_at, finished_at, status, source, categories, offers, urls, error
		FROM feed_runs
		ORDER BY started_at DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []entity.Run
	for rows.Next() {
		var run entity.Run
		var status string
		if err := rows.Scan(
			&run.ID,
			&run.StartedAt,
			&run.FinishedAt,
			&status,
			&run.Source,
			&run.Categories,
			&run.Offers,
			&run.URLs,
			&run.Error,
		); err != nil {
			return nil, err
		}
		run.Status = entity.RunStatus(status)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LastRun oxirgi generatsiya
func (r *PostgresRunRepository) LastRun(ctx context.Context) (*entity.Run, error) {
	runs, err := r.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("run: %w", repository.ErrNotFound)
	}
	return &runs[0], nil
}

// GetDescription keshdagi tavsif
func (r *PostgresRunRepository) GetDescription(ctx context.Context, offerID string) (string, bool, error) {
	var desc string
	err := r.db.QueryRow(ctx, `SELECT description FROM offer_descriptions WHERE offer_id = $1`, offerID).Scan(&desc)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return desc, true, nil
}

// PutDescription tavsifni keshga yozish
func (r *PostgresRunRepository) PutDescription(ctx context.Context, offerID, description string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO offer_descriptions (offer_id, description, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (offer_id) DO UPDATE SET description = EXCLUDED.description, updated_at = NOW()
	`, offerID, description)
	return err
}
