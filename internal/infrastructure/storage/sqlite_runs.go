package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/domain/repository"
)

// SQLiteRunRepository generatsiyalar tarixi va tavsif keshi SQLite da
type SQLiteRunRepository struct {
	db *sql.DB
}

var (
	_ repository.RunRepository    = (*SQLiteRunRepository)(nil)
	_ repository.DescriptionCache = (*SQLiteRunRepository)(nil)
)

// NewSQLiteRunRepository SQLite asosidagi run repository
func NewSQLiteRunRepository(dbPath string) (*SQLiteRunRepository, error) {
	if dbPath == "" {
		return nil, errors.New("db path bo'sh bo'lmasligi kerak")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("db papkasini yaratib bo'lmadi: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite ochilmadi: %w", err)
	}

	if err := createRunSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRunRepository{db: db}, nil
}

func createRunSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	status TEXT NOT NULL,
	source TEXT,
	categories INTEGER NOT NULL DEFAULT 0,
	offers INTEGER NOT NULL DEFAULT 0,
	urls TEXT,
	error TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs (started_at);
CREATE TABLE IF NOT EXISTS descriptions (
	offer_id TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema yaratib bo'lmadi: %w", err)
	}
	return nil
}

// Close ulanishni yopish
func (s *SQLiteRunRepository) Close() error {
	return s.db.Close()
}

// SaveRun generatsiya natijasini saqlash
func (s *SQLiteRunRepository) SaveRun(ctx context.Context, run entity.Run) error {
	urls, err := json.Marshal(run.URLs)
	if err != nil {
		return fmt.Errorf("failed to encode urls: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO runs
(id, started_at, finished_at, status, source, categories, offers, urls, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), string(run.Status), run.Source,
		run.Categories, run.Offers, string(urls), run.Error)
	return err
}

// ListRuns oxirgi generatsiyalar (yangidan eskiga)
func (s *SQLiteRunRepository) ListRuns(ctx context.Context, limit int) ([]entity.Run, error) {
	query := `SELECT id, started_at, finished_at, status, source, categories, offers, urls, error FROM runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []entity.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LastRun oxirgi generatsiya
func (s *SQLiteRunRepository) LastRun(ctx context.Context) (*entity.Run, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("run: %w", repository.ErrNotFound)
	}
	return &runs[0], nil
}

// GetDescription keshdagi tavsif
func (s *SQLiteRunRepository) GetDescription(ctx context.Context, offerID string) (string, bool, error) {
	var desc string
	err := s.db.QueryRowContext(ctx, `SELECT description FROM descriptions WHERE offer_id = ?`, offerID).Scan(&desc)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return desc, true, nil
}

// PutDescription tavsifni keshga yozish
func (s *SQLiteRunRepository) PutDescription(ctx context.Context, offerID, description string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO descriptions (offer_id, description, updated_at) VALUES (?, ?, ?)`,
		offerID, description, time.Now().UTC())
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (entity.Run, error) {
	var run entity.Run
	var status string
	var source, urls, runErr sql.NullString
	if err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &status, &source,
		&run.Categories, &run.Offers, &urls, &runErr); err != nil {
		return entity.Run{}, err
	}

	run.Status = entity.RunStatus(status)
	run.Source = source.String
	run.Error = runErr.String
	if urls.Valid && urls.String != "" {
		if err := json.Unmarshal([]byte(urls.String), &run.URLs); err != nil {
			return entity.Run{}, fmt.Errorf("failed to decode urls for run %s: %w", run.ID, err)
		}
	}
	return run, nil
}
