package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/domain/repository"
)

// MemoryRunRepository generatsiyalar tarixi va tavsif keshi xotirada.
// Ledger sozlanmaganda va testlarda ishlatiladi.
type MemoryRunRepository struct {
	mu           sync.RWMutex
	runs         []entity.Run
	descriptions map[string]string
}

var (
	_ repository.RunRepository    = (*MemoryRunRepository)(nil)
	_ repository.DescriptionCache = (*MemoryRunRepository)(nil)
)

// NewMemoryRunRepository in-memory run repository yaratish
func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{
		runs:         []entity.Run{},
		descriptions: make(map[string]string),
	}
}

// SaveRun generatsiya natijasini saqlash (bir xil ID qayta yozilsa almashtiriladi)
func (m *MemoryRunRepository) SaveRun(ctx context.Context, run entity.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.runs {
		if m.runs[i].ID == run.ID {
			m.runs[i] = run
			return nil
		}
	}
	m.runs = append(m.runs, run)
	return nil
}

// ListRuns oxirgi generatsiyalar (yangidan eskiga)
func (m *MemoryRunRepository) ListRuns(ctx context.Context, limit int) ([]entity.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]entity.Run, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, m.runs[i])
	}
	return out, nil
}

// LastRun oxirgi generatsiya
func (m *MemoryRunRepository) LastRun(ctx context.Context) (*entity.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.runs) == 0 {
		return nil, fmt.Errorf("run: %w", repository.ErrNotFound)
	}
	run := m.runs[len(m.runs)-1]
	return &run, nil
}

// GetDescription keshdagi tavsif
func (m *MemoryRunRepository) GetDescription(ctx context.Context, offerID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	desc, ok := m.descriptions[offerID]
	return desc, ok, nil
}

// PutDescription tavsifni keshga yozish
func (m *MemoryRunRepository) PutDescription(ctx context.Context, offerID, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.descriptions[offerID] = description
	return nil
}
