package repository

import (
	"context"

	"github.com/yourusername/pricefeed/internal/domain/entity"
)

// RunRepository generatsiyalar tarixi
type RunRepository interface {
	// SaveRun generatsiya natijasini saqlash
	SaveRun(ctx context.Context, run entity.Run) error

	// ListRuns oxirgi generatsiyalar (yangidan eskiga)
	ListRuns(ctx context.Context, limit int) ([]entity.Run, error)

	// LastRun oxirgi generatsiya
	LastRun(ctx context.Context) (*entity.Run, error)
}

// DescriptionCache AI yozgan tavsiflarni saqlash
type DescriptionCache interface {
	GetDescription(ctx context.Context, offerID string) (string, bool, error)
	PutDescription(ctx context.Context, offerID, description string) error
}
