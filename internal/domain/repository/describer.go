package repository

import (
	"context"

	"github.com/yourusername/pricefeed/internal/domain/entity"
)

// Describer mahsulot uchun tavsif yozadi (AI)
type Describer interface {
	Describe(ctx context.Context, offer entity.Offer) (string, error)
}
