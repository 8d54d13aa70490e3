package repository

import (
	"context"

	"github.com/yourusername/pricefeed/internal/domain/entity"
)

// ArtifactWriter generatsiya qilingan fayllarni diskka yozadi
type ArtifactWriter interface {
	// Replace papkani tozalab, fayllarni qaytadan yozish
	Replace(artifacts []entity.Artifact) error
}

// ArtifactMirror fayllarni tashqi storage ga nusxalaydi
type ArtifactMirror interface {
	Name() string
	Upload(ctx context.Context, artifacts []entity.Artifact) error
}

// IndexNotifier qidiruv tizimiga yangilangan havolalarni yuboradi
type IndexNotifier interface {
	Name() string
	Notify(ctx context.Context, urls []string) error
}

// RunReporter generatsiya natijasini adminga yuboradi
type RunReporter interface {
	Report(ctx context.Context, run entity.Run) error
}
