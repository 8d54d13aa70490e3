package storage

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/storage"
	"github.com/yourusername/pricefeed/internal/domain/entity"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSMirror Google Cloud Storage mirror. Ishdan keyin Close chaqirilishi kerak.
type GCSMirror struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	prefix string
}

// NewGCSMirror fayllarni Google Cloud Storage bucket ga nusxalovchi mirror.
// credentialsFile bo'sh bo'lsa default credentials ishlatiladi.
func NewGCSMirror(ctx context.Context, bucketName, credentialsFile, prefix string) (*GCSMirror, error) {
	if bucketName == "" {
		return nil, errors.New("GCS bucket nomi kerak")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing storage client: %w", err)
	}

	return &GCSMirror{
		client: client,
		bucket: client.Bucket(bucketName),
		name:   bucketName,
		prefix: prefix,
	}, nil
}

func (g *GCSMirror) Name() string {
	return "gcs"
}

// Upload har bir faylni object writer orqali yozish
func (g *GCSMirror) Upload(ctx context.Context, artifacts []entity.Artifact) error {
	for _, a := range artifacts {
		key := objectKey(g.prefix, a.Path)
		wc := g.bucket.Object(key).NewWriter(ctx)
		wc.ContentType = contentType(a.Path)
		if _, err := wc.Write(a.Body); err != nil {
			wc.Close()
			return fmt.Errorf("error uploading %s to gcs: %w", key, err)
		}
		if err := wc.Close(); err != nil {
			return fmt.Errorf("error finalizing %s in gcs: %w", key, err)
		}
	}
	log.Printf("☁️ Uploaded %d files to gs://%s", len(artifacts), g.name)

	removed, err := g.prune(ctx, artifacts)
	if err != nil {
		return fmt.Errorf("failed to prune gcs: %w", err)
	}
	if removed > 0 {
		log.Printf("🧹 Removed %d stale pages from gs://%s", removed, g.name)
	}
	return nil
}

// prune katalogdan chiqib ketgan mahsulot sahifalarini o'chirish
func (g *GCSMirror) prune(ctx context.Context, artifacts []entity.Artifact) (int, error) {
	var existing []string
	it := g.bucket.Objects(ctx, &storage.Query{Prefix: pagesPrefix(g.prefix)})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		existing = append(existing, attrs.Name)
	}

	removed := 0
	for _, key := range staleKeys(existing, g.prefix, artifacts) {
		err := g.bucket.Object(key).Delete(ctx)
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return removed, fmt.Errorf("error deleting %s: %w", key, err)
		}
		removed++
	}
	return removed, nil
}

// Close storage client ni yopish
func (g *GCSMirror) Close() error {
	return g.client.Close()
}
