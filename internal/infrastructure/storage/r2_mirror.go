package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/domain/repository"
)

// R2Options Cloudflare R2 (S3 compatible) sozlamalari
type R2Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

type r2Mirror struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewR2Mirror fayllarni R2 bucket ga nusxalovchi mirror
func NewR2Mirror(ctx context.Context, opts R2Options) (repository.ArtifactMirror, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, errors.New("R2 endpoint va bucket kerak")
	}

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config yuklanmadi: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	})

	return &r2Mirror{client: client, bucket: opts.Bucket, prefix: opts.Prefix}, nil
}

func (r *r2Mirror) Name() string {
	return "r2"
}

// Upload har bir faylni PutObject bilan yuklash
func (r *r2Mirror) Upload(ctx context.Context, artifacts []entity.Artifact) error {
	for _, a := range artifacts {
		key := objectKey(r.prefix, a.Path)
		_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(r.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(a.Body),
			ContentType: aws.String(contentType(a.Path)),
		})
		if err != nil {
			return fmt.Errorf("failed to upload %s to r2: %w", key, err)
		}
	}
	log.Printf("☁️ Uploaded %d files to r2://%s", len(artifacts), r.bucket)

	removed, err := r.prune(ctx, artifacts)
	if err != nil {
		return fmt.Errorf("failed to prune r2: %w", err)
	}
	if removed > 0 {
		log.Printf("🧹 Removed %d stale pages from r2://%s", removed, r.bucket)
	}
	return nil
}

// r2DeleteBatch DeleteObjects bitta so'rovdagi eng ko'p kalit
const r2DeleteBatch = 1000

// prune katalogdan chiqib ketgan mahsulot sahifalarini o'chirish
func (r *r2Mirror) prune(ctx context.Context, artifacts []entity.Artifact) (int, error) {
	var existing []string
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(pagesPrefix(r.prefix)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		for _, obj := range page.Contents {
			existing = append(existing, aws.ToString(obj.Key))
		}
	}

	stale := staleKeys(existing, r.prefix, artifacts)
	for start := 0; start < len(stale); start += r2DeleteBatch {
		end := min(start+r2DeleteBatch, len(stale))
		ids := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range stale[start:end] {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(key)})
		}
		out, err := r.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(r.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return start, err
		}
		if len(out.Errors) > 0 {
			return start + len(ids) - len(out.Errors), fmt.Errorf("%d deletes failed, first: %s", len(out.Errors), aws.ToString(out.Errors[0].Message))
		}
	}
	return len(stale), nil
}
