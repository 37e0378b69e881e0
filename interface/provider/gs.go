package provider

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/airbusgeo/geocube/interface/storage/gcs"
)

// GSArchiveProvider implements ArchiveProvider for Google Storage objects (gs://bucket/object)
type GSArchiveProvider struct {
}

// Name implements ArchiveProvider
func (ap *GSArchiveProvider) Name() string {
	return "GoogleStorage"
}

// NewGSArchiveProvider creates a new ArchiveProvider for Google Storage
func NewGSArchiveProvider() *GSArchiveProvider {
	return &GSArchiveProvider{}
}

// Download implements ArchiveProvider
func (ap *GSArchiveProvider) Download(ctx context.Context, url, dst string, progress ProgressFunc) error {
	bucket, object, err := gcs.Parse(url)
	if err != nil {
		return fmt.Errorf("GSArchiveProvider: %w", err)
	}
	if bucket == "" || object == "" {
		return fmt.Errorf("GSArchiveProvider: malformed url %s", url)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("GSArchiveProvider.NewClient: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return ErrArchiveNotFound{url}
		}
		return fmt.Errorf("GSArchiveProvider.NewReader: %w", err)
	}
	defer r.Close()

	if err := writeFile(dst, r, r.Attrs.Size, progress); err != nil {
		return fmt.Errorf("GSArchiveProvider.%w", err)
	}
	return nil
}
