package provider

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3ArchiveProvider implements ArchiveProvider for AWS S3 objects (s3://bucket/key)
type S3ArchiveProvider struct {
	region          string
	accessKeyId     string
	secretAccessKey string
}

// Name implements ArchiveProvider
func (ap *S3ArchiveProvider) Name() string {
	return "S3"
}

// NewS3ArchiveProvider creates a new ArchiveProvider for S3.
// Empty values fall back to the default aws configuration (environment, shared config...)
func NewS3ArchiveProvider(region, accessKeyId, secretAccessKey string) *S3ArchiveProvider {
	return &S3ArchiveProvider{region: region, accessKeyId: accessKeyId, secretAccessKey: secretAccessKey}
}

func s3Target(url string) (bucket, key string, err error) {
	u, err := neturl.Parse(url)
	if err != nil {
		return "", "", err
	}
	bucket, key = u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 url: %s", url)
	}
	return bucket, key, nil
}

// Download implements ArchiveProvider
func (ap *S3ArchiveProvider) Download(ctx context.Context, url, dst string, progress ProgressFunc) error {
	bucket, key, err := s3Target(url)
	if err != nil {
		return fmt.Errorf("S3ArchiveProvider: %w", err)
	}

	var opts []func(*config.LoadOptions) error
	if ap.region != "" {
		opts = append(opts, config.WithRegion(ap.region))
	}
	if ap.accessKeyId != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(ap.accessKeyId, ap.secretAccessKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("S3ArchiveProvider config.LoadDefaultConfig: %w", err)
	}
	client := s3.NewFromConfig(cfg)

	head, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return ErrArchiveNotFound{url}
		}
		return fmt.Errorf("S3ArchiveProvider.HeadObject: %w", err)
	}

	file, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("S3ArchiveProvider: failed to create file %s: %w", dst, err)
	}
	defer file.Close()

	downloader := manager.NewDownloader(client, func(d *manager.Downloader) {
		d.PartSize = 10 * 1024 * 1024 // 10MB per part
		d.Concurrency = 1
	})
	w := writerAtCounter{w: file, wc: &WriteCounter{Total: aws.ToInt64(head.ContentLength), Progress: progress}}
	if _, err = downloader.Download(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("S3ArchiveProvider: failed to download object %s:%s: %w", bucket, key, err)
	}
	return file.Close()
}
