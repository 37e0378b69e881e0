package provider

import (
	"context"
	"fmt"
	neturl "net/url"
	"strings"
	"time"
)

// ProgressFunc receives the progress of a download: the completed fraction (0-1),
// the downloaded bytes and the total size of the archive.
// It is only called when the total size is known.
type ProgressFunc func(fraction float64, done, total int64)

// ArchiveProvider is the interface of an archive download service
type ArchiveProvider interface {
	// Download the archive located at url to the local file dst
	Download(ctx context.Context, url, dst string, progress ProgressFunc) error

	// Name of the provider
	Name() string
}

// Options configures the providers created by ForURL
type Options struct {
	// Token is sent as a bearer token by the http provider
	Token string
	// ProgressInterval is the period of the progress reports of the http provider (default: 1s)
	ProgressInterval time.Duration

	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// ForURL returns the provider handling the scheme of url:
// http(s), ftp, gs, s3, file or a local path
func ForURL(url string, opts Options) (ArchiveProvider, error) {
	u, err := neturl.Parse(url)
	if err != nil {
		return nil, fmt.Errorf("ForURL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPArchiveProvider(opts.Token, opts.ProgressInterval), nil
	case "ftp":
		return NewFTPArchiveProvider(), nil
	case "gs":
		return NewGSArchiveProvider(), nil
	case "s3":
		return NewS3ArchiveProvider(opts.S3Region, opts.S3AccessKeyID, opts.S3SecretAccessKey), nil
	case "file", "":
		return NewLocalArchiveProvider(), nil
	}
	return nil, fmt.Errorf("ForURL: unsupported scheme %s", u.Scheme)
}
