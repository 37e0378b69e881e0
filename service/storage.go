package service

import (
	"compress/flate"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/airbusgeo/geocube/interface/storage"
	"github.com/airbusgeo/geocube/interface/storage/uri"
	"github.com/mholt/archiver"
)

// Publisher stores a zipped copy of a directory into a storage (local path, gs://, s3://...)
type Publisher struct {
	storage storage.Strategy
	uri     uri.DefaultUri
}

// NewPublisher creates a new Publisher targeting storageURI
func NewPublisher(ctx context.Context, storageURI string) (*Publisher, error) {
	u, err := uri.ParseUri(storageURI)
	if err != nil {
		return nil, fmt.Errorf("NewPublisher.ParseURI: %w", err)
	}

	storageClient, err := u.NewStorageStrategy(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewPublisher: %w", err)
	}

	return &Publisher{storage: storageClient, uri: u}, nil
}

// Publish zips dir and uploads it as <uri>/<dir name>.zip
// Returns the uri of the uploaded file
func (p *Publisher) Publish(ctx context.Context, dir string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "publish")
	if err != nil {
		return "", fmt.Errorf("Publish.MkdirTemp: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	name := filepath.Base(filepath.Clean(dir)) + ".zip"
	localZip := filepath.Join(tmpDir, name)
	zipper := archiver.NewZip()
	zipper.CompressionLevel = flate.BestSpeed
	if err := zipper.Archive([]string{dir}, localZip); err != nil {
		return "", fmt.Errorf("Publish.Archive: %w", err)
	}

	f, err := os.Open(localZip)
	if err != nil {
		return "", fmt.Errorf("Publish.Open: %w", err)
	}
	defer f.Close()

	dst := p.getPath(name)
	if err := p.storage.UploadFile(ctx, dst, f); err != nil {
		return "", fmt.Errorf("Publish.UploadFile to %s: %w", dst, err)
	}
	return dst, nil
}

func (p *Publisher) getPath(filename string) string {
	u := p.uri.String()
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u + filename
}
