package provider

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// LocalArchiveProvider implements ArchiveProvider for archives already on the local file system
type LocalArchiveProvider struct {
}

// Name implements ArchiveProvider
func (ap *LocalArchiveProvider) Name() string {
	return "FileSystem"
}

// NewLocalArchiveProvider creates a new ArchiveProvider from the local file system
func NewLocalArchiveProvider() *LocalArchiveProvider {
	return &LocalArchiveProvider{}
}

// Download implements ArchiveProvider
func (ap *LocalArchiveProvider) Download(ctx context.Context, url, dst string, progress ProgressFunc) error {
	src := strings.TrimPrefix(url, "file://")
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrArchiveNotFound{url}
		}
		return fmt.Errorf("LocalArchiveProvider: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("LocalArchiveProvider.Stat: %w", err)
	}
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		// Already in place
		return nil
	}

	if err := writeFile(dst, in, info.Size(), progress); err != nil {
		return fmt.Errorf("LocalArchiveProvider.%w", err)
	}
	return nil
}
