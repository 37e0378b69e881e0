package downloader

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/airbusgeo/eurosat-ingester/interface/provider"
	"github.com/airbusgeo/eurosat-ingester/service"
	"github.com/airbusgeo/eurosat-ingester/service/log"
	"github.com/mholt/archiver"
	"go.uber.org/zap"
)

// ClassNames are the categories of the EuroSAT dataset.
// They identify the data directory inside the unpacked archive.
var ClassNames = service.NewStringSet(
	"AnnualCrop",
	"Forest",
	"HerbaceousVegetation",
	"Highway",
	"Industrial",
	"Pasture",
	"PermanentCrop",
	"Residential",
	"River",
	"SeaLake",
)

// progressPeriod is the fraction of the download between two progress logs
const progressPeriod = 0.05

// Fetch downloads the archive located at url to the file dst, creating its parent directory.
// Errors are not retried.
func Fetch(ctx context.Context, archiveProvider provider.ArchiveProvider, url, dst string) error {
	ctx = log.With(ctx, "stage", "fetch")
	log.Logger(ctx).Sugar().Infof("Downloading EuroSAT from %s", url)
	log.Logger(ctx).Sugar().Infof("Destination: %s", dst)

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("Fetch.MkdirAll: %w", err)
	}
	if err := archiveProvider.Download(ctx, url, dst, progressLogger(ctx, progressPeriod)); err != nil {
		return fmt.Errorf("Fetch.%s.%w", archiveProvider.Name(), err)
	}

	log.Logger(ctx).Sugar().Infof("Download complete: %s", dst)
	return nil
}

// progressLogger returns a ProgressFunc logging the progress every period
func progressLogger(ctx context.Context, period float64) provider.ProgressFunc {
	next := 0.0
	return func(fraction float64, done, total int64) {
		if fraction < next {
			return
		}
		log.Logger(ctx).Sugar().Infof("Downloaded %.1f%% of %s", 100*math.Min(1, fraction), provider.FormatBytes(total))
		next = (math.Floor(fraction/period) + 1) * period
	}
}

// Unpack extracts the whole archive into the parent of dstDir.
// The archive is expected to contain a top-level directory named as dstDir.
// Existing files are overwritten.
func Unpack(ctx context.Context, archive, dstDir string) error {
	ctx = log.With(ctx, "stage", "unpack")
	log.Logger(ctx).Sugar().Infof("Extracting %s to %s", archive, dstDir)

	parent := filepath.Dir(dstDir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("Unpack.MkdirAll: %w", err)
	}
	zip := archiver.Zip{OverwriteExisting: true, MkdirAll: true}
	if err := zip.Unarchive(archive, parent); err != nil {
		return fmt.Errorf("Unpack.Unarchive[%s]: %w", archive, err)
	}

	if ok, err := service.Exists(dstDir); err != nil {
		return fmt.Errorf("Unpack.%w", err)
	} else if !ok {
		log.Logger(ctx).Warn("archive does not contain the expected directory", zap.String("dir", dstDir))
	}
	log.Logger(ctx).Sugar().Infof("Extraction complete: %s", dstDir)
	return nil
}

// OrganizeOptions configures Organize
type OrganizeOptions struct {
	// Extension of the image files counted after the copy (e.g. ".jpg")
	Extension string
	// RequireAllClasses selects a data directory containing all the ClassNames
	// instead of at least one of them
	RequireAllClasses bool
}

// OrganizeResult is the outcome of Organize
type OrganizeResult struct {
	Found   bool   // a data directory has been found
	DataDir string // the data directory found in the unpacked tree
	Copied  int    // number of copied files
	Files   int    // number of image files in the destination
}

// FindDataDir walks root (depth-first, lexical order, root included) and returns the first directory
// whose subdirectories intersect ClassNames (or contain all of them if requireAll).
// Returns an empty string if there is none.
func FindDataDir(root string, requireAll bool) (string, error) {
	if ok, err := service.Exists(root); err != nil || !ok {
		return "", err
	}
	var found string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return err
		}
		var subdirs []string
		for _, e := range entries {
			if e.IsDir() {
				subdirs = append(subdirs, e.Name())
			}
		}
		if (requireAll && ClassNames.ContainsAll(subdirs)) || (!requireAll && len(ClassNames.Intersection(subdirs)) > 0) {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("FindDataDir[%s]: %w", root, err)
	}
	return found, nil
}

// Organize copies the data directory found in srcDir into dstDir (merging with its content)
// and counts the image files of dstDir.
// If no data directory is found, an error is logged and the result is not Found: it is not an error.
func Organize(ctx context.Context, srcDir, dstDir string, opts OrganizeOptions) (OrganizeResult, error) {
	ctx = log.With(ctx, "stage", "organize")
	log.Logger(ctx).Sugar().Infof("Organizing data from %s to %s", srcDir, dstDir)

	dataDir, err := FindDataDir(srcDir, opts.RequireAllClasses)
	if err != nil {
		return OrganizeResult{}, fmt.Errorf("Organize.%w", err)
	}
	if dataDir == "" {
		log.Logger(ctx).Error("Could not find EuroSAT data directory", zap.String("dir", srcDir))
		return OrganizeResult{}, nil
	}
	log.Logger(ctx).Sugar().Infof("Found data directory: %s", dataDir)

	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return OrganizeResult{}, fmt.Errorf("Organize.MkdirAll: %w", err)
	}
	copied, err := service.CopyDir(dataDir, dstDir)
	if err != nil {
		return OrganizeResult{}, fmt.Errorf("Organize.%w", err)
	}
	files, err := service.CountFiles(dstDir, opts.Extension)
	if err != nil {
		return OrganizeResult{}, fmt.Errorf("Organize.%w", err)
	}

	log.Logger(ctx).Sugar().Infof("Organization complete. Total files: %d", files)
	return OrganizeResult{Found: true, DataDir: dataDir, Copied: copied, Files: files}, nil
}
