package downloader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/airbusgeo/eurosat-ingester/common"
	"github.com/airbusgeo/eurosat-ingester/interface/provider"
	"github.com/airbusgeo/eurosat-ingester/service"
	"github.com/airbusgeo/eurosat-ingester/service/log"
	"github.com/google/uuid"
)

// Prompter asks the operator a yes/no question
type Prompter interface {
	Confirm(question string) (bool, error)
}

// ConsolePrompter implements Prompter reading the answers line by line
type ConsolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsolePrompter creates a Prompter writing the questions to out and reading the answers from in
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{in: bufio.NewReader(in), out: out}
}

// Confirm implements Prompter. Any answer but "y" or "yes" (including end of input) is a no.
func (p *ConsolePrompter) Confirm(question string) (bool, error) {
	fmt.Fprint(p.out, question)
	answer, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("Confirm: %w", err)
	}
	return IsAffirmative(answer), nil
}

// IsAffirmative returns true for "y" and "yes", case-insensitive
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// Publisher stores the processed dataset
type Publisher interface {
	Publish(ctx context.Context, dir string) (string, error)
}

// Preparer sequences the stages fetch, unpack, organize (and publish if configured)
type Preparer struct {
	Paths     common.Paths
	URL       string
	Provider  provider.ArchiveProvider
	Organize  OrganizeOptions
	Publisher Publisher // optional

	// OnExisting decides whether a stage whose output exists is run again
	OnExisting common.OnExisting
	// Prompter is used with OnExistingPrompt. Without Prompter, the stage is skipped.
	Prompter Prompter
}

// NewPreparer creates a Preparer from the data configuration
func NewPreparer(config common.DataConfig, archiveProvider provider.ArchiveProvider, onExisting common.OnExisting, prompter Prompter) *Preparer {
	return &Preparer{
		Paths:    config.Paths(),
		URL:      config.EurosatURL,
		Provider: archiveProvider,
		Organize: OrganizeOptions{
			Extension:         config.ImageExtension,
			RequireAllClasses: config.RequireAllClasses,
		},
		OnExisting: onExisting,
		Prompter:   prompter,
	}
}

// Report lists the stages that ran
type Report struct {
	Fetched   bool
	Unpacked  bool
	Organized bool
	Organize  OrganizeResult
	Published string // uri of the published dataset
}

// Run runs the stages in sequence.
// A stage whose output does not exist is always run. Otherwise, it depends on OnExisting.
func (p *Preparer) Run(ctx context.Context) (Report, error) {
	ctx = log.With(ctx, "run", uuid.New().String())
	logger := log.Logger(ctx).Sugar()
	logger.Info("EuroSAT Dataset Downloader")

	report := Report{}
	var err error

	if report.Fetched, err = p.shouldRun(ctx, p.Paths.ArchiveFile, "Zip file", "Re-download? (y/N): "); err != nil {
		return report, fmt.Errorf("Run.%w", err)
	}
	if report.Fetched {
		if err := Fetch(ctx, p.Provider, p.URL, p.Paths.ArchiveFile); err != nil {
			return report, fmt.Errorf("Run.%w", err)
		}
	} else {
		logger.Info("Skipping download")
	}

	if report.Unpacked, err = p.shouldRun(ctx, p.Paths.ExtractedDir, "Extracted directory", "Re-extract? (y/N): "); err != nil {
		return report, fmt.Errorf("Run.%w", err)
	}
	if report.Unpacked {
		if err := Unpack(ctx, p.Paths.ArchiveFile, p.Paths.ExtractedDir); err != nil {
			return report, fmt.Errorf("Run.%w", err)
		}
	} else {
		logger.Info("Skipping extraction")
	}

	if report.Organized, err = p.shouldRun(ctx, p.Paths.DatasetDir, "Processed directory", "Re-organize? (y/N): "); err != nil {
		return report, fmt.Errorf("Run.%w", err)
	}
	if report.Organized {
		if report.Organize, err = Organize(ctx, p.Paths.ExtractedDir, p.Paths.DatasetDir, p.Organize); err != nil {
			return report, fmt.Errorf("Run.%w", err)
		}
	} else {
		logger.Info("Skipping organization")
	}

	if p.Publisher != nil && report.Organize.Found {
		if report.Published, err = p.Publisher.Publish(ctx, p.Paths.DatasetDir); err != nil {
			return report, fmt.Errorf("Run.%w", err)
		}
		logger.Infof("Published %s", report.Published)
	}

	logger.Infof("Done! EuroSAT data is ready at: %s", p.Paths.DatasetDir)
	return report, nil
}

// shouldRun returns true if output does not exist, or if it must be overwritten
func (p *Preparer) shouldRun(ctx context.Context, output, kind, question string) (bool, error) {
	ok, err := service.Exists(output)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	log.Logger(ctx).Sugar().Infof("%s already exists: %s", kind, output)
	switch p.OnExisting {
	case common.OnExistingSkip:
		return false, nil
	case common.OnExistingOverwrite:
		return true, nil
	}
	if p.Prompter == nil {
		return false, nil
	}
	return p.Prompter.Confirm(question)
}
