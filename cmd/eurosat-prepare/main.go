package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/airbusgeo/eurosat-ingester/common"
	"github.com/airbusgeo/eurosat-ingester/downloader"
	"github.com/airbusgeo/eurosat-ingester/interface/provider"
	"github.com/airbusgeo/eurosat-ingester/service"
	"github.com/airbusgeo/eurosat-ingester/service/log"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type config struct {
	ConfigFile string
	OnExisting common.OnExisting
	LogFile    string
	LogLevel   string
	LogFormat  string
	StorageURI string

	ProgressInterval time.Duration

	Data common.DataConfig
}

func newAppConfig() (*config, error) {
	config := config{}
	flag.StringVar(&config.ConfigFile, "config", common.DefaultConfigFile, "yaml data configuration (optional file)")
	onExisting := flag.String("on-existing", "", "what to do when the output of a stage already exists: prompt, skip or overwrite (default: "+common.KeyOnExisting+" config, else prompt if stdin is a terminal, skip otherwise)")
	flag.StringVar(&config.LogFile, "log-file", "", "log file (default: the executable path with a .log extension)")
	flag.StringVar(&config.LogLevel, "log-level", "info", "minimum level of the logs: debug, info, warning or error")
	flag.StringVar(&config.LogFormat, "log-format", log.EncodingConsole, "format of the logs: console or json")
	flag.StringVar(&config.StorageURI, "storage-uri", "", "storage uri (currently supported: local, gs, s3) to publish the processed dataset (default: "+common.KeyStorageURI+" config)")
	flag.DurationVar(&config.ProgressInterval, "progress-interval", time.Second, "interval between two progress reports of an http download")

	flag.Parse()

	dataConfig, err := common.LoadDataConfigFile(config.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("newAppConfig.%w", err)
	}
	config.Data = common.NewDataConfig(dataConfig)

	if config.StorageURI == "" {
		config.StorageURI = config.Data.StorageURI
	}

	switch {
	case *onExisting != "":
		if err := config.OnExisting.Set(*onExisting); err != nil {
			return nil, fmt.Errorf("on-existing: %w", err)
		}
	case config.Data.OnExisting != "":
		if err := config.OnExisting.Set(config.Data.OnExisting); err != nil {
			return nil, fmt.Errorf("%s: %w", common.KeyOnExisting, err)
		}
	case term.IsTerminal(int(os.Stdin.Fd())):
		config.OnExisting = common.OnExistingPrompt
	default:
		config.OnExisting = common.OnExistingSkip
	}
	return &config, nil
}

func main() {
	ctx := context.Background()
	config, err := newAppConfig()
	if err != nil {
		log.Fatal(ctx, "error", zap.Error(err))
	}

	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		log.Fatal(ctx, "error", zap.Error(err))
	}
	logger, closeLog, err := log.Setup(log.Options{
		File:     config.LogFile,
		Caller:   logCaller(),
		Level:    level,
		Encoding: config.LogFormat,
	})
	if err != nil {
		log.Fatal(ctx, "error", zap.Error(err))
	}
	ctx = log.WithLogger(ctx, logger)

	if err := run(ctx, config); err != nil {
		msg := "error"
		if service.Temporary(err) {
			msg = "temporary failure, retry later"
		}
		log.Fatal(ctx, msg, zap.Error(err))
	}
	closeLog()
}

// logCaller returns the path from which the default log file is derived: the executable,
// or the working directory when the executable is a temporary build (go run)
func logCaller() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	wd, err := os.Getwd()
	if err != nil {
		return exe
	}
	return callerPath(exe, os.TempDir(), wd)
}

func callerPath(exe, tmpDir, wd string) string {
	if rel, err := filepath.Rel(tmpDir, exe); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.Join(wd, filepath.Base(exe))
	}
	return exe
}

func run(ctx context.Context, config *config) error {
	archiveProvider, err := provider.ForURL(config.Data.EurosatURL, provider.Options{
		Token:             config.Data.EurosatToken,
		ProgressInterval:  config.ProgressInterval,
		S3Region:          config.Data.S3Region,
		S3AccessKeyID:     config.Data.S3AccessKeyID,
		S3SecretAccessKey: config.Data.S3SecretAccessKey,
	})
	if err != nil {
		return err
	}
	log.Logger(ctx).Sugar().Debugf("Archive provider: %s (on existing outputs: %s)", archiveProvider.Name(), config.OnExisting)

	preparer := downloader.NewPreparer(config.Data, archiveProvider, config.OnExisting, downloader.NewConsolePrompter(os.Stdin, os.Stdout))
	if config.StorageURI != "" {
		publisher, err := service.NewPublisher(ctx, config.StorageURI)
		if err != nil {
			return fmt.Errorf("storage %s: %w", config.StorageURI, err)
		}
		preparer.Publisher = publisher
	}

	_, err = preparer.Run(ctx)
	return err
}
