package common

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the location of the data configuration, relative to the working directory
const DefaultConfigFile = "configs/data.yaml"

// Configuration keys recognized in the data configuration
const (
	KeyDataPath          = "DATA_PATH"
	KeyEurosatURL        = "EUROSAT_URL"
	KeyEurosatToken      = "EUROSAT_TOKEN"
	KeyImageExtension    = "IMAGE_EXTENSION"
	KeyRequireAllClasses = "REQUIRE_ALL_CLASSES"
	KeyOnExisting        = "ON_EXISTING"
	KeyStorageURI        = "STORAGE_URI"
	KeyS3Region          = "S3_REGION"
	KeyS3AccessKeyID     = "S3_ACCESS_KEY_ID"
	KeyS3SecretAccessKey = "S3_SECRET_ACCESS_KEY"
)

// Defaults of the data configuration
const (
	DefaultDataPath       = "data/"
	DefaultEurosatURL     = "https://zenodo.org/records/7711810/files/EuroSAT_MS.zip"
	DefaultArchiveName    = "EuroSAT_MS.zip"
	DefaultImageExtension = ".jpg"
	ProcessedDatasetName  = "EuroSAT"
)

// LoadDataConfig loads DefaultConfigFile.
// A missing file is not an error: an empty config is returned.
func LoadDataConfig() (map[string]interface{}, error) {
	return LoadDataConfigFile(DefaultConfigFile)
}

// LoadDataConfigFile loads all the parameters of a yaml document.
// A missing file returns an empty config. A malformed document returns an error.
func LoadDataConfigFile(file string) (map[string]interface{}, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]interface{}{}, nil
		}
		return nil, fmt.Errorf("LoadDataConfig.ReadFile: %w", err)
	}
	config := map[string]interface{}{}
	if err := yaml.Unmarshal(b, &config); err != nil {
		return nil, fmt.Errorf("LoadDataConfig.Unmarshal[%s]: %w", file, err)
	}
	if config == nil {
		// empty document
		config = map[string]interface{}{}
	}
	return config, nil
}

// DataConfig is the typed view of the data configuration
type DataConfig struct {
	DataPath          string
	EurosatURL        string
	EurosatToken      string
	ImageExtension    string
	RequireAllClasses bool
	OnExisting        string
	StorageURI        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// NewDataConfig reads the recognized keys of config, falling back to the defaults.
// Unknown keys and values of unexpected type are ignored.
func NewDataConfig(config map[string]interface{}) DataConfig {
	return DataConfig{
		DataPath:          stringValue(config, KeyDataPath, DefaultDataPath),
		EurosatURL:        stringValue(config, KeyEurosatURL, DefaultEurosatURL),
		EurosatToken:      stringValue(config, KeyEurosatToken, ""),
		ImageExtension:    stringValue(config, KeyImageExtension, DefaultImageExtension),
		RequireAllClasses: boolValue(config, KeyRequireAllClasses, false),
		OnExisting:        stringValue(config, KeyOnExisting, ""),
		StorageURI:        stringValue(config, KeyStorageURI, ""),
		S3Region:          stringValue(config, KeyS3Region, ""),
		S3AccessKeyID:     stringValue(config, KeyS3AccessKeyID, ""),
		S3SecretAccessKey: stringValue(config, KeyS3SecretAccessKey, ""),
	}
}

func stringValue(config map[string]interface{}, key, def string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return def
}

func boolValue(config map[string]interface{}, key string, def bool) bool {
	if v, ok := config[key].(bool); ok {
		return v
	}
	return def
}

// Paths of the dataset layout
type Paths struct {
	ArchiveFile  string // <DATA_PATH>/raw/<archive>
	ExtractedDir string // <DATA_PATH>/interim/<archive without extension>
	ProcessedDir string // <DATA_PATH>/processed
	DatasetDir   string // <DATA_PATH>/processed/EuroSAT
}

// Paths returns the layout derived from DataPath and EurosatURL
func (c DataConfig) Paths() Paths {
	archive := ArchiveName(c.EurosatURL)
	processed := filepath.Join(c.DataPath, "processed")
	return Paths{
		ArchiveFile:  filepath.Join(c.DataPath, "raw", archive),
		ExtractedDir: filepath.Join(c.DataPath, "interim", strings.TrimSuffix(archive, path.Ext(archive))),
		ProcessedDir: processed,
		DatasetDir:   filepath.Join(processed, ProcessedDatasetName),
	}
}

// ArchiveName returns the file name of the archive targeted by rawurl
func ArchiveName(rawurl string) string {
	p := rawurl
	if u, err := url.Parse(rawurl); err == nil {
		p = u.Path
	}
	name := path.Base(strings.TrimRight(p, "/"))
	switch name {
	case "", ".", "/":
		return DefaultArchiveName
	}
	return name
}
