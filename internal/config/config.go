// Package config defines the ingest configuration and how it is loaded.
package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// JVRoot is the JRA-VAN data root. Empty input dirs derive from it.
	JVRoot string `koanf:"jv_root"`

	// SEDataDir holds {YEAR}/SU*.DAT result files.
	SEDataDir string `koanf:"se_data_dir"`

	// SRDataDir holds {YEAR}/SR*.DAT summary files. Defaults to SEDataDir.
	SRDataDir string `koanf:"sr_data_dir"`

	// UMDataDir holds {YEAR}/UM*.DAT horse master files.
	UMDataDir string `koanf:"um_data_dir"`

	// DataRoot is the output root. Empty output dirs derive from it.
	DataRoot string `koanf:"data_root"`

	// RacesDir receives race master documents.
	RacesDir string `koanf:"races_dir"`

	// MastersDir receives horse masters and the horse name index.
	MastersDir string `koanf:"masters_dir"`

	// Workers sets the number of files decoded in parallel. 1 is sequential.
	Workers int `koanf:"workers"`

	// DefaultYears is used when a full run is started without --years,
	// e.g. "2020-2026".
	DefaultYears string `koanf:"default_years"`

	// UMRecentFiles limits horse builds to the newest files. 0 reads all.
	UMRecentFiles int `koanf:"um_recent_files"`

	// MetricsFile is the node-exporter textfile written after each run.
	// Empty disables the export.
	MetricsFile string `koanf:"metrics_file"`

	// IndexDB is the SQLite race catalog path. Empty disables the catalog.
	IndexDB string `koanf:"index_db"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		JVRoot:        "TFJV",
		DataRoot:      "data",
		Workers:       min(runtime.NumCPU(), 8),
		DefaultYears:  "2020-2026",
		UMRecentFiles: 0,
	}
}

// Resolve fills empty directories from the roots.
func (c *Config) Resolve() {
	if c.SEDataDir == "" {
		c.SEDataDir = filepath.Join(c.JVRoot, "SE_DATA")
	}
	if c.SRDataDir == "" {
		c.SRDataDir = c.SEDataDir
	}
	if c.UMDataDir == "" {
		c.UMDataDir = filepath.Join(c.JVRoot, "UM_DATA")
	}
	if c.RacesDir == "" {
		c.RacesDir = filepath.Join(c.DataRoot, "races")
	}
	if c.MastersDir == "" {
		c.MastersDir = filepath.Join(c.DataRoot, "masters")
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.UMRecentFiles < 0 {
		return fmt.Errorf("%w: um_recent_files must not be negative", ErrInvalidConfig)
	}
	if c.SEDataDir == "" || c.UMDataDir == "" {
		return fmt.Errorf("%w: jv_root or the data dirs must be set", ErrInvalidConfig)
	}
	if c.RacesDir == "" || c.MastersDir == "" {
		return fmt.Errorf("%w: data_root or the output dirs must be set", ErrInvalidConfig)
	}
	return nil
}
