// Package config loads orang's optional defaults file. Settings mirror the
// common command-line flags; flags always take precedence over the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/harrison/orang/internal/logger"
)

// Config represents orang configuration options read from
// .orang/config.yaml.
type Config struct {
	// Verbosity is the default output verbosity (q, m, n, d, diag).
	Verbosity string `yaml:"verbosity"`

	// DefaultEncoding is the text encoding assumed for files without a BOM.
	DefaultEncoding string `yaml:"default_encoding"`

	// AttributesToSkip lists attributes excluded from every search
	// (e.g. "hidden,symlink").
	AttributesToSkip string `yaml:"attributes_to_skip"`

	// MaxMatchingFiles caps the number of matched items (0 = unlimited).
	MaxMatchingFiles int `yaml:"max_matching_files"`

	// Progress enables the live progress line on TTY output.
	Progress bool `yaml:"progress"`

	// IncludeSummary appends the telemetry summary to every command.
	IncludeSummary bool `yaml:"include_summary"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Verbosity:        "normal",
		MaxMatchingFiles: 0,
	}
}

// LoadConfig loads configuration from the specified file path.
// A missing file returns defaults without error; a malformed file is an
// error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if fileCfg.Verbosity != "" {
		cfg.Verbosity = fileCfg.Verbosity
	}
	if fileCfg.DefaultEncoding != "" {
		cfg.DefaultEncoding = fileCfg.DefaultEncoding
	}
	if fileCfg.AttributesToSkip != "" {
		cfg.AttributesToSkip = fileCfg.AttributesToSkip
	}
	if fileCfg.MaxMatchingFiles != 0 {
		cfg.MaxMatchingFiles = fileCfg.MaxMatchingFiles
	}
	if fileCfg.Progress {
		cfg.Progress = true
	}
	if fileCfg.IncludeSummary {
		cfg.IncludeSummary = true
	}

	return cfg, nil
}

// LoadConfigFromDir loads .orang/config.yaml from the given directory,
// returning defaults when the file does not exist.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".orang", "config.yaml"))
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if _, err := logger.ParseVerbosity(c.Verbosity); err != nil {
		return err
	}
	if c.MaxMatchingFiles < 0 {
		return fmt.Errorf("max_matching_files must be >= 0, got %d", c.MaxMatchingFiles)
	}
	return nil
}
