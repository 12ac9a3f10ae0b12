package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "normal", cfg.Verbosity)
	assert.Empty(t, cfg.DefaultEncoding)
	assert.Zero(t, cfg.MaxMatchingFiles)
	assert.False(t, cfg.Progress)
	assert.False(t, cfg.IncludeSummary)
}

func TestLoadConfigValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `verbosity: detailed
default_encoding: windows-1252
attributes_to_skip: hidden,symlink
max_matching_files: 100
include_summary: true
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "detailed", cfg.Verbosity)
	assert.Equal(t, "windows-1252", cfg.DefaultEncoding)
	assert.Equal(t, "hidden,symlink", cfg.AttributesToSkip)
	assert.Equal(t, 100, cfg.MaxMatchingFiles)
	assert.True(t, cfg.IncludeSummary)
	assert.False(t, cfg.Progress)
}

func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err, "missing file falls back to defaults")
	assert.Equal(t, "normal", cfg.Verbosity)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("verbosity: [broken"), 0o644))

	_, err := LoadConfig(configPath)
	assert.Error(t, err)
}

func TestLoadConfigFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, ".orang"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(tmpDir, ".orang", "config.yaml"),
		[]byte("verbosity: minimal\n"), 0o644))

	cfg, err := LoadConfigFromDir(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "minimal", cfg.Verbosity)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Verbosity = "shouty"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxMatchingFiles = -1
	assert.Error(t, cfg.Validate())
}
