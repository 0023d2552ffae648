package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"invalid log level", func(c *Config) { c.LogLevel = "trace" }, "log level"},
		{"invalid book type", func(c *Config) { c.Book.Type = "medieval" }, "book type"},
		{"no languages", func(c *Config) { c.Book.Languages = nil }, "language"},
		{"bad language tag", func(c *Config) { c.Book.Languages = []string{"not-a-language!"} }, "language"},
		{"invalid format", func(c *Config) { c.Output.Format = "xml" }, "format"},
		{"negative workers", func(c *Config) { c.Batch.Workers = -1 }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_AcceptsCommonLanguageTags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Book.Languages = []string{"es", "la", "pt-BR", "zh-Hans"}

	require.NoError(t, cfg.Validate())
}

func TestLoader_LoadWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.yaml")
	content := `
log_level: debug
book:
  type: ancient
  languages: [es, la]
output:
  dir: /tmp/results
  format: summary
batch:
  workers: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loader := &Loader{v: viper.New()}
	cfg, err := loader.LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ancient", cfg.Book.Type)
	assert.Equal(t, []string{"es", "la"}, cfg.Book.Languages)
	assert.Equal(t, "/tmp/results", cfg.Output.Dir)
	assert.Equal(t, "summary", cfg.Output.Format)
	assert.Equal(t, 4, cfg.Batch.Workers)
	// Unset keys keep their defaults.
	assert.True(t, cfg.Batch.Progress)
}

func TestLoader_LoadWithFile_Missing(t *testing.T) {
	loader := &Loader{v: viper.New()}
	_, err := loader.LoadWithFile("/does/not/exist.yaml")
	require.Error(t, err)
}

func TestLoader_LoadWithFile_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("book:\n  type: papyrus\n"), 0o600))

	loader := &Loader{v: viper.New()}
	_, err := loader.LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "papyrus")
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	original := map[string]any{
		"log_level": "warn",
		"book": map[string]any{
			"type":      "ancient",
			"languages": []string{"la"},
			"gpu":       true,
		},
		"output": map[string]any{
			"dir":               "results",
			"format":            "text",
			"save_preprocessed": true,
		},
		"batch": map[string]any{
			"workers":   8,
			"recursive": true,
		},
	}

	data, err := yaml.Marshal(original)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "folio.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loader := &Loader{v: viper.New()}
	cfg, err := loader.LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.Book.GPU)
	assert.True(t, cfg.Output.SavePreprocessed)
	assert.True(t, cfg.Batch.Recursive)
	assert.Equal(t, 8, cfg.Batch.Workers)
}
