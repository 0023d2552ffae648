// Package config defines the application configuration, loaded from YAML
// files, environment variables and command-line flags via viper.
package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Config is the top-level application configuration.
type Config struct {
	LogLevel string     `mapstructure:"log_level"`
	Verbose  bool       `mapstructure:"verbose"`
	Book     BookConfig `mapstructure:"book"`
	Output   Output     `mapstructure:"output"`
	Batch    Batch      `mapstructure:"batch"`
}

// BookConfig selects how pages are preprocessed and recognized.
type BookConfig struct {
	Type         string   `mapstructure:"type"`
	Languages    []string `mapstructure:"languages"`
	GPU          bool     `mapstructure:"gpu"`
	PDFPageRange string   `mapstructure:"pdf_page_range"`
}

// Output controls result serialization.
type Output struct {
	Dir              string `mapstructure:"dir"`
	Format           string `mapstructure:"format"`
	SavePreprocessed bool   `mapstructure:"save_preprocessed"`
}

// Batch controls multi-page processing.
type Batch struct {
	Workers   int  `mapstructure:"workers"`
	Recursive bool `mapstructure:"recursive"`
	Progress  bool `mapstructure:"progress"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Book: BookConfig{
			Type:      "modern",
			Languages: []string{"es"},
		},
		Output: Output{
			Dir:    "output",
			Format: "json",
		},
		Batch: Batch{
			Workers:  1,
			Progress: true,
		},
	}
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validBookTypes = map[string]bool{
	"modern":  true,
	"ancient": true,
}

var validFormats = map[string]bool{
	"json":    true,
	"text":    true,
	"summary": true,
}

// Validate checks the configuration for values the rest of the system cannot
// act on. Language codes must parse as BCP 47 tags.
func (c *Config) Validate() error {
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level %q (expected debug, info, warn or error)", c.LogLevel)
	}
	if !validBookTypes[c.Book.Type] {
		return fmt.Errorf("invalid book type %q (expected modern or ancient)", c.Book.Type)
	}
	if len(c.Book.Languages) == 0 {
		return fmt.Errorf("at least one language is required")
	}
	for _, lang := range c.Book.Languages {
		if _, err := language.Parse(lang); err != nil {
			return fmt.Errorf("invalid language %q: %w", lang, err)
		}
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output format %q (expected json, text or summary)", c.Output.Format)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Batch.Workers)
	}
	return nil
}
