// Package pipeline chains geometric normalization, photometric enhancement
// and binarization into one deterministic per-page transform, feeds the
// result to an injected recognition capability, and converts every per-page
// outcome (success or failure) into a uniform page result.
package pipeline

import (
	"errors"
	"runtime"

	"github.com/foliocr/folio/internal/recognizer"
)

// Config holds the pipeline configuration. The profile is immutable once the
// pipeline is built.
type Config struct {
	Profile          Profile
	Languages        []string // opaque identifiers forwarded to recognition
	UseGPU           bool     // forwarded to recognition, not interpreted
	SavePreprocessed bool
	Workers          int // page-level parallelism; <=1 means sequential
	Progress         ProgressCallback
}

// DefaultConfig returns a sequential modern-profile configuration.
func DefaultConfig() Config {
	return Config{
		Profile: ModernProfile(),
		Workers: 1,
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg   Config
	rec   recognizer.Recognizer
	store Store
}

// NewBuilder creates a pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithBookType selects the profile by book type string.
func (b *Builder) WithBookType(bookType string) (*Builder, error) {
	p, err := ProfileFor(bookType)
	if err != nil {
		return nil, err
	}
	b.cfg.Profile = p
	return b, nil
}

// WithProfile sets the profile directly.
func (b *Builder) WithProfile(p Profile) *Builder {
	b.cfg.Profile = p
	return b
}

// WithLanguages sets the language set forwarded to recognition.
func (b *Builder) WithLanguages(langs []string) *Builder {
	b.cfg.Languages = langs
	return b
}

// WithGPU toggles the GPU flag forwarded to recognition.
func (b *Builder) WithGPU(enabled bool) *Builder {
	b.cfg.UseGPU = enabled
	return b
}

// WithRecognizer injects the recognition capability.
func (b *Builder) WithRecognizer(rec recognizer.Recognizer) *Builder {
	b.rec = rec
	return b
}

// WithStore injects the persistence collaborator and enables saving of
// preprocessed images.
func (b *Builder) WithStore(store Store) *Builder {
	b.store = store
	b.cfg.SavePreprocessed = store != nil
	return b
}

// WithWorkers sets page-level parallelism (0 means all CPUs).
func (b *Builder) WithWorkers(n int) *Builder {
	if n == 0 {
		n = runtime.NumCPU()
	}
	b.cfg.Workers = n
	return b
}

// WithProgress sets the progress callback for multi-page runs.
func (b *Builder) WithProgress(cb ProgressCallback) *Builder {
	b.cfg.Progress = cb
	return b
}

// Config returns a copy of the current configuration.
func (b *Builder) Config() Config { return b.cfg }

// Build validates the configuration and constructs the pipeline. A pipeline
// without a recognizer can still preprocess; page processing requires one.
func (b *Builder) Build() (*Pipeline, error) {
	if b.cfg.Profile.Type == "" {
		return nil, errors.New("no profile selected")
	}
	if b.cfg.SavePreprocessed && b.store == nil {
		return nil, errors.New("save-preprocessed enabled without a store")
	}
	if b.cfg.Workers < 1 {
		b.cfg.Workers = 1
	}
	return &Pipeline{cfg: b.cfg, rec: b.rec, store: b.store}, nil
}

// Pipeline applies one fixed profile to pages and aggregates per-page
// recognition output into page results.
type Pipeline struct {
	cfg   Config
	rec   recognizer.Recognizer
	store Store
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Profile returns the immutable profile the pipeline was built with.
func (p *Pipeline) Profile() Profile { return p.cfg.Profile }
