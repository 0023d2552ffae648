// Package batch orchestrates whole-book runs: it discovers page sources,
// expands PDFs into page images, drives the page pipeline and aggregates the
// outcome into a book result.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/foliocr/folio/internal/book"
	"github.com/foliocr/folio/internal/pdf"
	"github.com/foliocr/folio/internal/pipeline"
	"github.com/foliocr/folio/internal/recognizer"
	"github.com/foliocr/folio/internal/utils"
)

// ErrNoInputs is returned when discovery yields no page sources at all.
var ErrNoInputs = errors.New("no input pages found")

// Config drives one book run.
type Config struct {
	BookType         string
	Languages        []string
	UseGPU           bool
	OutputDir        string
	SavePreprocessed bool
	Workers          int
	Recursive        bool
	IncludePatterns  []string
	ExcludePatterns  []string
	PDFPageRange     string
	Progress         pipeline.ProgressCallback
}

// Result pairs the book result with run accounting.
type Result struct {
	Book     book.Result
	Duration time.Duration
	Workers  int
}

// ProcessBook runs a complete book through the pipeline: discover inputs,
// expand PDFs, process every page and aggregate. An empty input set is fatal;
// individual page failures are recorded in the result and never abort the
// run.
func ProcessBook(ctx context.Context, args []string, cfg Config, rec recognizer.Recognizer) (*Result, error) {
	start := time.Now()

	sources, err := DiscoverInputs(args, cfg.Recursive, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, ErrNoInputs
	}

	inputs, cleanup, err := buildPageInputs(sources, cfg.PDFPageRange)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}

	pipe, err := buildPipeline(cfg, rec)
	if err != nil {
		return nil, err
	}

	slog.Info("processing book",
		"pages", len(inputs),
		"book_type", cfg.BookType,
		"languages", cfg.Languages,
		"workers", pipe.Config().Workers,
	)

	agg := book.NewAggregator(cfg.BookType, cfg.Languages)
	for _, page := range pipe.ProcessPages(ctx, inputs) {
		agg.Add(page)
	}

	result := agg.Finalize()
	slog.Info("book processed",
		"successful_pages", result.Info.SuccessfulPages,
		"failed_pages", result.Info.FailedPages,
		"total_words", result.Statistics.TotalWords,
		"average_confidence", fmt.Sprintf("%.3f", result.Statistics.AverageConfidence),
	)

	return &Result{
		Book:     result,
		Duration: time.Since(start),
		Workers:  pipe.Config().Workers,
	}, nil
}

func buildPipeline(cfg Config, rec recognizer.Recognizer) (*pipeline.Pipeline, error) {
	builder, err := pipeline.NewBuilder().WithBookType(cfg.BookType)
	if err != nil {
		return nil, err
	}
	builder.
		WithLanguages(cfg.Languages).
		WithGPU(cfg.UseGPU).
		WithRecognizer(rec).
		WithWorkers(cfg.Workers).
		WithProgress(cfg.Progress)
	if cfg.SavePreprocessed {
		builder.WithStore(pipeline.DirStore{Dir: cfg.OutputDir})
	}
	return builder.Build()
}

// buildPageInputs turns discovered sources into lazily loaded page inputs.
// PDFs are expanded to image files on disk; decoding is deferred for every
// source so pixel buffers stay scoped to the worker that needs them. The
// returned cleanup releases the extracted PDF files and must run after the
// last page load.
func buildPageInputs(sources []string, pdfPageRange string) ([]pipeline.PageInput, func(), error) {
	var inputs []pipeline.PageInput
	var extractions []*pdf.Extraction
	cleanup := func() {
		for _, ex := range extractions {
			if err := ex.Close(); err != nil {
				slog.Warn("removing extracted pdf pages", "error", err)
			}
		}
	}
	next := 1

	for _, src := range sources {
		if IsPDF(src) {
			ex, err := pdf.ExtractPages(src, pdfPageRange)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("expand %s: %w", src, err)
			}
			extractions = append(extractions, ex)
			for _, p := range ex.Pages {
				inputs = append(inputs, pipeline.PageInput{
					PageNumber: next,
					Filename:   p.Filename,
					Load:       loadLazily(p.Path),
				})
				next++
			}
			continue
		}

		inputs = append(inputs, pipeline.PageInput{
			PageNumber: next,
			Filename:   src,
			Load:       loadLazily(src),
		})
		next++
	}

	return inputs, cleanup, nil
}

func loadLazily(path string) func() (image.Image, error) {
	return func() (image.Image, error) {
		img, _, err := utils.LoadImage(path)
		return img, err
	}
}
