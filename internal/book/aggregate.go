package book

import (
	"fmt"
	"strings"
	"time"
)

// Aggregator accumulates page results in input order and produces the
// book-level result. Statistics are recomputed from scratch in Finalize, so
// repeated finalization and incremental accumulation agree by construction.
type Aggregator struct {
	bookType  string
	languages []string
	pages     []PageResult
}

// NewAggregator creates an aggregator for one book run.
func NewAggregator(bookType string, languages []string) *Aggregator {
	return &Aggregator{bookType: bookType, languages: languages}
}

// Add appends a page result. Pages must be added in input order; the page
// number recorded on the result is preserved as-is.
func (a *Aggregator) Add(page PageResult) {
	a.pages = append(a.pages, page)
}

// Len returns the number of pages accumulated so far.
func (a *Aggregator) Len() int { return len(a.pages) }

// Finalize builds the complete book result from the accumulated pages.
// It may be called more than once; every call recomputes statistics from the
// full page sequence.
func (a *Aggregator) Finalize() Result {
	pages := make([]PageResult, len(a.pages))
	copy(pages, a.pages)

	info := Info{
		TotalPages:     len(pages),
		ProcessingDate: time.Now(),
		BookType:       a.bookType,
		Languages:      a.languages,
	}
	for _, p := range pages {
		if p.Success {
			info.SuccessfulPages++
		} else {
			info.FailedPages++
		}
	}

	return Result{
		Info:       info,
		Statistics: ComputeStatistics(pages),
		Pages:      pages,
		FullText:   buildFullText(pages),
	}
}

// ComputeStatistics derives book statistics from a page sequence. Failed
// pages contribute nothing. The confidence aggregate is weighted by each
// page's detection count; when the book has no detections at all it degrades
// to the unweighted mean over successful pages.
func ComputeStatistics(pages []PageResult) Statistics {
	var s Statistics
	successful := 0
	var weighted, unweighted float64
	for _, p := range pages {
		if !p.Success {
			continue
		}
		successful++
		s.TotalDetections += p.Metrics.DetectionCount
		s.TotalWords += p.Metrics.WordCount
		weighted += p.Metrics.AverageConfidence * float64(p.Metrics.DetectionCount)
		unweighted += p.Metrics.AverageConfidence
	}
	if successful == 0 {
		return s
	}
	s.AverageWordsPerPage = float64(s.TotalWords) / float64(successful)
	if s.TotalDetections > 0 {
		s.AverageConfidence = weighted / float64(s.TotalDetections)
	} else {
		s.AverageConfidence = unweighted / float64(successful)
	}
	return s
}

// buildFullText concatenates successful page texts with page separators.
func buildFullText(pages []PageResult) string {
	var b strings.Builder
	for _, p := range pages {
		if !p.Success {
			continue
		}
		fmt.Fprintf(&b, "\n\n--- PAGE %d ---\n\n%s", p.PageNumber, p.Text)
	}
	return b.String()
}
