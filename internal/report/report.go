// Package report serializes completed book results into their output
// artifacts: a machine-readable JSON document, the concatenated plain text,
// and a human-readable processing summary.
package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/foliocr/folio/internal/book"
)

// Output format identifiers accepted by Format.
const (
	FormatNameJSON    = "json"
	FormatNameText    = "text"
	FormatNameSummary = "summary"
)

// File names written by Save.
const (
	ResultsFile  = "results.json"
	FullTextFile = "full_text.txt"
	SummaryFile  = "summary.txt"
)

// FormatJSON renders the full result document as indented JSON. The field
// names follow the result types' JSON tags and are a stable contract.
func FormatJSON(result *book.Result) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	return string(data), nil
}

// FormatFullText returns the concatenated text of all successful pages.
func FormatFullText(result *book.Result) string {
	return result.FullText
}

// FormatSummary renders the human-readable processing summary: run metadata,
// book-level statistics and a per-page detail line.
func FormatSummary(result *book.Result) string {
	var b strings.Builder

	rule := strings.Repeat("=", 60)
	b.WriteString("OCR PROCESSING SUMMARY\n")
	b.WriteString(rule + "\n\n")

	info := result.Info
	fmt.Fprintf(&b, "Date: %s\n", info.ProcessingDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Book type: %s\n", info.BookType)
	fmt.Fprintf(&b, "Languages: %s\n\n", strings.Join(info.Languages, ", "))

	fmt.Fprintf(&b, "Total pages: %d\n", info.TotalPages)
	fmt.Fprintf(&b, "Successful pages: %d\n", info.SuccessfulPages)
	fmt.Fprintf(&b, "Failed pages: %d\n\n", info.FailedPages)

	stats := result.Statistics
	fmt.Fprintf(&b, "Total words: %d\n", stats.TotalWords)
	fmt.Fprintf(&b, "Average words per page: %.1f\n", stats.AverageWordsPerPage)
	fmt.Fprintf(&b, "Average confidence: %.2f%%\n\n", stats.AverageConfidence*100)

	b.WriteString(rule + "\n\n")
	b.WriteString("PER-PAGE DETAIL:\n\n")

	for _, page := range result.Pages {
		if page.Success {
			fmt.Fprintf(&b, "Page %d: %d words, confidence %.2f%%\n",
				page.PageNumber, page.Metrics.WordCount, page.Metrics.AverageConfidence*100)
		} else {
			fmt.Fprintf(&b, "Page %d: ERROR - %s\n", page.PageNumber, page.Error)
		}
	}

	return b.String()
}

// Format renders the result in the named format.
func Format(result *book.Result, format string) (string, error) {
	switch format {
	case FormatNameJSON:
		return FormatJSON(result)
	case FormatNameText:
		return FormatFullText(result), nil
	case FormatNameSummary:
		return FormatSummary(result), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (supported: json, text, summary)", format)
	}
}

// Save writes the three output artifacts into dir, creating it if needed.
func Save(result *book.Result, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	jsonDoc, err := FormatJSON(result)
	if err != nil {
		return err
	}

	files := map[string]string{
		ResultsFile:  jsonDoc,
		FullTextFile: FormatFullText(result),
		SummaryFile:  FormatSummary(result),
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		slog.Debug("wrote output file", "path", path, "bytes", len(content))
	}
	return nil
}
