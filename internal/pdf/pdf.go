// Package pdf expands scanned-book PDFs into per-page image files so the rest
// of the system can treat a PDF like a directory of page scans. Extracted
// images stay on disk; decoding is left to the page loader so pixel buffers
// are only held while a page is being processed.
package pdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Page is one extracted page image, still on disk. Filename is a synthetic
// identifier used downstream; Path locates the image file.
type Page struct {
	Number   int
	Filename string
	Path     string
}

// Extraction owns the temporary directory holding a PDF's extracted page
// images. Close it once the pages are no longer needed.
type Extraction struct {
	dir   string
	Pages []Page
}

// ExtractPages extracts the embedded page images of a PDF, ordered by page
// number. pageRange selects pages ("1-5", "1,3,7", empty means all). Pages
// with multiple embedded images contribute one entry each. The caller must
// Close the returned Extraction to release the extracted files.
func ExtractPages(filename string, pageRange string) (*Extraction, error) {
	pages, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	tempDir, err := os.MkdirTemp("", "folio-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}

	var selected []string
	if len(pages) > 0 {
		selected = make([]string, len(pages))
		for i, n := range pages {
			selected[i] = strconv.Itoa(n)
		}
	}

	if err := api.ExtractImagesFile(filename, tempDir, selected, nil); err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, fmt.Errorf("extract images from %s: %w", filepath.Base(filename), err)
	}

	collected, err := collectPages(tempDir, filepath.Base(filename))
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, err
	}
	return &Extraction{dir: tempDir, Pages: collected}, nil
}

// Close removes the extracted files. Safe to call more than once.
func (e *Extraction) Close() error {
	if e == nil || e.dir == "" {
		return nil
	}
	dir := e.dir
	e.dir = ""
	return os.RemoveAll(dir)
}

// collectPages lists everything pdfcpu wrote into dir and sorts it by page
// number. Files that do not follow the page_<n>_... naming are skipped;
// whether a file actually decodes is the page loader's problem.
func collectPages(dir, source string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var pages []Page
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		num, err := pageFromFilename(entry.Name())
		if err != nil {
			continue
		}
		pages = append(pages, Page{
			Number:   num,
			Filename: fmt.Sprintf("%s#page%d", source, num),
			Path:     filepath.Join(dir, entry.Name()),
		})
	}

	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages, nil
}

// pageFromFilename parses the page number out of pdfcpu's extraction naming
// scheme, page_<num>_image_<idx>.<ext>.
func pageFromFilename(name string) (int, error) {
	if !strings.HasPrefix(name, "page_") {
		return 0, errors.New("not a page file")
	}
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return 0, errors.New("invalid filename format")
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil || page < 1 {
		return 0, errors.New("invalid page number")
	}
	return page, nil
}

// parsePageRange parses "1-5", "1,3,5" or combinations thereof. Empty input
// selects all pages.
func parsePageRange(pageRange string) ([]int, error) {
	if pageRange == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		token, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		pages = append(pages, token...)
	}
	return pages, nil
}

func parseRangeToken(part string) ([]int, error) {
	if strings.Contains(part, "-") {
		bounds := strings.Split(part, "-")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", bounds[0])
		}
		end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", bounds[1])
		}
		if start > end {
			return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out, nil
	}
	page, err := strconv.Atoi(part)
	if err != nil {
		return nil, fmt.Errorf("invalid page number: %s", part)
	}
	return []int{page}, nil
}
