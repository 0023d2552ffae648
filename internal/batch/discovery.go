package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/foliocr/folio/internal/utils"
)

// DiscoverInputs resolves the command-line arguments (files and directories)
// into a sorted, deduplicated list of page sources. Supported image files and
// PDFs are kept; anything else inside a directory is silently skipped, while
// an explicitly named unsupported file is an error.
func DiscoverInputs(args []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var inputs []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			files, err := discoverInDirectory(arg, recursive, includePatterns, excludePatterns)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, files...)
			continue
		}

		if !isPageSource(arg) {
			return nil, fmt.Errorf("unsupported input file: %s", arg)
		}
		if shouldIncludeFile(arg, includePatterns, excludePatterns) {
			inputs = append(inputs, arg)
		}
	}

	return sortedUnique(inputs), nil
}

// IsPDF reports whether the path names a PDF by extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func isPageSource(path string) bool {
	return utils.IsSupportedImage(path) || IsPDF(path)
}

func discoverInDirectory(dir string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if isPageSource(path) && shouldIncludeFile(path, includePatterns, excludePatterns) {
			files = append(files, path)
		}
		return nil
	}

	return files, filepath.Walk(dir, walkFn)
}

// shouldIncludeFile applies exclude patterns first, then include patterns.
// Without include patterns, every non-excluded file passes.
func shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	if matchesAnyPattern(path, excludePatterns) {
		return false
	}
	if len(includePatterns) == 0 {
		return true
	}
	return matchesAnyPattern(path, includePatterns)
}

func matchesAnyPattern(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// sortedUnique sorts lexicographically and drops duplicates so page numbering
// is deterministic across runs and argument orders.
func sortedUnique(paths []string) []string {
	sort.Strings(paths)
	out := paths[:0]
	for i, p := range paths {
		if i == 0 || p != paths[i-1] {
			out = append(out, p)
		}
	}
	return out
}
