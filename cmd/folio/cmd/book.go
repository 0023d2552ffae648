package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/foliocr/folio/internal/batch"
	"github.com/foliocr/folio/internal/pipeline"
	"github.com/foliocr/folio/internal/recognizer"
	"github.com/foliocr/folio/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var bookCmd = &cobra.Command{
	Use:   "book [files or directories...]",
	Short: "Process a complete book from page images or PDFs",
	Long: `Process every page of a book and aggregate the recognized text.

Inputs may be image files (JPEG, PNG, TIFF, BMP), PDFs, or directories of
either. Pages are numbered in sorted path order. Results are written to the
output directory as results.json, full_text.txt and summary.txt.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBook,
}

func init() {
	rootCmd.AddCommand(bookCmd)

	bookCmd.Flags().StringP("type", "t", "modern", "book type: modern or ancient")
	bookCmd.Flags().StringSliceP("languages", "l", []string{"es"}, "recognition languages (BCP 47 codes)")
	bookCmd.Flags().Bool("gpu", false, "request GPU acceleration from the recognizer")
	bookCmd.Flags().StringP("output", "o", "output", "output directory for result files")
	bookCmd.Flags().StringP("format", "f", "json", "stdout format: json, text or summary")
	bookCmd.Flags().Bool("save-preprocessed", false, "also save preprocessed page images")
	bookCmd.Flags().IntP("workers", "w", 1, "parallel page workers (0 = all CPUs)")
	bookCmd.Flags().BoolP("recursive", "r", false, "recurse into subdirectories")
	bookCmd.Flags().StringSlice("include", nil, "glob patterns of files to include")
	bookCmd.Flags().StringSlice("exclude", nil, "glob patterns of files to exclude")
	bookCmd.Flags().String("pages", "", "PDF page range, e.g. 1-20 or 1,3,5")
	bookCmd.Flags().Bool("no-progress", false, "disable the progress bar")

	_ = viper.BindPFlag("book.type", bookCmd.Flags().Lookup("type"))
	_ = viper.BindPFlag("book.languages", bookCmd.Flags().Lookup("languages"))
	_ = viper.BindPFlag("book.gpu", bookCmd.Flags().Lookup("gpu"))
	_ = viper.BindPFlag("book.pdf_page_range", bookCmd.Flags().Lookup("pages"))
	_ = viper.BindPFlag("output.dir", bookCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.format", bookCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("output.save_preprocessed", bookCmd.Flags().Lookup("save-preprocessed"))
	_ = viper.BindPFlag("batch.workers", bookCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("batch.recursive", bookCmd.Flags().Lookup("recursive"))
}

func runBook(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	include, _ := cmd.Flags().GetStringSlice("include")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	var progress pipeline.ProgressCallback
	if cfg.Batch.Progress && !noProgress {
		progress = pipeline.NewConsoleProgress(os.Stderr, "folio: ")
	}

	rec := recognizer.NewTesseract(recognizer.Options{
		Languages: cfg.Book.Languages,
		UseGPU:    cfg.Book.GPU,
	})

	batchCfg := batch.Config{
		BookType:         cfg.Book.Type,
		Languages:        cfg.Book.Languages,
		UseGPU:           cfg.Book.GPU,
		OutputDir:        cfg.Output.Dir,
		SavePreprocessed: cfg.Output.SavePreprocessed,
		Workers:          cfg.Batch.Workers,
		Recursive:        cfg.Batch.Recursive,
		IncludePatterns:  include,
		ExcludePatterns:  exclude,
		PDFPageRange:     cfg.Book.PDFPageRange,
		Progress:         progress,
	}

	result, err := batch.ProcessBook(cmd.Context(), args, batchCfg, rec)
	if err != nil {
		return err
	}

	if err := report.Save(&result.Book, cfg.Output.Dir); err != nil {
		return err
	}

	out, err := report.Format(&result.Book, cfg.Output.Format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	fmt.Fprintf(cmd.ErrOrStderr(), "Processed %d pages (%d failed) in %v with %d workers\n",
		result.Book.Info.TotalPages, result.Book.Info.FailedPages,
		result.Duration.Round(time.Millisecond), result.Workers)
	return nil
}
