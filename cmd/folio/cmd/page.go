package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/foliocr/folio/internal/pipeline"
	"github.com/foliocr/folio/internal/recognizer"
	"github.com/foliocr/folio/internal/utils"
	"github.com/spf13/cobra"
)

var pageCmd = &cobra.Command{
	Use:   "page <image>",
	Short: "Process a single page image",
	Long: `Run one page image through preprocessing and recognition and print
the page result as JSON. Useful for tuning profiles before a full book run.`,
	Args: cobra.ExactArgs(1),
	RunE: runPage,
}

func init() {
	rootCmd.AddCommand(pageCmd)

	pageCmd.Flags().StringP("type", "t", "modern", "book type: modern or ancient")
	pageCmd.Flags().StringSliceP("languages", "l", []string{"es"}, "recognition languages (BCP 47 codes)")
	pageCmd.Flags().String("save-preprocessed", "", "directory to save the preprocessed image into")
}

func runPage(cmd *cobra.Command, args []string) error {
	bookType, _ := cmd.Flags().GetString("type")
	languages, _ := cmd.Flags().GetStringSlice("languages")
	saveDir, _ := cmd.Flags().GetString("save-preprocessed")

	builder, err := pipeline.NewBuilder().WithBookType(bookType)
	if err != nil {
		return err
	}
	builder.
		WithLanguages(languages).
		WithRecognizer(recognizer.NewTesseract(recognizer.Options{Languages: languages}))
	if saveDir != "" {
		builder.WithStore(pipeline.DirStore{Dir: saveDir})
	}
	pipe, err := builder.Build()
	if err != nil {
		return err
	}

	img, meta, err := utils.LoadImage(args[0])
	if err != nil {
		return err
	}

	result := pipe.ProcessPage(cmd.Context(), 1, meta.Path, img)
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	if !result.Success {
		return fmt.Errorf("page processing failed: %s", result.Error)
	}
	return nil
}
