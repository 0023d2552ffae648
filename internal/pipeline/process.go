package pipeline

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"github.com/foliocr/folio/internal/binarize"
	"github.com/foliocr/folio/internal/book"
	"github.com/foliocr/folio/internal/enhance"
	"github.com/foliocr/folio/internal/geometry"
	"github.com/foliocr/folio/internal/utils"
)

// Preprocess applies the profile's three stages in fixed order: geometric
// normalization, photometric enhancement, binarization. Stages never run
// partially: a failure aborts the chain and reports the stage that failed.
func (p *Pipeline) Preprocess(img image.Image) (*image.Gray, error) {
	if img == nil {
		return nil, &PreprocessError{Stage: "geometry", Err: errors.New("nil image")}
	}
	timer := utils.NewStageTimer()

	normalized, err := geometry.Normalize(img, p.cfg.Profile.Geometry)
	if err != nil {
		return nil, &PreprocessError{Stage: "geometry", Err: err}
	}
	timer.Mark("geometry")

	enhanced, err := enhance.Enhance(normalized, p.cfg.Profile.Enhance)
	if err != nil {
		return nil, &PreprocessError{Stage: "enhance", Err: err}
	}
	timer.Mark("enhance")

	binary, err := binarize.Binarize(enhanced, p.cfg.Profile.Binarize)
	if err != nil {
		return nil, &PreprocessError{Stage: "binarize", Err: err}
	}
	timer.Mark("binarize")

	slog.Debug("preprocessing stages timed", timer.Attrs()...)
	return binary, nil
}

// ProcessPage runs a single page through preprocessing and recognition and
// folds the outcome into a page result. Any failure marks the page failed
// with an empty text and detection list; it never aborts the book.
func (p *Pipeline) ProcessPage(ctx context.Context, pageNumber int, filename string, img image.Image) book.PageResult {
	if p.rec == nil {
		return FailedPage(pageNumber, filename, errors.New("pipeline has no recognizer"))
	}
	if err := ctx.Err(); err != nil {
		return FailedPage(pageNumber, filename, err)
	}

	binary, err := p.Preprocess(img)
	if err != nil {
		return FailedPage(pageNumber, filename, err)
	}

	if p.cfg.SavePreprocessed && p.store != nil {
		if err := p.store.Save(filename, binary); err != nil {
			// Diagnostic output only: losing it must not fail the page.
			perr := &PersistError{ID: filename, Err: err}
			slog.Warn("failed to save preprocessed image",
				"page", pageNumber,
				"file", filename,
				"error", perr,
			)
		}
	}

	detections, err := p.rec.Recognize(ctx, binary)
	if err != nil {
		return FailedPage(pageNumber, filename, err)
	}

	book.SortReadingOrder(detections)

	return book.PageResult{
		PageNumber: pageNumber,
		Filename:   filename,
		Text:       book.JoinText(detections),
		Detections: detections,
		Metrics:    book.ComputeMetrics(detections),
		Success:    true,
	}
}

// FailedPage builds the uniform failed-page result: success false, the error
// message recorded, text empty and detections absent.
func FailedPage(pageNumber int, filename string, err error) book.PageResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return book.PageResult{
		PageNumber: pageNumber,
		Filename:   filename,
		Success:    false,
		Error:      msg,
	}
}
