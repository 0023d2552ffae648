package recognizer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/foliocr/folio/internal/book"
)

// Tesseract adapts the gosseract client to the Recognizer interface. A fresh
// client is created per call; gosseract clients are not safe for concurrent
// reuse across pages.
type Tesseract struct {
	opts Options
}

// NewTesseract creates a Tesseract-backed recognizer with the given options.
func NewTesseract(opts Options) *Tesseract {
	return &Tesseract{opts: opts}
}

// Recognize runs word-level OCR and maps bounding boxes to detections with
// confidences scaled into [0,1].
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) ([]book.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Err: err}
	}
	if img == nil {
		return nil, &Error{Err: fmt.Errorf("nil image")}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &Error{Err: fmt.Errorf("encode image: %w", err)}
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if len(t.opts.Languages) > 0 {
		if err := client.SetLanguage(t.opts.Languages...); err != nil {
			return nil, &Error{Err: fmt.Errorf("set languages: %w", err)}
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, &Error{Err: fmt.Errorf("set image: %w", err)}
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("bounding boxes: %w", err)}
	}

	detections := make([]book.Detection, 0, len(boxes))
	for _, b := range boxes {
		if b.Word == "" {
			continue
		}
		conf := b.Confidence / 100.0
		if conf < 0 {
			conf = 0
		}
		if conf > 1 {
			conf = 1
		}
		detections = append(detections, book.Detection{
			Box: book.Box{
				X: b.Box.Min.X,
				Y: b.Box.Min.Y,
				W: b.Box.Dx(),
				H: b.Box.Dy(),
			},
			Text:       b.Word,
			Confidence: conf,
		})
	}
	return detections, nil
}
