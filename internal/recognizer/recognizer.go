// Package recognizer defines the boundary to the external text-recognition
// capability. The core pipeline depends only on the Recognizer interface;
// concrete engines are injected, keeping preprocessing and aggregation
// testable without a recognition engine.
package recognizer

import (
	"context"
	"fmt"
	"image"

	"github.com/foliocr/folio/internal/book"
)

// Recognizer turns a preprocessed pixel buffer into an ordered list of text
// detections. Implementations may honor ctx for cancellation; a timeout or
// engine failure surfaces as a page-level failure, never as a book-level one.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]book.Detection, error)
}

// Error reports a failure of the recognition capability on one page.
type Error struct {
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("recognition failed: %v", e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// Options carries the configuration surface forwarded to engines. Language
// identifiers are opaque to the core; UseGPU is forwarded where the engine
// supports it and otherwise ignored.
type Options struct {
	Languages []string
	UseGPU    bool
}
