package recognizer

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/foliocr/folio/internal/book"
)

// Func adapts a plain function to the Recognizer interface.
type Func func(ctx context.Context, img image.Image) ([]book.Detection, error)

// Recognize implements Recognizer.
func (f Func) Recognize(ctx context.Context, img image.Image) ([]book.Detection, error) {
	return f(ctx, img)
}

// Fake is a scripted Recognizer for tests: each call pops the next queued
// response in order. An optional per-call delay exercises out-of-order
// completion in parallel processing tests. Safe for concurrent use.
type Fake struct {
	mu        sync.Mutex
	responses []FakeResponse
	calls     int
}

// FakeResponse is one scripted recognition outcome.
type FakeResponse struct {
	Detections []book.Detection
	Err        error
	Delay      time.Duration
}

// NewFake creates a fake recognizer that replays the given responses. When
// the script is exhausted, further calls return empty detection lists.
func NewFake(responses ...FakeResponse) *Fake {
	return &Fake{responses: responses}
}

// Recognize implements Recognizer.
func (f *Fake) Recognize(ctx context.Context, _ image.Image) ([]book.Detection, error) {
	f.mu.Lock()
	var resp FakeResponse
	if f.calls < len(f.responses) {
		resp = f.responses[f.calls]
	}
	f.calls++
	f.mu.Unlock()

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-ctx.Done():
			return nil, &Error{Err: ctx.Err()}
		}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return resp.Detections, nil
}

// Calls reports how many times Recognize has been invoked.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
