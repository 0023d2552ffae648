package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliocr/folio/internal/book"
	"github.com/foliocr/folio/internal/recognizer"
	"github.com/foliocr/folio/internal/testutil"
)

func testPage() image.Image {
	cfg := testutil.ModernPageConfig()
	cfg.Width, cfg.Height = 320, 240
	return testutil.GeneratePage(cfg)
}

func TestProfileFor(t *testing.T) {
	modern, err := ProfileFor("modern")
	require.NoError(t, err)
	assert.Equal(t, BookTypeModern, modern.Type)

	ancient, err := ProfileFor("ancient")
	require.NoError(t, err)
	assert.Equal(t, BookTypeAncient, ancient.Type)
	assert.True(t, ancient.Binarize.MorphCleanup)

	_, err = ProfileFor("medieval")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "medieval")
}

func TestBuilder_UnknownBookTypeFailsBuild(t *testing.T) {
	_, err := NewBuilder().WithBookType("papyrus")
	require.Error(t, err)
}

func TestBuilder_Defaults(t *testing.T) {
	pipe, err := NewBuilder().
		WithRecognizer(recognizer.NewFake()).
		Build()
	require.NoError(t, err)

	assert.Equal(t, BookTypeModern, pipe.Profile().Type)
	assert.Equal(t, 1, pipe.Config().Workers)
}

func TestPreprocess_IsDeterministic(t *testing.T) {
	pipe, err := NewBuilder().Build()
	require.NoError(t, err)
	img := testPage()

	first, err := pipe.Preprocess(img)
	require.NoError(t, err)
	second, err := pipe.Preprocess(img)
	require.NoError(t, err)

	assert.Equal(t, first.Pix, second.Pix)
}

func TestPreprocess_ReportsFailingStage(t *testing.T) {
	pipe, err := NewBuilder().Build()
	require.NoError(t, err)

	_, err = pipe.Preprocess(nil)
	require.Error(t, err)

	var perr *PreprocessError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "geometry", perr.Stage)
}

func TestProcessPage_Success(t *testing.T) {
	fake := recognizer.NewFake(FakeWords("hola", "mundo"))
	pipe, err := NewBuilder().WithRecognizer(fake).Build()
	require.NoError(t, err)

	result := pipe.ProcessPage(context.Background(), 1, "page_001.png", testPage())

	require.True(t, result.Success)
	assert.Equal(t, 1, result.PageNumber)
	assert.Equal(t, "page_001.png", result.Filename)
	assert.Equal(t, 2, result.Metrics.DetectionCount)
	assert.Equal(t, "hola\nmundo", result.Text)
	assert.Empty(t, result.Error)
}

func TestProcessPage_SortsReadingOrder(t *testing.T) {
	fake := recognizer.NewFake(recognizer.FakeResponse{
		Detections: []book.Detection{
			{Box: book.Box{X: 10, Y: 200}, Text: "below", Confidence: 0.9},
			{Box: book.Box{X: 150, Y: 10}, Text: "right", Confidence: 0.9},
			{Box: book.Box{X: 10, Y: 10}, Text: "left", Confidence: 0.9},
		},
	})
	pipe, err := NewBuilder().WithRecognizer(fake).Build()
	require.NoError(t, err)

	result := pipe.ProcessPage(context.Background(), 1, "p.png", testPage())

	require.True(t, result.Success)
	assert.Equal(t, "left\nright\nbelow", result.Text)
}

func TestProcessPage_RecognitionFailure(t *testing.T) {
	fake := recognizer.NewFake(recognizer.FakeResponse{Err: errors.New("engine crashed")})
	pipe, err := NewBuilder().WithRecognizer(fake).Build()
	require.NoError(t, err)

	result := pipe.ProcessPage(context.Background(), 3, "bad.png", testPage())

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.PageNumber)
	assert.Contains(t, result.Error, "engine crashed")
	assert.Empty(t, result.Text)
	assert.Equal(t, book.PageMetrics{}, result.Metrics)
}

func TestProcessPage_NoRecognizer(t *testing.T) {
	pipe, err := NewBuilder().Build()
	require.NoError(t, err)

	result := pipe.ProcessPage(context.Background(), 1, "p.png", testPage())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "recognizer")
}

type failingStore struct{ calls int }

func (s *failingStore) Save(string, image.Image) error {
	s.calls++
	return errors.New("disk full")
}

func TestProcessPage_PersistFailureDoesNotFailPage(t *testing.T) {
	store := &failingStore{}
	pipe, err := NewBuilder().
		WithRecognizer(recognizer.NewFake(FakeWords("texto"))).
		WithStore(store).
		Build()
	require.NoError(t, err)

	result := pipe.ProcessPage(context.Background(), 1, "p.png", testPage())

	assert.True(t, result.Success)
	assert.Equal(t, 1, store.calls)
}

type captureStore struct {
	mu  sync.Mutex
	ids []string
}

func (s *captureStore) Save(id string, _ image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	return nil
}

func TestProcessPage_SavesPreprocessedImage(t *testing.T) {
	store := &captureStore{}
	pipe, err := NewBuilder().
		WithRecognizer(recognizer.NewFake(FakeWords("texto"))).
		WithStore(store).
		Build()
	require.NoError(t, err)

	result := pipe.ProcessPage(context.Background(), 1, "scan_007.png", testPage())

	require.True(t, result.Success)
	assert.Equal(t, []string{"scan_007.png"}, store.ids)
}

func TestProcessPages_Sequential(t *testing.T) {
	fake := recognizer.NewFake(
		FakeWords("uno"),
		recognizer.FakeResponse{Err: errors.New("bad page")},
		FakeWords("tres"),
	)
	pipe, err := NewBuilder().WithRecognizer(fake).Build()
	require.NoError(t, err)

	results := pipe.ProcessPages(context.Background(), makeInputs(3))

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)
	for i, r := range results {
		assert.Equal(t, i+1, r.PageNumber)
	}
}

func TestProcessPages_LoadFailureIsPerPage(t *testing.T) {
	pipe, err := NewBuilder().
		WithRecognizer(recognizer.NewFake(FakeWords("ok"))).
		Build()
	require.NoError(t, err)

	inputs := []PageInput{
		{PageNumber: 1, Filename: "broken.png", Load: func() (image.Image, error) {
			return nil, errors.New("decode failed")
		}},
		{PageNumber: 2, Filename: "good.png", Load: func() (image.Image, error) {
			return testPage(), nil
		}},
	}

	results := pipe.ProcessPages(context.Background(), inputs)

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "decode failed")
	assert.True(t, results[1].Success)
}

func TestProcessPagesParallel_PreservesOrder(t *testing.T) {
	// Per-image scripted recognizer: page text depends only on the image,
	// not on call order, so out-of-order completion is observable.
	texts := map[image.Image]string{}
	inputs := make([]PageInput, 6)
	for i := range inputs {
		img := testPage()
		texts[img] = fmt.Sprintf("page-%d", i+1)
		inputs[i] = PageInput{
			PageNumber: i + 1,
			Filename:   fmt.Sprintf("p%d.png", i+1),
			Load:       func() (image.Image, error) { return img, nil },
		}
	}

	var mu sync.Mutex
	rec := recognizer.Func(func(ctx context.Context, img image.Image) ([]book.Detection, error) {
		mu.Lock()
		text := texts[img]
		mu.Unlock()
		// Stagger completions to shuffle finish order.
		time.Sleep(time.Duration(int(text[len(text)-1]-'0')%3) * time.Millisecond)
		return []book.Detection{{Text: text, Confidence: 1}}, nil
	})

	pipe, err := NewBuilder().WithRecognizer(rec).WithWorkers(4).Build()
	require.NoError(t, err)

	results := pipe.ProcessPages(context.Background(), inputs)

	require.Len(t, results, 6)
	for i, r := range results {
		require.True(t, r.Success)
		assert.Equal(t, i+1, r.PageNumber)
		assert.Equal(t, fmt.Sprintf("page-%d", i+1), r.Text)
	}
}

func TestProcessPages_ParallelMatchesSequential(t *testing.T) {
	rec := recognizer.Func(func(ctx context.Context, img image.Image) ([]book.Detection, error) {
		return []book.Detection{{Text: "stable", Confidence: 0.5}}, nil
	})

	seq, err := NewBuilder().WithRecognizer(rec).Build()
	require.NoError(t, err)
	par, err := NewBuilder().WithRecognizer(rec).WithWorkers(3).Build()
	require.NoError(t, err)

	seqResults := seq.ProcessPages(context.Background(), makeInputs(5))
	parResults := par.ProcessPages(context.Background(), makeInputs(5))

	assert.Equal(t, seqResults, parResults)
}

func TestProcessPages_ReportsProgress(t *testing.T) {
	progress := &countingProgress{}
	pipe, err := NewBuilder().
		WithRecognizer(recognizer.NewFake()).
		WithProgress(progress).
		Build()
	require.NoError(t, err)

	pipe.ProcessPages(context.Background(), makeInputs(4))

	assert.Equal(t, 4, progress.started)
	assert.Equal(t, 4, progress.updates)
	assert.True(t, progress.completed)
}

type errorRecordingProgress struct {
	NoOpProgress
	mu    sync.Mutex
	pages []int
}

func (e *errorRecordingProgress) OnError(current int, _ error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pages = append(e.pages, current)
}

func TestProcessPages_ErrorCallbackCarriesPageNumber(t *testing.T) {
	rec := recognizer.Func(func(ctx context.Context, img image.Image) ([]book.Detection, error) {
		return nil, errors.New("engine crashed")
	})

	for name, workers := range map[string]int{"sequential": 1, "parallel": 3} {
		t.Run(name, func(t *testing.T) {
			progress := &errorRecordingProgress{}
			pipe, err := NewBuilder().
				WithRecognizer(rec).
				WithWorkers(workers).
				WithProgress(progress).
				Build()
			require.NoError(t, err)

			pipe.ProcessPages(context.Background(), makeInputs(5))

			sort.Ints(progress.pages)
			assert.Equal(t, []int{1, 2, 3, 4, 5}, progress.pages)
		})
	}
}

func TestProcessPages_EmptyInput(t *testing.T) {
	pipe, err := NewBuilder().WithRecognizer(recognizer.NewFake()).Build()
	require.NoError(t, err)

	assert.Nil(t, pipe.ProcessPages(context.Background(), nil))
}

func TestFailedPage(t *testing.T) {
	r := FailedPage(7, "x.png", errors.New("oops"))

	assert.Equal(t, 7, r.PageNumber)
	assert.Equal(t, "x.png", r.Filename)
	assert.False(t, r.Success)
	assert.Equal(t, "oops", r.Error)
}

// FakeWords builds a fake response with one detection per word, full
// confidence, positioned left to right.
func FakeWords(words ...string) recognizer.FakeResponse {
	dets := make([]book.Detection, len(words))
	for i, w := range words {
		dets[i] = book.Detection{
			Box:        book.Box{X: i * 100, Y: 10, W: 90, H: 20},
			Text:       w,
			Confidence: 1,
		}
	}
	return recognizer.FakeResponse{Detections: dets}
}

func makeInputs(n int) []PageInput {
	inputs := make([]PageInput, n)
	for i := range inputs {
		inputs[i] = PageInput{
			PageNumber: i + 1,
			Filename:   fmt.Sprintf("page_%03d.png", i+1),
			Load:       func() (image.Image, error) { return testPage(), nil },
		}
	}
	return inputs
}

type countingProgress struct {
	mu        sync.Mutex
	started   int
	updates   int
	errors    int
	completed bool
}

func (c *countingProgress) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = total
}

func (c *countingProgress) OnProgress(current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates++
}

func (c *countingProgress) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed = true
}

func (c *countingProgress) OnError(current int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors++
}
