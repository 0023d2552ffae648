package pipeline

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/foliocr/folio/internal/book"
)

// PageInput names one page of a book. Load is invoked lazily by the worker
// that processes the page, so decoded pixels stay scoped to that worker.
type PageInput struct {
	PageNumber int
	Filename   string
	Load       func() (image.Image, error)
}

// pageJob pairs an input with its position in the book.
type pageJob struct {
	index int
	input PageInput
}

// pageOutcome carries one finished page back to the collector.
type pageOutcome struct {
	index  int
	result book.PageResult
}

// ProcessPages runs every page through the pipeline and returns results in
// input order. With more than one configured worker the pages are processed
// by a worker pool; result order is restored regardless of completion order.
// Per-page failures are recorded in the page results, never returned.
func (p *Pipeline) ProcessPages(ctx context.Context, inputs []PageInput) []book.PageResult {
	if len(inputs) == 0 {
		return nil
	}

	if p.cfg.Progress != nil {
		p.cfg.Progress.OnStart(len(inputs))
		defer p.cfg.Progress.OnComplete()
	}

	if p.cfg.Workers <= 1 || len(inputs) == 1 {
		return p.processSequential(ctx, inputs)
	}
	return p.processParallel(ctx, inputs)
}

func (p *Pipeline) processSequential(ctx context.Context, inputs []PageInput) []book.PageResult {
	results := make([]book.PageResult, len(inputs))
	for i, in := range inputs {
		results[i] = p.processOne(ctx, in)
		if p.cfg.Progress != nil {
			p.cfg.Progress.OnProgress(i+1, len(inputs))
			if !results[i].Success {
				p.cfg.Progress.OnError(results[i].PageNumber, fmt.Errorf("%s: %s", in.Filename, results[i].Error))
			}
		}
	}
	return results
}

func (p *Pipeline) processParallel(ctx context.Context, inputs []PageInput) []book.PageResult {
	workers := p.cfg.Workers
	if workers > len(inputs) {
		workers = len(inputs)
	}

	jobs := make(chan pageJob, len(inputs))
	outcomes := make(chan pageOutcome, len(inputs))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go p.pageWorker(ctx, jobs, outcomes, &wg)
	}

	go func() {
		defer close(jobs)
		for i, in := range inputs {
			select {
			case jobs <- pageJob{index: i, input: in}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	results := make([]book.PageResult, len(inputs))
	seen := make([]bool, len(inputs))
	done := 0
	for out := range outcomes {
		results[out.index] = out.result
		seen[out.index] = true
		done++
		if p.cfg.Progress != nil {
			p.cfg.Progress.OnProgress(done, len(inputs))
			if !out.result.Success {
				p.cfg.Progress.OnError(out.result.PageNumber, fmt.Errorf("%s: %s", out.result.Filename, out.result.Error))
			}
		}
	}

	// Pages never dispatched (cancellation) still need a result slot.
	for i, ok := range seen {
		if !ok {
			results[i] = FailedPage(inputs[i].PageNumber, inputs[i].Filename, ctx.Err())
		}
	}
	return results
}

func (p *Pipeline) pageWorker(ctx context.Context, jobs <-chan pageJob, outcomes chan<- pageOutcome, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			res := p.processOne(ctx, job.input)
			select {
			case outcomes <- pageOutcome{index: job.index, result: res}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// processOne decodes the page lazily and processes it. A load failure is a
// per-page failure like any other.
func (p *Pipeline) processOne(ctx context.Context, in PageInput) book.PageResult {
	if in.Load == nil {
		return FailedPage(in.PageNumber, in.Filename, fmt.Errorf("no loader for %s", in.Filename))
	}
	img, err := in.Load()
	if err != nil {
		return FailedPage(in.PageNumber, in.Filename, err)
	}
	return p.ProcessPage(ctx, in.PageNumber, in.Filename, img)
}
