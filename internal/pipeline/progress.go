package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressCallback receives page-level progress during a book run.
type ProgressCallback interface {
	// OnStart is called once before the first page, with the page count.
	OnStart(total int)

	// OnProgress is called after each page completes.
	OnProgress(current, total int)

	// OnComplete is called once after the last page.
	OnComplete()

	// OnError is called for pages that fail; the run continues.
	OnError(current int, err error)
}

// NoOpProgress discards all progress events.
type NoOpProgress struct{}

func (NoOpProgress) OnStart(int)         {}
func (NoOpProgress) OnProgress(int, int) {}
func (NoOpProgress) OnComplete()         {}
func (NoOpProgress) OnError(int, error)  {}

// ConsoleProgress draws a progress bar for interactive runs.
type ConsoleProgress struct {
	writer         io.Writer
	prefix         string
	width          int
	updateInterval time.Duration
	lastUpdate     time.Time
	startTime      time.Time
	mu             sync.Mutex
}

// NewConsoleProgress creates a console progress reporter. A nil writer
// defaults to stderr.
func NewConsoleProgress(writer io.Writer, prefix string) *ConsoleProgress {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgress{
		writer:         writer,
		prefix:         prefix,
		width:          40,
		updateInterval: 100 * time.Millisecond,
	}
}

// WithWidth sets the progress bar width.
func (c *ConsoleProgress) WithWidth(width int) *ConsoleProgress {
	c.width = width
	return c
}

func (c *ConsoleProgress) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.lastUpdate = time.Time{}
	_, _ = fmt.Fprintf(c.writer, "%s0/%d pages\n", c.prefix, total)
}

func (c *ConsoleProgress) OnProgress(current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.Sub(c.lastUpdate) < c.updateInterval && current < total {
		return
	}
	c.lastUpdate = now
	c.draw(current, total)
}

func (c *ConsoleProgress) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.startTime)
	_, _ = fmt.Fprintf(c.writer, "\n%sdone in %v\n", c.prefix, elapsed.Round(time.Millisecond))
}

func (c *ConsoleProgress) OnError(current int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintf(c.writer, "\n%spage %d failed: %v\n", c.prefix, current, err)
}

func (c *ConsoleProgress) draw(current, total int) {
	if total == 0 {
		return
	}
	filled := c.width * current / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)
	percent := float64(current) / float64(total) * 100.0
	_, _ = fmt.Fprintf(c.writer, "\r%s[%s] %d/%d (%.1f%%)", c.prefix, bar, current, total, percent)
}

// LogProgress reports progress through slog, for non-interactive runs.
type LogProgress struct {
	logger    *slog.Logger
	level     slog.Level
	interval  int
	lastLog   int
	startTime time.Time
}

// NewLogProgress creates a log-based progress reporter that logs every
// interval pages. A nil logger defaults to slog.Default().
func NewLogProgress(logger *slog.Logger, level slog.Level, interval int) *LogProgress {
	if logger == nil {
		logger = slog.Default()
	}
	if interval < 1 {
		interval = 1
	}
	return &LogProgress{logger: logger, level: level, interval: interval}
}

func (l *LogProgress) OnStart(total int) {
	l.startTime = time.Now()
	l.lastLog = 0
	l.logger.Log(context.Background(), l.level, "processing started", "pages", total)
}

func (l *LogProgress) OnProgress(current, total int) {
	if current-l.lastLog < l.interval && current != total {
		return
	}
	l.lastLog = current
	elapsed := time.Since(l.startTime)
	l.logger.Log(context.Background(), l.level, "processing progress",
		"current", current,
		"total", total,
		"elapsed", elapsed.Round(time.Millisecond),
	)
}

func (l *LogProgress) OnComplete() {
	l.logger.Log(context.Background(), l.level, "processing complete",
		"elapsed", time.Since(l.startTime).Round(time.Millisecond))
}

func (l *LogProgress) OnError(current int, err error) {
	l.logger.Log(context.Background(), slog.LevelWarn, "page failed", "page", current, "error", err)
}
