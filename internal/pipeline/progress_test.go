package pipeline

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoOpProgress(t *testing.T) {
	var cb ProgressCallback = NoOpProgress{}
	cb.OnStart(10)
	cb.OnProgress(5, 10)
	cb.OnError(5, errors.New("x"))
	cb.OnComplete()
}

func TestConsoleProgress(t *testing.T) {
	var buf bytes.Buffer
	cb := NewConsoleProgress(&buf, "test: ")

	cb.OnStart(4)
	cb.OnProgress(2, 4)
	cb.OnProgress(4, 4)
	cb.OnComplete()

	out := buf.String()
	assert.Contains(t, out, "test: 0/4")
	assert.Contains(t, out, "4/4")
	assert.Contains(t, out, "(100.0%)")
	assert.Contains(t, out, "done in")
}

func TestConsoleProgress_ReportsErrors(t *testing.T) {
	var buf bytes.Buffer
	cb := NewConsoleProgress(&buf, "")

	cb.OnStart(2)
	cb.OnError(1, errors.New("decode failed"))

	assert.Contains(t, buf.String(), "page 1 failed: decode failed")
}

func TestLogProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cb := NewLogProgress(logger, slog.LevelInfo, 2)

	cb.OnStart(4)
	cb.OnProgress(1, 4) // below interval, suppressed
	cb.OnProgress(2, 4)
	cb.OnProgress(4, 4)
	cb.OnComplete()

	out := buf.String()
	assert.Contains(t, out, "processing started")
	assert.Contains(t, out, "processing complete")
	assert.Equal(t, 2, strings.Count(out, "processing progress"))
}
