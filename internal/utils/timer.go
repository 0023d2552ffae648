package utils

import "time"

// StageTimer measures named stages of a multi-step operation, for debug
// logging of per-page timing.
type StageTimer struct {
	last   time.Time
	stages []Stage
}

// Stage is one timed step.
type Stage struct {
	Name     string
	Duration time.Duration
}

// NewStageTimer starts a timer at the current instant.
func NewStageTimer() *StageTimer {
	return &StageTimer{last: time.Now()}
}

// Mark records the time since the previous mark (or construction) under name.
func (t *StageTimer) Mark(name string) time.Duration {
	now := time.Now()
	d := now.Sub(t.last)
	t.last = now
	t.stages = append(t.stages, Stage{Name: name, Duration: d})
	return d
}

// Stages returns the recorded stages in order.
func (t *StageTimer) Stages() []Stage { return t.stages }

// Total returns the sum of all recorded stage durations.
func (t *StageTimer) Total() time.Duration {
	var sum time.Duration
	for _, s := range t.stages {
		sum += s.Duration
	}
	return sum
}

// Attrs flattens the stages into alternating key/value pairs for slog.
func (t *StageTimer) Attrs() []any {
	attrs := make([]any, 0, len(t.stages)*2)
	for _, s := range t.stages {
		attrs = append(attrs, s.Name, s.Duration.Round(time.Microsecond))
	}
	return attrs
}
