// Package timer provides stage-aware duration tracking for command output.
package timer

import "time"

// Timer tracks the total runtime of a command and the runtime of the current
// stage within it. Implementations must be safe for use from a single
// goroutine; the pipeline runs stages sequentially.
type Timer interface {
	// Start begins total time tracking and opens the first stage.
	Start()

	// NewStage closes the current stage and opens a new one.
	NewStage()

	// GetTiming returns the total elapsed time and the elapsed time of the
	// current stage.
	GetTiming() (total, stage time.Duration)
}

type clockTimer struct {
	start      time.Time
	stageStart time.Time
	now        func() time.Time
}

// New returns a Timer backed by the wall clock.
func New() Timer {
	return &clockTimer{now: time.Now}
}

// NewWithClock returns a Timer using the provided clock function. Used by
// tests to produce deterministic durations.
func NewWithClock(now func() time.Time) Timer {
	return &clockTimer{now: now}
}

func (t *clockTimer) Start() {
	t.start = t.now()
	t.stageStart = t.start
}

func (t *clockTimer) NewStage() {
	t.stageStart = t.now()
}

func (t *clockTimer) GetTiming() (time.Duration, time.Duration) {
	// Not started yet, so there is nothing meaningful to report.
	if t.start.IsZero() {
		return 0, 0
	}

	current := t.now()

	return current.Sub(t.start).Round(time.Millisecond),
		current.Sub(t.stageStart).Round(time.Millisecond)
}
