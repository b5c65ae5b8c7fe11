// Package pipeline runs the ordered bring-up steps and records a structured
// result per step.
package pipeline

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/devlab-sh/devlab/pkg/ui/notify"
	"github.com/devlab-sh/devlab/pkg/ui/timer"
)

// Status describes the outcome of a single step.
type Status string

const (
	// StatusSucceeded means the step completed without error.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the step returned an error and aborted the run.
	StatusFailed Status = "failed"
	// StatusSkipped means the step never ran because an earlier step failed.
	StatusSkipped Status = "skipped"
)

// timePrecision is the rounding applied to durations in summaries.
const timePrecision = 10 * time.Millisecond

// Result records the outcome of one step.
type Result struct {
	Name     string
	Status   Status
	Err      error
	Duration time.Duration
}

// Step is a named unit of work in the bring-up sequence.
type Step struct {
	// Name is the display name (e.g. "create cluster").
	Name string
	// Emoji prefixes the step title.
	Emoji string
	// Fn executes the step.
	Fn func(ctx context.Context) error
}

// Runner executes steps sequentially and fail-fast: the first error stops the
// run, and remaining steps are recorded as skipped. The returned results
// always cover every step, so callers can render a full summary regardless of
// where the run stopped.
type Runner struct {
	writer io.Writer
	timer  timer.Timer
}

// NewRunner creates a step runner. writer defaults to os.Stdout. A nil timer
// suppresses the timing block after each successful step.
func NewRunner(writer io.Writer, tmr timer.Timer) *Runner {
	if writer == nil {
		writer = os.Stdout
	}

	return &Runner{writer: writer, timer: tmr}
}

// Run executes the steps in order. It returns the per-step results and the
// first error encountered, if any.
func (r *Runner) Run(ctx context.Context, steps ...Step) ([]Result, error) {
	results := make([]Result, 0, len(steps))

	if r.timer != nil {
		r.timer.Start()
	}

	var firstErr error

	for _, step := range steps {
		if firstErr != nil {
			results = append(results, Result{Name: step.Name, Status: StatusSkipped})

			continue
		}

		if r.timer != nil {
			r.timer.NewStage()
		}

		notify.Titlef(r.writer, step.Emoji, "%s...", step.Name)

		started := time.Now()
		err := step.Fn(ctx)
		elapsed := time.Since(started)

		if err != nil {
			notify.Errorf(r.writer, "%s failed: %v", step.Name, err)
			results = append(results, Result{
				Name:     step.Name,
				Status:   StatusFailed,
				Err:      err,
				Duration: elapsed,
			})

			firstErr = err

			continue
		}

		if r.timer != nil {
			notify.SuccessWithTimerf(r.writer, r.timer, "%s", step.Name)
		} else {
			notify.Successf(r.writer, "%s", step.Name)
		}

		results = append(results, Result{
			Name:     step.Name,
			Status:   StatusSucceeded,
			Duration: elapsed,
		})
	}

	return results, firstErr
}
