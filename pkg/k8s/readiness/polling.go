package readiness

import (
	"context"
	"fmt"
	"time"
)

// DefaultPollInterval is the pause between readiness checks.
const DefaultPollInterval = 2 * time.Second

// CheckFunc reports whether the observed resource is ready. Returning an
// error stops polling immediately; transient errors should be swallowed and
// reported as not-ready so polling continues.
type CheckFunc func(ctx context.Context) (bool, error)

// PollForReadiness invokes check every DefaultPollInterval until it reports
// ready, the deadline elapses, or the context is cancelled. Deadline expiry
// returns an error wrapping ErrTimeoutExceeded.
func PollForReadiness(
	ctx context.Context,
	deadline time.Duration,
	check CheckFunc,
) error {
	pollCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(DefaultPollInterval)
	defer ticker.Stop()

	for {
		ready, err := check(pollCtx)
		if err != nil {
			return fmt.Errorf("readiness check failed: %w", err)
		}

		if ready {
			return nil
		}

		select {
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return fmt.Errorf("readiness wait cancelled: %w", ctx.Err())
			}

			return fmt.Errorf("%w after %s", ErrTimeoutExceeded, deadline)
		case <-ticker.C:
		}
	}
}
