package timer_test

import (
	"testing"
	"time"

	"github.com/devlab-sh/devlab/pkg/ui/timer"
	"github.com/stretchr/testify/assert"
)

// fakeClock advances by a fixed step on every read.
type fakeClock struct {
	current time.Time
	step    time.Duration
}

func (f *fakeClock) now() time.Time {
	f.current = f.current.Add(f.step)

	return f.current
}

func TestGetTiming(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{current: time.Unix(0, 0), step: time.Second}
	tmr := timer.NewWithClock(clock.now)

	tmr.Start()

	total, stage := tmr.GetTiming()

	assert.Equal(t, time.Second, total)
	assert.Equal(t, time.Second, stage)
}

func TestNewStage_ResetsStageOnly(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{current: time.Unix(0, 0), step: time.Second}
	tmr := timer.NewWithClock(clock.now)

	tmr.Start()
	tmr.NewStage()

	total, stage := tmr.GetTiming()

	assert.Equal(t, 2*time.Second, total)
	assert.Equal(t, time.Second, stage)
}

func TestGetTiming_BeforeStart(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{current: time.Unix(0, 0), step: time.Second}
	tmr := timer.NewWithClock(clock.now)

	tmr.NewStage()

	total, stage := tmr.GetTiming()

	assert.Equal(t, time.Duration(0), total)
	assert.Equal(t, time.Duration(0), stage)
}

func TestNew_WallClock(t *testing.T) {
	t.Parallel()

	tmr := timer.New()
	tmr.Start()

	total, stage := tmr.GetTiming()

	assert.GreaterOrEqual(t, total, time.Duration(0))
	assert.GreaterOrEqual(t, stage, time.Duration(0))
}
