package core

import (
	"context"
	"time"
)

// FixedStep helps run simulation updates at a steady steps-per-second rate.
type FixedStep struct {
	step time.Duration
	last time.Time
	now  func() time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given rate.
// A non-positive rate yields nil, which never waits.
func NewFixedStep(tps int) *FixedStep {
	if tps <= 0 {
		return nil
	}
	fs := &FixedStep{now: time.Now}
	fs.SetTPS(tps)
	return fs
}

// SetTPS changes the tick rate.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = time.Second / time.Duration(tps)
}

// Interval reports the duration of a single tick.
func (f *FixedStep) Interval() time.Duration {
	if f == nil {
		return 0
	}
	return f.step
}

// Wait blocks until a full tick has elapsed since the previous call.
func (f *FixedStep) Wait(ctx context.Context) error {
	if f == nil {
		return ctx.Err()
	}
	now := f.now()
	if f.last.IsZero() {
		f.last = now
		return ctx.Err()
	}
	remaining := f.step - now.Sub(f.last)
	if remaining > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	f.last = f.now()
	return nil
}
