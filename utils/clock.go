package utils

import (
	"context"
	"time"
)

// Clock abstracts fixed settle delays so tests can run without real sleeps.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock sleeps on the wall clock.
type RealClock struct{}

// Sleep blocks for d, returning early with ctx.Err() if ctx is done first.
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// FakeClock records requested delays and returns immediately.
type FakeClock struct {
	Sleeps []time.Duration
}

func (f *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	f.Sleeps = append(f.Sleeps, d)
	return ctx.Err()
}

// Total returns the sum of all recorded delays.
func (f *FakeClock) Total() time.Duration {
	var total time.Duration
	for _, d := range f.Sleeps {
		total += d
	}
	return total
}
