package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRealClockSleep(t *testing.T) {
	start := time.Now()
	if err := (RealClock{}).Sleep(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("slept %v, want at least 20ms", elapsed)
	}
}

func TestRealClockSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := (RealClock{}).Sleep(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err: got %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancelled Sleep should return immediately")
	}
}

func TestFakeClockRecords(t *testing.T) {
	c := &FakeClock{}
	_ = c.Sleep(context.Background(), 2*time.Second)
	_ = c.Sleep(context.Background(), 5*time.Second)

	if len(c.Sleeps) != 2 {
		t.Fatalf("recorded %d sleeps, want 2", len(c.Sleeps))
	}
	if c.Total() != 7*time.Second {
		t.Errorf("Total: got %v, want 7s", c.Total())
	}
}
