// Package engine drives the trading loop: one scheduler runs
// snapshot -> discover -> decide -> reconcile -> sleep, and one
// reconciler brings the exchange's resting orders into agreement with
// each cycle's decision.
package engine

import (
	"context"
	"time"
)

// Clock abstracts time so the loop can be driven deterministically in
// tests without real sleeps.
type Clock interface {
	Now() time.Time
	// Sleep waits for d or until ctx is done, returning ctx.Err() in
	// the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the real clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
