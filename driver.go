package posetrack

import (
	"context"
	"time"
)

// Ticker is anything advanced by host time. Recorder, Scheduler and
// Controller all implement it.
type Ticker interface {
	Tick(delta time.Duration)
}

// Drive calls Tick on every ticker once per interval with the wall-clock time
// measured since the previous frame, until ctx is done. It is the host loop
// for programs that have no frame loop of their own.
//
// All ticks are delivered from the calling goroutine.
func Drive(ctx context.Context, interval time.Duration, tickers ...Ticker) error {
	if interval <= 0 {
		interval = time.Second / 60
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			for _, t := range tickers {
				t.Tick(delta)
			}
		}
	}
}
