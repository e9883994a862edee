package engine

import (
	"context"
	"time"

	"github.com/tartampluch/guild-recruiter/internal/config"
)

// Clock abstracts time.Now() to allow deterministic testing.
// It supplies the ledger's "today" key and drives the scheduler and cooldowns.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Today formats the clock's current local date as the ledger key.
func Today(c Clock) string {
	return c.Now().Format(config.DateFormatLedger)
}

// Sleeper abstracts settle and pacing delays so tests never wait on the wall clock.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper blocks for the requested duration or until ctx is done.
type RealSleeper struct{}

// Sleep returns ctx.Err() if the context ends first.
func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
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
