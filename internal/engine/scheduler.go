package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/guild-recruiter/internal/config"
)

type task struct {
	name     string
	interval time.Duration
	next     time.Time
	fn       func()
}

// Scheduler runs periodic tasks against an injected Clock. Tick does the
// work; Run only feeds it from a real ticker, so tests can drive Tick with a
// mock clock.
type Scheduler struct {
	clock Clock

	mu    sync.Mutex
	tasks []*task
}

// NewScheduler creates a scheduler reading time from clock.
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

// Every registers fn to run each interval. The first run is one interval
// after registration.
func (s *Scheduler) Every(name string, interval time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, &task{
		name:     name,
		interval: interval,
		next:     s.clock.Now().Add(interval),
		fn:       fn,
	})
}

// Tick runs every task due at now and returns how many ran. A task that fell
// several intervals behind runs once and is rescheduled from now.
func (s *Scheduler) Tick(now time.Time) int {
	s.mu.Lock()
	var due []*task
	for _, t := range s.tasks {
		if !now.Before(t.next) {
			due = append(due, t)
			t.next = t.next.Add(t.interval)
			if !now.Before(t.next) {
				t.next = now.Add(t.interval)
			}
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		slog.Debug(t.name, config.LogKeyComponent, config.CompSchedule)
		t.fn()
	}
	return len(due)
}

// Run calls Tick every resolution until ctx is done.
func (s *Scheduler) Run(ctx context.Context, resolution time.Duration) {
	ticker := time.NewTicker(resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(s.clock.Now())
		}
	}
}
