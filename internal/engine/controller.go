package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tartampluch/guild-recruiter/internal/config"
	"github.com/tartampluch/guild-recruiter/internal/store"
)

// Status is the run state of the recruitment loop.
type Status int

const (
	Stopped Status = iota
	Running
	Paused
)

func (s Status) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Stats is a consistent view of the controller's counters.
type Stats struct {
	Status    Status
	Bracket   Bracket
	Recruits  int
	Processed int
	Failed    int
}

// Controller owns the run state machine: Stopped → Running ⇄ Paused → Stopped.
// Buttons, hotkeys, the worker and the scheduler all go through it.
type Controller struct {
	// OnChange, when set, receives the new stats after every mutation. It is
	// called without the lock held.
	OnChange func(Stats)

	mu      sync.Mutex
	status  Status
	width   int
	bracket Bracket
	stats   Stats
}

// NewController returns a stopped controller.
func NewController() *Controller {
	return &Controller{}
}

// Start validates rangeText and moves Stopped → Running. precheck (for
// example locating the game window) runs after validation; its error aborts
// the transition. Starting from any other state is ErrInvalidTransition.
func (c *Controller) Start(rangeText string, precheck func() error) (Bracket, error) {
	width, err := ParseRange(rangeText)
	if err != nil {
		c.refuse(err)
		return Bracket{}, err
	}

	c.mu.Lock()
	if c.status != Stopped {
		st := c.status
		c.mu.Unlock()
		return Bracket{}, fmt.Errorf("%w: start from %s", ErrInvalidTransition, st)
	}
	c.mu.Unlock()

	if precheck != nil {
		if err := precheck(); err != nil {
			c.refuse(err)
			return Bracket{}, err
		}
	}

	c.mu.Lock()
	if c.status != Stopped {
		st := c.status
		c.mu.Unlock()
		return Bracket{}, fmt.Errorf("%w: start from %s", ErrInvalidTransition, st)
	}
	c.status = Running
	c.width = width
	c.bracket = FirstBracket(width)
	b := c.bracket
	c.mu.Unlock()

	slog.Info(config.MsgRunStarted,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyRange, b.String())
	c.notify()
	return b, nil
}

func (c *Controller) refuse(err error) {
	slog.Warn(config.MsgStartRefused,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyError, err)
}

// Stop moves Running or Paused to Stopped. It is a no-op when already
// stopped. An in-flight cycle is not interrupted; the worker simply starts
// no new one.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.status == Stopped {
		c.mu.Unlock()
		return
	}
	c.status = Stopped
	c.mu.Unlock()

	slog.Info(config.MsgRunStopped, config.LogKeyComponent, config.CompEngine)
	c.notify()
}

// TogglePause flips Running and Paused. It does nothing when stopped.
func (c *Controller) TogglePause() Status {
	c.mu.Lock()
	switch c.status {
	case Running:
		c.status = Paused
	case Paused:
		c.status = Running
	default:
		c.mu.Unlock()
		return Stopped
	}
	st := c.status
	c.mu.Unlock()

	msg := config.MsgRunResumed
	if st == Paused {
		msg = config.MsgRunPaused
	}
	slog.Info(msg, config.LogKeyComponent, config.CompEngine)
	c.notify()
	return st
}

// AutoPause pauses a running loop and reports whether it did.
func (c *Controller) AutoPause() bool {
	c.mu.Lock()
	if c.status != Running {
		c.mu.Unlock()
		return false
	}
	c.status = Paused
	c.mu.Unlock()

	slog.Warn(config.MsgFocusLost, config.LogKeyComponent, config.CompEngine)
	c.notify()
	return true
}

// Status returns the current run state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// IsRunning reports whether cycles may proceed.
func (c *Controller) IsRunning() bool {
	return c.Status() == Running
}

// Bracket returns the level bracket of the current or next cycle.
func (c *Controller) Bracket() Bracket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bracket
}

// Advance moves to the next bracket and returns it.
func (c *Controller) Advance() Bracket {
	c.mu.Lock()
	c.bracket = c.bracket.Next(c.width)
	b := c.bracket
	c.mu.Unlock()

	c.notify()
	return b
}

// Record adds a cycle's invite report to the counters.
func (c *Controller) Record(rep Report) {
	c.mu.Lock()
	c.stats.Recruits += len(rep.Invited)
	c.stats.Processed += rep.Processed()
	c.stats.Failed += len(rep.Failed)
	c.mu.Unlock()

	c.notify()
}

// Stats returns a snapshot of state and counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statsLocked()
}

func (c *Controller) statsLocked() Stats {
	s := c.stats
	s.Status = c.status
	s.Bracket = c.bracket
	return s
}

// Snapshot converts the state to its persisted form.
func (c *Controller) Snapshot() store.RunState {
	s := c.Stats()
	st := store.RunState{
		IsRunning:      s.Status == Running,
		IsPaused:       s.Status == Paused,
		RecruitsCount:  s.Recruits,
		TotalProcessed: s.Processed,
		FailedInvites:  s.Failed,
	}
	if !s.Bracket.IsZero() {
		st.CurrentRange = s.Bracket.String()
	}
	return st
}

// Restore loads persisted counters and range. The controller always comes
// back Stopped; an unreadable range is ignored.
func (c *Controller) Restore(st store.RunState) {
	b, err := ParseBracket(st.CurrentRange)
	if err != nil {
		b = Bracket{}
	}

	c.mu.Lock()
	c.status = Stopped
	c.bracket = b
	c.stats = Stats{
		Recruits:  st.RecruitsCount,
		Processed: st.TotalProcessed,
		Failed:    st.FailedInvites,
	}
	c.mu.Unlock()

	slog.Debug(config.MsgStateRestored,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyRange, st.CurrentRange)
	c.notify()
}

func (c *Controller) notify() {
	if c.OnChange == nil {
		return
	}
	c.OnChange(c.Stats())
}
