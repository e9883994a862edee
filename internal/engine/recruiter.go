package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/guild-recruiter/internal/config"
	"github.com/tartampluch/guild-recruiter/internal/store"
)

// CycleReport summarizes one recruitment cycle.
type CycleReport struct {
	ID       string
	Bracket  Bracket
	Date     string
	Resumed  bool // A leftover queue was drained instead of running /who.
	Captured int
	Queued   int
	Invites  Report
}

// Recruiter wires the components into the who → collect → filter → invite
// cycle.
type Recruiter struct {
	Settings  Settings
	Windows   WindowLocator
	Who       *WhoSender
	Collector *Collector
	Invites   *InviteDriver
	Ledger    *store.Ledger
	Queue     *store.Queue
	Clock     Clock
	Sleeper   Sleeper
	Rand      *rand.Rand
	NewID     func() string

	mu     sync.Mutex
	window Window
	found  bool
}

// NewRecruiter builds a Recruiter from validated settings and OS devices.
func NewRecruiter(s Settings, dev Devices, ledger *store.Ledger, queue *store.Queue) (*Recruiter, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	entry, _ := s.Region(config.RegionTextEntry)

	clock := RealClock{}
	sleeper := RealSleeper{}
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))

	return &Recruiter{
		Settings: s,
		Windows:  dev.Windows,
		Who: &WhoSender{
			Input:    dev.Input,
			Sleeper:  sleeper,
			Clock:    clock,
			Rand:     rng,
			Entry:    entry,
			Cooldown: s.WhoCooldown,
			Delays:   s.Delays,
		},
		Collector: &Collector{
			Capture:      &RegionCapture{Screen: dev.Screen, Upscale: s.Upscale},
			Extractor:    &TextExtractor{OCR: dev.OCR, Allowlist: s.Allowlist, MinConfidence: s.MinConfidence, MinContrast: s.MinContrast},
			Input:        dev.Input,
			Sleeper:      sleeper,
			Rand:         rng,
			Settle:       s.Delays.Settle,
			ScrollClicks: s.ScrollClicks,
		},
		Invites: &InviteDriver{
			Input:   dev.Input,
			Sleeper: sleeper,
			Rand:    rng,
			Prefix:  config.InviteCommandPrefix,
			Delays:  s.Delays,
		},
		Ledger:  ledger,
		Queue:   queue,
		Clock:   clock,
		Sleeper: sleeper,
		Rand:    rng,
		NewID:   uuid.NewString,
	}, nil
}

// FindWindow locates the game window and remembers it for focus checks.
func (r *Recruiter) FindWindow() (Window, error) {
	w, err := r.Windows.Find(r.Settings.WindowTitle)
	if err != nil {
		return Window{}, err
	}

	r.mu.Lock()
	r.window, r.found = w, true
	r.mu.Unlock()

	slog.Debug(config.MsgWindowFound,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyTitle, w.Title,
		config.LogKeyPID, w.PID)
	return w, nil
}

// FocusWindow finds the game window, brings it to the front and waits for the
// activate settle delay.
func (r *Recruiter) FocusWindow(ctx context.Context) error {
	w, err := r.FindWindow()
	if err != nil {
		return err
	}
	if err := r.Windows.Activate(w); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWindowActivate, err)
	}
	slog.Debug(config.MsgWindowActivated,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyPID, w.PID)
	return r.Sleeper.Sleep(ctx, r.Settings.Delays.Activate)
}

// IsGameFocused reports whether the last located game window owns focus.
// Before any window was found it reports false.
func (r *Recruiter) IsGameFocused() bool {
	r.mu.Lock()
	w, ok := r.window, r.found
	r.mu.Unlock()
	return ok && r.Windows.IsForeground(w)
}

// CooldownRemaining reports how long until /who may be sent again.
func (r *Recruiter) CooldownRemaining() time.Duration {
	return r.Who.Remaining()
}

// Candidates returns the captured names not yet processed on date, sorted.
func (r *Recruiter) Candidates(names NameSet, date string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names.Sorted() {
		if !r.Ledger.IsProcessed(n, date) {
			out = append(out, n)
		}
	}
	return out
}

// RunCycle performs one recruitment pass for bracket b. A leftover queue from
// an interrupted run is drained first and no /who is sent in that cycle.
// Capture and OCR problems only shrink the candidate list; the returned
// error is reserved for a missing window, a refused or failed /who,
// cancellation and queue persistence.
func (r *Recruiter) RunCycle(ctx context.Context, b Bracket, proceed func() bool) (CycleReport, error) {
	rep := CycleReport{ID: r.NewID(), Bracket: b, Date: Today(r.Clock)}
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCycle, rep.ID,
		config.LogKeyRange, b.String(),
	)
	log.Info(config.MsgCycleStart)

	if err := r.FocusWindow(ctx); err != nil {
		return rep, err
	}

	if n := r.Queue.Len(); n > 0 {
		rep.Resumed = true
		rep.Queued = n
		log.Info(config.MsgQueueResume, config.LogKeyQueued, n)
		return r.drain(ctx, rep, proceed, log)
	}

	if err := r.Who.Send(ctx, b); err != nil {
		return rep, err
	}
	if err := r.Sleeper.Sleep(ctx, r.Settings.Delays.WhoResults.Pick(r.Rand)); err != nil {
		return rep, err
	}

	namesRect, _ := r.Settings.Region(config.RegionNames)
	scrollRect, _ := r.Settings.Region(config.RegionScroll)
	names, err := r.Collector.CollectNames(ctx, namesRect, scrollRect, r.Settings.ScrollSteps)
	if err != nil {
		return rep, err
	}
	rep.Captured = len(names)

	pending := r.Candidates(names, rep.Date)
	if err := r.Queue.Replace(pending); err != nil {
		return rep, err
	}
	rep.Queued = len(pending)
	log.Info(config.MsgQueueBuilt,
		config.LogKeyCount, rep.Captured,
		config.LogKeyQueued, rep.Queued)

	return r.drain(ctx, rep, proceed, log)
}

func (r *Recruiter) drain(ctx context.Context, rep CycleReport, proceed func() bool, log *slog.Logger) (CycleReport, error) {
	start := r.Clock.Now()
	inv, err := r.Invites.ProcessQueue(ctx, r.Queue, r.Ledger, rep.Date, proceed)
	rep.Invites = inv
	if err != nil {
		return rep, err
	}

	log.Info(config.MsgCycleDone,
		config.LogKeyInvited, len(inv.Invited),
		config.LogKeySkipped, len(inv.Skipped),
		config.LogKeyFailed, len(inv.Failed),
		config.LogKeyDuration, r.Clock.Now().Sub(start).Milliseconds())
	return rep, nil
}
