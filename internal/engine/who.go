package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tartampluch/guild-recruiter/internal/config"
)

// WhoSender issues the /who query through the chat box. The server throttles
// /who, so consecutive sends are spaced by Cooldown.
type WhoSender struct {
	Input    InputDriver
	Sleeper  Sleeper
	Clock    Clock
	Rand     *rand.Rand
	Entry    Rect // Chat text-entry box.
	Cooldown time.Duration
	Delays   Delays

	mu   sync.Mutex
	last time.Time
}

// Remaining returns how long until the next /who is allowed.
func (w *WhoSender) Remaining() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.remainingLocked()
}

func (w *WhoSender) remainingLocked() time.Duration {
	if w.last.IsZero() {
		return 0
	}
	left := w.Cooldown - w.Clock.Now().Sub(w.last)
	return max(left, 0)
}

// Send clicks the chat entry, types "/who <bracket>" and submits it. It
// returns ErrWhoCooldown without touching the input devices while the
// cooldown runs.
func (w *WhoSender) Send(ctx context.Context, b Bracket) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	log := slog.With(config.LogKeyComponent, config.CompWho, config.LogKeyRange, b.String())

	if left := w.remainingLocked(); left > 0 {
		log.Debug(config.MsgWhoWait, config.LogKeyWait, left.String())
		return fmt.Errorf("%w: %s left", ErrWhoCooldown, left.Round(time.Second))
	}

	x := w.Entry.Left + config.TextEntryClickOffset
	y := (w.Entry.Top + w.Entry.Bottom) / 2
	w.Input.Click(x, y)
	if err := w.Sleeper.Sleep(ctx, w.Delays.WhoClick.Pick(w.Rand)); err != nil {
		return err
	}

	if err := w.Input.TypeText(config.WhoCommandPrefix + b.String()); err != nil {
		return fmt.Errorf("%w: %w", ErrWho, err)
	}
	if err := w.Sleeper.Sleep(ctx, w.Delays.WhoType.Pick(w.Rand)); err != nil {
		return err
	}
	if err := w.Input.KeyTap(config.KeyEnter); err != nil {
		return fmt.Errorf("%w: %w", ErrWho, err)
	}

	w.last = w.Clock.Now()
	log.Info(config.MsgWhoSent)
	return nil
}
