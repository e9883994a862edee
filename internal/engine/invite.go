package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/tartampluch/guild-recruiter/internal/config"
	"github.com/tartampluch/guild-recruiter/internal/store"
)

// Outcome classifies what happened to one queued name.
type Outcome int

const (
	Invited Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Invited:
		return "invited"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the per-name outcome. Err is set only for Failed.
type Result struct {
	Name    string
	Outcome Outcome
	Err     error
}

// Failure pairs a name with the reason its invite did not go through.
type Failure struct {
	Name string
	Err  error
}

// Report aggregates the results of one ProcessQueue call.
type Report struct {
	Invited []string
	Skipped []string
	Failed  []Failure
}

// Processed counts names that left the queue.
func (r Report) Processed() int {
	return len(r.Invited) + len(r.Skipped)
}

func (r *Report) add(res Result) {
	switch res.Outcome {
	case Invited:
		r.Invited = append(r.Invited, res.Name)
	case Skipped:
		r.Skipped = append(r.Skipped, res.Name)
	case Failed:
		r.Failed = append(r.Failed, Failure{Name: res.Name, Err: res.Err})
	}
}

// InviteDriver types guild invites for queued names.
type InviteDriver struct {
	Input   InputDriver
	Sleeper Sleeper
	Rand    *rand.Rand
	Prefix  string // e.g. config.InviteCommandPrefix
	Delays  Delays
}

// ProcessQueue walks the queue front to back. Names already in the ledger
// for date are skipped without any keystroke; others are invited, marked and
// removed. A failed name stays queued and unmarked so the next run retries
// it. proceed is checked before every name; when it returns false the loop
// stops and the rest stays queued. Only context cancellation is returned as
// an error, alongside the partial report.
func (d *InviteDriver) ProcessQueue(ctx context.Context, q *store.Queue, l *store.Ledger, date string, proceed func() bool) (Report, error) {
	var rep Report

	for _, name := range q.Names() {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if proceed != nil && !proceed() {
			slog.Info(config.MsgInviteHalted,
				config.LogKeyComponent, config.CompInvite,
				config.LogKeyQueued, q.Len())
			return rep, nil
		}

		res := d.processOne(ctx, q, l, name, date)
		rep.add(res)

		if res.Outcome != Skipped {
			if err := d.Sleeper.Sleep(ctx, d.Delays.BetweenInvites.Pick(d.Rand)); err != nil {
				return rep, err
			}
		}
	}
	return rep, nil
}

func (d *InviteDriver) processOne(ctx context.Context, q *store.Queue, l *store.Ledger, name, date string) Result {
	log := slog.With(
		config.LogKeyComponent, config.CompInvite,
		config.LogKeyName, name,
	)

	if l.IsProcessed(name, date) {
		if err := q.Remove(name); err != nil {
			log.Error(config.ErrPersistence, config.LogKeyError, err)
		}
		log.Info(config.MsgInviteSkipped)
		return Result{Name: name, Outcome: Skipped}
	}

	if err := d.sendInvite(ctx, name); err != nil {
		log.Error(config.MsgInviteFailed, config.LogKeyError, err)
		return Result{Name: name, Outcome: Failed, Err: err}
	}

	// The invite was typed; persistence errors are logged but do not undo it.
	if err := l.MarkProcessed(name, date); err != nil {
		log.Error(config.ErrPersistence, config.LogKeyError, err)
	}
	if err := q.Remove(name); err != nil {
		log.Error(config.ErrPersistence, config.LogKeyError, err)
	}
	log.Info(config.MsgInviteSent)
	return Result{Name: name, Outcome: Invited}
}

// sendInvite opens the chat line, types the prefix one rune at a time, then
// the name, and submits.
func (d *InviteDriver) sendInvite(ctx context.Context, name string) error {
	if err := d.Input.KeyTap(config.KeyEnter); err != nil {
		return fmt.Errorf("%w: %w", ErrInvite, err)
	}
	if err := d.Sleeper.Sleep(ctx, d.Delays.InviteOpen.Pick(d.Rand)); err != nil {
		return err
	}

	for _, r := range d.Prefix {
		if err := d.Input.TypeText(string(r)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvite, err)
		}
		if err := d.Sleeper.Sleep(ctx, d.Delays.TypeChar); err != nil {
			return err
		}
	}

	if err := d.Input.TypeText(name); err != nil {
		return fmt.Errorf("%w: %w", ErrInvite, err)
	}
	if err := d.Input.KeyTap(config.KeyEnter); err != nil {
		return fmt.Errorf("%w: %w", ErrInvite, err)
	}
	return d.Sleeper.Sleep(ctx, d.Delays.InviteSubmit)
}
