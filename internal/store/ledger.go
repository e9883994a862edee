package store

import (
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/tartampluch/guild-recruiter/internal/config"
)

// Ledger is the do-not-disturb record: for each ISO date, the names already
// handled that day. Names are unique per date and kept in insertion order.
// Historical dates are never expired.
type Ledger struct {
	mu    sync.RWMutex
	path  string
	days  map[string][]string
	index map[string]map[string]struct{}
}

// NewLedger returns an empty ledger bound to path. Nothing is written until
// the first mutation.
func NewLedger(path string) *Ledger {
	return &Ledger{
		path:  path,
		days:  make(map[string][]string),
		index: make(map[string]map[string]struct{}),
	}
}

// OpenLedger loads the ledger at path. The returned ledger is always usable:
// a missing file yields an empty ledger and no error, an unreadable or corrupt
// file yields an empty ledger and the read error for the caller to log.
func OpenLedger(path string) (*Ledger, error) {
	l := NewLedger(path)

	var days map[string][]string
	if err := readJSON(path, &days); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		slog.Warn(config.MsgPersistFallback,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyFile, path,
			config.LogKeyError, err)
		return l, err
	}

	for date, names := range days {
		for _, name := range names {
			l.add(date, name)
		}
	}
	return l, nil
}

// IsProcessed reports whether name was already handled on date.
func (l *Ledger) IsProcessed(name, date string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.index[date][name]
	return ok
}

// MarkProcessed records name under date and persists the ledger. Marking an
// already recorded name is a no-op and does not touch the file.
func (l *Ledger) MarkProcessed(name, date string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.add(date, name) {
		return nil
	}
	return writeJSON(l.path, l.days)
}

// Names returns a copy of the names recorded on date.
func (l *Ledger) Names(date string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.days[date]...)
}

// Count returns the number of names recorded on date.
func (l *Ledger) Count(date string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.days[date])
}

// Snapshot returns a deep copy of the whole ledger.
func (l *Ledger) Snapshot() map[string][]string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string][]string, len(l.days))
	for date, names := range l.days {
		out[date] = append([]string(nil), names...)
	}
	return out
}

// Save writes the ledger unconditionally.
func (l *Ledger) Save() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return writeJSON(l.path, l.days)
}

// add inserts name under date and reports whether the ledger changed.
// Callers must hold the write lock (or own the ledger exclusively).
func (l *Ledger) add(date, name string) bool {
	set, ok := l.index[date]
	if !ok {
		set = make(map[string]struct{})
		l.index[date] = set
	}
	if _, seen := set[name]; seen {
		return false
	}
	set[name] = struct{}{}
	l.days[date] = append(l.days[date], name)
	return true
}
