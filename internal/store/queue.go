package store

import (
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/tartampluch/guild-recruiter/internal/config"
)

// Queue is the ordered list of candidate names awaiting an invite. It is
// persisted after every change so a crash resumes mid-queue.
type Queue struct {
	mu    sync.Mutex
	path  string
	names []string
}

// NewQueue returns an empty queue bound to path.
func NewQueue(path string) *Queue {
	return &Queue{path: path}
}

// OpenQueue loads the queue at path, falling back to an empty queue when the
// file is missing (nil error) or unreadable (error returned for logging).
func OpenQueue(path string) (*Queue, error) {
	q := NewQueue(path)

	var names []string
	if err := readJSON(path, &names); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return q, nil
		}
		slog.Warn(config.MsgPersistFallback,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyFile, path,
			config.LogKeyError, err)
		return q, err
	}
	q.names = names
	return q, nil
}

// Names returns a copy of the queued names in order.
func (q *Queue) Names() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.names...)
}

// Len returns the number of queued names.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.names)
}

// Replace sets the queue contents and persists them.
func (q *Queue) Replace(names []string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.names = append([]string(nil), names...)
	return q.saveLocked()
}

// Remove drops the first occurrence of name and persists the queue. Removing
// an absent name changes nothing and writes nothing.
func (q *Queue) Remove(name string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, n := range q.names {
		if n == name {
			q.names = append(q.names[:i], q.names[i+1:]...)
			return q.saveLocked()
		}
	}
	return nil
}

func (q *Queue) saveLocked() error {
	names := q.names
	if names == nil {
		// Persist "[]" rather than "null".
		names = []string{}
	}
	return writeJSON(q.path, names)
}
