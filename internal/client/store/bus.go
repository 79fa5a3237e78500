package store

import (
	"github.com/restkeep/restkeep/internal/models"
)

// Action is the kind of change a ChangeEvent describes.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
)

// ChangeEvent is delivered synchronously to every registered listener
// immediately after a successful persistence operation, never before.
// FromSync marks writes applied by the sync client so it can ignore its own
// echoes.
type ChangeEvent struct {
	Doc      *models.Document
	Action   Action
	FromSync bool
}

// Listener receives change events. Listeners run on the mutating caller's
// goroutine; a slow listener delays the write's return.
type Listener func(ChangeEvent)

// Subscribe registers a listener under a key. Registering the same key again
// replaces the previous listener (idempotent registration).
func (s *Store) Subscribe(key string, fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[key] = fn
}

// Unsubscribe removes a listener. Unknown keys are ignored (idempotent).
func (s *Store) Unsubscribe(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, key)
}

// notify queues the event while a buffer is open, otherwise delivers it to a
// snapshot of the current listeners. The snapshot is taken under the lock but
// listeners are invoked outside it, so a listener may re-enter the store.
func (s *Store) notify(event ChangeEvent) {
	s.mu.Lock()
	if s.bufferID != "" {
		s.bufferQueue = append(s.bufferQueue, event)
		s.mu.Unlock()
		return
	}
	targets := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		targets = append(targets, fn)
	}
	s.mu.Unlock()

	for _, fn := range targets {
		fn(event)
	}
}
