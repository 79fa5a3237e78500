package store

import (
	"strings"

	"github.com/google/uuid"
)

// BufferChangesIndefinitely opens a change buffer: events produced by writes
// are queued instead of delivered until FlushChanges is called with the
// returned id. Only one buffer may be open at a time.
func (s *Store) BufferChangesIndefinitely() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bufferID != "" {
		return "", ErrAlreadyBuffering
	}

	s.bufferID = "buf_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	s.bufferQueue = nil
	return s.bufferID, nil
}

// FlushChanges closes the buffer. With rollback=false the queued events are
// delivered to listeners in their original order. With rollback=true they
// are discarded - note that this does NOT undo the underlying writes; the
// records still exist in the store. Callers that need true rollback must
// delete what they created themselves. The asymmetry is intentional: the
// buffer exists to suppress notification noise during multi-step ingest
// operations that may partially fail, nothing more.
func (s *Store) FlushChanges(bufferID string, rollback bool) error {
	s.mu.Lock()
	if s.bufferID == "" || s.bufferID != bufferID {
		s.mu.Unlock()
		return ErrUnknownBuffer
	}

	queued := s.bufferQueue
	s.bufferID = ""
	s.bufferQueue = nil

	if rollback {
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Debug("discarded buffered change events", "count", len(queued))
		}
		return nil
	}

	targets := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		targets = append(targets, fn)
	}
	s.mu.Unlock()

	// Доставляем в исходном порядке
	for _, event := range queued {
		for _, fn := range targets {
			fn(event)
		}
	}
	return nil
}
