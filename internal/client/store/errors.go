package store

import (
	"errors"
	"fmt"
)

// Common document store errors
var (
	// ErrNotFound indicates that no document with the given id exists
	ErrNotFound = errors.New("document not found")

	// ErrStoreClosed indicates that the store is closed
	ErrStoreClosed = errors.New("store is closed")

	// ErrAlreadyBuffering indicates that a change buffer is already open
	ErrAlreadyBuffering = errors.New("change buffer already open")

	// ErrUnknownBuffer indicates a flush for a buffer id that is not open
	ErrUnknownBuffer = errors.New("unknown change buffer id")
)

// ValidationError is returned for a malformed mutation before any
// persistence is attempted: unknown document type, or a parented type
// created without a parentId.
type ValidationError struct {
	DocType string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s document: %s %s", e.DocType, e.Field, e.Reason)
}
