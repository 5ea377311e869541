package store

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a referenced record is absent.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s record %s not found", e.Collection, e.ID)
	}
	return fmt.Sprintf("%s record not found", e.Collection)
}

// WriteError indicates the store rejected a mutation. Writes are never
// retried; the failure surfaces to the caller as-is.
type WriteError struct {
	Collection string
	ID         string
	Cause      error
}

func (e *WriteError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to write %s record %s: %v", e.Collection, e.ID, e.Cause)
	}
	return fmt.Sprintf("failed to write %s record: %v", e.Collection, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// TransportError indicates a network or provider failure talking to the
// store. It is the only retryable error kind in the taxonomy.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("store transport error during %s: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
