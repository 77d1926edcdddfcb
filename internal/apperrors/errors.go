// Package apperrors classifies the failures surfaced by the store, scheduler,
// review session and remote logger so callers can tell them apart with errors.As.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError is returned for malformed input; nothing was persisted
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps a failed persistence call; the previous state is still authoritative
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// InvalidStateError is returned when the review session receives a transition
// its current state does not allow
type InvalidStateError struct {
	Op    string
	State string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s in state %s", e.Op, e.State)
}

// RemoteLoggingError reports a failed spreadsheet write. Local state is never rolled back.
type RemoteLoggingError struct {
	Action string
	Word   string
	Err    error
}

func (e *RemoteLoggingError) Error() string {
	return fmt.Sprintf("remote logging %s %q failed: %v", e.Action, e.Word, e.Err)
}

func (e *RemoteLoggingError) Unwrap() error { return e.Err }

// Validation builds a ValidationError
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Storage wraps err in a StorageError; nil stays nil
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}

func IsRemoteLogging(err error) bool {
	var target *RemoteLoggingError
	return errors.As(err, &target)
}
