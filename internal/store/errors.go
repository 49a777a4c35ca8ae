package store

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes store errors for logging and tests.
type ErrorKind string

const (
	// KindValidation marks bad caller arguments caught before submission.
	KindValidation ErrorKind = "validation"
	// KindExecution marks statement failures caught at the dispatcher.
	KindExecution ErrorKind = "execution"
	// KindIO marks file read/write failures (seed document, CSV export).
	KindIO ErrorKind = "io"
)

var errStoreClosed = errors.New("store is closed")

// StoreError is the typed error carried internally. It never crosses the
// facade boundary: the exported methods log it and return a coarse bool or
// nil result.
type StoreError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func newError(kind ErrorKind, op string, err error) *StoreError {
	return &StoreError{Kind: kind, Op: op, Err: err}
}

// IsValidation reports whether err is a validation error.
// Uses errors.As to handle wrapped errors.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsExecution reports whether err is a statement execution error.
func IsExecution(err error) bool { return isKind(err, KindExecution) }

// IsIO reports whether err is a file I/O error.
func IsIO(err error) bool { return isKind(err, KindIO) }

func isKind(err error, kind ErrorKind) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}
