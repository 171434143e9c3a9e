package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotLoaded       = errors.New("emission factor table not loaded")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptySubtype    = errors.New("empty subtype")
	ErrZeroTime        = errors.New("occurrence time cannot be zero")
	ErrFutureTime      = errors.New("occurrence time is in the future")
	ErrMissingID       = errors.New("activity has no id")
)

// LoadError reports a missing or malformed emission factor source.
// Index is the offending record, or -1 when the source as a whole is bad.
type LoadError struct {
	Source string
	Index  int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("load emission factors from %s: record %d: %v", e.Source, e.Index, e.Err)
	}
	return fmt.Sprintf("load emission factors from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// StoreError wraps a failure of the underlying storage engine.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ValidationError reports a caller-supplied activity that breaks an invariant.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
