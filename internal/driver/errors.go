package driver

import (
	"errors"
	"fmt"
)

// The three lifecycle failure modes. All are caller-sequencing errors:
// they propagate to the caller, are fatal to the run, and have no retry
// semantics. Match them with errors.Is.
var (
	// ErrOrdering indicates a phase was invoked before its prerequisite
	// phase completed, or after the lifecycle already finished.
	ErrOrdering = errors.New("lifecycle ordering violation")

	// ErrSequence indicates RunDay was called with a day that does not
	// match the registry's current day.
	ErrSequence = errors.New("day sequence violation")

	// ErrRange indicates RunDay was called more times than the run horizon
	// allows.
	ErrRange = errors.New("day range violation")
)

// OrderingError reports an operation invoked in the wrong phase.
type OrderingError struct {
	Op    string // operation attempted, e.g. "setup"
	Phase Phase  // phase the driver was in
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("%s called in phase %s: %v", e.Op, e.Phase, ErrOrdering)
}

func (e *OrderingError) Unwrap() error { return ErrOrdering }

// SequenceError reports a RunDay call whose day argument does not match
// the current day.
type SequenceError struct {
	Day        int // day the caller passed
	CurrentDay int // day the registry expected
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("run day %d: expected day %d: %v", e.Day, e.CurrentDay, ErrSequence)
}

func (e *SequenceError) Unwrap() error { return ErrSequence }

// RangeError reports a RunDay call past the end of the run horizon.
type RangeError struct {
	Day       int // day the caller passed
	TotalDays int // configured horizon
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("run day %d: horizon of %d days exhausted: %v", e.Day, e.TotalDays, ErrRange)
}

func (e *RangeError) Unwrap() error { return ErrRange }
