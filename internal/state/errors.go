package state

import (
	"errors"
	"fmt"
)

// ErrAlreadyInitialized is returned when Initialize is called on a
// registry that already completed initialization.
var ErrAlreadyInitialized = errors.New("already initialized")

// ErrNotInitialized is returned when a mutating operation runs before
// Initialize has completed.
var ErrNotInitialized = errors.New("not initialized")

// ErrDayOutOfRange is the sentinel all range violations unwrap to.
var ErrDayOutOfRange = errors.New("day out of range")

// RangeError reports an attempt to write a day outside [0, TotalDays].
type RangeError struct {
	Day       int
	TotalDays int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("day %d out of range [0, %d]", e.Day, e.TotalDays)
}

// Unwrap lets errors.Is match RangeError against ErrDayOutOfRange.
func (e *RangeError) Unwrap() error {
	return ErrDayOutOfRange
}
