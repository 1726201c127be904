// Package state holds the process-wide simulation registry: the current
// simulated day, the configured run horizon, and the calendar constants
// every other component reads.
//
// The registry is an explicitly constructed object shared by pointer, not
// a package-level global. Exactly one instance exists per run; the driver
// writes it and collaborators read it. All methods are safe for concurrent
// use, which is what a later parallel per-day implementation relies on.
package state

import (
	"fmt"
	"sync"

	"github.com/daysim/daysim/internal/constants"
)

// Registry is the single source of truth for simulation-wide scalars.
type Registry struct {
	mu          sync.RWMutex
	currentDay  int
	totalDays   int
	daysPerWeek int
	adultAge    int
	initialized bool
}

// NewRegistry creates an uninitialized registry. Accessors return zero
// values until Initialize is called.
func NewRegistry() *Registry {
	return &Registry{}
}

// Initialize configures the registry from opts and resets the current day
// to zero. It may be called exactly once; reinitializing after a run has
// started is a usage error and fails without touching the registry.
func (r *Registry) Initialize(opts Options) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("initialize registry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return fmt.Errorf("initialize registry: %w", ErrAlreadyInitialized)
	}

	r.totalDays = opts.TotalDays
	r.daysPerWeek = opts.DaysPerWeek
	r.adultAge = opts.AdultAge
	r.currentDay = 0
	r.initialized = true

	return nil
}

// Initialized reports whether Initialize has completed.
func (r *Registry) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

// CurrentDay returns the current simulated day.
func (r *Registry) CurrentDay() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentDay
}

// SetCurrentDay sets the current simulated day. Values outside
// [0, TotalDays] fail with a range violation rather than being clamped;
// the registry is left unchanged on error.
func (r *Registry) SetCurrentDay(day int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return fmt.Errorf("set current day: registry %w", ErrNotInitialized)
	}
	if day < 0 || day > r.totalDays {
		return &RangeError{Day: day, TotalDays: r.totalDays}
	}

	r.currentDay = day
	return nil
}

// TotalDays returns the configured run horizon. The half-open day range
// [0, TotalDays) is the set of days the driver will run.
func (r *Registry) TotalDays() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.totalDays
}

// DaysPerWeek returns the calendar constant set at initialization.
func (r *Registry) DaysPerWeek() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.daysPerWeek
}

// AdultAge returns the adulthood age threshold set at initialization.
func (r *Registry) AdultAge() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adultAge
}

// Options configure a registry. The zero value is not valid; use
// DefaultOptions or OptionsFromMap to get defaults applied.
type Options struct {
	// TotalDays is the run horizon; must be positive.
	TotalDays int

	// DaysPerWeek is the number of simulated days per calendar week.
	DaysPerWeek int

	// AdultAge is the age threshold marking adulthood.
	AdultAge int
}

// DefaultOptions returns options with every field at its default.
func DefaultOptions() Options {
	return Options{
		TotalDays:   constants.DefaultTotalDays,
		DaysPerWeek: constants.DefaultDaysPerWeek,
		AdultAge:    constants.DefaultAdultAge,
	}
}

// Validate checks that all option values are in range.
func (o Options) Validate() error {
	if o.TotalDays <= 0 {
		return fmt.Errorf("total_days must be positive, got %d", o.TotalDays)
	}
	if o.DaysPerWeek <= 0 {
		return fmt.Errorf("days_per_week must be positive, got %d", o.DaysPerWeek)
	}
	if o.AdultAge < 0 {
		return fmt.Errorf("adult_age must be non-negative, got %d", o.AdultAge)
	}
	return nil
}

// OptionsFromMap builds Options from a mapping of option name to value,
// applying defaults for any option not supplied. Recognized keys are
// "total_days", "days_per_week" and "adult_age"; unknown keys and
// non-integer values are rejected.
func OptionsFromMap(m map[string]any) (Options, error) {
	opts := DefaultOptions()

	for key, raw := range m {
		val, ok := asInt(raw)
		if !ok {
			return Options{}, fmt.Errorf("option %q: expected integer, got %T", key, raw)
		}
		switch key {
		case "total_days":
			opts.TotalDays = val
		case "days_per_week":
			opts.DaysPerWeek = val
		case "adult_age":
			opts.AdultAge = val
		default:
			return Options{}, fmt.Errorf("unknown option %q", key)
		}
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// asInt accepts the integer representations a YAML or JSON decoder may
// hand us for a whole number.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}
