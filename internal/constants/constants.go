// Package constants provides named constants used throughout the daysim codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Calendar constants
const (
	// DefaultDaysPerWeek is the number of simulated days per calendar week.
	DefaultDaysPerWeek = 7

	// DefaultAdultAge is the age threshold at which an agent counts as an adult.
	// Population models read this from the registry; the driver never uses it.
	DefaultAdultAge = 18
)

// Run horizon constants
const (
	// DefaultTotalDays is the run horizon used when no configuration supplies one.
	DefaultTotalDays = 10
)
