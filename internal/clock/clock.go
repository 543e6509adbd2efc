// Package clock provides an abstraction for time operations to improve
// testability. Instead of calling time.Now() directly, code can use the Clock
// interface which can be mocked in tests to control time-dependent behavior
// such as archival cutoffs and staleness budgets.
package clock

import "time"

// Clock is an interface for time operations.
// This allows code to be tested with mock clocks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Ensure RealClock implements Clock.
var _ Clock = RealClock{}

// Fixed implements Clock with a settable time, for tests that need to age
// tasks past retention or staleness cutoffs.
type Fixed struct {
	current time.Time
}

// NewFixed creates a Fixed clock pinned to t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{current: t}
}

// Now returns the pinned time.
func (f *Fixed) Now() time.Time {
	return f.current
}

// Advance moves the pinned time forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}

// Set pins the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.current = t
}

// Ensure Fixed implements Clock.
var _ Clock = (*Fixed)(nil)
