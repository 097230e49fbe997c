// Package services contains the business rules of the staffing engine:
// team assignment, the project lifecycle state machine, staff release,
// cost estimation and the indicator batch.
package services

import "time"

// Clock supplies the current time. Production wiring uses SystemClock;
// tests substitute a fixed clock so timestamp logic is deterministic.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now returns f().
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return ClockFunc(time.Now) }
