package domain

import "time"

// Clock supplies the current time. Every component that needs "now" takes a
// Clock so tests can pin it; nothing reads time.Now directly outside
// SystemClock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant. Test helper.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Today returns the clock's current calendar date in normalized form.
func Today(clock Clock) string {
	return clock.Now().Format(DateLayout)
}
