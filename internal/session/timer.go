package session

import "quizdeck/internal/attemptstore"

// DefaultSecondsPerQuestion sizes a fresh countdown.
const DefaultSecondsPerQuestion = 120

// Timer is a whole-second countdown. The zero value is expired; use
// NewTimer or UntimedTimer.
type Timer struct {
	remaining int
}

// NewTimer returns a countdown starting at seconds.
func NewTimer(seconds int) Timer {
	return Timer{remaining: max(seconds, 0)}
}

// UntimedTimer returns a timer that never expires.
func UntimedTimer() Timer {
	return Timer{remaining: attemptstore.Untimed}
}

// Untimed reports whether the timer never expires.
func (t Timer) Untimed() bool {
	return t.remaining == attemptstore.Untimed
}

// Remaining returns the seconds left, or attemptstore.Untimed.
func (t Timer) Remaining() int {
	return t.remaining
}

// Expired reports whether a timed countdown reached zero.
func (t Timer) Expired() bool {
	return !t.Untimed() && t.remaining <= 0
}

// Tick removes one second and reports whether the countdown just reached zero.
func (t *Timer) Tick() bool {
	if t.Untimed() || t.remaining <= 0 {
		return false
	}
	t.remaining--
	return t.remaining == 0
}
