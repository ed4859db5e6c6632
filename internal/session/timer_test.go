package session

import "testing"

func TestTimerCountsDown(t *testing.T) {
	timer := NewTimer(2)
	if timer.Tick() {
		t.Fatalf("expired after one tick")
	}
	if !timer.Tick() {
		t.Fatalf("expected expiry on second tick")
	}
	if !timer.Expired() || timer.Remaining() != 0 {
		t.Fatalf("unexpected timer %+v", timer)
	}
	if timer.Tick() {
		t.Fatalf("expired timer should not expire again")
	}
}

func TestUntimedTimerNeverExpires(t *testing.T) {
	timer := UntimedTimer()
	for range 10 {
		if timer.Tick() {
			t.Fatalf("untimed timer expired")
		}
	}
	if timer.Expired() || !timer.Untimed() {
		t.Fatalf("unexpected timer %+v", timer)
	}
}

func TestStateNames(t *testing.T) {
	cases := map[State]string{
		StateActive:          "active",
		StateLeaveConfirming: "leave_confirming",
		State(99):            "state(99)",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}
