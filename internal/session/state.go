package session

import (
	"errors"
	"fmt"
	"time"

	"quizdeck/internal/scoring"
)

// State is a node of the attempt state machine.
type State int

const (
	// StateUninitialized waits for the bank to load and rejects input.
	StateUninitialized State = iota
	// StateFailed means the bank could not be loaded.
	StateFailed
	// StateEmpty means the bank loaded without questions.
	StateEmpty
	// StateOfferingResume asks whether to continue, discard or preview saved progress.
	StateOfferingResume
	// StatePreviewing pages read-only through the presentation order.
	StatePreviewing
	// StateActive is the answer/flag/check loop.
	StateActive
	// StateFinishConfirming asks the user to confirm finishing.
	StateFinishConfirming
	// StateLeaveConfirming blocks a leave request until the user confirms.
	StateLeaveConfirming
	// StateCompleted is terminal; every question has a checked entry.
	StateCompleted
	// StateClosed means the user left; unfinished progress stays persisted.
	StateClosed
)

var stateNames = map[State]string{
	StateUninitialized:    "uninitialized",
	StateFailed:           "failed",
	StateEmpty:            "empty",
	StateOfferingResume:   "offering_resume",
	StatePreviewing:       "previewing",
	StateActive:           "active",
	StateFinishConfirming: "finish_confirming",
	StateLeaveConfirming:  "leave_confirming",
	StateCompleted:        "completed",
	StateClosed:           "closed",
}

// String returns the snake_case name of the state.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrInvalidOperation is returned when an action is not allowed in the
// current state. The controller is left unchanged.
var ErrInvalidOperation = errors.New("invalid operation")

func invalid(op string, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, ErrInvalidOperation, fmt.Sprintf(format, args...))
}

// Reason explains why a transition happened.
type Reason string

const (
	ReasonLoaded    Reason = "loaded"
	ReasonLoadError Reason = "load_error"
	ReasonNoSaved   Reason = "no_saved_progress"
	ReasonSaved     Reason = "saved_progress"
	ReasonContinue  Reason = "continue"
	ReasonDiscard   Reason = "discard"
	ReasonPreview   Reason = "preview"
	ReasonFinish    Reason = "finish"
	ReasonCancel    Reason = "cancel"
	ReasonTimeout   Reason = "timeout"
	ReasonLeave     Reason = "leave"
)

// Transition records a state change.
type Transition struct {
	From   State
	To     State
	Reason Reason
}

// Results is the outcome handed to the results view by EnterResults.
type Results struct {
	AttemptID string
	BankID    string
	BankName  string
	Reason    Reason
	Summary   scoring.Summary
	Finished  time.Time
}

// Observer receives outward events from a controller.
type Observer interface {
	OnTransition(Transition)
	OnResults(Results)
}

type nopObserver struct{}

func (nopObserver) OnTransition(Transition) {}
func (nopObserver) OnResults(Results)    {}
