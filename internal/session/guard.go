package session

import "context"

// Destination is where a leave request wants to go.
type Destination int

const (
	// DestinationExternal leaves the quiz: quit key, Ctrl+C or a signal.
	DestinationExternal Destination = iota
	// DestinationResults follows the normal finish path.
	DestinationResults
)

// Decision is the guard's answer to a leave request.
type Decision int

const (
	// LeaveAllowed means the caller may leave now.
	LeaveAllowed Decision = iota
	// LeaveBlocked means the user must confirm first; the controller is in
	// StateLeaveConfirming.
	LeaveBlocked
)

// RequestLeave decides whether the caller may leave. Leaving an in-progress
// attempt that has at least one answer is blocked until confirmed. Failed and
// empty sessions keep their state so the caller can report it.
func (c *Controller) RequestLeave(ctx context.Context, dest Destination) Decision {
	switch {
	case c.state == StateLeaveConfirming:
		return LeaveBlocked
	case c.state == StateCompleted:
		if dest == DestinationResults {
			if err := c.EnterResults(ctx); err != nil {
				c.logger.Error("enter results", "error", err)
			}
		}
		return LeaveAllowed
	case c.state == StateClosed, c.state == StateFailed, c.state == StateEmpty:
		return LeaveAllowed
	case c.inProgress() && len(c.answers) > 0:
		c.leaveFrom = c.state
		c.transition(StateLeaveConfirming, ReasonLeave)
		return LeaveBlocked
	}
	c.transition(StateClosed, ReasonLeave)
	return LeaveAllowed
}

// ConfirmLeave checkpoints the whole attempt and allows leaving.
func (c *Controller) ConfirmLeave(ctx context.Context) error {
	if c.state != StateLeaveConfirming {
		return invalid("confirm leave", "no leave pending in %s", c.state)
	}
	if err := c.store.Save(ctx, c.namespace(), c.Snapshot()); err != nil {
		c.logger.Error("checkpoint attempt", "error", err)
	}
	c.transition(StateClosed, ReasonLeave)
	return nil
}

// CancelLeave stays in the attempt.
func (c *Controller) CancelLeave() error {
	if c.state != StateLeaveConfirming {
		return invalid("cancel leave", "no leave pending in %s", c.state)
	}
	c.transition(c.leaveFrom, ReasonCancel)
	return nil
}

func (c *Controller) inProgress() bool {
	switch c.state {
	case StateActive, StateFinishConfirming:
		return true
	case StatePreviewing:
		return c.previewFrom == StateActive
	}
	return false
}
