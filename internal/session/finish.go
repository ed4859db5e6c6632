package session

import (
	"context"

	"quizdeck/internal/attemptstore"
	"quizdeck/internal/scoring"
)

// RequestFinish asks the user to confirm finishing the attempt.
func (c *Controller) RequestFinish() error {
	if c.state != StateActive {
		return invalid("finish", "not available in %s", c.state)
	}
	c.transition(StateFinishConfirming, ReasonFinish)
	return nil
}

// ConfirmFinish finalizes the attempt.
func (c *Controller) ConfirmFinish(ctx context.Context) error {
	if c.state != StateFinishConfirming {
		return invalid("confirm finish", "not confirming in %s", c.state)
	}
	c.complete(ctx, ReasonFinish)
	return nil
}

// CancelFinish returns to Active without side effects.
func (c *Controller) CancelFinish() error {
	if c.state != StateFinishConfirming {
		return invalid("cancel finish", "not confirming in %s", c.state)
	}
	c.transition(StateActive, ReasonCancel)
	return nil
}

// Tick advances the countdown by one second while Active, including while a
// leave prompt opened from Active is showing. It reports whether the tick
// expired the timer and completed the attempt.
func (c *Controller) Tick(ctx context.Context) bool {
	if !c.counting() || c.timer.Untimed() {
		return false
	}
	expired := c.timer.Tick()
	c.logWrite(attemptstore.FieldTime, c.store.SaveTime(ctx, c.namespace(), c.timer.Remaining()))
	if expired {
		c.logger.Info("attempt timed out")
		c.complete(ctx, ReasonTimeout)
	}
	return expired
}

func (c *Controller) counting() bool {
	switch c.state {
	case StateActive:
		return true
	case StateLeaveConfirming:
		return c.leaveFrom == StateActive
	}
	return false
}

// complete scores every unchecked question from its current answer,
// persists the whole attempt and enters Completed.
func (c *Controller) complete(ctx context.Context, reason Reason) {
	for _, q := range c.bank.Questions {
		if _, done := c.checked[q.ID]; done {
			continue
		}
		var correct bool
		if answer, ok := c.answers[q.ID]; ok {
			correct = scoring.IsCorrect(q, &answer)
		}
		c.checked[q.ID] = correct
	}
	c.finishReason = reason
	c.transition(StateCompleted, reason)
	if err := c.store.Save(ctx, c.namespace(), c.Snapshot()); err != nil {
		c.logger.Error("persist completed attempt", "error", err)
	}
}
