package session

import (
	"context"
	"maps"
	"slices"

	"quizdeck/internal/attemptstore"
	"quizdeck/internal/bank"
	"quizdeck/internal/question"
	"quizdeck/internal/scoring"
)

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Ref identifies the bank this attempt is for.
func (c *Controller) Ref() bank.Ref { return c.ref }

// Err returns the load error of a Failed session.
func (c *Controller) Err() error { return c.err }

// AttemptID identifies this attempt in logs and results.
func (c *Controller) AttemptID() string { return c.attemptID }

// Bank returns the loaded bank.
func (c *Controller) Bank() question.Bank { return c.bank }

// Order returns the presentation order as indexes into the bank.
func (c *Controller) Order() []int { return slices.Clone(c.order) }

// Position returns the current index into the presentation order.
func (c *Controller) Position() int { return c.position }

// Timer returns the countdown.
func (c *Controller) Timer() Timer { return c.timer }

// Pending returns the saved progress offered for resume.
func (c *Controller) Pending() attemptstore.Snapshot { return c.pending }

// Current returns the question at the current position.
func (c *Controller) Current() (question.Question, bool) {
	return c.questionAt(c.position)
}

// PreviewPosition returns the index shown while previewing.
func (c *Controller) PreviewPosition() int { return c.previewPos }

// PreviewCurrent returns the question shown while previewing.
func (c *Controller) PreviewCurrent() (question.Question, bool) {
	return c.questionAt(c.previewPos)
}

// Answer returns the recorded answer for a question id.
func (c *Controller) Answer(id string) (question.Answer, bool) {
	answer, ok := c.answers[id]
	return answer, ok
}

// Flagged reports whether a question is flagged.
func (c *Controller) Flagged(id string) bool { return c.flags[id] }

// Checked returns the checked result for a question id.
func (c *Controller) Checked(id string) (correct bool, ok bool) {
	correct, ok = c.checked[id]
	return correct, ok
}

// Snapshot returns a copy of the attempt in its persisted shape.
func (c *Controller) Snapshot() attemptstore.Snapshot {
	return attemptstore.Snapshot{
		Answers:       maps.Clone(c.answers),
		Flags:         maps.Clone(c.flags),
		Checked:       maps.Clone(c.checked),
		TimeRemaining: c.timer.Remaining(),
		HasTime:       true,
		Position:      c.position,
		HasPosition:   c.savePos,
		Completed:     c.state == StateCompleted,
	}
}

func (c *Controller) questionAt(pos int) (question.Question, bool) {
	if pos < 0 || pos >= len(c.order) {
		return question.Question{}, false
	}
	return c.bank.Questions[c.order[pos]], true
}

// Next advances one question. Past the last question it asks to finish.
func (c *Controller) Next(ctx context.Context) error {
	if c.state != StateActive {
		return invalid("next", "not available in %s", c.state)
	}
	if c.position >= len(c.order)-1 {
		return c.RequestFinish()
	}
	c.position++
	c.savePosition(ctx)
	return nil
}

// Prev moves back one question.
func (c *Controller) Prev(ctx context.Context) error {
	if c.state != StateActive {
		return invalid("prev", "not available in %s", c.state)
	}
	if c.position == 0 {
		return invalid("prev", "already at the first question")
	}
	c.position--
	c.savePosition(ctx)
	return nil
}

// Jump moves to any position in the presentation order.
func (c *Controller) Jump(ctx context.Context, pos int) error {
	if c.state != StateActive {
		return invalid("jump", "not available in %s", c.state)
	}
	if pos < 0 || pos >= len(c.order) {
		return invalid("jump", "position %d out of range", pos)
	}
	c.position = pos
	c.savePosition(ctx)
	return nil
}

// SelectOption picks an option on the current question. Single-select
// questions replace the selection; multi-select questions toggle the key.
func (c *Controller) SelectOption(ctx context.Context, key string) error {
	q, err := c.answerable("select option")
	if err != nil {
		return err
	}
	if q.IsFreeText() {
		return invalid("select option", "question %s takes free text", q.ID)
	}
	if q.OptionIndex(key) < 0 {
		return invalid("select option", "question %s has no option %q", q.ID, key)
	}
	answer := question.Choice(key)
	if q.IsMultiSelect() {
		answer = c.answers[q.ID].Toggle(key)
	}
	c.record(ctx, q.ID, answer)
	return nil
}

// SelectIndex picks the option at a zero-based index.
func (c *Controller) SelectIndex(ctx context.Context, index int) error {
	q, ok := c.Current()
	if !ok || index < 0 || index >= len(q.Options) {
		return invalid("select option", "no option at %d", index+1)
	}
	return c.SelectOption(ctx, q.Options[index].Key)
}

// SetText records a free-text response for the current question. Blank text
// removes the answer.
func (c *Controller) SetText(ctx context.Context, text string) error {
	q, err := c.answerable("set text")
	if err != nil {
		return err
	}
	if !q.IsFreeText() {
		return invalid("set text", "question %s takes options", q.ID)
	}
	c.record(ctx, q.ID, question.Text(text))
	return nil
}

func (c *Controller) answerable(op string) (question.Question, error) {
	if c.state != StateActive {
		return question.Question{}, invalid(op, "not available in %s", c.state)
	}
	q, _ := c.Current()
	if _, done := c.checked[q.ID]; done {
		return question.Question{}, invalid(op, "question %s already checked", q.ID)
	}
	return q, nil
}

func (c *Controller) record(ctx context.Context, id string, answer question.Answer) {
	if answer.IsEmpty() {
		delete(c.answers, id)
	} else {
		c.answers[id] = answer
	}
	c.logWrite(attemptstore.FieldAnswers, c.store.SaveAnswers(ctx, c.namespace(), c.answers))
}

// ToggleFlag flips the review flag of the current question. Checked
// questions can still be flagged.
func (c *Controller) ToggleFlag(ctx context.Context) error {
	if c.state != StateActive {
		return invalid("toggle flag", "not available in %s", c.state)
	}
	q, _ := c.Current()
	if c.flags[q.ID] {
		delete(c.flags, q.ID)
	} else {
		c.flags[q.ID] = true
	}
	c.logWrite(attemptstore.FieldFlags, c.store.SaveFlags(ctx, c.namespace(), c.flags))
	return nil
}

// Check scores the current answer once. It returns whether it was correct.
func (c *Controller) Check(ctx context.Context) (bool, error) {
	q, err := c.answerable("check")
	if err != nil {
		return false, err
	}
	answer, ok := c.answers[q.ID]
	if !ok || answer.IsEmpty() {
		return false, invalid("check", "question %s has no answer", q.ID)
	}
	correct := scoring.IsCorrect(q, &answer)
	c.checked[q.ID] = correct
	c.logWrite(attemptstore.FieldChecked, c.store.SaveChecked(ctx, c.namespace(), c.checked))
	return correct, nil
}

// MarkNoAnswer records an explicit skip and checks the question as incorrect,
// replacing any answer in progress.
func (c *Controller) MarkNoAnswer(ctx context.Context) error {
	q, err := c.answerable("mark no answer")
	if err != nil {
		return err
	}
	c.answers[q.ID] = question.Skipped()
	c.checked[q.ID] = false
	c.logWrite(attemptstore.FieldAnswers, c.store.SaveAnswers(ctx, c.namespace(), c.answers))
	c.logWrite(attemptstore.FieldChecked, c.store.SaveChecked(ctx, c.namespace(), c.checked))
	return nil
}

func (c *Controller) savePosition(ctx context.Context) {
	if !c.savePos {
		return
	}
	c.logWrite(attemptstore.FieldPosition, c.store.SavePosition(ctx, c.namespace(), c.position))
}
