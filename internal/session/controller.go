// Package session owns the lifecycle of one quiz attempt: resume decisions,
// the answer/flag/check loop, the countdown, finishing and leave guarding.
// A Controller is driven from a single goroutine.
package session

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"quizdeck/internal/attemptstore"
	"quizdeck/internal/bank"
	"quizdeck/internal/question"
	"quizdeck/internal/scoring"
)

// Options configures a Controller.
type Options struct {
	// Store persists attempt state. Required.
	Store *attemptstore.Store
	// SecondsPerQuestion sizes the countdown; zero or less runs untimed.
	SecondsPerQuestion int
	// PersistPosition saves and restores the current index.
	PersistPosition bool
	Rand            *rand.Rand
	Logger          *slog.Logger
	Observer        Observer
	Now             func() time.Time
}

// Controller is the single authoritative holder of an attempt's state.
type Controller struct {
	ref       bank.Ref
	store     *attemptstore.Store
	logger    *slog.Logger
	observer  Observer
	rng       *rand.Rand
	now       func() time.Time
	perQ      int
	savePos   bool
	attemptID string

	state State
	err   error
	bank  question.Bank
	index map[string]int
	order []int

	answers  map[string]question.Answer
	flags    map[string]bool
	checked  map[string]bool
	position int
	timer    Timer

	pending      attemptstore.Snapshot
	previewFrom  State
	previewPos   int
	leaveFrom    State
	finishReason Reason
	resultsSent  bool
}

// New returns an Uninitialized controller for ref.
func New(ref bank.Ref, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	store := opts.Store
	if store == nil {
		store = attemptstore.New(attemptstore.NewMemory(), logger)
	}
	attemptID := uuid.NewString()
	return &Controller{
		ref:       ref,
		store:     store,
		logger:    logger.With("bank_id", ref.BankID, "attempt_id", attemptID),
		observer:  observer,
		rng:       rng,
		now:       now,
		perQ:      opts.SecondsPerQuestion,
		savePos:   opts.PersistPosition,
		attemptID: attemptID,
		state:     StateUninitialized,
		answers:   map[string]question.Answer{},
		flags:     map[string]bool{},
		checked:   map[string]bool{},
		timer:     UntimedTimer(),
	}
}

// Load fetches the bank and applies Begin or Fail. It is the only blocking
// step of a session.
func (c *Controller) Load(ctx context.Context, loader bank.Loader) error {
	b, err := loader.Load(ctx, c.ref)
	if err != nil {
		c.Fail(err)
		return err
	}
	return c.Begin(ctx, b)
}

// Begin starts the session with a loaded bank. Saved progress leads to
// StateOfferingResume; otherwise a fresh attempt starts in StateActive.
func (c *Controller) Begin(ctx context.Context, b question.Bank) error {
	if c.state != StateUninitialized {
		return invalid("begin", "session already %s", c.state)
	}
	c.bank = b
	c.index = make(map[string]int, len(b.Questions))
	for i, q := range b.Questions {
		c.index[q.ID] = i
	}
	if len(b.Questions) == 0 {
		c.transition(StateEmpty, ReasonLoaded)
		return nil
	}

	snapshot := c.store.Load(ctx, c.namespace())
	if snapshot.Completed {
		c.logger.Info("clearing completed attempt left in store")
		c.clearStore(ctx)
		snapshot = attemptstore.Snapshot{}
	}
	c.order = c.rng.Perm(len(b.Questions))
	if snapshot.HasProgress() {
		c.pending = snapshot
		c.transition(StateOfferingResume, ReasonSaved)
		return nil
	}
	c.startFresh(snapshot, ReasonNoSaved)
	return nil
}

// Fail records a bank load error.
func (c *Controller) Fail(err error) {
	if c.state != StateUninitialized {
		return
	}
	c.err = err
	c.logger.Error("bank load failed", "error", err)
	c.transition(StateFailed, ReasonLoadError)
}

// startFresh enters Active with empty maps. A persisted, unexpired timer is
// honored even when nothing else was saved.
func (c *Controller) startFresh(snapshot attemptstore.Snapshot, reason Reason) {
	c.answers = map[string]question.Answer{}
	c.flags = map[string]bool{}
	c.checked = map[string]bool{}
	c.position = 0
	c.timer = c.freshTimer()
	if !c.timer.Untimed() && snapshot.HasTime && snapshot.TimeRemaining > 0 {
		c.timer = NewTimer(snapshot.TimeRemaining)
	}
	c.pending = attemptstore.Snapshot{}
	c.transition(StateActive, reason)
}

func (c *Controller) freshTimer() Timer {
	if c.perQ <= 0 {
		return UntimedTimer()
	}
	return NewTimer(c.perQ * len(c.bank.Questions))
}

// Continue adopts the saved progress verbatim and enters Active.
func (c *Controller) Continue(ctx context.Context) error {
	if c.state != StateOfferingResume {
		return invalid("continue", "no saved progress offered in %s", c.state)
	}
	saved := c.pending
	c.answers = map[string]question.Answer{}
	for id, answer := range saved.Answers {
		if c.known(id) {
			c.answers[id] = answer
		}
	}
	c.flags = map[string]bool{}
	for id, flagged := range saved.Flags {
		if flagged && c.known(id) {
			c.flags[id] = true
		}
	}
	c.checked = map[string]bool{}
	for id, correct := range saved.Checked {
		if c.known(id) {
			c.checked[id] = correct
		}
	}
	c.position = 0
	if c.savePos && saved.HasPosition && saved.Position < len(c.order) {
		c.position = saved.Position
	}
	c.timer = c.freshTimer()
	if !c.timer.Untimed() && saved.HasTime && saved.TimeRemaining != attemptstore.Untimed {
		c.timer = NewTimer(saved.TimeRemaining)
	}
	c.pending = attemptstore.Snapshot{}
	c.transition(StateActive, ReasonContinue)
	if c.timer.Expired() {
		c.complete(ctx, ReasonTimeout)
	}
	return nil
}

// Discard clears the saved progress and starts fresh with a new order.
func (c *Controller) Discard(ctx context.Context) error {
	if c.state != StateOfferingResume {
		return invalid("discard", "no saved progress offered in %s", c.state)
	}
	c.clearStore(ctx)
	c.order = c.rng.Perm(len(c.bank.Questions))
	c.logger.Info("discarded saved attempt")
	c.startFresh(attemptstore.Snapshot{}, ReasonDiscard)
	return nil
}

// CancelResume leaves without deciding; the saved progress stays untouched.
func (c *Controller) CancelResume() error {
	if c.state != StateOfferingResume {
		return invalid("cancel resume", "no saved progress offered in %s", c.state)
	}
	c.transition(StateClosed, ReasonLeave)
	return nil
}

// Preview pages read-only through the presentation order. It opens from
// OfferingResume at the first question and from Active at the current one.
func (c *Controller) Preview() error {
	switch c.state {
	case StateOfferingResume:
		c.previewPos = 0
	case StateActive:
		c.previewPos = c.position
	default:
		return invalid("preview", "not available in %s", c.state)
	}
	c.previewFrom = c.state
	c.transition(StatePreviewing, ReasonPreview)
	return nil
}

// PreviewNext moves the preview forward, stopping at the last question.
func (c *Controller) PreviewNext() error {
	if c.state != StatePreviewing {
		return invalid("preview next", "not previewing")
	}
	if c.previewPos < len(c.order)-1 {
		c.previewPos++
	}
	return nil
}

// PreviewPrev moves the preview back, stopping at the first question.
func (c *Controller) PreviewPrev() error {
	if c.state != StatePreviewing {
		return invalid("preview prev", "not previewing")
	}
	if c.previewPos > 0 {
		c.previewPos--
	}
	return nil
}

// ClosePreview returns to the state the preview was opened from.
func (c *Controller) ClosePreview() error {
	if c.state != StatePreviewing {
		return invalid("close preview", "not previewing")
	}
	c.transition(c.previewFrom, ReasonCancel)
	return nil
}

// Results returns the outcome of a completed attempt.
func (c *Controller) Results() (Results, error) {
	if c.state != StateCompleted {
		return Results{}, invalid("results", "attempt is %s", c.state)
	}
	return Results{
		AttemptID: c.attemptID,
		BankID:    c.bank.ID,
		BankName:  c.bank.Name,
		Reason:    c.finishReason,
		Summary:   c.Summary(),
		Finished:  c.now(),
	}, nil
}

// EnterResults clears the persisted attempt and emits the results signal.
// Repeated calls are no-ops.
func (c *Controller) EnterResults(ctx context.Context) error {
	results, err := c.Results()
	if err != nil {
		return err
	}
	if c.resultsSent {
		return nil
	}
	c.clearStore(ctx)
	c.resultsSent = true
	c.logger.Info("attempt results",
		"correct", results.Summary.Correct,
		"incorrect", results.Summary.Incorrect,
		"percentage", results.Summary.Percentage,
		"grade", results.Summary.Grade,
	)
	c.observer.OnResults(results)
	return nil
}

// Summary scores the checked results so far.
func (c *Controller) Summary() scoring.Summary {
	return scoring.Summarize(len(c.bank.Questions), c.checked)
}

func (c *Controller) transition(to State, reason Reason) {
	from := c.state
	c.state = to
	c.logger.Debug("session transition", "from", from.String(), "to", to.String(), "reason", string(reason))
	c.observer.OnTransition(Transition{From: from, To: to, Reason: reason})
}

func (c *Controller) namespace() string {
	return c.ref.BankID
}

func (c *Controller) known(id string) bool {
	_, ok := c.index[id]
	return ok
}

func (c *Controller) clearStore(ctx context.Context) {
	if err := c.store.Clear(ctx, c.namespace()); err != nil {
		c.logger.Error("clear attempt store", "error", err)
	}
}

func (c *Controller) logWrite(field attemptstore.Field, err error) {
	if err != nil {
		c.logger.Error("persist attempt field", "field", string(field), "error", err)
	}
}
