// Package quiz is the terminal front end of a quiz attempt.
package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"quizdeck/internal/bank"
	"quizdeck/internal/dispatch"
	"quizdeck/internal/question"
	"quizdeck/internal/session"
)

// Model drives a session.Controller from Bubble Tea messages.
type Model struct {
	ctx          context.Context
	ctrl         *session.Controller
	loader       bank.Loader
	dispatcher   dispatch.Dispatcher
	help         help.Model
	input        textinput.Model
	inputFocused bool
	tickInterval time.Duration
	status       string
	width        int
	noColor      bool
	done         bool
}

// Options configures the quiz UI model.
type Options struct {
	NoColor      bool
	TickInterval time.Duration
	Keys         *dispatch.KeyMap
}

// bankLoadedMsg carries the result of the bank fetch.
type bankLoadedMsg struct {
	bank question.Bank
	err  error
}

type tickMsg time.Time

// LeaveMsg asks the model to leave, as if the quit key was pressed. The CLI
// sends it on SIGINT and SIGTERM.
type LeaveMsg struct{}

// NewModel constructs a quiz model. The bank is fetched by Init.
func NewModel(ctx context.Context, ctrl *session.Controller, loader bank.Loader, opts Options) Model {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	keys := dispatch.DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	input := textinput.New()
	input.Placeholder = "type your answer"
	input.CharLimit = 500
	h := help.New()
	if opts.NoColor {
		h.Styles = help.Styles{
			ShortKey:       lipgloss.NewStyle(),
			ShortDesc:      lipgloss.NewStyle(),
			ShortSeparator: lipgloss.NewStyle(),
			Ellipsis:       lipgloss.NewStyle(),
			FullKey:        lipgloss.NewStyle(),
			FullDesc:       lipgloss.NewStyle(),
			FullSeparator:  lipgloss.NewStyle(),
		}
	}
	return Model{
		ctx:          ctx,
		ctrl:         ctrl,
		loader:       loader,
		dispatcher:   dispatch.New(keys),
		help:         h,
		input:        input,
		tickInterval: tickInterval,
		noColor:      opts.NoColor,
	}
}

// Controller returns the session driven by the model.
func (m Model) Controller() *session.Controller {
	return m.ctrl
}

// Init starts the bank fetch and the countdown ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadBank(m.ctx, m.loader, m.ctrl.Ref()), tick(m.tickInterval))
}

func loadBank(ctx context.Context, loader bank.Loader, ref bank.Ref) tea.Cmd {
	return func() tea.Msg {
		b, err := loader.Load(ctx, ref)
		return bankLoadedMsg{bank: b, err: err}
	}
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update applies bank results, ticks and key presses to the controller.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.help.Width = typed.Width
		m.input.Width = max(typed.Width-4, 10)
		return m, nil
	case bankLoadedMsg:
		if typed.err != nil {
			m.ctrl.Fail(typed.err)
			return m, nil
		}
		if err := m.ctrl.Begin(m.ctx, typed.bank); err != nil {
			m.status = err.Error()
		}
		return m, nil
	case tickMsg:
		if m.done {
			return m, nil
		}
		if m.ctrl.Tick(m.ctx) {
			m.blurInput()
			m.status = "Time is up."
		}
		return m, tick(m.tickInterval)
	case LeaveMsg:
		return m.leave()
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.ctrl.State() {
	case session.StateUninitialized, session.StateFailed, session.StateEmpty, session.StateCompleted, session.StateClosed:
		switch msg.String() {
		case "q", "esc", "enter", "ctrl+c":
			return m.leave()
		}
		return m, nil
	}
	if m.inputFocused {
		return m.handleInputKey(msg)
	}
	mode, ok := modeFor(m.ctrl.State())
	if !ok {
		return m, nil
	}
	cmd := m.dispatcher.Route(mode, msg, false)
	if cmd.Action == dispatch.ActionNone {
		return m, nil
	}
	m.status = ""
	return m.apply(mode, cmd)
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.blurInput()
		return m.leave()
	case tea.KeyEsc, tea.KeyTab:
		m.blurInput()
		return m, nil
	case tea.KeyEnter:
		m.blurInput()
		return m.apply(dispatch.ModeActive, dispatch.Command{Action: dispatch.ActionCheck})
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		if err := m.ctrl.SetText(m.ctx, value); err != nil {
			m.status = err.Error()
		}
	}
	return m, cmd
}

func (m Model) apply(mode dispatch.Mode, cmd dispatch.Command) (tea.Model, tea.Cmd) {
	var err error
	switch mode {
	case dispatch.ModeActive:
		switch cmd.Action {
		case dispatch.ActionNext:
			err = m.ctrl.Next(m.ctx)
		case dispatch.ActionPrev:
			err = m.ctrl.Prev(m.ctx)
		case dispatch.ActionToggleFlag:
			err = m.ctrl.ToggleFlag(m.ctx)
		case dispatch.ActionCheck:
			var correct bool
			if correct, err = m.ctrl.Check(m.ctx); err == nil {
				m.status = checkLabel(correct)
			}
		case dispatch.ActionMarkNoAnswer:
			err = m.ctrl.MarkNoAnswer(m.ctx)
		case dispatch.ActionOpenPreview:
			err = m.ctrl.Preview()
		case dispatch.ActionRequestFinish:
			err = m.ctrl.RequestFinish()
		case dispatch.ActionSelectOption:
			err = m.ctrl.SelectIndex(m.ctx, cmd.Option)
		case dispatch.ActionFocusInput:
			err = m.focusInput()
		case dispatch.ActionLeave:
			return m.leave()
		}
	case dispatch.ModeOfferingResume:
		switch cmd.Action {
		case dispatch.ActionContinue:
			err = m.ctrl.Continue(m.ctx)
		case dispatch.ActionDiscard:
			err = m.ctrl.Discard(m.ctx)
		case dispatch.ActionOpenPreview:
			err = m.ctrl.Preview()
		case dispatch.ActionCancel:
			if err = m.ctrl.CancelResume(); err == nil {
				return m.quit()
			}
		}
	case dispatch.ModePreviewing:
		switch cmd.Action {
		case dispatch.ActionNext:
			err = m.ctrl.PreviewNext()
		case dispatch.ActionPrev:
			err = m.ctrl.PreviewPrev()
		case dispatch.ActionClosePreview:
			err = m.ctrl.ClosePreview()
		}
	case dispatch.ModeFinishConfirming:
		switch cmd.Action {
		case dispatch.ActionConfirm:
			err = m.ctrl.ConfirmFinish(m.ctx)
		case dispatch.ActionCancel:
			err = m.ctrl.CancelFinish()
		case dispatch.ActionLeave:
			return m.leave()
		}
	case dispatch.ModeLeaveConfirming:
		switch cmd.Action {
		case dispatch.ActionConfirm:
			if err = m.ctrl.ConfirmLeave(m.ctx); err == nil {
				return m.quit()
			}
		case dispatch.ActionCancel:
			err = m.ctrl.CancelLeave()
		}
	}
	if err != nil {
		m.status = describeError(err)
	}
	return m, nil
}

func (m Model) leave() (tea.Model, tea.Cmd) {
	dest := session.DestinationExternal
	if m.ctrl.State() == session.StateCompleted {
		dest = session.DestinationResults
	}
	if m.ctrl.RequestLeave(m.ctx, dest) == session.LeaveBlocked {
		return m, nil
	}
	return m.quit()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.done = true
	return m, tea.Quit
}

func (m *Model) focusInput() error {
	q, ok := m.ctrl.Current()
	if !ok || !q.IsFreeText() {
		return errors.New("this question has options; press a number")
	}
	if _, checked := m.ctrl.Checked(q.ID); checked {
		return errors.New("this question is already checked")
	}
	value := ""
	if answer, ok := m.ctrl.Answer(q.ID); ok && answer.Kind == question.AnswerText {
		value = answer.Text
	}
	m.input.SetValue(value)
	m.input.Focus()
	m.inputFocused = true
	return nil
}

func (m *Model) blurInput() {
	m.input.Blur()
	m.inputFocused = false
}

// modeFor maps controller states that accept commands to dispatcher modes.
func modeFor(state session.State) (dispatch.Mode, bool) {
	switch state {
	case session.StateActive:
		return dispatch.ModeActive, true
	case session.StateOfferingResume:
		return dispatch.ModeOfferingResume, true
	case session.StatePreviewing:
		return dispatch.ModePreviewing, true
	case session.StateFinishConfirming:
		return dispatch.ModeFinishConfirming, true
	case session.StateLeaveConfirming:
		return dispatch.ModeLeaveConfirming, true
	}
	return 0, false
}
