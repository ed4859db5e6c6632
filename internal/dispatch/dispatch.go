// Package dispatch maps key presses to session commands, per mode.
package dispatch

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode selects which binding set is live.
type Mode int

const (
	ModeActive Mode = iota
	ModeOfferingResume
	ModePreviewing
	ModeFinishConfirming
	ModeLeaveConfirming
)

func (m Mode) String() string {
	switch m {
	case ModeActive:
		return "active"
	case ModeOfferingResume:
		return "offering_resume"
	case ModePreviewing:
		return "previewing"
	case ModeFinishConfirming:
		return "finish_confirming"
	case ModeLeaveConfirming:
		return "leave_confirming"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Action is what a key press asks the session to do.
type Action int

const (
	ActionNone Action = iota
	ActionNext
	ActionPrev
	ActionToggleFlag
	ActionCheck
	ActionMarkNoAnswer
	ActionOpenPreview
	ActionClosePreview
	ActionRequestFinish
	ActionSelectOption
	ActionFocusInput
	ActionLeave
	ActionContinue
	ActionDiscard
	ActionConfirm
	ActionCancel
)

var actionNames = map[Action]string{
	ActionNone:          "none",
	ActionNext:          "next",
	ActionPrev:          "prev",
	ActionToggleFlag:    "toggle_flag",
	ActionCheck:         "check",
	ActionMarkNoAnswer:  "mark_no_answer",
	ActionOpenPreview:   "open_preview",
	ActionClosePreview:  "close_preview",
	ActionRequestFinish: "request_finish",
	ActionSelectOption:  "select_option",
	ActionFocusInput:    "focus_input",
	ActionLeave:         "leave",
	ActionContinue:      "continue",
	ActionDiscard:       "discard",
	ActionConfirm:       "confirm",
	ActionCancel:        "cancel",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Command is a routed key press. Option is the zero-based option index for
// ActionSelectOption.
type Command struct {
	Action Action
	Option int
}

// KeyMap holds every binding the dispatcher knows.
type KeyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Flag       key.Binding
	Check      key.Binding
	NoAnswer   key.Binding
	Preview    key.Binding
	Finish     key.Binding
	Options    key.Binding
	FocusInput key.Binding
	Leave      key.Binding

	Continue key.Binding
	Discard  key.Binding
	Cancel   key.Binding

	ClosePreview key.Binding
	Confirm      key.Binding
	Deny         key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:       key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→/l", "next")),
		Prev:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		Flag:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "flag")),
		Check:      key.NewBinding(key.WithKeys("enter", "c"), key.WithHelp("enter", "check")),
		NoAnswer:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "no answer")),
		Preview:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Finish:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "finish")),
		Options:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "select")),
		FocusInput: key.NewBinding(key.WithKeys("i", "tab"), key.WithHelp("i", "type answer")),
		Leave:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Continue: key.NewBinding(key.WithKeys("c", "enter"), key.WithHelp("c", "continue")),
		Discard:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "start over")),
		Cancel:   key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "leave")),

		ClosePreview: key.NewBinding(key.WithKeys("esc", "p", "q"), key.WithHelp("esc", "close preview")),
		Confirm:      key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("y", "confirm")),
		Deny:         key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n/esc", "cancel")),
	}
}

// Dispatcher routes key presses for the current mode.
type Dispatcher struct {
	keys KeyMap
}

// New returns a Dispatcher using keys.
func New(keys KeyMap) Dispatcher {
	return Dispatcher{keys: keys}
}

// Keys returns the bindings in use.
func (d Dispatcher) Keys() KeyMap {
	return d.keys
}

// Route maps a key press to a command. Nothing fires while a text input has
// focus; the input owns every key then.
func (d Dispatcher) Route(mode Mode, msg tea.KeyMsg, inputFocused bool) Command {
	if inputFocused {
		return Command{}
	}
	k := d.keys
	switch mode {
	case ModeActive:
		switch {
		case key.Matches(msg, k.Next):
			return Command{Action: ActionNext}
		case key.Matches(msg, k.Prev):
			return Command{Action: ActionPrev}
		case key.Matches(msg, k.Flag):
			return Command{Action: ActionToggleFlag}
		case key.Matches(msg, k.Check):
			return Command{Action: ActionCheck}
		case key.Matches(msg, k.NoAnswer):
			return Command{Action: ActionMarkNoAnswer}
		case key.Matches(msg, k.Preview):
			return Command{Action: ActionOpenPreview}
		case key.Matches(msg, k.Finish):
			return Command{Action: ActionRequestFinish}
		case key.Matches(msg, k.Options):
			return Command{Action: ActionSelectOption, Option: int(msg.String()[0] - '1')}
		case key.Matches(msg, k.FocusInput):
			return Command{Action: ActionFocusInput}
		case key.Matches(msg, k.Leave):
			return Command{Action: ActionLeave}
		}
	case ModeOfferingResume:
		switch {
		case key.Matches(msg, k.Continue):
			return Command{Action: ActionContinue}
		case key.Matches(msg, k.Discard):
			return Command{Action: ActionDiscard}
		case key.Matches(msg, k.Preview):
			return Command{Action: ActionOpenPreview}
		case key.Matches(msg, k.Cancel):
			return Command{Action: ActionCancel}
		}
	case ModePreviewing:
		switch {
		case key.Matches(msg, k.Next):
			return Command{Action: ActionNext}
		case key.Matches(msg, k.Prev):
			return Command{Action: ActionPrev}
		case key.Matches(msg, k.ClosePreview):
			return Command{Action: ActionClosePreview}
		}
	case ModeFinishConfirming, ModeLeaveConfirming:
		switch {
		case key.Matches(msg, k.Confirm):
			return Command{Action: ActionConfirm}
		case key.Matches(msg, k.Deny):
			return Command{Action: ActionCancel}
		}
		if mode == ModeFinishConfirming && key.Matches(msg, k.Leave) {
			return Command{Action: ActionLeave}
		}
	}
	return Command{}
}

// Help returns the bindings shown for a mode.
func (d Dispatcher) Help(mode Mode) []key.Binding {
	k := d.keys
	switch mode {
	case ModeActive:
		return []key.Binding{k.Options, k.FocusInput, k.Check, k.NoAnswer, k.Flag, k.Prev, k.Next, k.Preview, k.Finish, k.Leave}
	case ModeOfferingResume:
		return []key.Binding{k.Continue, k.Discard, k.Preview, k.Cancel}
	case ModePreviewing:
		return []key.Binding{k.Prev, k.Next, k.ClosePreview}
	case ModeFinishConfirming, ModeLeaveConfirming:
		return []key.Binding{k.Confirm, k.Deny}
	}
	return nil
}

// HelpKeys adapts a mode's bindings to help.KeyMap.
type HelpKeys struct {
	Bindings []key.Binding
}

// ShortHelp implements help.KeyMap.
func (h HelpKeys) ShortHelp() []key.Binding { return h.Bindings }

// FullHelp implements help.KeyMap.
func (h HelpKeys) FullHelp() [][]key.Binding { return [][]key.Binding{h.Bindings} }
