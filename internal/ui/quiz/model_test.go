package quiz

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"quizdeck/internal/attemptstore"
	"quizdeck/internal/bank"
	"quizdeck/internal/question"
	"quizdeck/internal/session"
)

type stubLoader struct {
	bank question.Bank
	err  error
}

func (s stubLoader) Load(context.Context, bank.Ref) (question.Bank, error) {
	return s.bank, s.err
}

func testBank() question.Bank {
	return question.Bank{
		ID:   "colors",
		Name: "Colors",
		Questions: []question.Question{
			{
				ID:   "sky",
				Text: "Color of the sky?",
				Options: []question.Option{
					{Key: "a", Text: "Blue"},
					{Key: "b", Text: "Green"},
				},
				CorrectAnswers: []string{"a"},
			},
		},
	}
}

func textBank() question.Bank {
	return question.Bank{
		ID:   "words",
		Name: "Words",
		Questions: []question.Question{
			{ID: "opposite", Text: "Opposite of hot?", CorrectAnswers: []string{"cold"}},
		},
	}
}

func newTestModel(t *testing.T, b question.Bank, store *attemptstore.Store) Model {
	t.Helper()
	ctx := context.Background()
	ctrl := session.New(bank.Ref{BankID: b.ID}, session.Options{
		Store:              store,
		SecondsPerQuestion: session.DefaultSecondsPerQuestion,
		Rand:               rand.New(rand.NewSource(1)),
	})
	m := NewModel(ctx, ctrl, stubLoader{bank: b}, Options{NoColor: true})
	return step(t, m, bankLoadedMsg{bank: b})
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m = step(t, m, msg)
	}
	return m
}

func memoryStore() *attemptstore.Store {
	return attemptstore.New(attemptstore.NewMemory(), nil)
}

func TestSelectAndCheckFromKeys(t *testing.T) {
	m := newTestModel(t, testBank(), memoryStore())
	m = press(t, m, "1", "enter")

	correct, ok := m.Controller().Checked("sky")
	if !ok || !correct {
		t.Fatalf("expected sky checked correct, got %v %v", correct, ok)
	}
	view := m.View()
	if !strings.Contains(view, "Correct!") || !strings.Contains(view, "[x] 1. Blue") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestRejectedActionShowsStatus(t *testing.T) {
	m := newTestModel(t, testBank(), memoryStore())
	m = press(t, m, "c")

	if _, ok := m.Controller().Checked("sky"); ok {
		t.Fatalf("check without answer should be rejected")
	}
	if !strings.Contains(m.View(), "Not now:") {
		t.Fatalf("expected status line, got:\n%s", m.View())
	}
}

func TestTextInputCapturesKeys(t *testing.T) {
	m := newTestModel(t, textBank(), memoryStore())
	m = press(t, m, "i", "c", "o", "l", "d", "q")

	if !m.inputFocused {
		t.Fatalf("input should stay focused while typing")
	}
	if m.Controller().State() != session.StateActive {
		t.Fatalf("typing q must not leave, got %s", m.Controller().State())
	}
	answer, _ := m.Controller().Answer("opposite")
	if answer.Text != "coldq" {
		t.Fatalf("expected typed text, got %q", answer.Text)
	}
	m = press(t, m, "esc")
	if m.inputFocused {
		t.Fatalf("esc should blur the input")
	}
}

func TestTextInputEnterChecks(t *testing.T) {
	m := newTestModel(t, textBank(), memoryStore())
	m = press(t, m, "i", "C", "o", "l", "d", "enter")

	if correct, ok := m.Controller().Checked("opposite"); !ok || !correct {
		t.Fatalf("expected checked correct, got %v %v", correct, ok)
	}
}

func TestFocusRejectedOnOptionQuestion(t *testing.T) {
	m := newTestModel(t, testBank(), memoryStore())
	m = press(t, m, "i")
	if m.inputFocused {
		t.Fatalf("option questions have no text input")
	}
}

func TestQuitWithoutAnswersQuits(t *testing.T) {
	m := newTestModel(t, testBank(), memoryStore())
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if next.(Model).Controller().State() != session.StateClosed {
		t.Fatalf("expected closed session")
	}
}

func TestLeaveGuardModal(t *testing.T) {
	store := memoryStore()
	m := newTestModel(t, testBank(), store)
	m = press(t, m, "1", "q")

	if m.Controller().State() != session.StateLeaveConfirming {
		t.Fatalf("expected leave confirmation, got %s", m.Controller().State())
	}
	if !strings.Contains(m.View(), "Leave the quiz?") {
		t.Fatalf("expected modal, got:\n%s", m.View())
	}
	m = press(t, m, "n")
	if m.Controller().State() != session.StateActive {
		t.Fatalf("expected active after cancel, got %s", m.Controller().State())
	}

	m = step(t, m, LeaveMsg{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if cmd == nil {
		t.Fatalf("expected quit after confirming")
	}
	if saved := store.Load(context.Background(), "colors"); len(saved.Answers) != 1 {
		t.Fatalf("answers not checkpointed: %+v", saved)
	}
}

func TestFinishFlowShowsResults(t *testing.T) {
	m := newTestModel(t, testBank(), memoryStore())
	m = press(t, m, "1", "e")
	if m.Controller().State() != session.StateFinishConfirming {
		t.Fatalf("expected finish confirmation, got %s", m.Controller().State())
	}
	m = press(t, m, "y")
	if m.Controller().State() != session.StateCompleted {
		t.Fatalf("expected completed, got %s", m.Controller().State())
	}
	view := m.View()
	if !strings.Contains(view, "Grade: 10.00") {
		t.Fatalf("expected results, got:\n%s", view)
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected quit from results")
	}
}

func TestTicksCountDownAndExpire(t *testing.T) {
	m := newTestModel(t, testBank(), memoryStore())
	for range session.DefaultSecondsPerQuestion - 1 {
		m = step(t, m, tickMsg{})
	}
	if m.Controller().Timer().Remaining() != 1 {
		t.Fatalf("expected 1 second left, got %d", m.Controller().Timer().Remaining())
	}
	if !strings.Contains(m.View(), "Time 0:01") {
		t.Fatalf("expected clock in header, got:\n%s", m.View())
	}
	m = step(t, m, tickMsg{})
	if m.Controller().State() != session.StateCompleted {
		t.Fatalf("expected completion on expiry, got %s", m.Controller().State())
	}
}

func TestResumeOfferKeys(t *testing.T) {
	ctx := context.Background()
	store := memoryStore()
	if err := store.SaveFlags(ctx, "colors", map[string]bool{"sky": true}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	m := newTestModel(t, testBank(), store)
	if !strings.Contains(m.View(), "unfinished attempt") {
		t.Fatalf("expected resume offer, got:\n%s", m.View())
	}
	m = press(t, m, "p")
	if m.Controller().State() != session.StatePreviewing {
		t.Fatalf("expected preview, got %s", m.Controller().State())
	}
	m = press(t, m, "esc", "c")
	if m.Controller().State() != session.StateActive || !m.Controller().Flagged("sky") {
		t.Fatalf("expected resumed session with flag")
	}
}

func TestLoadFailureScreen(t *testing.T) {
	ctrl := session.New(bank.Ref{BankID: "missing"}, session.Options{Store: memoryStore()})
	m := NewModel(context.Background(), ctrl, stubLoader{err: bank.ErrNotFound}, Options{NoColor: true})
	m = step(t, m, bankLoadedMsg{err: bank.ErrNotFound})

	if !strings.Contains(m.View(), "Question bank not found.") {
		t.Fatalf("expected failure screen, got:\n%s", m.View())
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit")
	}
	if ctrl.State() != session.StateFailed {
		t.Fatalf("expected failed state after quitting, got %s", ctrl.State())
	}
}
