//go:build cucumber

package session

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/cucumber/godog"

	"quizdeck/internal/attemptstore"
	"quizdeck/internal/bank"
	"quizdeck/internal/question"
)

// TestAttemptScenarios runs the attempt lifecycle feature scenarios.
func TestAttemptScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "attempt",
		ScenarioInitializer: InitializeAttemptScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("testdata", "features", "attempt.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeAttemptScenario wires steps for attempt scenarios.
func InitializeAttemptScenario(ctx *godog.ScenarioContext) {
	state := &attemptScenarioState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.Step(`^a bank "([^"]+)" with (\d+) questions$`, state.givenBank)
	ctx.Step(`^a saved answer "([^"]+)" for "([^"]+)"$`, state.givenSavedAnswer)
	ctx.Step(`^a saved timer of (\d+) seconds$`, state.givenSavedTimer)
	ctx.Step(`^(\d+) seconds? per question$`, state.givenSecondsPerQuestion)
	ctx.Step(`^I open the bank$`, state.openBank)
	ctx.Step(`^I answer "([^"]+)" with option "([^"]+)"$`, state.answerOption)
	ctx.Step(`^I check the current question$`, state.checkCurrent)
	ctx.Step(`^I continue the saved attempt$`, state.continueSaved)
	ctx.Step(`^I try to leave$`, state.tryLeave)
	ctx.Step(`^I confirm leaving$`, state.confirmLeave)
	ctx.Step(`^(\d+) seconds pass$`, state.secondsPass)
	ctx.Step(`^the session is "([^"]+)"$`, state.thenState)
	ctx.Step(`^the timer shows (\d+) seconds$`, state.thenTimer)
	ctx.Step(`^question "([^"]+)" is checked as correct$`, state.thenCheckedCorrect)
	ctx.Step(`^changing the answer is rejected$`, state.thenChangeRejected)
	ctx.Step(`^question "([^"]+)" has answer "([^"]+)"$`, state.thenAnswer)
	ctx.Step(`^the store still holds the answer for "([^"]+)"$`, state.thenStoreHolds)
	ctx.Step(`^the grade is ([\d.]+)$`, state.thenGrade)
}

type attemptScenarioState struct {
	kv    *attemptstore.Memory
	store *attemptstore.Store
	bank  question.Bank
	perQ  int
	ctrl  *Controller
}

// reset clears scenario state.
func (s *attemptScenarioState) reset() {
	s.kv = attemptstore.NewMemory()
	s.store = attemptstore.New(s.kv, nil)
	s.bank = question.Bank{}
	s.perQ = DefaultSecondsPerQuestion
	s.ctrl = nil
}

func (s *attemptScenarioState) givenBank(id string, count int) error {
	b := sampleBank()
	if count > len(b.Questions) {
		return fmt.Errorf("sample bank has only %d questions", len(b.Questions))
	}
	b.ID = id
	b.Questions = b.Questions[:count]
	s.bank = b
	return nil
}

func (s *attemptScenarioState) givenSavedAnswer(key, id string) error {
	raw := fmt.Sprintf(`{%q:{"keys":[%q]}}`, id, key)
	return s.kv.Set(context.Background(), attemptstore.Key(s.bank.ID, attemptstore.FieldAnswers), raw)
}

func (s *attemptScenarioState) givenSavedTimer(seconds int) error {
	return s.store.SaveTime(context.Background(), s.bank.ID, seconds)
}

func (s *attemptScenarioState) givenSecondsPerQuestion(seconds int) error {
	s.perQ = seconds
	return nil
}

func (s *attemptScenarioState) openBank() error {
	s.ctrl = New(bank.Ref{BankID: s.bank.ID}, Options{
		Store:              s.store,
		SecondsPerQuestion: s.perQ,
		PersistPosition:    true,
		Rand:               rand.New(rand.NewSource(1)),
	})
	return s.ctrl.Begin(context.Background(), s.bank)
}

func (s *attemptScenarioState) moveTo(id string) error {
	for pos := range s.ctrl.Order() {
		if q, _ := s.ctrl.questionAt(pos); q.ID == id {
			return s.ctrl.Jump(context.Background(), pos)
		}
	}
	return fmt.Errorf("question %s not found", id)
}

func (s *attemptScenarioState) answerOption(id, key string) error {
	if err := s.moveTo(id); err != nil {
		return err
	}
	return s.ctrl.SelectOption(context.Background(), key)
}

func (s *attemptScenarioState) checkCurrent() error {
	_, err := s.ctrl.Check(context.Background())
	return err
}

func (s *attemptScenarioState) continueSaved() error {
	return s.ctrl.Continue(context.Background())
}

func (s *attemptScenarioState) tryLeave() error {
	if s.ctrl.RequestLeave(context.Background(), DestinationExternal) != LeaveBlocked {
		return fmt.Errorf("expected leave to be blocked")
	}
	return nil
}

func (s *attemptScenarioState) confirmLeave() error {
	return s.ctrl.ConfirmLeave(context.Background())
}

func (s *attemptScenarioState) secondsPass(seconds int) error {
	for range seconds {
		s.ctrl.Tick(context.Background())
	}
	return nil
}

func (s *attemptScenarioState) thenState(name string) error {
	if got := s.ctrl.State().String(); got != name {
		return fmt.Errorf("expected state %s, got %s", name, got)
	}
	return nil
}

func (s *attemptScenarioState) thenTimer(seconds int) error {
	if got := s.ctrl.Timer().Remaining(); got != seconds {
		return fmt.Errorf("expected %d seconds, got %d", seconds, got)
	}
	return nil
}

func (s *attemptScenarioState) thenCheckedCorrect(id string) error {
	if correct, ok := s.ctrl.Checked(id); !ok || !correct {
		return fmt.Errorf("expected %s checked correct, got %v %v", id, correct, ok)
	}
	return nil
}

func (s *attemptScenarioState) thenChangeRejected() error {
	if err := s.ctrl.SelectOption(context.Background(), "a"); err == nil {
		return fmt.Errorf("expected change to be rejected")
	}
	return nil
}

func (s *attemptScenarioState) thenAnswer(id, key string) error {
	answer, ok := s.ctrl.Answer(id)
	if !ok || !answer.Equal(question.Choice(key)) {
		return fmt.Errorf("expected %s answered %s, got %v", id, key, answer)
	}
	return nil
}

func (s *attemptScenarioState) thenStoreHolds(id string) error {
	saved := s.store.Load(context.Background(), s.bank.ID)
	if _, ok := saved.Answers[id]; !ok {
		return fmt.Errorf("answer for %s not persisted", id)
	}
	return nil
}

func (s *attemptScenarioState) thenGrade(grade float64) error {
	if got := s.ctrl.Summary().Grade; math.Abs(got-grade) > 0.001 {
		return fmt.Errorf("expected grade %.2f, got %.2f", grade, got)
	}
	return nil
}
