package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"quizdeck/internal/bank"
	"quizdeck/internal/question"
	"quizdeck/internal/session"
)

func TestReportTakeOutcomeAfterLeavingFailedLoad(t *testing.T) {
	ctrl := session.New(bank.Ref{BankID: "missing"}, session.Options{})
	ctrl.Fail(bank.ErrNotFound)
	if got := ctrl.RequestLeave(context.Background(), session.DestinationExternal); got != session.LeaveAllowed {
		t.Fatalf("expected leave allowed")
	}

	var stdout, stderr bytes.Buffer
	code := reportTakeOutcome(ctrl, &resultsCollector{}, &stdout, &stderr)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(stderr.String(), "Could not load missing") {
		t.Fatalf("expected load error, got %q", stderr.String())
	}
}

func TestReportTakeOutcomeEmptyBank(t *testing.T) {
	ctrl := session.New(bank.Ref{BankID: "blank"}, session.Options{})
	if err := ctrl.Begin(context.Background(), question.Bank{ID: "blank"}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	ctrl.RequestLeave(context.Background(), session.DestinationExternal)

	var stdout, stderr bytes.Buffer
	if code := reportTakeOutcome(ctrl, &resultsCollector{}, &stdout, &stderr); code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	if !strings.Contains(stdout.String(), "has no questions") {
		t.Fatalf("expected empty bank message, got %q", stdout.String())
	}
}

func TestReportTakeOutcomeResumeHint(t *testing.T) {
	ctx := context.Background()
	ctrl := session.New(bank.Ref{BankID: "geo", SubjectID: "maps"}, session.Options{SecondsPerQuestion: 60})
	err := ctrl.Begin(ctx, question.Bank{ID: "geo", Name: "Geo", Questions: []question.Question{{
		ID:             "capital",
		Text:           "Capital of France?",
		Options:        []question.Option{{Key: "a", Text: "Lyon"}, {Key: "b", Text: "Paris"}},
		CorrectAnswers: []string{"b"},
	}}})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := ctrl.SelectOption(ctx, "b"); err != nil {
		t.Fatalf("select: %v", err)
	}
	ctrl.RequestLeave(ctx, session.DestinationExternal)
	if err := ctrl.ConfirmLeave(ctx); err != nil {
		t.Fatalf("confirm leave: %v", err)
	}

	var stdout, stderr bytes.Buffer
	if code := reportTakeOutcome(ctrl, &resultsCollector{}, &stdout, &stderr); code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	if !strings.Contains(stdout.String(), "quizdeck take --subject maps geo") {
		t.Fatalf("expected resume hint, got %q", stdout.String())
	}
}
