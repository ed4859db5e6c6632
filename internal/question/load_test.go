package question

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestLoadBankYAML verifies YAML banks load and normalize properly.
func TestLoadBankYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "capitals.yml")
	payload := `version: 1
name: "  Capitals "
questions:
  - id: q1
    text: "  Capital of France? "
    options:
      - {key: a, text: Paris}
      - {key: b, text: Lyon}
    correct_answers: [" a "]
  - text: "Name a primary colour"
    correct_answers: ["red", "blue", "yellow"]
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	bank, err := LoadBank(path)
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if bank.ID != "capitals" {
		t.Fatalf("expected id derived from file name, got %q", bank.ID)
	}
	if bank.Name != "Capitals" {
		t.Fatalf("expected trimmed name, got %q", bank.Name)
	}
	if len(bank.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(bank.Questions))
	}
	first := bank.Questions[0]
	if first.Text != "Capital of France?" || first.CorrectAnswers[0] != "a" {
		t.Fatalf("unexpected first question: %+v", first)
	}
	second := bank.Questions[1]
	if second.ID != "q2" {
		t.Fatalf("expected generated id q2, got %q", second.ID)
	}
	if !second.IsFreeText() || second.IsMultiSelect() {
		t.Fatalf("expected free-text question, got %+v", second)
	}
}

// TestLoadBankJSON verifies JSON banks are parsed and validated.
func TestLoadBankJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "primes.json")
	payload := `{
  "version": 1,
  "id": "primes",
  "name": "Primes",
  "questions": [
    {
      "id": "p1",
      "text": "Which are prime?",
      "options": [{"key": "a", "text": "2"}, {"key": "b", "text": "4"}, {"key": "c", "text": "5"}],
      "correct_answers": ["a", "c"]
    }
  ]
}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	bank, err := LoadBank(path)
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if len(bank.Questions) != 1 || !bank.Questions[0].IsMultiSelect() {
		t.Fatalf("expected one multi-select question, got %+v", bank.Questions)
	}
}

// TestLoadBankAllowsEmptyQuestionList verifies empty banks load without error.
func TestLoadBankAllowsEmptyQuestionList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yml")
	if err := os.WriteFile(path, []byte("version: 1\nname: Empty\nquestions: []\n"), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	bank, err := LoadBank(path)
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if bank.Len() != 0 {
		t.Fatalf("expected no questions, got %d", bank.Len())
	}
}

// TestLoadBankValidationErrors verifies invalid banks return validation errors.
func TestLoadBankValidationErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yml")
	payload := `version: 1
questions:
  - id: dup
    text: "Q1"
    options: [{key: a, text: yes}, {key: a, text: no}]
    correct_answers: ["z"]
  - id: dup
    text: ""
    correct_answers: []
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	_, err := LoadBank(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := map[string]bool{}
	for _, issue := range validationErr.Issues {
		fields[issue.Field] = true
	}
	for _, field := range []string{
		"questions[0].options[1].key",
		"questions[0].correct_answers[0]",
		"questions[1].id",
		"questions[1].text",
		"questions[1].correct_answers",
	} {
		if !fields[field] {
			t.Fatalf("expected issue for %s, got %+v", field, validationErr.Issues)
		}
	}
}

// TestParseBankRejectsUnknownFields verifies strict decoding.
func TestParseBankRejectsUnknownFields(t *testing.T) {
	if _, err := ParseBank([]byte("version: 1\nbogus: true\n"), ".yml"); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := ParseBank([]byte(`{"version":1,"bogus":true}`), ".json"); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestNormalizeBankRejectsDuplicateCorrectAnswers(t *testing.T) {
	_, err := NormalizeBank(Bank{
		ID: "colors",
		Questions: []Question{{
			ID:             "sky",
			Text:           "Sky color?",
			Options:        []Option{{Key: "a", Text: "Blue"}, {Key: "b", Text: "Red"}},
			CorrectAnswers: []string{"a", " a"},
		}},
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(validationErr.Issues) != 1 || validationErr.Issues[0].Field != "questions[0].correct_answers[1]" {
		t.Fatalf("expected duplicate answer issue, got %+v", validationErr.Issues)
	}
}
