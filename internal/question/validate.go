package question

import (
	"fmt"
	"strings"
)

// CurrentVersion is the only bank schema version understood by the loader.
const CurrentVersion = 1

// Issue captures a validation problem in a bank definition.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports one or more validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error returns a readable message for validation failures.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("bank validation failed: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

func (collector *issueCollector) result() error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: collector.issues}
}

// NormalizeBank trims whitespace, fills defaults and validates a bank.
// A bank without questions is valid; callers decide how to present it.
func NormalizeBank(bank Bank) (Bank, error) {
	collector := &issueCollector{}
	if bank.Version == 0 {
		bank.Version = CurrentVersion
	} else if bank.Version != CurrentVersion {
		collector.add("version", fmt.Sprintf("unsupported version %d", bank.Version))
	}
	bank.ID = strings.TrimSpace(bank.ID)
	if bank.ID == "" {
		collector.add("id", "is required")
	}
	bank.Name = strings.TrimSpace(bank.Name)
	if bank.Name == "" {
		bank.Name = bank.ID
	}
	bank.Subject = strings.TrimSpace(bank.Subject)

	questions := make([]Question, len(bank.Questions))
	seenIDs := map[string]struct{}{}
	for i, question := range bank.Questions {
		prefix := fmt.Sprintf("questions[%d]", i)
		question.ID = strings.TrimSpace(question.ID)
		if question.ID == "" {
			question.ID = fmt.Sprintf("q%d", i+1)
		}
		if _, exists := seenIDs[question.ID]; exists {
			collector.add(prefix+".id", fmt.Sprintf("duplicate id %q", question.ID))
		} else {
			seenIDs[question.ID] = struct{}{}
		}

		question.Text = strings.TrimSpace(question.Text)
		if question.Text == "" {
			collector.add(prefix+".text", "is required")
		}

		question.Options = normalizeOptions(prefix, question.Options, collector)
		question.CorrectAnswers = normalizeStringSlice(question.CorrectAnswers)
		if len(question.CorrectAnswers) == 0 {
			collector.add(prefix+".correct_answers", "must include at least one entry")
		}
		seenCorrect := map[string]struct{}{}
		for correctIndex, correct := range question.CorrectAnswers {
			field := fmt.Sprintf("%s.correct_answers[%d]", prefix, correctIndex)
			if correct == "" {
				collector.add(field, "is required")
				continue
			}
			if _, exists := seenCorrect[correct]; exists {
				collector.add(field, fmt.Sprintf("duplicate answer %q", correct))
				continue
			}
			seenCorrect[correct] = struct{}{}
			if !question.IsFreeText() && question.OptionIndex(correct) < 0 {
				collector.add(field, fmt.Sprintf("unknown option key %q", correct))
			}
		}
		questions[i] = question
	}
	bank.Questions = questions

	if err := collector.result(); err != nil {
		return Bank{}, err
	}
	return bank, nil
}

func normalizeOptions(prefix string, options []Option, collector *issueCollector) []Option {
	if len(options) == 0 {
		return nil
	}
	out := make([]Option, 0, len(options))
	seen := map[string]struct{}{}
	for i, option := range options {
		field := fmt.Sprintf("%s.options[%d]", prefix, i)
		option.Key = strings.TrimSpace(option.Key)
		option.Text = strings.TrimSpace(option.Text)
		if option.Key == "" {
			collector.add(field+".key", "is required")
		} else if _, exists := seen[option.Key]; exists {
			collector.add(field+".key", fmt.Sprintf("duplicate key %q", option.Key))
		} else {
			seen[option.Key] = struct{}{}
		}
		if option.Text == "" {
			collector.add(field+".text", "is required")
		}
		out = append(out, option)
	}
	return out
}

func normalizeStringSlice(values []string) []string {
	normalized := make([]string, 0, len(values))
	for _, value := range values {
		normalized = append(normalized, strings.TrimSpace(value))
	}
	return normalized
}
