// Package scoring decides answer correctness and aggregates checked results
// into a negatively marked score.
package scoring

import (
	"math"
	"strings"

	"quizdeck/internal/question"
)

// Penalty is the number of points subtracted for each incorrect answer.
const Penalty = 0.33

// IsCorrect reports whether answer satisfies the question. A nil answer means
// the question was never answered.
func IsCorrect(q question.Question, answer *question.Answer) bool {
	if answer == nil || answer.IsEmpty() {
		return false
	}
	if q.IsFreeText() {
		return matchesText(q.CorrectAnswers, answer)
	}
	if answer.Kind != question.AnswerChoice {
		return false
	}
	if !q.IsMultiSelect() {
		return len(answer.Keys) == 1 && len(q.CorrectAnswers) == 1 && answer.Keys[0] == q.CorrectAnswers[0]
	}
	return sameKeySet(answer.Keys, q.CorrectAnswers)
}

// matchesText compares a typed response against every accepted answer.
func matchesText(correct []string, answer *question.Answer) bool {
	var response string
	switch answer.Kind {
	case question.AnswerText:
		response = answer.Text
	case question.AnswerChoice:
		response = strings.Join(answer.Keys, " ")
	default:
		return false
	}
	normalized := question.NormalizeAnswerText(response)
	if normalized == "" {
		return false
	}
	for _, candidate := range correct {
		if question.NormalizeAnswerText(candidate) == normalized {
			return true
		}
	}
	return false
}

// sameKeySet reports whether both slices hold exactly the same distinct keys.
func sameKeySet(selected, correct []string) bool {
	want := make(map[string]struct{}, len(correct))
	for _, key := range correct {
		want[key] = struct{}{}
	}
	got := make(map[string]struct{}, len(selected))
	for _, key := range selected {
		if _, ok := want[key]; !ok {
			return false
		}
		got[key] = struct{}{}
	}
	return len(got) == len(want)
}

// Summary is the aggregate score computed from checked results.
type Summary struct {
	Total      int
	Correct    int
	Incorrect  int
	Unchecked  int
	RawPoints  float64
	Percentage float64
	Grade      float64
}

// Summarize aggregates checked results for a bank of total questions.
// Questions without a checked entry count as neither correct nor incorrect.
func Summarize(total int, checked map[string]bool) Summary {
	summary := Summary{Total: total}
	for _, correct := range checked {
		if correct {
			summary.Correct++
		} else {
			summary.Incorrect++
		}
	}
	summary.Unchecked = max(total-summary.Correct-summary.Incorrect, 0)
	summary.RawPoints = float64(summary.Correct) - Penalty*float64(summary.Incorrect)
	if total > 0 {
		summary.Percentage = clamp(summary.RawPoints/float64(total)*100, 0, 100)
	}
	summary.Grade = round2(summary.Percentage / 10)
	return summary
}

func clamp(value, low, high float64) float64 {
	return math.Max(low, math.Min(high, value))
}

// round2 rounds to two decimal places.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
