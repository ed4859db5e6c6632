package quiz

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"quizdeck/internal/question"
	"quizdeck/internal/session"
)

// FormatSummary renders a plain-text score summary.
func FormatSummary(results session.Results) string {
	s := results.Summary
	lines := []string{
		fmt.Sprintf("Correct: %d  Incorrect: %d  Total: %d", s.Correct, s.Incorrect, s.Total),
		fmt.Sprintf("Points: %.2f  Score: %.1f%%  Grade: %.2f", s.RawPoints, s.Percentage, s.Grade),
	}
	if results.Reason == session.ReasonTimeout {
		lines = append(lines, "Time ran out.")
	}
	return strings.Join(lines, "\n")
}

func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// formatClock renders remaining seconds as m:ss.
func formatClock(timer session.Timer) string {
	if timer.Untimed() {
		return "untimed"
	}
	remaining := max(timer.Remaining(), 0)
	return fmt.Sprintf("%d:%02d", remaining/60, remaining%60)
}

func formatQuestionText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func formatOption(index int, opt question.Option, answer question.Answer, checked bool, correct []string, noColor bool) string {
	marker := "[ ]"
	if answer.Has(opt.Key) {
		marker = "[x]"
	}
	line := fmt.Sprintf("  %s %d. %s", marker, index+1, opt.Text)
	if checked && slices.Contains(correct, opt.Key) {
		return stylize(line, noColor, lipgloss.Color("42"))
	}
	return line
}

func correctLabels(q question.Question) []string {
	if q.IsFreeText() {
		return q.CorrectAnswers
	}
	labels := make([]string, 0, len(q.CorrectAnswers))
	for _, key := range q.CorrectAnswers {
		if idx := q.OptionIndex(key); idx >= 0 {
			labels = append(labels, q.Options[idx].Text)
		}
	}
	return labels
}

func checkLabel(correct bool) string {
	if correct {
		return "Correct!"
	}
	return "Incorrect."
}

func stylizeCheck(correct bool, noColor bool) string {
	if correct {
		return stylize(checkLabel(true), noColor, lipgloss.Color("42"))
	}
	return stylize(checkLabel(false), noColor, lipgloss.Color("196"))
}

// describeError turns controller rejections into a status line.
func describeError(err error) string {
	if errors.Is(err, session.ErrInvalidOperation) {
		msg := err.Error()
		if idx := strings.LastIndex(msg, ": "); idx >= 0 {
			msg = msg[idx+2:]
		}
		return "Not now: " + msg
	}
	return err.Error()
}
