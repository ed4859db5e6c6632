package quiz

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"quizdeck/internal/bank"
	"quizdeck/internal/dispatch"
	"quizdeck/internal/question"
	"quizdeck/internal/session"
)

// View renders the current screen.
func (m Model) View() string {
	if m.done {
		return ""
	}
	ctrl := m.ctrl
	var body []string
	switch ctrl.State() {
	case session.StateUninitialized:
		body = []string{stylize("Loading "+ctrl.Ref().String()+"...", m.noColor, lipgloss.Color("244"))}
	case session.StateFailed:
		body = renderFailure(ctrl.Err(), m.noColor)
	case session.StateEmpty:
		body = []string{renderHeader(ctrl, m.noColor), "This bank has no questions.", hint("q to quit", m.noColor)}
	case session.StateOfferingResume:
		body = []string{renderHeader(ctrl, m.noColor), renderResumeOffer(ctrl)}
	case session.StatePreviewing:
		body = []string{renderHeader(ctrl, m.noColor), renderPreview(ctrl, m.noColor)}
	case session.StateActive:
		body = []string{renderHeader(ctrl, m.noColor), renderQuestion(ctrl, m.noColor)}
		if m.inputFocused {
			body = append(body, m.input.View())
		}
	case session.StateFinishConfirming:
		body = []string{renderHeader(ctrl, m.noColor), renderQuestion(ctrl, m.noColor), renderModal(finishPrompt(ctrl), m.noColor)}
	case session.StateLeaveConfirming:
		body = []string{renderHeader(ctrl, m.noColor), renderModal("Leave the quiz? Your progress is saved and can be resumed. (y/n)", m.noColor)}
	case session.StateCompleted:
		body = []string{renderResults(ctrl, m.noColor), hint("enter to close", m.noColor)}
	}
	if m.status != "" {
		body = append(body, stylize(m.status, m.noColor, lipgloss.Color("214")))
	}
	if mode, ok := modeFor(ctrl.State()); ok && !m.inputFocused {
		body = append(body, m.help.View(dispatch.HelpKeys{Bindings: m.dispatcher.Help(mode)}))
	}
	return lipgloss.JoinVertical(lipgloss.Left, body...)
}

// renderHeader renders the bank title, progress, score and timer.
func renderHeader(ctrl *session.Controller, noColor bool) string {
	b := ctrl.Bank()
	line := b.Name
	if b.Subject != "" {
		line = b.Subject + " / " + line
	}
	if ctrl.State() == session.StateActive || ctrl.State() == session.StateFinishConfirming {
		summary := ctrl.Summary()
		line += " | Question " + fmtInt(ctrl.Position()+1) + "/" + fmtInt(b.Len())
		line += " | Checked " + fmtInt(summary.Correct+summary.Incorrect)
		line += " | Time " + formatClock(ctrl.Timer())
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

func renderFailure(err error, noColor bool) []string {
	title := "Could not load the question bank."
	if errors.Is(err, bank.ErrNotFound) {
		title = "Question bank not found."
	}
	lines := []string{stylize(title, noColor, lipgloss.Color("196"))}
	if err != nil {
		lines = append(lines, err.Error())
	}
	return append(lines, hint("q to quit", noColor))
}

func renderResumeOffer(ctrl *session.Controller) string {
	pending := ctrl.Pending()
	return "You have an unfinished attempt: " +
		fmtInt(len(pending.Answers)) + " answered, " +
		fmtInt(len(pending.Checked)) + " checked, " +
		fmtInt(len(pending.Flags)) + " flagged.\n" +
		"Continue where you left off, start over, or preview the questions."
}

func renderPreview(ctrl *session.Controller, noColor bool) string {
	q, ok := ctrl.PreviewCurrent()
	if !ok {
		return ""
	}
	title := stylize("Preview "+fmtInt(ctrl.PreviewPosition()+1)+"/"+fmtInt(ctrl.Bank().Len()), noColor, lipgloss.Color("242"))
	lines := []string{title, formatQuestionText(q.Text)}
	for i, opt := range q.Options {
		lines = append(lines, "  "+fmtInt(i+1)+". "+opt.Text)
	}
	return strings.Join(lines, "\n")
}

func renderQuestion(ctrl *session.Controller, noColor bool) string {
	q, ok := ctrl.Current()
	if !ok {
		return ""
	}
	answer, answered := ctrl.Answer(q.ID)
	correct, checked := ctrl.Checked(q.ID)

	title := formatQuestionText(q.Text)
	if ctrl.Flagged(q.ID) {
		title += " " + stylize("[flagged]", noColor, lipgloss.Color("214"))
	}
	if q.IsMultiSelect() {
		title += " " + stylize("(select all that apply)", noColor, lipgloss.Color("242"))
	}
	lines := []string{title}
	for i, opt := range q.Options {
		lines = append(lines, formatOption(i, opt, answer, checked, q.CorrectAnswers, noColor))
	}
	if q.IsFreeText() {
		value := "(no answer yet)"
		if answered && answer.Kind == question.AnswerText {
			value = answer.Text
		}
		lines = append(lines, "Answer: "+value)
	}
	if answered && answer.IsSkipped() {
		lines = append(lines, stylize("Marked as no answer.", noColor, lipgloss.Color("242")))
	}
	if checked {
		lines = append(lines, stylizeCheck(correct, noColor))
		if !correct {
			lines = append(lines, "Correct answer: "+strings.Join(correctLabels(q), ", "))
		}
	}
	return strings.Join(lines, "\n")
}

func finishPrompt(ctrl *session.Controller) string {
	unchecked := ctrl.Summary().Unchecked
	if unchecked == 0 {
		return "Finish the quiz? (y/n)"
	}
	return "Finish the quiz? " + fmtInt(unchecked) + " unchecked questions will be scored from their current answers. (y/n)"
}

func renderModal(text string, noColor bool) string {
	if noColor {
		return "> " + text
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("214")).
		Padding(0, 1).
		Render(text)
}

func renderResults(ctrl *session.Controller, noColor bool) string {
	results, err := ctrl.Results()
	if err != nil {
		return err.Error()
	}
	return stylize("Results: "+results.BankName, noColor, lipgloss.Color("33")) + "\n" + FormatSummary(results)
}

func hint(text string, noColor bool) string {
	return stylize(text, noColor, lipgloss.Color("240"))
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
