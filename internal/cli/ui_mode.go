package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// uiModeDecision captures whether to start the terminal UI.
type uiModeDecision struct {
	useTUI  bool
	warning string
}

// isTerminal reports whether a writer is a TTY.
var isTerminal = defaultIsTerminal

// resolveUIMode decides whether the quiz UI can run on stdout.
func resolveUIMode(mode string, stdout io.Writer) (uiModeDecision, error) {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	if normalized == "" {
		normalized = "auto"
	}
	switch normalized {
	case "auto":
		if isTerminal(stdout) {
			return uiModeDecision{useTUI: true}, nil
		}
		return uiModeDecision{
			useTUI:  false,
			warning: "stdout is not a terminal; run quizdeck take from an interactive shell or pass --ui tui.",
		}, nil
	case "tui":
		if isTerminal(stdout) {
			return uiModeDecision{useTUI: true}, nil
		}
		return uiModeDecision{
			useTUI:  true,
			warning: "Terminal UI forced on a non-terminal stdout.",
		}, nil
	default:
		return uiModeDecision{}, fmt.Errorf("invalid ui mode %q (expected auto|tui)", mode)
	}
}

// defaultIsTerminal inspects stdout for TTY support.
func defaultIsTerminal(stdout io.Writer) bool {
	if stdout == nil {
		return false
	}
	if file, ok := stdout.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	if fder, ok := stdout.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}
