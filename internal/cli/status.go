package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"quizdeck/internal/bank"
	"quizdeck/internal/logging"
	"quizdeck/internal/scoring"
)

// runStatus builds the handler for the status command.
func runStatus(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .quizdeck/config.yml)")
		subject := flags.String("subject", "", "Subject the bank belongs to")
		rest, code, ok := parseFlags(cmd, flags, args, stdout, stderr)
		if !ok {
			return code
		}
		if len(rest) != 1 {
			return usageError(cmd, stderr, "expected exactly one <bank-id>")
		}

		cfg, root, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid config:\n%s\n", err.Error())
			return ExitError
		}
		ctx := context.Background()
		logger, closeLog, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open log: %v\n", err)
			return ExitError
		}
		defer func() { _ = closeLog() }()
		store, closeStore, err := openStore(ctx, cfg, root, logger)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open attempt store: %v\n", err)
			return ExitError
		}
		defer func() { _ = closeStore() }()

		ref := bank.Ref{BankID: rest[0], SubjectID: *subject}
		saved := store.Load(ctx, ref.BankID)
		if !saved.HasProgress() {
			fmt.Fprintf(stdout, "No saved attempt for %s\n", ref)
			return ExitOK
		}
		if saved.Completed {
			fmt.Fprintf(stdout, "Attempt for %s is completed; it is cleared on the next take.\n", ref)
		}

		total := 0
		loader, closeLoader, err := openLoader(ctx, cfg)
		if err == nil {
			defer func() { _ = closeLoader() }()
			if b, loadErr := loader.Load(ctx, ref); loadErr == nil {
				total = b.Len()
			} else {
				logger.Warn("status could not load bank", "bank", ref.String(), "error", loadErr)
			}
		}

		summary := scoring.Summarize(total, saved.Checked)
		fmt.Fprintf(stdout, "Saved attempt for %s\n", ref)
		if total > 0 {
			fmt.Fprintf(stdout, "  Answered: %d/%d\n", len(saved.Answers), total)
		} else {
			fmt.Fprintf(stdout, "  Answered: %d\n", len(saved.Answers))
		}
		fmt.Fprintf(stdout, "  Flagged:  %d\n", len(saved.Flags))
		fmt.Fprintf(stdout, "  Checked:  %d (%d correct, %d incorrect)\n", summary.Correct+summary.Incorrect, summary.Correct, summary.Incorrect)
		if total > 0 {
			fmt.Fprintf(stdout, "  Score so far: %.1f%% (grade %.2f)\n", summary.Percentage, summary.Grade)
		}
		switch {
		case !saved.HasTime:
		case saved.TimeRemaining < 0:
			fmt.Fprintln(stdout, "  Time left: untimed")
		default:
			fmt.Fprintf(stdout, "  Time left: %d:%02d\n", saved.TimeRemaining/60, saved.TimeRemaining%60)
		}
		return ExitOK
	}
}
