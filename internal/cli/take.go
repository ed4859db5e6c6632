package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"quizdeck/internal/bank"
	"quizdeck/internal/logging"
	"quizdeck/internal/session"
	"quizdeck/internal/ui/quiz"
)

// takeInput overrides the program input in tests.
var takeInput io.Reader

// resultsCollector keeps the results signal for printing after the UI exits.
type resultsCollector struct {
	results *session.Results
}

func (c *resultsCollector) OnTransition(session.Transition) {}

func (c *resultsCollector) OnResults(results session.Results) {
	c.results = &results
}

// runTake builds the handler for the take command.
func runTake(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .quizdeck/config.yml)")
		subject := flags.String("subject", "", "Subject the bank belongs to")
		seconds := flags.Int("seconds", -1, "Seconds per question; 0 runs untimed (default: from config)")
		logPath := flags.String("log", "", "Write logs to a file (default: log.path from config)")
		noColor := flags.Bool("no-color", false, "Disable colors")
		uiMode := flags.String("ui", "auto", "UI mode (auto|tui)")
		rest, code, ok := parseFlags(cmd, flags, args, stdout, stderr)
		if !ok {
			return code
		}
		if len(rest) != 1 {
			return usageError(cmd, stderr, "expected exactly one <bank-id>")
		}

		decision, err := resolveUIMode(*uiMode, stdout)
		if err != nil {
			return usageError(cmd, stderr, "%v", err)
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}
		if !decision.useTUI {
			return ExitError
		}

		cfg, root, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid config:\n%s\n", err.Error())
			return ExitError
		}
		if *seconds >= 0 {
			cfg.Session.SecondsPerQuestion = seconds
		}
		if *logPath != "" {
			cfg.Log.Path = *logPath
		}

		logger, closeLog, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open log: %v\n", err)
			return ExitError
		}
		defer func() { _ = closeLog() }()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store, closeStore, err := openStore(ctx, cfg, root, logger)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open attempt store: %v\n", err)
			return ExitError
		}
		defer func() { _ = closeStore() }()
		loader, closeLoader, err := openLoader(ctx, cfg)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open banks: %v\n", err)
			return ExitError
		}
		defer func() { _ = closeLoader() }()

		ref := bank.Ref{BankID: rest[0], SubjectID: *subject}
		collector := &resultsCollector{}
		ctrl := session.New(ref, session.Options{
			Store:              store,
			SecondsPerQuestion: cfg.Session.Seconds(),
			PersistPosition:    cfg.Session.KeepPosition(),
			Logger:             logger,
			Observer:           collector,
		})
		model := quiz.NewModel(ctx, ctrl, loader, quiz.Options{NoColor: *noColor})

		opts := []tea.ProgramOption{tea.WithOutput(stdout), tea.WithAltScreen(), tea.WithoutSignalHandler()}
		if takeInput != nil {
			opts = append(opts, tea.WithInput(takeInput))
		}
		program := tea.NewProgram(model, opts...)

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(signals)
		go func() {
			for {
				select {
				case <-signals:
					program.Send(quiz.LeaveMsg{})
				case <-ctx.Done():
					return
				}
			}
		}()

		logger.Info("session started", "bank", ref.String(), "attempt_id", ctrl.AttemptID())
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			fmt.Fprintf(stderr, "Quiz UI failed: %v\n", err)
			return ExitError
		}
		return reportTakeOutcome(ctrl, collector, stdout, stderr)
	}
}

// reportTakeOutcome prints what happened once the UI has exited.
func reportTakeOutcome(ctrl *session.Controller, collector *resultsCollector, stdout, stderr io.Writer) int {
	switch ctrl.State() {
	case session.StateFailed:
		fmt.Fprintf(stderr, "Could not load %s: %v\n", ctrl.Ref(), ctrl.Err())
		return ExitError
	case session.StateEmpty:
		fmt.Fprintf(stdout, "Bank %s has no questions.\n", ctrl.Ref())
		return ExitOK
	}
	if collector.results != nil {
		fmt.Fprintf(stdout, "Results for %s\n%s\n", collector.results.BankName, quiz.FormatSummary(*collector.results))
		return ExitOK
	}
	if ctrl.State() == session.StateCompleted {
		if results, err := ctrl.Results(); err == nil {
			fmt.Fprintf(stdout, "Results for %s\n%s\n", results.BankName, quiz.FormatSummary(results))
		}
		return ExitOK
	}
	if !ctrl.Snapshot().HasProgress() && !ctrl.Pending().HasProgress() {
		return ExitOK
	}
	resume := "quizdeck take " + ctrl.Ref().BankID
	if subject := ctrl.Ref().SubjectID; subject != "" {
		resume = "quizdeck take --subject " + subject + " " + ctrl.Ref().BankID
	}
	fmt.Fprintf(stdout, "Progress saved. Run %q to resume.\n", resume)
	return ExitOK
}
