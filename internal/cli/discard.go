package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"quizdeck/internal/logging"
)

// runDiscard builds the handler for the discard command.
func runDiscard(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .quizdeck/config.yml)")
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

		if err := store.Clear(ctx, rest[0]); err != nil {
			fmt.Fprintf(stderr, "Discard failed: %v\n", err)
			return ExitError
		}
		logger.Info("discarded saved attempt", "bank_id", rest[0])
		fmt.Fprintf(stdout, "Discarded saved attempt for %s\n", rest[0])
		return ExitOK
	}
}
