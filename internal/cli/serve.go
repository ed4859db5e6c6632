package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"quizdeck/internal/bankserver"
	"quizdeck/internal/logging"
)

var serveBanks = bankserver.Serve

// runServe builds the handler for the serve command.
func runServe(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .quizdeck/config.yml)")
		addr := flags.String("addr", "", "Listen address (default: server.listen_addr)")
		rest, code, ok := parseFlags(cmd, flags, args, stdout, stderr)
		if !ok {
			return code
		}
		if len(rest) > 0 {
			return usageError(cmd, stderr, "unexpected arguments: %s", joinArgs(rest))
		}

		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid config:\n%s\n", err.Error())
			return ExitError
		}
		if *addr != "" {
			cfg.Server.ListenAddr = *addr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger, closeLog, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open log: %v\n", err)
			return ExitError
		}
		defer func() { _ = closeLog() }()

		catalog, closeCatalog, err := openCatalog(ctx, cfg)
		if err != nil {
			fmt.Fprintf(stderr, "Serve failed: %v\n", err)
			return ExitError
		}
		defer func() { _ = closeCatalog() }()

		fmt.Fprintf(stdout, "Serving banks on %s\n", cfg.Server.ListenAddr)
		err = serveBanks(ctx, bankserver.Config{
			Addr:        cfg.Server.ListenAddr,
			Catalog:     catalog,
			CORSOrigins: cfg.Server.CORSOrigins,
			Logger:      logger,
		})
		if err != nil {
			fmt.Fprintf(stderr, "Serve failed: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
