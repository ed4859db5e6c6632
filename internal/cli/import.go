package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"quizdeck/internal/bank"
	"quizdeck/internal/config"
	"quizdeck/internal/question"
)

// runImport builds the handler for the import command.
func runImport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .quizdeck/config.yml)")
		subject := flags.String("subject", "", "Subject to file the banks under")
		files, code, ok := parseFlags(cmd, flags, args, stdout, stderr)
		if !ok {
			return code
		}
		if len(files) == 0 {
			return usageError(cmd, stderr, "expected at least one <bank-file>")
		}

		cfg, root, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid config:\n%s\n", err.Error())
			return ExitError
		}
		if bank.Driver(cfg.Banks.Driver) == bank.DriverSQLite {
			if err := os.MkdirAll(config.ConfigDir(root), 0o755); err != nil {
				fmt.Fprintf(stderr, "Import failed: %v\n", err)
				return ExitError
			}
		}

		ctx := context.Background()
		catalog, err := bank.OpenCatalog(ctx, bank.Driver(cfg.Banks.Driver), cfg.Banks.DSN)
		if err != nil {
			fmt.Fprintf(stderr, "Import failed: %v\n", err)
			return ExitError
		}
		defer func() { _ = catalog.Close() }()

		failed := false
		for _, path := range files {
			b, err := readImportBank(path, *subject)
			if err == nil {
				err = catalog.Import(ctx, b)
			}
			if err != nil {
				failed = true
				fmt.Fprintf(stderr, "%s:\n%s\n", path, err.Error())
				continue
			}
			fmt.Fprintf(stdout, "Imported %s (%d questions)\n", bank.Ref{BankID: b.ID, SubjectID: b.Subject}, b.Len())
		}
		if failed {
			return ExitError
		}
		return ExitOK
	}
}

// readImportBank parses a bank file for import. The bank ID defaults to the
// file name and unnamed questions get random IDs so saved attempts survive
// reordering in later imports.
func readImportBank(path, subject string) (question.Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return question.Bank{}, fmt.Errorf("read bank: %w", err)
	}
	ext := filepath.Ext(path)
	b, err := question.ParseBank(data, ext)
	if err != nil {
		return question.Bank{}, err
	}
	if strings.TrimSpace(b.ID) == "" {
		b.ID = strings.TrimSuffix(filepath.Base(path), ext)
	}
	if subject != "" {
		b.Subject = subject
	}
	for i := range b.Questions {
		if strings.TrimSpace(b.Questions[i].ID) == "" {
			b.Questions[i].ID = uuid.NewString()
		}
	}
	return question.NormalizeBank(b)
}
