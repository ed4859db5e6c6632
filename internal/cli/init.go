package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"quizdeck/internal/config"
)

// runInit builds the handler for the init command.
func runInit(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		dir := flags.String("dir", "", "Project directory (default: working directory)")
		rest, code, ok := parseFlags(cmd, flags, args, stdout, stderr)
		if !ok {
			return code
		}
		if len(rest) > 0 {
			return usageError(cmd, stderr, "unexpected arguments: %s", joinArgs(rest))
		}

		root := *dir
		if root == "" {
			wd, err := os.Getwd()
			if err != nil {
				fmt.Fprintf(stderr, "Init failed: %v\n", err)
				return ExitError
			}
			root = wd
		}
		root, err := filepath.Abs(root)
		if err != nil {
			fmt.Fprintf(stderr, "Init failed: %v\n", err)
			return ExitError
		}
		if err := config.Scaffold(root); err != nil {
			fmt.Fprintf(stderr, "Init failed: %v\n", err)
			return ExitError
		}

		fmt.Fprintf(stdout, "Created %s\n", config.ConfigPath(root))
		fmt.Fprintf(stdout, "Created %s\n", filepath.Join(root, config.DefaultBankDir, config.SampleBankID+".yml"))
		fmt.Fprintf(stdout, "Try it: quizdeck take %s\n", config.SampleBankID)
		return ExitOK
	}
}
