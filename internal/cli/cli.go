package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  quizdeck <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"quizdeck <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

// parseFlags parses args with interspersed positionals and reports the exit
// code to use when parsing fails.
func parseFlags(cmd *Command, flags *flag.FlagSet, args []string, stdout, stderr io.Writer) ([]string, int, bool) {
	var positionals []string
	for {
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return nil, ExitOK, false
			}
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return nil, ExitUsage, false
		}
		args = flags.Args()
		if len(args) == 0 {
			return positionals, ExitOK, true
		}
		positionals = append(positionals, args[0])
		args = args[1:]
	}
}

func usageError(cmd *Command, stderr io.Writer, format string, args ...any) int {
	fmt.Fprintf(stderr, format+"\n", args...)
	printCommandUsage(cmd, stderr)
	return ExitUsage
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("init", "Scaffold .quizdeck/config.yml and a sample bank", []string{
		"quizdeck init [--dir <path>]",
	}, runInit),
	command("validate", "Validate the config and question banks", []string{
		"quizdeck validate [--config <path>] [bank-file]...",
	}, runValidate),
	command("take", "Take a quiz in the terminal", []string{
		"quizdeck take [--config <path>] [--subject <id>] [--seconds <n>] [--log <path>] [--no-color] [--ui auto|tui] <bank-id>",
	}, runTake),
	command("status", "Show saved progress for a bank", []string{
		"quizdeck status [--config <path>] [--subject <id>] <bank-id>",
	}, runStatus),
	command("discard", "Delete saved progress for a bank", []string{
		"quizdeck discard [--config <path>] <bank-id>",
	}, runDiscard),
	command("import", "Import bank files into the SQL catalog", []string{
		"quizdeck import [--config <path>] [--subject <id>] <bank-file>...",
	}, runImport),
	command("serve", "Serve the bank catalog over HTTP", []string{
		"quizdeck serve [--config <path>] [--addr <host:port>]",
	}, runServe),
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
