package cli

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"quizdeck/internal/config"
	"quizdeck/internal/question"
)

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .quizdeck/config.yml)")
		files, code, ok := parseFlags(cmd, flags, args, stdout, stderr)
		if !ok {
			return code
		}

		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%s\n", err.Error())
			return ExitError
		}
		fmt.Fprintln(stdout, "Config OK")

		if len(files) == 0 && cfg.Banks.Source == config.SourceDir {
			files, err = bankFiles(cfg.Banks.Dir)
			if err != nil {
				fmt.Fprintf(stderr, "Validation failed:\n%v\n", err)
				return ExitError
			}
		}

		failed := false
		for _, path := range files {
			b, err := question.LoadBank(path)
			if err != nil {
				failed = true
				fmt.Fprintf(stderr, "%s:\n%s\n", path, err.Error())
				continue
			}
			fmt.Fprintf(stdout, "Bank %s OK (%d questions)\n", path, b.Len())
		}
		if failed {
			return ExitError
		}
		return ExitOK
	}
}

// bankFiles lists bank files in dir and its subject subdirectories. A
// missing directory yields no files.
func bankFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		if entry.IsDir() {
			if path != dir && filepath.Dir(path) != dir {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yml", ".yaml", ".json":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list banks in %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
