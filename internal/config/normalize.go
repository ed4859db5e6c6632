package config

import (
	"path/filepath"
	"strings"
)

// Defaults applied by Normalize.
const (
	CurrentVersion            = 1
	DefaultSecondsPerQuestion = 120
	DefaultListenAddr         = ":8080"
	DefaultLogLevel           = "info"
)

// Normalize fills defaults and resolves relative paths against root.
func Normalize(cfg *Config, root string) {
	if root == "" {
		root = "."
	}
	cfg.Banks.Source = strings.ToLower(strings.TrimSpace(cfg.Banks.Source))
	if cfg.Banks.Source == "" {
		cfg.Banks.Source = SourceDir
	}
	if cfg.Banks.Dir == "" {
		cfg.Banks.Dir = DefaultBankDir
	}
	cfg.Banks.Dir = resolve(root, cfg.Banks.Dir)
	cfg.Banks.Driver = strings.ToLower(strings.TrimSpace(cfg.Banks.Driver))
	// The catalog settings also serve `quizdeck import` when banks come from a directory.
	if cfg.Banks.Driver == "" {
		cfg.Banks.Driver = "sqlite"
	}
	if cfg.Banks.DSN == "" && cfg.Banks.Driver == "sqlite" {
		cfg.Banks.DSN = sqliteDSN(filepath.Join(ConfigDir(root), "banks.db"))
	}

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	if cfg.Store.DSN == "" {
		switch cfg.Store.Driver {
		case "sqlite":
			cfg.Store.DSN = sqliteDSN(filepath.Join(ConfigDir(root), "attempts.db"))
		case "duckdb":
			cfg.Store.DSN = filepath.Join(ConfigDir(root), "attempts.duckdb")
		}
	}

	if cfg.Session.SecondsPerQuestion == nil {
		seconds := DefaultSecondsPerQuestion
		cfg.Session.SecondsPerQuestion = &seconds
	}
	if cfg.Session.PersistPosition == nil {
		keep := true
		cfg.Session.PersistPosition = &keep
	}

	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Path != "" {
		cfg.Log.Path = resolve(root, cfg.Log.Path)
	}
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

func sqliteDSN(path string) string {
	return "file:" + filepath.ToSlash(path) + "?_pragma=busy_timeout(5000)"
}
