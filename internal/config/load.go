package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Load reads, parses, applies environment overrides, normalizes, and
// validates a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, err
	}
	return finish(cfg, RootFromConfigPath(path))
}

// Default returns the configuration used when no config file exists.
func Default(root string) (Config, error) {
	return finish(Config{Version: CurrentVersion}, root)
}

func finish(cfg Config, root string) (Config, error) {
	lookup, err := envLookup(root)
	if err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	Normalize(&cfg, root)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envLookup merges the process environment over <root>/.env. The process
// environment is never modified.
func envLookup(root string) (func(string) (string, bool), error) {
	values := map[string]string{}
	envPath := filepath.Join(root, EnvFileName)
	if _, err := os.Stat(envPath); err == nil {
		values, err = godotenv.Read(envPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", envPath, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", envPath, err)
	}
	return func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := values[key]
		return value, ok
	}, nil
}
