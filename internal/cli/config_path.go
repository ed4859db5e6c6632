package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"quizdeck/internal/config"
)

// loadConfig loads an explicit config path, or searches upward from the
// working directory. Without any config file the defaults rooted at the
// working directory apply.
func loadConfig(configPath string) (config.Config, string, error) {
	if strings.TrimSpace(configPath) != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return config.Config{}, "", fmt.Errorf("resolve config path: %w", err)
		}
		cfg, err := config.Load(abs)
		return cfg, config.RootFromConfigPath(abs), err
	}
	found, err := config.FindConfigPath("")
	if err == nil {
		cfg, loadErr := config.Load(found)
		return cfg, config.RootFromConfigPath(found), loadErr
	}
	if !errors.Is(err, config.ErrConfigNotFound) {
		return config.Config{}, "", err
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, "", fmt.Errorf("get working directory: %w", err)
	}
	cfg, err := config.Default(wd)
	return cfg, wd, err
}
