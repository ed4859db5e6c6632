package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"quizdeck/internal/attemptstore"
	"quizdeck/internal/bank"
	"quizdeck/internal/bankserver"
	"quizdeck/internal/config"
)

func noClose() error { return nil }

// openLoader returns the bank loader selected by banks.source.
func openLoader(ctx context.Context, cfg config.Config) (bank.Loader, func() error, error) {
	switch cfg.Banks.Source {
	case config.SourceHTTP:
		return bank.NewHTTPLoader(cfg.Banks.URL), noClose, nil
	case config.SourceSQL:
		catalog, err := bank.OpenCatalog(ctx, bank.Driver(cfg.Banks.Driver), cfg.Banks.DSN)
		if err != nil {
			return nil, noClose, fmt.Errorf("open bank catalog: %w", err)
		}
		return catalog, catalog.Close, nil
	default:
		return bank.DirLoader{Root: cfg.Banks.Dir}, noClose, nil
	}
}

// openCatalog returns a loader that can also list banks, for serving.
func openCatalog(ctx context.Context, cfg config.Config) (bankserver.Catalog, func() error, error) {
	switch cfg.Banks.Source {
	case config.SourceSQL:
		catalog, err := bank.OpenCatalog(ctx, bank.Driver(cfg.Banks.Driver), cfg.Banks.DSN)
		if err != nil {
			return nil, noClose, fmt.Errorf("open bank catalog: %w", err)
		}
		return catalog, catalog.Close, nil
	case config.SourceDir:
		return bank.DirLoader{Root: cfg.Banks.Dir}, noClose, nil
	default:
		return nil, noClose, fmt.Errorf("banks.source %q cannot be served; use dir or sql", cfg.Banks.Source)
	}
}

// openStore opens the attempt store, creating the config directory that
// holds file-backed stores.
func openStore(ctx context.Context, cfg config.Config, root string, logger *slog.Logger) (*attemptstore.Store, func() error, error) {
	driver := attemptstore.Driver(cfg.Store.Driver)
	if driver != attemptstore.DriverMemory {
		if err := os.MkdirAll(config.ConfigDir(root), 0o755); err != nil {
			return nil, noClose, fmt.Errorf("create %s: %w", config.ConfigDir(root), err)
		}
	}
	kv, closeFn, err := attemptstore.Open(ctx, driver, cfg.Store.DSN)
	if err != nil {
		return nil, noClose, err
	}
	return attemptstore.New(kv, logger), closeFn, nil
}
