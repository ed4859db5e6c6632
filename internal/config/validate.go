package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

var (
	bankSources  = []string{SourceDir, SourceHTTP, SourceSQL}
	bankDrivers  = []string{"sqlite", "postgres"}
	storeDrivers = []string{"sqlite", "duckdb", "memory"}
	logLevels    = []string{"debug", "info", "warn", "error"}
)

// Validate checks a normalized config.
func Validate(cfg *Config) error {
	collector := &issueCollector{}

	if cfg.Version == 0 {
		collector.add("version", "is required")
	} else if cfg.Version != CurrentVersion {
		collector.add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	validateBanks(cfg.Banks, collector.add)
	if !slices.Contains(storeDrivers, cfg.Store.Driver) {
		collector.add("store.driver", fmt.Sprintf("must be one of %s", strings.Join(storeDrivers, ", ")))
	}
	if cfg.Session.SecondsPerQuestion != nil && *cfg.Session.SecondsPerQuestion < 0 {
		collector.add("session.seconds_per_question", "must be zero or positive")
	}
	if strings.TrimSpace(cfg.Server.ListenAddr) == "" {
		collector.add("server.listen_addr", "is required")
	}
	for i, origin := range cfg.Server.CORSOrigins {
		if strings.TrimSpace(origin) == "" {
			collector.add(fmt.Sprintf("server.cors_origins[%d]", i), "must not be blank")
		}
	}
	if !slices.Contains(logLevels, cfg.Log.Level) {
		collector.add("log.level", fmt.Sprintf("must be one of %s", strings.Join(logLevels, ", ")))
	}

	return collector.result()
}

func validateBanks(banks BanksConfig, add issueAdder) {
	if !slices.Contains(bankSources, banks.Source) {
		add("banks.source", fmt.Sprintf("must be one of %s", strings.Join(bankSources, ", ")))
		return
	}
	switch banks.Source {
	case SourceDir:
		if strings.TrimSpace(banks.Dir) == "" {
			add("banks.dir", "is required")
		}
	case SourceHTTP:
		if strings.TrimSpace(banks.URL) == "" {
			add("banks.url", "is required for the http source")
			return
		}
		parsed, err := url.Parse(banks.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			add("banks.url", "must be an absolute http(s) URL")
		}
	case SourceSQL:
		if !slices.Contains(bankDrivers, banks.Driver) {
			add("banks.driver", fmt.Sprintf("must be one of %s", strings.Join(bankDrivers, ", ")))
		}
		if strings.TrimSpace(banks.DSN) == "" {
			add("banks.dsn", "is required for the sql source")
		}
	}
}
