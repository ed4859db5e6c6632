package config

import (
	"strconv"
	"strings"
)

// Environment variables that override config file values.
const (
	EnvBanksSource        = "QUIZDECK_BANKS_SOURCE"
	EnvBanksDir           = "QUIZDECK_BANKS_DIR"
	EnvBanksURL           = "QUIZDECK_BANKS_URL"
	EnvBanksDriver        = "QUIZDECK_BANKS_DRIVER"
	EnvBanksDSN           = "QUIZDECK_BANKS_DSN"
	EnvStoreDriver        = "QUIZDECK_STORE_DRIVER"
	EnvStoreDSN           = "QUIZDECK_STORE_DSN"
	EnvSecondsPerQuestion = "QUIZDECK_SECONDS_PER_QUESTION"
	EnvPersistPosition    = "QUIZDECK_PERSIST_POSITION"
	EnvListenAddr         = "QUIZDECK_LISTEN_ADDR"
	EnvCORSOrigins        = "QUIZDECK_CORS_ORIGINS"
	EnvLogPath            = "QUIZDECK_LOG_PATH"
	EnvLogLevel           = "QUIZDECK_LOG_LEVEL"
)

// ApplyEnv overrides cfg with values found by lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	collector := &issueCollector{}
	strs := map[string]*string{
		EnvBanksSource: &cfg.Banks.Source,
		EnvBanksDir:    &cfg.Banks.Dir,
		EnvBanksURL:    &cfg.Banks.URL,
		EnvBanksDriver: &cfg.Banks.Driver,
		EnvBanksDSN:    &cfg.Banks.DSN,
		EnvStoreDriver: &cfg.Store.Driver,
		EnvStoreDSN:    &cfg.Store.DSN,
		EnvListenAddr:  &cfg.Server.ListenAddr,
		EnvLogPath:     &cfg.Log.Path,
		EnvLogLevel:    &cfg.Log.Level,
	}
	for name, target := range strs {
		if value, ok := lookup(name); ok {
			*target = strings.TrimSpace(value)
		}
	}
	if value, ok := lookup(EnvSecondsPerQuestion); ok {
		seconds, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			collector.add(EnvSecondsPerQuestion, "must be an integer")
		} else {
			cfg.Session.SecondsPerQuestion = &seconds
		}
	}
	if value, ok := lookup(EnvPersistPosition); ok {
		keep, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			collector.add(EnvPersistPosition, "must be true or false")
		} else {
			cfg.Session.PersistPosition = &keep
		}
	}
	if value, ok := lookup(EnvCORSOrigins); ok {
		var origins []string
		for _, origin := range strings.Split(value, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		cfg.Server.CORSOrigins = origins
	}
	return collector.result()
}
