package config

// Config is the parsed .quizdeck/config.yml.
type Config struct {
	Version int           `yaml:"version"`
	Banks   BanksConfig   `yaml:"banks"`
	Store   StoreConfig   `yaml:"store"`
	Session SessionConfig `yaml:"session"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// Bank sources.
const (
	SourceDir  = "dir"
	SourceHTTP = "http"
	SourceSQL  = "sql"
)

// BanksConfig selects where banks are loaded from.
type BanksConfig struct {
	Source string `yaml:"source"`
	Dir    string `yaml:"dir"`
	URL    string `yaml:"url"`
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// StoreConfig selects the attempt store backend.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SessionConfig tunes quiz sessions. Zero seconds per question runs untimed.
type SessionConfig struct {
	SecondsPerQuestion *int  `yaml:"seconds_per_question"`
	PersistPosition    *bool `yaml:"persist_position"`
}

// ServerConfig configures `quizdeck serve`.
type ServerConfig struct {
	ListenAddr  string   `yaml:"listen_addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LogConfig configures the log file. An empty path discards logs.
type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// Seconds returns the configured seconds per question.
func (s SessionConfig) Seconds() int {
	if s.SecondsPerQuestion == nil {
		return DefaultSecondsPerQuestion
	}
	return *s.SecondsPerQuestion
}

// KeepPosition reports whether the current question index is persisted.
func (s SessionConfig) KeepPosition() bool {
	return s.PersistPosition == nil || *s.PersistPosition
}
