package attemptstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2" // driver: duckdb
	_ "modernc.org/sqlite"             // driver: sqlite
)

// Driver names an attempt store backend.
type Driver string

const (
	DriverSQLite Driver = "sqlite"
	DriverDuckDB Driver = "duckdb"
	DriverMemory Driver = "memory"
)

// DefaultSQLiteDSN is used when the sqlite driver is selected without a DSN.
const DefaultSQLiteDSN = "file:.quizdeck/attempts.db?_pragma=busy_timeout(5000)"

const schema = `
CREATE TABLE IF NOT EXISTS attempt_kv (
  attempt_key TEXT PRIMARY KEY,
  payload TEXT NOT NULL
);
`

// SQL is a KV backed by a single attempt_kv table in sqlite or DuckDB.
type SQL struct {
	db *sql.DB
}

// Open opens an attempt KV for the given driver and ensures the schema exists.
// The memory driver ignores dsn.
func Open(ctx context.Context, driver Driver, dsn string) (KV, func() error, error) {
	var drvName string
	switch driver {
	case DriverMemory:
		return NewMemory(), func() error { return nil }, nil
	case DriverSQLite, "":
		drvName = "sqlite"
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
	case DriverDuckDB:
		drvName = "duckdb"
	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", drvName, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s store: %w", drvName, err)
	}
	store, err := NewSQL(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, db.Close, nil
}

// NewSQL wraps an open database and applies the attempt_kv schema.
func NewSQL(ctx context.Context, db *sql.DB) (*SQL, error) {
	if db == nil {
		return nil, errors.New("attemptstore: db is nil")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply attempt schema: %w", err)
	}
	return &SQL{db: db}, nil
}

// Get returns the value stored under key.
func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM attempt_kv WHERE attempt_key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts value under key.
func (s *SQL) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO attempt_kv (attempt_key, payload) VALUES (?, ?)
		 ON CONFLICT (attempt_key) DO UPDATE SET payload = excluded.payload`,
		key,
		value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *SQL) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM attempt_kv WHERE attempt_key = ?", key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
