package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"quizdeck/internal/question"
)

// Driver names a SQL catalog backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS banks (
  id TEXT NOT NULL,
  subject TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL,
  PRIMARY KEY (id, subject)
);

CREATE TABLE IF NOT EXISTS bank_questions (
  bank_id TEXT NOT NULL,
  subject TEXT NOT NULL DEFAULT '',
  position INTEGER NOT NULL,
  question_id TEXT NOT NULL,
  text TEXT NOT NULL,
  options_json TEXT NOT NULL,
  correct_json TEXT NOT NULL,
  PRIMARY KEY (bank_id, subject, position)
);
`

// SQLCatalog stores banks in sqlite or postgres and serves them as a Loader.
type SQLCatalog struct {
	db     *sql.DB
	driver Driver
}

// OpenCatalog opens a catalog database and ensures the schema exists.
func OpenCatalog(ctx context.Context, driver Driver, dsn string) (*SQLCatalog, error) {
	var drvName string
	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		drvName = "sqlite"
		if dsn == "" {
			dsn = "file:.quizdeck/banks.db?_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx"
		if dsn == "" {
			dsn = "postgres://localhost:5432/quizdeck?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported catalog driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s catalog: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s catalog: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, catalogSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}
	return &SQLCatalog{db: db, driver: driver}, nil
}

// Close releases the database handle.
func (c *SQLCatalog) Close() error {
	return c.db.Close()
}

// Import replaces the stored copy of a bank with the given one.
func (c *SQLCatalog) Import(ctx context.Context, b question.Bank) error {
	normalized, err := question.NormalizeBank(b)
	if err != nil {
		return err
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, c.rebind("DELETE FROM bank_questions WHERE bank_id = ? AND subject = ?"), normalized.ID, normalized.Subject); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, c.rebind("DELETE FROM banks WHERE id = ? AND subject = ?"), normalized.ID, normalized.Subject); err != nil {
		return fmt.Errorf("clear bank: %w", err)
	}
	if _, err := tx.ExecContext(ctx, c.rebind("INSERT INTO banks (id, subject, name) VALUES (?, ?, ?)"), normalized.ID, normalized.Subject, normalized.Name); err != nil {
		return fmt.Errorf("insert bank: %w", err)
	}
	insert := c.rebind(`INSERT INTO bank_questions
		(bank_id, subject, position, question_id, text, options_json, correct_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for i, q := range normalized.Questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		correct, err := json.Marshal(q.CorrectAnswers)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insert, normalized.ID, normalized.Subject, i, q.ID, q.Text, string(options), string(correct)); err != nil {
			return fmt.Errorf("insert question %s: %w", q.ID, err)
		}
	}
	return tx.Commit()
}

// Load reads a bank and its questions in stored order.
func (c *SQLCatalog) Load(ctx context.Context, ref Ref) (question.Bank, error) {
	if !validRef(ref) {
		return question.Bank{}, ErrNotFound
	}
	loaded := question.Bank{Version: question.CurrentVersion, ID: ref.BankID, Subject: ref.SubjectID}
	err := c.db.QueryRowContext(ctx, c.rebind("SELECT name FROM banks WHERE id = ? AND subject = ?"), ref.BankID, ref.SubjectID).Scan(&loaded.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return question.Bank{}, ErrNotFound
	}
	if err != nil {
		return question.Bank{}, &TransportError{Op: "query bank", Err: err}
	}

	rows, err := c.db.QueryContext(ctx, c.rebind(
		`SELECT question_id, text, options_json, correct_json FROM bank_questions
		 WHERE bank_id = ? AND subject = ? ORDER BY position`), ref.BankID, ref.SubjectID)
	if err != nil {
		return question.Bank{}, &TransportError{Op: "query questions", Err: err}
	}
	defer rows.Close()

	loaded.Questions = []question.Question{}
	for rows.Next() {
		var q question.Question
		var optionsJSON, correctJSON string
		if err := rows.Scan(&q.ID, &q.Text, &optionsJSON, &correctJSON); err != nil {
			return question.Bank{}, &TransportError{Op: "scan question", Err: err}
		}
		if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
			return question.Bank{}, &TransportError{Op: "decode options " + q.ID, Err: err}
		}
		if err := json.Unmarshal([]byte(correctJSON), &q.CorrectAnswers); err != nil {
			return question.Bank{}, &TransportError{Op: "decode answers " + q.ID, Err: err}
		}
		loaded.Questions = append(loaded.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return question.Bank{}, &TransportError{Op: "iterate questions", Err: err}
	}
	return loaded, nil
}

// List summarizes every stored bank.
func (c *SQLCatalog) List(ctx context.Context) ([]Summary, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT b.id, b.subject, b.name, COUNT(q.position)
		FROM banks b
		LEFT JOIN bank_questions q ON q.bank_id = b.id AND q.subject = b.subject
		GROUP BY b.id, b.subject, b.name
		ORDER BY b.subject, b.id`)
	if err != nil {
		return nil, &TransportError{Op: "list banks", Err: err}
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Subject, &s.Name, &s.Questions); err != nil {
			return nil, &TransportError{Op: "scan bank", Err: err}
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// rebind rewrites ? placeholders to $n for postgres.
func (c *SQLCatalog) rebind(query string) string {
	if c.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
