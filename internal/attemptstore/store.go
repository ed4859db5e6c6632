package attemptstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"quizdeck/internal/question"
)

// Untimed is the persisted time value of a session without a countdown.
const Untimed = -1

// Field names one persisted part of an attempt.
type Field string

const (
	FieldAnswers   Field = "answers"
	FieldFlags     Field = "flags"
	FieldChecked   Field = "checked"
	FieldTime      Field = "time"
	FieldCompleted Field = "completed"
	FieldPosition  Field = "position"
)

// Fields lists every persisted field in write order.
var Fields = []Field{FieldAnswers, FieldFlags, FieldChecked, FieldTime, FieldPosition, FieldCompleted}

// Key returns the namespaced store key for a bank field.
func Key(bankID string, field Field) string {
	return "attempt:" + bankID + ":" + string(field)
}

// Snapshot is the persisted view of one attempt.
type Snapshot struct {
	Answers       map[string]question.Answer
	Flags         map[string]bool
	Checked       map[string]bool
	TimeRemaining int
	HasTime       bool
	Position      int
	HasPosition   bool
	Completed     bool
}

// HasProgress reports whether any answers, flags or checked results were saved.
// A saved timer alone does not count.
func (s Snapshot) HasProgress() bool {
	return len(s.Answers) > 0 || len(s.Flags) > 0 || len(s.Checked) > 0
}

// Store reads and writes typed attempt snapshots on top of a KV.
type Store struct {
	kv     KV
	logger *slog.Logger
}

// New returns a Store. A nil logger discards corruption reports.
func New(kv KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{kv: kv, logger: logger}
}

// Load reads every field of a bank's attempt. Missing, unreadable and corrupt
// fields fall back to their zero value; Load never fails.
func (s *Store) Load(ctx context.Context, bankID string) Snapshot {
	snapshot := Snapshot{
		Answers: map[string]question.Answer{},
		Flags:   map[string]bool{},
		Checked: map[string]bool{},
	}
	if raw, ok := s.read(ctx, bankID, FieldAnswers); ok {
		if answers, err := decodeAnswers(raw); err != nil {
			s.corrupt(bankID, FieldAnswers, err)
		} else {
			snapshot.Answers = answers
		}
	}
	if raw, ok := s.read(ctx, bankID, FieldFlags); ok {
		if flags, err := decodeBoolMap(raw); err != nil {
			s.corrupt(bankID, FieldFlags, err)
		} else {
			snapshot.Flags = flags
		}
	}
	if raw, ok := s.read(ctx, bankID, FieldChecked); ok {
		if checked, err := decodeBoolMap(raw); err != nil {
			s.corrupt(bankID, FieldChecked, err)
		} else {
			snapshot.Checked = checked
		}
	}
	if raw, ok := s.read(ctx, bankID, FieldTime); ok {
		var seconds int
		if err := json.Unmarshal([]byte(raw), &seconds); err != nil {
			s.corrupt(bankID, FieldTime, err)
		} else if seconds < Untimed {
			s.corrupt(bankID, FieldTime, fmt.Errorf("negative time %d", seconds))
		} else {
			snapshot.TimeRemaining = seconds
			snapshot.HasTime = true
		}
	}
	if raw, ok := s.read(ctx, bankID, FieldPosition); ok {
		var position int
		if err := json.Unmarshal([]byte(raw), &position); err != nil || position < 0 {
			if err == nil {
				err = fmt.Errorf("negative position %d", position)
			}
			s.corrupt(bankID, FieldPosition, err)
		} else {
			snapshot.Position = position
			snapshot.HasPosition = true
		}
	}
	if raw, ok := s.read(ctx, bankID, FieldCompleted); ok {
		var completed bool
		if err := json.Unmarshal([]byte(raw), &completed); err != nil {
			s.corrupt(bankID, FieldCompleted, err)
		} else {
			snapshot.Completed = completed
		}
	}
	return snapshot
}

// SaveAnswers persists the answers map.
func (s *Store) SaveAnswers(ctx context.Context, bankID string, answers map[string]question.Answer) error {
	return s.write(ctx, bankID, FieldAnswers, answers)
}

// SaveFlags persists the flags map.
func (s *Store) SaveFlags(ctx context.Context, bankID string, flags map[string]bool) error {
	return s.write(ctx, bankID, FieldFlags, flags)
}

// SaveChecked persists the checked map.
func (s *Store) SaveChecked(ctx context.Context, bankID string, checked map[string]bool) error {
	return s.write(ctx, bankID, FieldChecked, checked)
}

// SaveTime persists the remaining seconds, or Untimed.
func (s *Store) SaveTime(ctx context.Context, bankID string, seconds int) error {
	return s.write(ctx, bankID, FieldTime, seconds)
}

// SavePosition persists the current index into the presentation order.
func (s *Store) SavePosition(ctx context.Context, bankID string, position int) error {
	return s.write(ctx, bankID, FieldPosition, position)
}

// SaveCompleted persists the completion flag.
func (s *Store) SaveCompleted(ctx context.Context, bankID string, completed bool) error {
	return s.write(ctx, bankID, FieldCompleted, completed)
}

// Save writes every field of a snapshot.
func (s *Store) Save(ctx context.Context, bankID string, snapshot Snapshot) error {
	var errs []error
	errs = append(errs, s.SaveAnswers(ctx, bankID, snapshot.Answers))
	errs = append(errs, s.SaveFlags(ctx, bankID, snapshot.Flags))
	errs = append(errs, s.SaveChecked(ctx, bankID, snapshot.Checked))
	if snapshot.HasTime {
		errs = append(errs, s.SaveTime(ctx, bankID, snapshot.TimeRemaining))
	}
	if snapshot.HasPosition {
		errs = append(errs, s.SavePosition(ctx, bankID, snapshot.Position))
	}
	errs = append(errs, s.SaveCompleted(ctx, bankID, snapshot.Completed))
	return errors.Join(errs...)
}

// Clear removes every persisted field of a bank's attempt.
func (s *Store) Clear(ctx context.Context, bankID string) error {
	var errs []error
	for _, field := range Fields {
		if err := s.kv.Remove(ctx, Key(bankID, field)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) read(ctx context.Context, bankID string, field Field) (string, bool) {
	raw, ok, err := s.kv.Get(ctx, Key(bankID, field))
	if err != nil {
		s.corrupt(bankID, field, err)
		return "", false
	}
	return raw, ok
}

func (s *Store) write(ctx context.Context, bankID string, field Field, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", field, err)
	}
	return s.kv.Set(ctx, Key(bankID, field), string(data))
}

func (s *Store) corrupt(bankID string, field Field, err error) {
	s.logger.Warn("ignoring unreadable attempt field", "bank_id", bankID, "field", string(field), "error", err)
}

func decodeAnswers(raw string) (map[string]question.Answer, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	answers := make(map[string]question.Answer, len(entries))
	for id, entry := range entries {
		answer, err := question.ParseAnswerJSON(entry)
		if err != nil {
			return nil, fmt.Errorf("answer %s: %w", id, err)
		}
		answers[id] = answer
	}
	return answers, nil
}

func decodeBoolMap(raw string) (map[string]bool, error) {
	var values map[string]bool
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = map[string]bool{}
	}
	return values, nil
}
