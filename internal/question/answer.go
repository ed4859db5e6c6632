package question

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AnswerKind distinguishes the shapes an answer value can take.
type AnswerKind int

const (
	// AnswerSkipped marks a question the user explicitly gave up on.
	AnswerSkipped AnswerKind = iota
	// AnswerChoice holds one or more selected option keys.
	AnswerChoice
	// AnswerText holds a typed free-text response.
	AnswerText
)

// Answer is the value recorded for a question. An unanswered question has no
// Answer at all; Skipped is an explicit "no answer".
type Answer struct {
	Kind AnswerKind
	Keys []string
	Text string
}

// ErrInvalidAnswer is returned when a persisted answer cannot be decoded.
var ErrInvalidAnswer = errors.New("invalid answer value")

// Choice returns an answer selecting the given option keys.
func Choice(keys ...string) Answer {
	return Answer{Kind: AnswerChoice, Keys: normalizeKeys(keys)}
}

// Text returns a free-text answer.
func Text(value string) Answer {
	return Answer{Kind: AnswerText, Text: value}
}

// Skipped returns the explicit no-answer marker.
func Skipped() Answer {
	return Answer{Kind: AnswerSkipped}
}

// IsSkipped reports whether the answer is the explicit no-answer marker.
func (a Answer) IsSkipped() bool {
	return a.Kind == AnswerSkipped
}

// IsEmpty reports whether the answer carries no usable response.
func (a Answer) IsEmpty() bool {
	switch a.Kind {
	case AnswerChoice:
		return len(a.Keys) == 0
	case AnswerText:
		return strings.TrimSpace(a.Text) == ""
	default:
		return true
	}
}

// Has reports whether key is among the selected option keys.
func (a Answer) Has(key string) bool {
	if a.Kind != AnswerChoice {
		return false
	}
	for _, selected := range a.Keys {
		if selected == key {
			return true
		}
	}
	return false
}

// Toggle returns a copy with key added or removed from the selection.
func (a Answer) Toggle(key string) Answer {
	if a.Kind != AnswerChoice {
		return Choice(key)
	}
	keys := make([]string, 0, len(a.Keys)+1)
	found := false
	for _, selected := range a.Keys {
		if selected == key {
			found = true
			continue
		}
		keys = append(keys, selected)
	}
	if !found {
		keys = append(keys, key)
	}
	return Choice(keys...)
}

// Equal reports whether two answers hold the same value.
func (a Answer) Equal(other Answer) bool {
	if a.Kind != other.Kind || a.Text != other.Text || len(a.Keys) != len(other.Keys) {
		return false
	}
	for i := range a.Keys {
		if a.Keys[i] != other.Keys[i] {
			return false
		}
	}
	return true
}

// String renders the answer for display.
func (a Answer) String() string {
	switch a.Kind {
	case AnswerChoice:
		return strings.Join(a.Keys, ", ")
	case AnswerText:
		return a.Text
	default:
		return "(no answer)"
	}
}

// MarshalJSON encodes skips as null, choices as {"keys":[...]} and text as {"text":"..."}.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerChoice:
		keys := a.Keys
		if keys == nil {
			keys = []string{}
		}
		return json.Marshal(struct {
			Keys []string `json:"keys"`
		}{Keys: keys})
	case AnswerText:
		return json.Marshal(struct {
			Text string `json:"text"`
		}{Text: a.Text})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes the representation written by MarshalJSON.
func (a *Answer) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAnswerJSON(data)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAnswerJSON decodes a single persisted answer value.
func ParseAnswerJSON(data []byte) (Answer, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Answer{}, ErrInvalidAnswer
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return Skipped(), nil
	}
	var wire struct {
		Keys *[]string `json:"keys"`
		Text *string   `json:"text"`
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&wire); err != nil {
		return Answer{}, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}
	switch {
	case wire.Keys != nil && wire.Text == nil:
		return Choice(*wire.Keys...), nil
	case wire.Text != nil && wire.Keys == nil:
		return Text(*wire.Text), nil
	default:
		return Answer{}, fmt.Errorf("%w: expected exactly one of keys or text", ErrInvalidAnswer)
	}
}
