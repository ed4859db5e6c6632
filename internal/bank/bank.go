// Package bank fetches immutable question banks from external providers.
package bank

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quizdeck/internal/question"
)

// ErrNotFound is returned when no bank matches the requested reference.
var ErrNotFound = errors.New("bank not found")

// TransportError wraps a provider or network failure while fetching a bank.
type TransportError struct {
	Op  string
	Err error
}

// Error renders the failed operation and cause.
func (e *TransportError) Error() string {
	return fmt.Sprintf("bank transport: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Ref identifies a bank, optionally qualified by subject.
type Ref struct {
	BankID    string
	SubjectID string
}

// String renders the reference as subject/bank.
func (r Ref) String() string {
	if r.SubjectID == "" {
		return r.BankID
	}
	return r.SubjectID + "/" + r.BankID
}

// Summary describes a bank without its questions.
type Summary struct {
	ID        string `json:"id"`
	Subject   string `json:"subject,omitempty"`
	Name      string `json:"name"`
	Questions int    `json:"questions"`
}

// Loader fetches a bank by reference. Implementations return ErrNotFound or
// a *TransportError on failure.
type Loader interface {
	Load(ctx context.Context, ref Ref) (question.Bank, error)
}

// Lister enumerates the banks a provider can serve.
type Lister interface {
	List(ctx context.Context) ([]Summary, error)
}

// validRef rejects identifiers that could escape a provider namespace.
func validRef(ref Ref) bool {
	for _, part := range []string{ref.BankID, ref.SubjectID} {
		if strings.ContainsAny(part, `/\`) || part == "." || part == ".." {
			return false
		}
	}
	return strings.TrimSpace(ref.BankID) != ""
}

func summarize(b question.Bank) Summary {
	return Summary{ID: b.ID, Subject: b.Subject, Name: b.Name, Questions: len(b.Questions)}
}
