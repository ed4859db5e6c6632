package bank

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quizdeck/internal/question"
	"quizdeck/internal/testutil"
)

const testTimeout = 2 * time.Second

const capitalsYAML = `version: 1
name: Capitals
questions:
  - id: fr
    text: Capital of France?
    options: [{key: a, text: Paris}, {key: b, text: Lyon}]
    correct_answers: [a]
  - id: it
    text: Capital of Italy?
    correct_answers: [Rome]
`

// TestDirLoaderLoadsSubjectBank verifies subject-qualified file lookup.
func TestDirLoaderLoadsSubjectBank(t *testing.T) {
	ctx := testutil.Context(t, testTimeout)
	root := t.TempDir()
	testutil.WriteFile(t, root, filepath.Join("geo", "capitals.yml"), capitalsYAML)

	loaded, err := DirLoader{Root: root}.Load(ctx, Ref{BankID: "capitals", SubjectID: "geo"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != "capitals" || loaded.Subject != "geo" || loaded.Len() != 2 {
		t.Fatalf("unexpected bank: %+v", loaded)
	}
}

// TestDirLoaderNotFound verifies missing and unsafe references report ErrNotFound.
func TestDirLoaderNotFound(t *testing.T) {
	ctx := testutil.Context(t, testTimeout)
	loader := DirLoader{Root: t.TempDir()}
	for _, ref := range []Ref{
		{BankID: "missing"},
		{BankID: "../etc/passwd"},
		{BankID: "x", SubjectID: ".."},
		{BankID: " "},
	} {
		if _, err := loader.Load(ctx, ref); !errors.Is(err, ErrNotFound) {
			t.Fatalf("ref %+v: expected ErrNotFound, got %v", ref, err)
		}
	}
}

// TestDirLoaderInvalidFileIsTransportError verifies provider-side corruption is classified.
func TestDirLoaderInvalidFileIsTransportError(t *testing.T) {
	ctx := testutil.Context(t, testTimeout)
	root := t.TempDir()
	testutil.WriteFile(t, root, "broken.yml", "version: [\n")
	_, err := DirLoader{Root: root}.Load(ctx, Ref{BankID: "broken"})
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

// TestDirLoaderList verifies banks at root and one subject level are listed.
func TestDirLoaderList(t *testing.T) {
	ctx := testutil.Context(t, testTimeout)
	root := t.TempDir()
	testutil.WriteFile(t, root, "capitals.yml", capitalsYAML)
	testutil.WriteFile(t, root, filepath.Join("geo", "rivers.yml"), "version: 1\nquestions: []\n")
	testutil.WriteFile(t, root, "notes.txt", "ignored")

	summaries, err := DirLoader{Root: root}.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 banks, got %+v", summaries)
	}
	if summaries[0].ID != "capitals" || summaries[0].Questions != 2 {
		t.Fatalf("unexpected first summary: %+v", summaries[0])
	}
	if summaries[1].ID != "rivers" || summaries[1].Subject != "geo" {
		t.Fatalf("unexpected second summary: %+v", summaries[1])
	}
}

// TestHTTPLoaderClassifiesResponses verifies status handling of the HTTP loader.
func TestHTTPLoaderClassifiesResponses(t *testing.T) {
	ctx := testutil.Context(t, testTimeout)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/banks/capitals":
			if r.URL.Query().Get("subject") != "geo" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":1,"id":"capitals","name":"Capitals","questions":[
				{"id":"fr","text":"Capital of France?","options":[{"key":"a","text":"Paris"}],"correct_answers":["a"]}]}`))
		case "/banks/broken":
			_, _ = w.Write([]byte(`{"questions": 5}`))
		case "/banks/down":
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	loader := NewHTTPLoader(server.URL + "/")

	loaded, err := loader.Load(ctx, Ref{BankID: "capitals", SubjectID: "geo"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Name != "Capitals" || loaded.Len() != 1 {
		t.Fatalf("unexpected bank: %+v", loaded)
	}
	if _, err := loader.Load(ctx, Ref{BankID: "capitals"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found without subject, got %v", err)
	}
	for _, id := range []string{"broken", "down"} {
		var transportErr *TransportError
		if _, err := loader.Load(ctx, Ref{BankID: id}); !errors.As(err, &transportErr) {
			t.Fatalf("%s: expected transport error, got %v", id, err)
		}
	}
}

// TestHTTPLoaderUnreachable verifies network failures are transport errors.
func TestHTTPLoaderUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	_, err := NewHTTPLoader(url).Load(context.Background(), Ref{BankID: "x"})
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

// TestSQLCatalogImportLoadList verifies the sqlite catalog round trip and replacement.
func TestSQLCatalogImportLoadList(t *testing.T) {
	ctx := testutil.Context(t, testTimeout)
	catalog, err := OpenCatalog(ctx, DriverSQLite, "file:"+filepath.Join(t.TempDir(), "banks.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { _ = catalog.Close() })

	original := question.Bank{
		ID:      "primes",
		Name:    "Primes",
		Subject: "math",
		Questions: []question.Question{
			{ID: "p1", Text: "Which are prime?", Options: []question.Option{{Key: "a", Text: "2"}, {Key: "b", Text: "4"}, {Key: "c", Text: "5"}}, CorrectAnswers: []string{"a", "c"}},
			{ID: "p2", Text: "Smallest odd prime?", CorrectAnswers: []string{"3"}},
		},
	}
	if err := catalog.Import(ctx, original); err != nil {
		t.Fatalf("import: %v", err)
	}
	loaded, err := catalog.Load(ctx, Ref{BankID: "primes", SubjectID: "math"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != 2 || loaded.Questions[0].ID != "p1" || !loaded.Questions[0].IsMultiSelect() {
		t.Fatalf("unexpected loaded bank: %+v", loaded)
	}
	if !loaded.Questions[1].IsFreeText() {
		t.Fatalf("expected second question to stay free text")
	}

	original.Questions = original.Questions[:1]
	if err := catalog.Import(ctx, original); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	summaries, err := catalog.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Questions != 1 {
		t.Fatalf("expected replaced bank with 1 question, got %+v", summaries)
	}
	if _, err := catalog.Load(ctx, Ref{BankID: "primes"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected subject-less lookup to miss, got %v", err)
	}
}

func TestOpenCatalogWrapsConnectErrors(t *testing.T) {
	ctx := testutil.Context(t, testTimeout)
	dsn := "file:" + filepath.Join(t.TempDir(), "missing", "dir", "banks.db")
	_, err := OpenCatalog(ctx, DriverSQLite, dsn)
	if err == nil {
		t.Fatalf("expected error for unreachable catalog")
	}
	if !strings.Contains(err.Error(), "open sqlite catalog") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
