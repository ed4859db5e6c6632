package bankserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"quizdeck/internal/bank"
	"quizdeck/internal/testutil"
)

const testTimeout = 2 * time.Second

const planetsYAML = `name: Planets
questions:
  - id: red
    text: Which planet is red?
    options: [{key: a, text: Mars}, {key: b, text: Venus}]
    correct_answers: [a]
`

func newCatalog(t *testing.T) bank.DirLoader {
	t.Helper()
	root := t.TempDir()
	testutil.WriteFile(t, root, filepath.Join("space", "planets.yml"), planetsYAML)
	testutil.WriteFile(t, root, "broken.yml", "questions: [")
	return bank.DirLoader{Root: root}
}

// TestNewHandlerRequiresCatalog ensures the handler refuses a missing catalog.
func TestNewHandlerRequiresCatalog(t *testing.T) {
	if _, err := NewHandler(Config{}); err == nil {
		t.Fatalf("expected error without catalog")
	}
}

// TestHTTPLoaderRoundTrip serves a directory catalog and reads it back with the HTTP loader.
func TestHTTPLoaderRoundTrip(t *testing.T) {
	ctx := testutil.Context(t, testTimeout)
	handler, err := NewHandler(Config{Catalog: newCatalog(t)})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	server := httptest.NewServer(handler)
	defer server.Close()

	loader := bank.NewHTTPLoader(server.URL)
	loaded, err := loader.Load(ctx, bank.Ref{BankID: "planets", SubjectID: "space"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Name != "Planets" || loaded.Len() != 1 || loaded.Questions[0].CorrectAnswers[0] != "a" {
		t.Fatalf("unexpected bank: %+v", loaded)
	}

	if _, err := loader.Load(ctx, bank.Ref{BankID: "planets"}); !errors.Is(err, bank.ErrNotFound) {
		t.Fatalf("expected not found without subject, got %v", err)
	}
	var transportErr *bank.TransportError
	if _, err := loader.Load(ctx, bank.Ref{BankID: "broken"}); !errors.As(err, &transportErr) {
		t.Fatalf("expected transport error for broken bank, got %v", err)
	}
}

// TestListBanks verifies the catalog listing endpoint.
func TestListBanks(t *testing.T) {
	handler, err := NewHandler(Config{Catalog: newCatalog(t)})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "http://example.com/banks", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var summaries []bank.Summary
	if err := json.Unmarshal(resp.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != "planets" || summaries[0].Questions != 1 {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
}

// TestHealthAndCORS verifies the health endpoint and CORS preflight handling.
func TestHealthAndCORS(t *testing.T) {
	handler, err := NewHandler(Config{Catalog: newCatalog(t), CORSOrigins: []string{"http://localhost:3000"}})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "http://example.com/health", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	preflight := httptest.NewRequest(http.MethodOptions, "http://example.com/banks", nil)
	preflight.Header.Set("Origin", "http://localhost:3000")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, preflight)
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected CORS origin header, got %q", got)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.Context(t, testTimeout))
	catalog := bank.DirLoader{Root: t.TempDir()}
	errCh := make(chan error, 1)
	go func() {
		errCh <- Serve(ctx, Config{Addr: "127.0.0.1:0", Catalog: catalog})
	}()
	cancel()
	testutil.RunWithTimeout(t, testTimeout, func() {
		if err := <-errCh; err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	})
}

func TestServeRequiresAddr(t *testing.T) {
	err := Serve(testutil.Context(t, testTimeout), Config{Catalog: bank.DirLoader{}})
	if err == nil {
		t.Fatalf("expected error for missing addr")
	}
}
