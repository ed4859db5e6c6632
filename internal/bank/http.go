package bank

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quizdeck/internal/question"
)

// maxBankBytes bounds the size of a bank response body.
const maxBankBytes = 8 << 20

// HTTPLoader fetches banks from a bank server (GET <base>/banks/<id>?subject=<subject>).
type HTTPLoader struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPLoader returns a loader with a bounded client timeout.
func NewHTTPLoader(baseURL string) *HTTPLoader {
	return &HTTPLoader{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Load requests and validates the bank for ref.
func (l *HTTPLoader) Load(ctx context.Context, ref Ref) (question.Bank, error) {
	if !validRef(ref) {
		return question.Bank{}, ErrNotFound
	}
	endpoint := l.BaseURL + "/banks/" + url.PathEscape(ref.BankID)
	if ref.SubjectID != "" {
		endpoint += "?subject=" + url.QueryEscape(ref.SubjectID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return question.Bank{}, &TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return question.Bank{}, &TransportError{Op: "GET " + endpoint, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return question.Bank{}, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return question.Bank{}, &TransportError{Op: "GET " + endpoint, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBankBytes))
	if err != nil {
		return question.Bank{}, &TransportError{Op: "read body", Err: err}
	}
	parsed, err := question.ParseBank(data, ".json")
	if err != nil {
		return question.Bank{}, &TransportError{Op: "decode body", Err: err}
	}
	if parsed.ID == "" {
		parsed.ID = ref.BankID
	}
	normalized, err := question.NormalizeBank(parsed)
	if err != nil {
		return question.Bank{}, &TransportError{Op: "validate bank", Err: err}
	}
	return normalized, nil
}
