// Package bankserver exposes a bank catalog over HTTP for bank.HTTPLoader.
package bankserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"quizdeck/internal/bank"
)

// Catalog is what the server reads banks from.
type Catalog interface {
	bank.Loader
	bank.Lister
}

// Config captures the settings for serving a bank catalog.
type Config struct {
	Addr        string
	Catalog     Catalog
	CORSOrigins []string
	Logger      *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

// NewHandler builds the HTTP routes:
//
//	GET /health
//	GET /banks
//	GET /banks/{bankID}?subject=<subject>
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("bankserver: catalog is required")
	}
	logger := cfg.logger()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"Content-Length"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/banks", listBanks(cfg.Catalog, logger))
	r.Get("/banks/{bankID}", getBank(cfg.Catalog, logger))
	return r, nil
}

func listBanks(catalog Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := catalog.List(r.Context())
		if err != nil {
			logger.Error("list banks", "error", err)
			respondError(w, http.StatusInternalServerError, "could not list banks")
			return
		}
		if summaries == nil {
			summaries = []bank.Summary{}
		}
		respondJSON(w, http.StatusOK, summaries)
	}
}

func getBank(catalog Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := bank.Ref{
			BankID:    chi.URLParam(r, "bankID"),
			SubjectID: r.URL.Query().Get("subject"),
		}
		b, err := catalog.Load(r.Context(), ref)
		switch {
		case errors.Is(err, bank.ErrNotFound):
			respondError(w, http.StatusNotFound, "bank not found")
			return
		case err != nil:
			logger.Error("load bank", "ref", ref.String(), "error", err)
			respondError(w, http.StatusBadGateway, "could not load bank")
			return
		}
		respondJSON(w, http.StatusOK, b)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
