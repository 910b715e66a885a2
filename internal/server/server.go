// Package server exposes the HTTP API: review and refine actions, resume
// parsing, history recall, settings, identity, and health probes. It is the
// action boundary of the error taxonomy: every failure leaves here as either
// a result-with-notes or a status-coded JSON error, never an unhandled fault.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"resume-reviewer/internal/config"
	"resume-reviewer/internal/domain"
	"resume-reviewer/internal/storage"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reviewer runs the review and refine actions. Satisfied by
// review.Orchestrator.
type Reviewer interface {
	Review(ctx context.Context, req domain.ReviewRequest) (domain.ReviewResult, error)
	Refine(ctx context.Context, req domain.RefineRequest) (domain.ReviewResult, error)
}

// Server holds the API dependencies and the concurrency gate for review
// actions.
type Server struct {
	cfg      *config.Config
	reviewer Reviewer
	store    storage.Repository
	sem      chan struct{}
}

// New creates the API server.
func New(cfg *config.Config, reviewer Reviewer, store storage.Repository) *Server {
	return &Server{
		cfg:      cfg,
		reviewer: reviewer,
		store:    store,
		sem:      make(chan struct{}, cfg.Server.ConcurrencyLimit),
	}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIdentity)
	mux.HandleFunc("GET /health/live", s.handleLive)
	mux.HandleFunc("GET /health/ready", s.handleReady)

	mux.HandleFunc("POST /api/review", s.handleReview)
	mux.HandleFunc("POST /api/review_file", s.handleReviewFile)
	mux.HandleFunc("POST /api/refine", s.handleRefine)
	mux.HandleFunc("POST /api/parse_resume", s.handleParseResume)

	mux.HandleFunc("GET /api/history", s.handleHistoryList)
	mux.HandleFunc("DELETE /api/history", s.handleHistoryClear)

	mux.HandleFunc("GET /api/settings", s.handleSettingsGet)
	mux.HandleFunc("PUT /api/settings", s.handleSettingsPut)

	mux.Handle("GET /metrics", promhttp.Handler())

	return s.withCORS(mux)
}

// withCORS adds the headers the client shell needs and answers preflights.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.Server.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// storageCtx bounds a storage operation independent of the request context,
// so a client disconnect after a completed review does not lose the history
// write.
func (s *Server) storageCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.cfg.Storage.Timeout)
}
