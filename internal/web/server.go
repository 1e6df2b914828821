// Package web implements the HTTP layer for the patient report system.
// Handlers are methods on *Server; the pipeline does the actual work and
// this package only maps its results onto pages and downloads.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"patientreport/internal/report"
	"patientreport/internal/token"
)

// Generator runs the report pipeline for one submission. Satisfied by
// *report.Pipeline; tests may inject their own.
type Generator interface {
	Generate(ctx context.Context, req report.Request) (*report.Artifact, error)
}

// Server holds all shared dependencies. Each handler file attaches methods
// to this type and uses only the fields it needs.
type Server struct {
	// resolver decodes prefill tokens on the index page.
	resolver *token.Resolver

	// pipeline validates, renders, and delivers report submissions.
	pipeline Generator

	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.ListenAndServe.
func NewServer(resolver *token.Resolver, pipeline Generator, logger *slog.Logger) http.Handler {
	s := &Server{
		resolver: resolver,
		pipeline: pipeline,
		logger:   logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ── Report flow ───────────────────────────────────────────────────────────
	r.Get("/", s.handleIndex)
	r.Post("/generate_pdf", s.handleGeneratePDF)

	return r
}
