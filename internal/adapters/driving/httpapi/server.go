// Package httpapi provides the JSON HTTP API for styleaudit.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driving"
)

// maxDocumentBytes bounds the size of documents submitted for audit.
const maxDocumentBytes = 10 << 20

// ErrMissingService is returned when a required service is not provided.
var ErrMissingService = errors.New("httpapi: search and audit services are required")

// DocumentParser splits an uploaded document into audit chunks.
type DocumentParser interface {
	Parse(ctx context.Context, name string, content []byte) ([]domain.DocumentChunk, error)
}

// Ports aggregates the driving ports the API serves.
type Ports struct {
	Search  driving.SearchService
	Audit   driving.AuditService
	Parser  DocumentParser
	Guides  driving.GuideService
	Reports driving.ReportService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil || p.Audit == nil || p.Parser == nil {
		return ErrMissingService
	}
	return nil
}

// Server is the HTTP server for the styleaudit API.
type Server struct {
	ports  *Ports
	logger *zap.Logger
	router chi.Router
}

// NewServer creates a server with the given dependencies.
func NewServer(ports *Ports, logger *zap.Logger) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{ports: ports, logger: logger}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/audit", s.handleAudit)

		r.Get("/guides", s.handleListGuides)
		r.Put("/guides/{id}/hidden", s.handleHideGuide)
		r.Delete("/guides/{id}/hidden", s.handleUnhideGuide)

		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
		r.Post("/reports/{id}/export", s.handleExportReport)
	})
	return r
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the API on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown failed", zap.Error(err))
		}
	}()

	s.logger.Info("starting server", zap.String("addr", addr))
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("serve %s: %w", addr, err)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
