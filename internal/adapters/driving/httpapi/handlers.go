package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
	"github.com/custodia-labs/styleaudit/internal/core/services"
)

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type searchResponse struct {
	Query   string                `json:"query"`
	Results []domain.SearchResult `json:"results"`
	Text    string                `json:"text"`
}

// auditRequest carries a document by name. Text formats go in Content;
// binary formats such as .docx go base64-encoded in ContentBase64.
type auditRequest struct {
	Name          string `json:"name"`
	Content       string `json:"content,omitempty"`
	ContentBase64 string `json:"content_base64,omitempty"`
}

type auditResponse struct {
	*domain.AuditReport
	RevisedText string `json:"revised_text"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.Int("top_k", req.TopK))

	results, err := s.ports.Search.Find(r.Context(), req.Query, req.TopK)
	if err != nil && !errors.Is(err, domain.ErrNoGuides) {
		s.respondDomainError(w, "search failed", err)
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	s.respondJSON(w, http.StatusOK, searchResponse{
		Query:   req.Query,
		Results: results,
		Text:    services.FormatResults(results),
	})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes)

	var req auditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "document too large")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	content := []byte(req.Content)
	if req.ContentBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ContentBase64)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "content_base64 is not valid base64")
			return
		}
		content = decoded
	}

	chunks, err := s.ports.Parser.Parse(r.Context(), req.Name, content)
	if err != nil {
		s.respondDomainError(w, "parse failed", err)
		return
	}

	sink := driven.StatusFunc(func(message string) {
		s.logger.Debug("audit status", zap.String("source", req.Name), zap.String("status", message))
	})
	report, err := s.ports.Audit.Audit(r.Context(), req.Name, chunks, sink)
	if err != nil {
		s.respondDomainError(w, "audit failed", err)
		return
	}

	revised, err := services.RevisedDocument(report.Findings, services.Review{})
	if err != nil {
		s.respondDomainError(w, "assemble revised document failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, auditResponse{
		AuditReport: report,
		RevisedText: revised,
	})
}

func (s *Server) handleListGuides(w http.ResponseWriter, r *http.Request) {
	if s.ports.Guides == nil {
		s.respondJSON(w, http.StatusOK, []domain.GuideInfo{})
		return
	}
	guides, err := s.ports.Guides.List(r.Context())
	if err != nil {
		s.respondDomainError(w, "list guides failed", err)
		return
	}
	if guides == nil {
		guides = []domain.GuideInfo{}
	}
	s.respondJSON(w, http.StatusOK, guides)
}

func (s *Server) handleHideGuide(w http.ResponseWriter, r *http.Request) {
	s.setHidden(w, r, true)
}

func (s *Server) handleUnhideGuide(w http.ResponseWriter, r *http.Request) {
	s.setHidden(w, r, false)
}

func (s *Server) setHidden(w http.ResponseWriter, r *http.Request, hidden bool) {
	if s.ports.Guides == nil {
		s.respondError(w, http.StatusNotImplemented, "guide management not enabled")
		return
	}
	// Nested guide IDs arrive percent-encoded ("voice%2Ftone").
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid guide id")
		return
	}

	if hidden {
		err = s.ports.Guides.Hide(r.Context(), id)
	} else {
		err = s.ports.Guides.Unhide(r.Context(), id)
	}
	if err != nil {
		s.respondDomainError(w, "update guide failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"id": id, "hidden": hidden})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.ports.Reports == nil {
		s.respondJSON(w, http.StatusOK, []domain.ReportSummary{})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	reports, err := s.ports.Reports.List(r.Context(), limit)
	if err != nil {
		s.respondDomainError(w, "list reports failed", err)
		return
	}
	if reports == nil {
		reports = []domain.ReportSummary{}
	}
	s.respondJSON(w, http.StatusOK, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.ports.Reports == nil {
		s.respondError(w, http.StatusNotFound, "report not found")
		return
	}
	report, err := s.ports.Reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondDomainError(w, "get report failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

type exportRequest struct {
	Reject    []int `json:"reject"`
	RejectAll bool  `json:"reject_all"`
}

type exportResponse struct {
	ReportID    string `json:"report_id"`
	RevisedText string `json:"revised_text"`
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if s.ports.Reports == nil {
		s.respondError(w, http.StatusNotFound, "report not found")
		return
	}

	// An empty body accepts every proposal.
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := s.ports.Reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondDomainError(w, "get report failed", err)
		return
	}

	revised, err := services.RevisedDocument(report.Findings, services.Review{
		Reject:    req.Reject,
		RejectAll: req.RejectAll,
	})
	if err != nil {
		s.respondDomainError(w, "export report failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, exportResponse{ReportID: report.ID, RevisedText: revised})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps domain sentinels to HTTP status codes.
func (s *Server) respondDomainError(w http.ResponseWriter, action string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(action, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrAgentUnavailable), errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
