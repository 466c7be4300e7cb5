package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driving"
)

// Ensure ReportService implements the interface.
var _ driving.ReportService = (*ReportService)(nil)

// defaultReportLimit applies when List is called with a non-positive limit.
const defaultReportLimit = 20

// ReportService keeps audit report history.
type ReportService struct {
	store driven.ReportStore
}

// NewReportService creates a new report service.
func NewReportService(store driven.ReportStore) *ReportService {
	return &ReportService{store: store}
}

// Save stores a report. Reports without an ID are rejected.
func (s *ReportService) Save(ctx context.Context, report *domain.AuditReport) error {
	if report == nil || report.ID == "" {
		return fmt.Errorf("report id is required: %w", domain.ErrInvalidInput)
	}
	return s.store.SaveReport(ctx, report)
}

// Get retrieves a report by ID.
func (s *ReportService) Get(ctx context.Context, id string) (*domain.AuditReport, error) {
	if id == "" {
		return nil, fmt.Errorf("report id is required: %w", domain.ErrInvalidInput)
	}
	return s.store.GetReport(ctx, id)
}

// List returns the most recent report summaries, newest first.
func (s *ReportService) List(ctx context.Context, limit int) ([]domain.ReportSummary, error) {
	if limit <= 0 {
		limit = defaultReportLimit
	}
	return s.store.ListReports(ctx, limit)
}
