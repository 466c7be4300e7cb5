package driving

import (
	"context"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

// AuditService runs audits over parsed documents.
type AuditService interface {
	// Audit produces one finding per chunk, in order, plus metrics.
	// It fails only when the reasoning agent is unreachable.
	Audit(
		ctx context.Context, source string, chunks []domain.DocumentChunk, sink driven.StatusSink,
	) (*domain.AuditReport, error)
}

// ReportService keeps audit report history.
type ReportService interface {
	// Save stores a report.
	Save(ctx context.Context, report *domain.AuditReport) error

	// Get retrieves a report by ID.
	Get(ctx context.Context, id string) (*domain.AuditReport, error)

	// List returns the most recent reports.
	List(ctx context.Context, limit int) ([]domain.ReportSummary, error)
}
