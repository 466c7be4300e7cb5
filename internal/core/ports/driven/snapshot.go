package driven

import (
	"context"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

// IndexSnapshotStore persists the most recent index snapshot.
// This is an optional store - when nil, every process start re-embeds.
type IndexSnapshotStore interface {
	// LoadSnapshot returns the stored snapshot.
	// Returns domain.ErrNotFound if none has been saved.
	LoadSnapshot(ctx context.Context) (*domain.IndexSnapshot, error)

	// SaveSnapshot replaces the stored snapshot.
	SaveSnapshot(ctx context.Context, snapshot *domain.IndexSnapshot) error
}

// ReportStore persists audit reports.
type ReportStore interface {
	// SaveReport stores a report, replacing any report with the same ID.
	SaveReport(ctx context.Context, report *domain.AuditReport) error

	// GetReport retrieves a report by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetReport(ctx context.Context, id string) (*domain.AuditReport, error)

	// ListReports returns report summaries, newest first.
	ListReports(ctx context.Context, limit int) ([]domain.ReportSummary, error)
}
