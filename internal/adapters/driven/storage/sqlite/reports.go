package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

// reportStore keeps audit report history. Findings and metrics are stored
// as JSON columns next to the summary fields used for listing.
type reportStore struct {
	db *sql.DB
}

var _ driven.ReportStore = (*reportStore)(nil)

// SaveReport inserts a report, replacing any report with the same ID.
func (s *reportStore) SaveReport(ctx context.Context, report *domain.AuditReport) error {
	if report == nil || report.ID == "" {
		return domain.ErrInvalidInput
	}

	findings, err := json.Marshal(report.Findings)
	if err != nil {
		return fmt.Errorf("encoding findings: %w", err)
	}
	metrics, err := json.Marshal(report.Metrics)
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports (id, source, started_at, completed_at, finding_count, findings, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, report.ID, report.Source, report.StartedAt.UTC(), report.CompletedAt.UTC(),
		len(report.Findings), string(findings), string(metrics)); err != nil {
		return fmt.Errorf("saving report %s: %w", report.ID, err)
	}
	return nil
}

// GetReport returns the report with the given ID or domain.ErrNotFound.
func (s *reportStore) GetReport(ctx context.Context, id string) (*domain.AuditReport, error) {
	var (
		r                 domain.AuditReport
		findings, metrics string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source, started_at, completed_at, findings, metrics
		FROM reports WHERE id = ?
	`, id).Scan(&r.ID, &r.Source, &r.StartedAt, &r.CompletedAt, &findings, &metrics)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading report %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(findings), &r.Findings); err != nil {
		return nil, fmt.Errorf("decoding findings of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(metrics), &r.Metrics); err != nil {
		return nil, fmt.Errorf("decoding metrics of %s: %w", id, err)
	}
	return &r, nil
}

// ListReports returns summaries newest first. A non-positive limit
// returns every report.
func (s *reportStore) ListReports(ctx context.Context, limit int) ([]domain.ReportSummary, error) {
	if limit <= 0 {
		limit = -1 // negative LIMIT is unbounded in SQLite
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, finding_count, completed_at
		FROM reports ORDER BY completed_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	out := []domain.ReportSummary{}
	for rows.Next() {
		var r domain.ReportSummary
		if err := rows.Scan(&r.ID, &r.Source, &r.Findings, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning report summary: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
