package httpapi

import (
	"context"
	"strings"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

type mockSearch struct {
	results []domain.SearchResult
	err     error
}

func (m *mockSearch) Search(_ context.Context, _ string, _ int) string {
	return ""
}

func (m *mockSearch) Find(_ context.Context, _ string, _ int) ([]domain.SearchResult, error) {
	return m.results, m.err
}

// lineParser turns each non-empty line into a body chunk.
type lineParser struct {
	err error
}

func (p *lineParser) Parse(_ context.Context, _ string, content []byte) ([]domain.DocumentChunk, error) {
	if p.err != nil {
		return nil, p.err
	}
	var chunks []domain.DocumentChunk
	for _, line := range strings.Split(string(content), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			chunks = append(chunks, domain.DocumentChunk{Text: line, Type: domain.ContentBody})
		}
	}
	return chunks, nil
}

// echoAudit proposes each chunk upper-cased.
type echoAudit struct {
	err    error
	source string
}

func (a *echoAudit) Audit(
	_ context.Context, source string, chunks []domain.DocumentChunk, sink driven.StatusSink,
) (*domain.AuditReport, error) {
	a.source = source
	if a.err != nil {
		return nil, a.err
	}
	driven.Notify(sink, "auditing")
	report := &domain.AuditReport{ID: "r1", Source: source, Metrics: domain.NewMetrics()}
	for _, c := range chunks {
		report.Findings = append(report.Findings, domain.AuditFinding{
			OriginalText: c.Text,
			Type:         c.Type,
			Feedback:     "ok",
			ProposedText: strings.ToUpper(c.Text),
			PaperTrail:   []string{},
		})
	}
	return report, nil
}

type mockGuides struct {
	guides []domain.GuideInfo
	hidden map[string]bool
	err    error
}

func (m *mockGuides) List(_ context.Context) ([]domain.GuideInfo, error) {
	return m.guides, m.err
}

func (m *mockGuides) Get(_ context.Context, id string) (*domain.Guide, error) {
	for _, g := range m.guides {
		if g.ID == id {
			return &domain.Guide{ID: g.ID, Title: g.Title}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockGuides) Hide(ctx context.Context, id string) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	m.hidden[id] = true
	return nil
}

func (m *mockGuides) Unhide(_ context.Context, id string) error {
	delete(m.hidden, id)
	return nil
}

type mockReports struct {
	reports   map[string]*domain.AuditReport
	lastLimit int
}

func (m *mockReports) Save(_ context.Context, report *domain.AuditReport) error {
	m.reports[report.ID] = report
	return nil
}

func (m *mockReports) Get(_ context.Context, id string) (*domain.AuditReport, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *mockReports) List(_ context.Context, limit int) ([]domain.ReportSummary, error) {
	m.lastLimit = limit
	out := make([]domain.ReportSummary, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, domain.ReportSummary{ID: r.ID, Source: r.Source, Findings: len(r.Findings)})
	}
	return out, nil
}
