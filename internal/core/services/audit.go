package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driving"
	"github.com/custodia-labs/styleaudit/internal/logger"
)

// Ensure AuditService implements the interface.
var _ driving.AuditService = (*AuditService)(nil)

// Context window markers. Agents are told to review only the CURRENT block.
const (
	markerPrevious = "[CONTEXT-previous]"
	markerCurrent  = "[CURRENT]"
	markerNext     = "[CONTEXT-next]"
)

// leakRatio is how much longer than the original a proposal may be.
const leakRatio = 2.5

const leakWarning = "Proposed text discarded: it was more than 2.5x the length of the original, " +
	"which usually means surrounding context leaked into the rewrite."

// AuditService runs the per-chunk audit pipeline over a document.
type AuditService struct {
	agent   driven.ReasoningAgent
	reports driven.ReportStore
	now     func() time.Time
}

// NewAuditService creates an audit service.
// The report store is optional - when nil, reports are not persisted.
func NewAuditService(agent driven.ReasoningAgent, reports driven.ReportStore) *AuditService {
	return &AuditService{
		agent:   agent,
		reports: reports,
		now:     time.Now,
	}
}

// Audit produces one finding per chunk, in document order.
// Per-chunk failures are recorded as degraded findings; the run aborts only
// when the agent is unavailable or the context is cancelled.
func (s *AuditService) Audit(
	ctx context.Context, source string, chunks []domain.DocumentChunk, sink driven.StatusSink,
) (*domain.AuditReport, error) {
	if s.agent == nil {
		return nil, fmt.Errorf("no reasoning agent configured: %w", domain.ErrAgentUnavailable)
	}

	logger.Section("Audit")
	logger.Debug("Source: %s, chunks: %d", source, len(chunks))

	if pinger, ok := s.agent.(driven.Pinger); ok && len(chunks) > 0 {
		driven.Notify(sink, "Checking reasoning agent...")
		if err := pinger.Ping(ctx); err != nil {
			return nil, fmt.Errorf("audit %s: %w", source, err)
		}
	}

	report := &domain.AuditReport{
		ID:        uuid.New().String(),
		Source:    source,
		StartedAt: s.now(),
		Findings:  make([]domain.AuditFinding, 0, len(chunks)),
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		driven.NotifyProgress(sink, i+1, len(chunks))
		driven.Notify(sink, fmt.Sprintf("Auditing chunk %d/%d (%s)...", i+1, len(chunks), chunk.Type.Label()))

		finding, err := s.auditChunk(ctx, chunks, i, sink)
		if err != nil {
			return nil, fmt.Errorf("audit chunk %d of %s: %w", i+1, source, err)
		}
		report.Findings = append(report.Findings, finding)
	}

	report.CompletedAt = s.now()
	report.Metrics = SummarizeMetrics(report.Findings)

	if s.reports != nil {
		if err := s.reports.SaveReport(ctx, report); err != nil {
			logger.Warn("Failed to save report %s: %v", report.ID, err)
		}
	}

	logger.Info("Audit %s complete: %d findings", report.ID, len(report.Findings))
	return report, nil
}

// auditChunk takes one chunk from PENDING to RECORDED.
// The only error it returns is one that should abort the whole run.
func (s *AuditService) auditChunk(
	ctx context.Context, chunks []domain.DocumentChunk, i int, sink driven.StatusSink,
) (domain.AuditFinding, error) {
	chunk := chunks[i]
	finding := domain.AuditFinding{
		OriginalText: chunk.Text,
		Type:         chunk.Type,
		PaperTrail:   []string{},
		Warnings:     SentenceWarnings(chunk.Text, chunk.Type),
	}

	window := ContextWindow(chunks, i)

	answer, trace, err := s.agent.Invoke(ctx, window, sink)
	if err != nil {
		if errors.Is(err, domain.ErrAgentUnavailable) || ctx.Err() != nil {
			return domain.AuditFinding{}, err
		}
		logger.Warn("Agent failed on chunk %d: %v", i+1, err)
		finding.Feedback = appendWarnings("Audit failed for this chunk: "+err.Error(), finding.Warnings)
		return finding, nil
	}

	finding.PaperTrail = PaperTrail(trace)

	feedback, proposed := ExtractAnswer(answer)
	proposed = SanitizeProposal(proposed)

	if runeLen(proposed) > int(leakRatio*float64(runeLen(chunk.Text))) {
		logger.Debug("Chunk %d proposal too long (%d runes), reverting", i+1, runeLen(proposed))
		proposed = chunk.Text
		feedback = joinFeedback(feedback, leakWarning)
	}

	finding.Feedback = appendWarnings(feedback, finding.Warnings)
	finding.ProposedText = proposed
	return finding, nil
}

// ContextWindow renders chunk i with its immediate neighbours for the agent.
func ContextWindow(chunks []domain.DocumentChunk, i int) string {
	var b strings.Builder
	if i > 0 {
		b.WriteString(markerPrevious)
		b.WriteString("\n")
		b.WriteString(chunks[i-1].Text)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "%s (%s)\n%s", markerCurrent, chunks[i].Type.Label(), chunks[i].Text)

	if i+1 < len(chunks) {
		b.WriteString("\n\n")
		b.WriteString(markerNext)
		b.WriteString("\n")
		b.WriteString(chunks[i+1].Text)
	}
	return b.String()
}

// PaperTrail returns the distinct search queries in the trace, first occurrence first.
func PaperTrail(trace []domain.ToolInvocation) []string {
	seen := make(map[string]bool, len(trace))
	trail := make([]string, 0, len(trace))
	for _, call := range trace {
		if call.Tool != domain.SearchToolName || call.Query == "" {
			continue
		}
		if seen[call.Query] {
			continue
		}
		seen[call.Query] = true
		trail = append(trail, call.Query)
	}
	return trail
}

func appendWarnings(feedback, warnings string) string {
	if warnings == "" {
		return feedback
	}
	return joinFeedback(feedback, "Sentence checks: "+warnings)
}

func joinFeedback(feedback, extra string) string {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return extra
	}
	return feedback + "\n\n" + extra
}
