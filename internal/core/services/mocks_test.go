package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/styleaudit/internal/adapters/driven/embedding/hash"
	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

// mockGuideSource serves a mutable in-memory guide set.
type mockGuideSource struct {
	mu     sync.Mutex
	guides []domain.Guide
	err    error
	loads  int
}

func newMockGuideSource(guides ...domain.Guide) *mockGuideSource {
	return &mockGuideSource{guides: guides}
}

func (m *mockGuideSource) Load(_ context.Context) ([]domain.Guide, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Guide, len(m.guides))
	copy(out, m.guides)
	return out, nil
}

func (m *mockGuideSource) Root() string {
	return "/guides"
}

func (m *mockGuideSource) set(guides ...domain.Guide) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guides = guides
}

func guide(id, content string) domain.Guide {
	return domain.Guide{ID: id, Title: id, Path: "/guides/" + id + ".md", Format: "markdown", Content: content}
}

// paragraphPipeline makes one chunk per blank-line separated paragraph.
type paragraphPipeline struct{}

func (paragraphPipeline) Process(_ context.Context, g *domain.Guide) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for i, p := range strings.Split(g.Content, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:       g.ID + "#" + strconv.Itoa(i),
			GuideID:  g.ID,
			Content:  p,
			Position: i,
		})
	}
	return chunks, nil
}

// countingEmbedder wraps the hash embedder and can be told to fail.
type countingEmbedder struct {
	*hash.EmbeddingService

	mu         sync.Mutex
	batchCalls int
	batchErr   error
	embedErr   error
	model      string
}

func newCountingEmbedder() *countingEmbedder {
	return &countingEmbedder{EmbeddingService: hash.NewEmbeddingService(256)}
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	return e.EmbeddingService.Embed(ctx, text)
}

func (e *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.batchCalls++
	err := e.batchErr
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return e.EmbeddingService.EmbedBatch(ctx, texts)
}

func (e *countingEmbedder) ModelName() string {
	if e.model != "" {
		return e.model
	}
	return e.EmbeddingService.ModelName()
}

func (e *countingEmbedder) calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.batchCalls
}

// mockSnapshotStore keeps one snapshot in memory.
type mockSnapshotStore struct {
	snapshot *domain.IndexSnapshot
	saves    int
	saveErr  error
}

func (m *mockSnapshotStore) LoadSnapshot(_ context.Context) (*domain.IndexSnapshot, error) {
	if m.snapshot == nil {
		return nil, domain.ErrNotFound
	}
	return m.snapshot, nil
}

func (m *mockSnapshotStore) SaveSnapshot(_ context.Context, snapshot *domain.IndexSnapshot) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snapshot = snapshot
	return nil
}

// mockReportStore keeps reports in a map.
type mockReportStore struct {
	reports map[string]*domain.AuditReport
	limit   int
	err     error
}

func newMockReportStore() *mockReportStore {
	return &mockReportStore{reports: make(map[string]*domain.AuditReport)}
}

func (m *mockReportStore) SaveReport(_ context.Context, report *domain.AuditReport) error {
	if m.err != nil {
		return m.err
	}
	m.reports[report.ID] = report
	return nil
}

func (m *mockReportStore) GetReport(_ context.Context, id string) (*domain.AuditReport, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *mockReportStore) ListReports(_ context.Context, limit int) ([]domain.ReportSummary, error) {
	m.limit = limit
	out := make([]domain.ReportSummary, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, domain.ReportSummary{ID: r.ID, Source: r.Source, Findings: len(r.Findings)})
	}
	return out, nil
}

// agentReply is one scripted response.
type agentReply struct {
	text  string
	trace []domain.ToolInvocation
	err   error
}

// mockAgent answers from a script, or with reply when the script is exhausted.
type mockAgent struct {
	script []agentReply
	reply  func(input string) agentReply
	inputs []string
}

func (m *mockAgent) Invoke(_ context.Context, input string, sink driven.StatusSink) (string, []domain.ToolInvocation, error) {
	m.inputs = append(m.inputs, input)
	driven.Notify(sink, "agent thinking")

	var r agentReply
	switch {
	case len(m.script) > 0:
		r = m.script[0]
		m.script = m.script[1:]
	case m.reply != nil:
		r = m.reply(input)
	default:
		r = agentReply{text: `{"feedback": "Looks good.", "proposed_text": ""}`}
	}
	return r.text, r.trace, r.err
}

// pingingAgent adds a Ping that returns err.
type pingingAgent struct {
	mockAgent
	err   error
	pings int
}

func (p *pingingAgent) Ping(context.Context) error {
	p.pings++
	return p.err
}

// recordingSink collects status messages.
type recordingSink struct {
	messages []string
}

func (r *recordingSink) Status(message string) {
	r.messages = append(r.messages, message)
}

// positionSink also records progress notifications.
type positionSink struct {
	recordingSink
	positions [][2]int
}

func (p *positionSink) Progress(current, total int) {
	p.positions = append(p.positions, [2]int{current, total})
}

var errBoom = errors.New("boom")
