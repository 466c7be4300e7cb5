package domain

import "time"

// SearchToolName is the name of the style-guide retrieval tool offered to agents.
const SearchToolName = "search_style_guides"

// ToolInvocation records one tool call made by the reasoning agent.
type ToolInvocation struct {
	Tool  string `json:"tool"`
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// AuditFinding is the result of auditing one DocumentChunk.
// Findings are created once per chunk and never mutated afterwards.
type AuditFinding struct {
	// OriginalText is the chunk text as supplied.
	OriginalText string `json:"original_text"`

	// Type is the chunk's content type.
	Type ContentType `json:"type"`

	// Feedback is the agent's critique plus any appended warnings.
	Feedback string `json:"feedback"`

	// ProposedText is the suggested rewrite; empty when none could be extracted.
	ProposedText string `json:"proposed_text"`

	// PaperTrail lists the distinct style-guide queries issued, in order.
	PaperTrail []string `json:"paper_trail"`

	// Warnings holds the joined sentence-quality heuristic labels.
	Warnings string `json:"warnings,omitempty"`
}

// AuditReport is the output of one audit run.
type AuditReport struct {
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	Findings    []AuditFinding `json:"findings"`
	Metrics     Metrics        `json:"metrics"`
}

// ReportSummary is the listing view of a stored report.
type ReportSummary struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Findings    int       `json:"findings"`
	CompletedAt time.Time `json:"completed_at"`
}
