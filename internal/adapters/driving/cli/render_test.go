package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

func TestRenderFinding(t *testing.T) {
	t.Run("shows proposal, warnings and lookups", func(t *testing.T) {
		out := renderFinding(2, &domain.AuditFinding{
			OriginalText: "Click here",
			Type:         domain.ContentListItem,
			Feedback:     "Vague link text.",
			ProposedText: "Open the settings page.",
			PaperTrail:   []string{"link text", "lists"},
			Warnings:     "missing terminal punctuation",
		})

		assert.Contains(t, out, "#2 list item")
		assert.Contains(t, out, "Open the settings page.")
		assert.Contains(t, out, "Warnings: missing terminal punctuation")
		assert.Contains(t, out, "link text; lists")
	})

	t.Run("omits unchanged proposal", func(t *testing.T) {
		out := renderFinding(1, &domain.AuditFinding{
			OriginalText: "Fine text.",
			Type:         domain.ContentBody,
			Feedback:     "Looks good.",
			ProposedText: "Fine text.",
		})

		assert.NotContains(t, out, "Proposed:")
		assert.NotContains(t, out, "Looked up:")
	})
}

func TestRenderMetrics(t *testing.T) {
	metrics := domain.NewMetrics()
	metrics[domain.MetricClear] = 40

	out := renderMetrics(metrics)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	assert.Len(t, lines, len(domain.AllMetrics()))
	assert.Contains(t, lines[0], "Clear")
	assert.Contains(t, lines[0], " 40")
	assert.Equal(t, 8, strings.Count(lines[0], "█"))
	assert.Equal(t, 20, strings.Count(lines[1], "█"))
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	renderReport(&buf, sampleReport())

	out := buf.String()
	assert.Contains(t, out, "Audit: handbook.docx")
	assert.Contains(t, out, "1 chunks, report 6f1c2a")
	assert.Contains(t, out, "Scores")
}
