package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	originalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	proposalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	findingStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// renderReport writes a human-readable audit report.
func renderReport(w io.Writer, report *domain.AuditReport) {
	fmt.Fprintln(w, titleStyle.Render("Audit: "+report.Source))
	fmt.Fprintln(w, labelStyle.Render(fmt.Sprintf("%d chunks, report %s", len(report.Findings), report.ID)))
	fmt.Fprintln(w)

	for i := range report.Findings {
		fmt.Fprintln(w, findingStyle.Render(renderFinding(i+1, &report.Findings[i])))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Scores"))
	fmt.Fprint(w, renderMetrics(report.Metrics))
}

func renderFinding(n int, f *domain.AuditFinding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", labelStyle.Render(fmt.Sprintf("#%d %s", n, f.Type.Label())))
	fmt.Fprintf(&b, "%s\n\n", originalStyle.Render(f.OriginalText))
	fmt.Fprintf(&b, "%s %s", labelStyle.Render("Feedback:"), f.Feedback)

	if strings.TrimSpace(f.ProposedText) != "" && f.ProposedText != f.OriginalText {
		fmt.Fprintf(&b, "\n\n%s\n%s", labelStyle.Render("Proposed:"), proposalStyle.Render(f.ProposedText))
	}
	if f.Warnings != "" {
		fmt.Fprintf(&b, "\n\n%s", warningStyle.Render("Warnings: "+f.Warnings))
	}
	if len(f.PaperTrail) > 0 {
		fmt.Fprintf(&b, "\n\n%s %s", labelStyle.Render("Looked up:"), strings.Join(f.PaperTrail, "; "))
	}
	return b.String()
}

// renderMetrics draws one bar per metric, scaled to 20 cells.
func renderMetrics(metrics domain.Metrics) string {
	var b strings.Builder
	for _, m := range domain.AllMetrics() {
		score := metrics[m]
		filled := score / 5
		bar := strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
		fmt.Fprintf(&b, "  %-15s %s %3d\n", m, scoreStyle(score).Render(bar), score)
	}
	return b.String()
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 80:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	case score >= 50:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}
}
