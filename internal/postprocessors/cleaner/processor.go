// Package cleaner provides a post-processor that normalises chunk whitespace.
package cleaner

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

var (
	inlineSpace = regexp.MustCompile(`[ \t\x{00A0}]+`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
)

// Processor collapses whitespace inside chunks and drops empty ones.
// Positions are renumbered so they stay contiguous.
type Processor struct{}

// New creates a cleaner processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "cleaner"
}

// Process cleans the chunks produced by earlier processors.
func (p *Processor) Process(_ context.Context, _ *domain.Guide, chunks []domain.Chunk) ([]domain.Chunk, error) {
	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		c.Content = Clean(c.Content)
		if c.Content == "" {
			continue
		}
		c.Position = len(out)
		out = append(out, c)
	}
	return out, nil
}

// Clean trims every line, collapses runs of spaces and limits blank lines to one.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
