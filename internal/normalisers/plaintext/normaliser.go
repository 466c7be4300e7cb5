// Package plaintext normalises plain text style guides. It is also the
// fallback for text formats without a dedicated normaliser.
package plaintext

import (
	"context"
	"maps"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// underline matches a setext-style rule beneath a title line.
var underline = regexp.MustCompile(`^(=+|-+)$`)

// Normaliser handles text/plain guides.
type Normaliser struct{}

// New creates a plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain", "text/csv", "text/markdown", "text/html"}
}

// Priority returns 5, the fallback band.
func (n *Normaliser) Priority() int {
	return 5
}

// Normalise converts a text file into a guide. Underlined title lines
// become "#" headings so the chunker can attribute sections.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := strings.TrimPrefix(string(raw.Content), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	content, firstHeading := promoteHeadings(text)

	meta := maps.Clone(raw.Metadata)
	if meta == nil {
		meta = make(map[string]any)
	}
	meta["mime_type"] = raw.MIMEType

	return &driven.NormaliseResult{
		Guide: domain.Guide{
			Title:    title(raw, firstHeading),
			Format:   "text",
			Content:  content,
			Metadata: meta,
		},
	}, nil
}

// promoteHeadings rewrites "Title\n=====" pairs as "# Title" (and "---"
// underlines as "## Title"), trims trailing spaces and returns the text
// with the first heading found.
func promoteHeadings(text string) (string, string) {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	var first string

	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t")
		if i+1 < len(lines) && strings.TrimSpace(line) != "" {
			next := strings.TrimSpace(lines[i+1])
			if underline.MatchString(next) && len(next) >= 3 {
				level := "#"
				if next[0] == '-' {
					level = "##"
				}
				heading := strings.TrimSpace(line)
				if first == "" {
					first = heading
				}
				out = append(out, level+" "+heading)
				i++
				continue
			}
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n")), first
}

// title prefers a metadata title, then the first underlined heading,
// then the file name with separators turned into spaces.
func title(raw *domain.RawDocument, heading string) string {
	if t, ok := raw.Metadata["title"].(string); ok && t != "" {
		return t
	}
	if heading != "" {
		return heading
	}
	name := filepath.Base(raw.URI)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}
