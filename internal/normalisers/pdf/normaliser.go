// Package pdf provides a Normaliser for PDF guides backed by a pure Go
// PDF reader, so no external tools are required.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

// maxTitleLength bounds how long a first line may be to count as a title.
const maxTitleLength = 200

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ExtractFunc returns the plain text of a PDF file.
type ExtractFunc func(content []byte) (string, error)

// Normaliser handles PDF guides.
type Normaliser struct {
	extract ExtractFunc
}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{extract: extractText}
}

// NewWithExtractor creates a PDF normaliser with a custom text extractor.
// Used for testing.
func NewWithExtractor(extract ExtractFunc) *Normaliser {
	return &Normaliser{extract: extract}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text layer of a PDF guide.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := n.extract(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	content := cleanText(text)

	guide := domain.Guide{
		Title:    extractTitle(content, raw.URI),
		Format:   "pdf",
		Content:  content,
		Metadata: maps.Clone(raw.Metadata),
	}

	if guide.Metadata == nil {
		guide.Metadata = make(map[string]any)
	}
	guide.Metadata["mime_type"] = raw.MIMEType

	return &driven.NormaliseResult{
		Guide: guide,
	}, nil
}

// extractText reads every page's plain text, skipping empty pages.
// Pages are separated by blank lines.
func extractText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	var buf strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

// cleanText trims trailing spaces and collapses runs of blank lines.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\f", "\n\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// extractTitle takes the first short non-empty line, or the filename.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.Trim(line, "\x00"))
		if line == "" {
			continue
		}
		if len(line) <= maxTitleLength {
			return line
		}
	}

	filename := filepath.Base(uri)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
