package markdown

import (
	"bytes"
	"context"
	"maps"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown guides.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// frontMatter holds the YAML header fields guides may declare.
type frontMatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
}

// Normalise converts a markdown guide to normalised text.
// Heading lines keep their leading hashes so the chunker can split on them;
// other formatting is simplified.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	body, meta := splitFrontMatter(raw.Content)
	rawContent := string(body)

	title := meta.Title
	if title == "" {
		title = extractMarkdownTitle(rawContent, raw.URI)
	}

	guide := domain.Guide{
		Title:    title,
		Format:   "markdown",
		Content:  stripMarkdown(rawContent),
		Metadata: maps.Clone(raw.Metadata),
	}

	if guide.Metadata == nil {
		guide.Metadata = make(map[string]any)
	}
	guide.Metadata["mime_type"] = raw.MIMEType
	if len(meta.Tags) > 0 {
		guide.Metadata["tags"] = meta.Tags
	}

	return &driven.NormaliseResult{
		Guide: guide,
	}, nil
}

// splitFrontMatter separates a leading "---" YAML block from the body.
// Content without a parseable block is returned unchanged.
func splitFrontMatter(content []byte) ([]byte, frontMatter) {
	var meta frontMatter

	trimmed := bytes.TrimPrefix(content, []byte("\ufeff"))
	if !bytes.HasPrefix(trimmed, []byte("---\n")) && !bytes.HasPrefix(trimmed, []byte("---\r\n")) {
		return content, meta
	}

	rest := trimmed[bytes.IndexByte(trimmed, '\n')+1:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return content, meta
	}

	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return content, frontMatter{}
	}

	body := rest[end+len("\n---"):]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}
	return body, meta
}

// extractMarkdownTitle extracts a title from the markdown content or falls back to filename.
func extractMarkdownTitle(content, uri string) string {
	// Try to find first H1 heading (# Title)
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	// Fall back to filename
	filename := filepath.Base(uri)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// Pre-compiled regular expressions for markdown simplification.
var (
	codeBlock     = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.*?)(?:[ \t]+#+)?[ \t]*$`)
	emphasis      = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	italics       = regexp.MustCompile(`(^|[^\w*])[*_]([^*_\n]+)[*_]`)
	blockquote    = regexp.MustCompile(`(?m)^>\s*`)
	hr            = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList  = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown simplifies markdown formatting while keeping headings.
// Inline code keeps its text because style guides quote terms that way.
func stripMarkdown(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	content = codeBlock.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")

	// Normalise headings to "## Title" with no trailing hashes
	content = headings.ReplaceAllString(content, "$1 $2")

	content = emphasis.ReplaceAllString(content, "$2")
	content = italics.ReplaceAllString(content, "$1$2")
	content = blockquote.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "- ")
	content = numberedList.ReplaceAllString(content, "- ")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
