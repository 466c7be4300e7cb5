// Package parsers splits documents under audit into ordered DocumentChunks.
//
// Word documents are split by paragraph, using paragraph styles to tell
// headings and list items from body text. Markdown and plain text are split
// on blank lines, with "#" headings and list markers recognised per line.
package parsers

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
	"github.com/custodia-labs/styleaudit/internal/normalisers/docx"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Parser selects a format by file extension.
type Parser struct{}

// New creates a document parser.
func New() *Parser {
	return &Parser{}
}

// Extensions returns the file extensions Parse accepts.
func Extensions() []string {
	return []string{".docx", ".md", ".markdown", ".txt", ".text"}
}

// Parse converts a document into chunks in reading order.
func (p *Parser) Parse(_ context.Context, name string, content []byte) ([]domain.DocumentChunk, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx":
		return parseDOCX(content)
	case ".md", ".markdown", ".txt", ".text":
		return parseText(content)
	default:
		return nil, fmt.Errorf("%s: %w", name, domain.ErrUnsupportedType)
	}
}

// bulletPrefixes mark list items in documents that don't use list styles.
var bulletPrefixes = []string{"•", "-", "*"}

func hasBullet(text string) bool {
	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

func parseDOCX(content []byte) ([]domain.DocumentChunk, error) {
	paragraphs, err := docx.ReadParagraphs(content)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.DocumentChunk, 0, len(paragraphs))
	for _, para := range paragraphs {
		text := strings.TrimSpace(para.Text)
		if text == "" {
			continue
		}

		contentType := domain.ContentBody
		switch {
		case para.HeadingLevel() > 0:
			contentType = domain.ContentHeading
		case para.IsListItem() || hasBullet(text):
			contentType = domain.ContentListItem
		}
		chunks = append(chunks, domain.DocumentChunk{Text: text, Type: contentType})
	}
	return chunks, nil
}

var (
	headingLine  = regexp.MustCompile(`^#{1,6}\s+(.*?)(?:\s+#+)?\s*$`)
	listLine     = regexp.MustCompile(`^(?:[-*+•]|\d+[.)])\s+`)
	fenceLine    = regexp.MustCompile("^(```|~~~)")
	setextMarker = regexp.MustCompile(`^(=+|-+)\s*$`)
)

// parseText handles markdown and plain text.
// Headings and list items are one chunk per line; other lines are joined
// into paragraphs that end at a blank line.
func parseText(content []byte) ([]domain.DocumentChunk, error) {
	var (
		chunks    []domain.DocumentChunk
		paragraph []string
		inFence   bool
	)

	flush := func() {
		if len(paragraph) == 0 {
			return
		}
		chunks = append(chunks, domain.DocumentChunk{
			Text: strings.Join(paragraph, " "),
			Type: domain.ContentBody,
		})
		paragraph = paragraph[:0]
	}

	content = bytes.TrimPrefix(content, []byte("\ufeff"))
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if fenceLine.MatchString(line) {
			flush()
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		switch {
		case line == "":
			flush()
		case headingLine.MatchString(line):
			flush()
			text := headingLine.FindStringSubmatch(line)[1]
			if text != "" {
				chunks = append(chunks, domain.DocumentChunk{Text: text, Type: domain.ContentHeading})
			}
		case setextMarker.MatchString(line):
			// "Title\n=====" underlines the previous line; otherwise it is a rule.
			if len(paragraph) == 1 {
				chunks = append(chunks, domain.DocumentChunk{Text: paragraph[0], Type: domain.ContentHeading})
				paragraph = paragraph[:0]
			} else {
				flush()
			}
		case listLine.MatchString(line):
			flush()
			chunks = append(chunks, domain.DocumentChunk{Text: line, Type: domain.ContentListItem})
		default:
			paragraph = append(paragraph, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	flush()

	if chunks == nil {
		chunks = []domain.DocumentChunk{}
	}
	return chunks, nil
}
