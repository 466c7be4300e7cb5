package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

// MIMEType is the DOCX content type.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX guides.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser
}

// Normalise converts a DOCX guide to text. Heading paragraphs become
// "#" lines and list paragraphs get a "- " marker.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: open docx: %v", domain.ErrInvalidInput, err)
	}

	paragraphs, err := readParagraphs(reader)
	if err != nil {
		return nil, err
	}

	guide := domain.Guide{
		Title:    extractTitle(reader, raw.URI),
		Format:   "docx",
		Content:  renderParagraphs(paragraphs),
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

// Paragraph is one non-empty paragraph of a Word document.
type Paragraph struct {
	// Text is the concatenated run text.
	Text string

	// Style is the paragraph style ID, e.g. "Heading1" or "ListParagraph".
	Style string

	// List is true when the paragraph carries numbering properties.
	List bool
}

// HeadingLevel returns 1-6 for heading and title styles, 0 otherwise.
func (p Paragraph) HeadingLevel() int {
	style := strings.ToLower(p.Style)
	if style == "title" {
		return 1
	}
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	level, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
	if err != nil || level < 1 {
		return 0
	}
	if level > 6 {
		level = 6
	}
	return level
}

// IsListItem reports whether the paragraph is part of a list.
func (p Paragraph) IsListItem() bool {
	return p.List || strings.HasPrefix(strings.ToLower(p.Style), "list")
}

// ReadParagraphs returns the non-empty paragraphs of a DOCX file in order.
func ReadParagraphs(content []byte) ([]Paragraph, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: open docx: %v", domain.ErrInvalidInput, err)
	}
	return readParagraphs(reader)
}

// readParagraphs extracts paragraphs from word/document.xml.
func readParagraphs(reader *zip.Reader) ([]Paragraph, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open document.xml: %v", domain.ErrInvalidInput, err)
		}
		defer rc.Close()

		return parseDocumentXML(rc)
	}
	return nil, nil
}

// parseDocumentXML walks the document tokens so text inside hyperlinks,
// tables and other nested elements keeps its reading order.
func parseDocumentXML(r io.Reader) ([]Paragraph, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []Paragraph
		current    *Paragraph
		text       strings.Builder
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parse document.xml: %v", domain.ErrInvalidInput, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				current = &Paragraph{}
				text.Reset()
			case "pStyle":
				if current != nil {
					current.Style = attr(t, "val")
				}
			case "numPr":
				if current != nil {
					current.List = true
				}
			case "t":
				inText = true
			case "tab":
				if current != nil {
					text.WriteString(" ")
				}
			case "br", "cr":
				if current != nil {
					text.WriteString(" ")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if current == nil {
					continue
				}
				current.Text = strings.Join(strings.Fields(text.String()), " ")
				if current.Text != "" {
					paragraphs = append(paragraphs, *current)
				}
				current = nil
			}
		case xml.CharData:
			if inText && current != nil {
				text.Write(t)
			}
		}
	}

	return paragraphs, nil
}

// attr returns the value of the attribute with the given local name.
func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// renderParagraphs joins paragraphs into markdown-flavoured text.
// Consecutive list items stay on adjacent lines.
func renderParagraphs(paragraphs []Paragraph) string {
	var b strings.Builder
	prevList := false
	for i, p := range paragraphs {
		list := p.IsListItem() && p.HeadingLevel() == 0
		if i > 0 {
			if list && prevList {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		switch {
		case p.HeadingLevel() > 0:
			b.WriteString(strings.Repeat("#", p.HeadingLevel()) + " " + p.Text)
		case list:
			b.WriteString("- " + p.Text)
		default:
			b.WriteString(p.Text)
		}
		prevList = list
	}
	return b.String()
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle extracts the title from docProps/core.xml or falls back to filename.
func extractTitle(reader *zip.Reader, uri string) string {
	for _, file := range reader.File {
		if file.Name != "docProps/core.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			break
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			break
		}

		var core coreXML
		if err := xml.Unmarshal(content, &core); err == nil && strings.TrimSpace(core.Title) != "" {
			return strings.TrimSpace(core.Title)
		}
		break
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
