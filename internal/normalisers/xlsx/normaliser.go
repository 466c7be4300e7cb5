// Package xlsx provides a Normaliser for spreadsheet guides such as
// word lists and terminology tables. Each sheet becomes a section and
// each row a line of tab-separated cells.
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

// MIMEType is the XLSX content type.
const MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles XLSX guides.
type Normaliser struct{}

// New creates a new XLSX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts a workbook into guide text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var sections []string
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}

		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}

		// Single-sheet workbooks skip the heading; the title already names them
		if len(sheets) > 1 {
			lines = append([]string{"## " + sheet}, lines...)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	guide := domain.Guide{
		Title:    workbookTitle(f, raw.URI),
		Format:   "xlsx",
		Content:  strings.Join(sections, "\n\n"),
		Metadata: maps.Clone(raw.Metadata),
	}

	if guide.Metadata == nil {
		guide.Metadata = make(map[string]any)
	}
	guide.Metadata["mime_type"] = raw.MIMEType
	guide.Metadata["sheets"] = len(sheets)

	return &driven.NormaliseResult{
		Guide: guide,
	}, nil
}

// workbookTitle reads the document properties title or falls back to filename.
func workbookTitle(f *excelize.File, uri string) string {
	if props, err := f.GetDocProps(); err == nil && props != nil {
		if title := strings.TrimSpace(props.Title); title != "" {
			return title
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
