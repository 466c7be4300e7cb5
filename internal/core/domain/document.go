package domain

// ContentType tags a DocumentChunk with its structural role.
type ContentType string

// Content types produced by document parsers.
const (
	ContentHeading  ContentType = "heading"
	ContentBody     ContentType = "body"
	ContentListItem ContentType = "list_item"
)

// IsValid returns true if the content type is recognised.
func (c ContentType) IsValid() bool {
	switch c {
	case ContentHeading, ContentBody, ContentListItem:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c ContentType) String() string {
	return string(c)
}

// Label returns the human-readable form used in prompts ("list item").
func (c ContentType) Label() string {
	switch c {
	case ContentHeading:
		return "heading"
	case ContentListItem:
		return "list item"
	default:
		return "paragraph"
	}
}

// DocumentChunk is a unit of the document under audit.
// It is produced by a document parser and is immutable within one audit run.
type DocumentChunk struct {
	Text string      `json:"text"`
	Type ContentType `json:"type"`
}
