package driven

import (
	"context"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

// Normaliser transforms raw guide files into normalised text.
// Each normaliser handles specific MIME types (e.g., PDF, Markdown).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Generic MIME normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise transforms a raw document into a guide.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Note: Normalisation only produces a Guide with Content.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Guide is the normalised guide with Content populated.
	// The loader assigns ID and Path.
	Guide domain.Guide
}
