package driven

import (
	"context"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

// DocumentParser splits a document into ordered DocumentChunks.
type DocumentParser interface {
	// Parse converts the named document's bytes into chunks.
	// The name's extension selects the format.
	// Returns domain.ErrUnsupportedType for unknown formats.
	Parse(ctx context.Context, name string, content []byte) ([]domain.DocumentChunk, error)
}
