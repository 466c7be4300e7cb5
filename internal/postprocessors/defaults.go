package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/postprocessors/chunker"
	"github.com/custodia-labs/styleaudit/internal/postprocessors/cleaner"
)

// DefaultPipeline builds the chunker followed by the cleaner.
// The overlap must be smaller than the chunk size.
func DefaultPipeline(chunkSize, overlap int) (*Pipeline, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", domain.ErrInvalidInput, overlap, chunkSize)
	}

	return NewPipeline(
		chunker.New(chunker.WithChunkSize(chunkSize), chunker.WithOverlap(overlap)),
		cleaner.New(),
	), nil
}
