package driven

import (
	"context"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

// PostProcessor processes guide content to produce chunks.
// PostProcessors are chained in a pipeline (e.g., chunking, cleaning).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a guide and returns chunks.
	// If the processor modifies chunks (e.g., cleaning), it receives and returns chunks.
	// If the processor creates chunks (e.g., chunker), it receives nil and returns new chunks.
	Process(ctx context.Context, guide *domain.Guide, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the guide through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, guide *domain.Guide) ([]domain.Chunk, error)
}
