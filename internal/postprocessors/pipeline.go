// Package postprocessors turns normalised guides into embeddable chunks.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs PostProcessors in order. The first stage receives no chunks
// and creates them; later stages rewrite what they are handed.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline creates a pipeline from the given stages.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process chunks one guide. Every returned chunk carries the guide's ID.
func (p *Pipeline) Process(ctx context.Context, guide *domain.Guide) ([]domain.Chunk, error) {
	if guide == nil {
		return nil, fmt.Errorf("%w: nil guide", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := stage.Process(ctx, guide, chunks)
		if err != nil {
			return nil, fmt.Errorf("%s on guide %s: %w", stage.Name(), guide.ID, err)
		}
		chunks = out
	}

	for i := range chunks {
		chunks[i].GuideID = guide.ID
	}
	return chunks, nil
}

// Stages returns the stage names in run order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
