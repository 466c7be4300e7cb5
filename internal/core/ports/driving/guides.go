package driving

import (
	"context"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

// GuideService manages the style-guide corpus.
type GuideService interface {
	// List returns every guide, including hidden ones.
	List(ctx context.Context) ([]domain.GuideInfo, error)

	// Get returns a guide with its normalised content.
	Get(ctx context.Context, id string) (*domain.Guide, error)

	// Hide excludes a guide from indexing and search.
	Hide(ctx context.Context, id string) error

	// Unhide restores a hidden guide.
	Unhide(ctx context.Context, id string) error
}
