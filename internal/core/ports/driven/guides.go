package driven

import (
	"context"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

// GuideSource loads the full style-guide corpus.
type GuideSource interface {
	// Load reads and normalises every guide.
	// Returns domain.ErrNoGuides when the guide directory does not exist.
	Load(ctx context.Context) ([]domain.Guide, error)

	// Root returns the directory guides are read from.
	Root() string
}

// HiddenGuideStore persists the set of guide IDs excluded from indexing.
// The core only reads it; mutation is driven by the CLI or HTTP API.
type HiddenGuideStore interface {
	// List returns the hidden guide IDs.
	List(ctx context.Context) ([]string, error)

	// Hide adds a guide ID to the set. Hiding twice is a no-op.
	Hide(ctx context.Context, id string) error

	// Unhide removes a guide ID from the set. Unknown IDs are ignored.
	Unhide(ctx context.Context, id string) error
}
