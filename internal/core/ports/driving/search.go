package driving

import (
	"context"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

// SearchService provides style-guide search to external actors.
type SearchService interface {
	// Search returns the formatted text block handed to reasoning agents.
	// It never fails: problems are reported as text.
	Search(ctx context.Context, query string, topK int) string

	// Find returns the structured results behind Search.
	Find(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}

// IndexService exposes the retrieval index lifecycle.
type IndexService interface {
	// Refresh rebuilds the index if the active guide set changed.
	Refresh(ctx context.Context) (domain.IndexStats, error)

	// Stats describes the currently installed index.
	Stats() domain.IndexStats
}
