package mcp

import (
	"github.com/custodia-labs/styleaudit/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search answers style-guide queries.
	Search driving.SearchService

	// Guides lists the corpus. Optional; without it the guide tool and
	// resources report an empty corpus.
	Guides driving.GuideService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
