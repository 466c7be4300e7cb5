// Package mcp exposes styleaudit over the Model Context Protocol.
// It serves the style-guide search tool that auditing agents call, plus the
// guide corpus as resources, over stdio, streamable HTTP, or in-memory
// transports.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
