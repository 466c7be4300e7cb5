package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

// ListGuidesToolName is the name of the guide listing tool.
const ListGuidesToolName = "list_style_guides"

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"what to look up in the style guides, e.g. 'passive voice' or 'acronyms'"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of guideline excerpts to return (default 5)"`
}

// ListGuidesInput is the (empty) input schema for the guide listing tool.
type ListGuidesInput struct{}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: domain.SearchToolName,
		Description: "Search the style guides for rules relevant to a writing question. " +
			"Returns matching excerpts with their source guide and a relevance percentage.",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ListGuidesToolName,
		Description: "List the style guides available to search.",
	}, s.handleListGuides)
}

// handleSearch handles the search tool invocation.
// Search failures come back as text so the calling agent can carry on.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, any, error) {
	text := s.ports.Search.Search(ctx, input.Query, input.TopK)
	return textResult(text, false), nil, nil
}

// handleListGuides lists active and hidden guides, one per line.
func (s *Server) handleListGuides(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListGuidesInput,
) (*mcp.CallToolResult, any, error) {
	guides, err := s.listGuides(ctx)
	if err != nil {
		return textResult(fmt.Sprintf("Error listing style guides: %v", err), true), nil, nil
	}
	if len(guides) == 0 {
		return textResult("No style guides available.", false), nil, nil
	}

	var b strings.Builder
	for _, g := range guides {
		fmt.Fprintf(&b, "- %s: %s", g.ID, g.Title)
		if g.Hidden {
			b.WriteString(" (hidden, not searched)")
		}
		b.WriteString("\n")
	}
	return textResult(strings.TrimSuffix(b.String(), "\n"), false), nil, nil
}

func (s *Server) listGuides(ctx context.Context) ([]domain.GuideInfo, error) {
	if s.ports.Guides == nil {
		return nil, nil
	}
	return s.ports.Guides.List(ctx)
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}
