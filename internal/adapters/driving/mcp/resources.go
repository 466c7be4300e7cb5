package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for styleaudit resources.
	uriScheme = "styleaudit://"

	guidesURI      = uriScheme + "guides"
	guidePrefixURI = guidesURI + "/"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         guidesURI,
		Name:        "guides",
		Description: "All style guides, including hidden ones",
		MIMEType:    "application/json",
	}, s.handleGuidesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: guidePrefixURI + "{id}",
		Name:        "guide-content",
		Description: "Normalised text of a style guide",
		MIMEType:    "text/plain",
	}, s.handleGuideContentResource)
}

// handleGuidesResource returns the guide listing as JSON.
func (s *Server) handleGuidesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	guides, err := s.listGuides(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing guides: %w", err)
	}
	if guides == nil {
		guides = []domain.GuideInfo{}
	}

	data, err := json.Marshal(guides)
	if err != nil {
		return nil, fmt.Errorf("marshalling guides: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleGuideContentResource returns one guide's normalised text.
func (s *Server) handleGuideContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI

	id, ok := extractGuideID(uri)
	if !ok || s.ports.Guides == nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	guide, err := s.ports.Guides.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, fmt.Errorf("reading guide %s: %w", id, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     guide.Content,
		}},
	}, nil
}

// extractGuideID extracts the guide ID from a styleaudit://guides/{id} URI.
// Nested IDs such as "voice/tone" may arrive raw or percent-encoded.
func extractGuideID(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, guidePrefixURI)
	if !ok || rest == "" {
		return "", false
	}
	id, err := url.PathUnescape(rest)
	if err != nil || strings.Trim(id, "/") == "" {
		return "", false
	}
	return id, true
}
