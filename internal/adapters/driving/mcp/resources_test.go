package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestServer_handleGuidesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns guides as JSON", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Search: &mockSearchService{},
			Guides: &mockGuideService{guides: []domain.GuideInfo{
				{ID: "voice", Title: "Voice", Format: "markdown"},
			}},
		})
		require.NoError(t, err)

		result, err := server.handleGuidesResource(ctx, readRequest(guidesURI))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var guides []domain.GuideInfo
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &guides))
		require.Len(t, guides, 1)
		assert.Equal(t, "voice", guides[0].ID)
	})

	t.Run("empty corpus is an empty array", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		result, err := server.handleGuidesResource(ctx, readRequest(guidesURI))
		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("service error", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Search: &mockSearchService{},
			Guides: &mockGuideService{err: errors.New("boom")},
		})
		require.NoError(t, err)

		_, err = server.handleGuidesResource(ctx, readRequest(guidesURI))
		assert.Error(t, err)
	})
}

func TestServer_handleGuideContentResource(t *testing.T) {
	ctx := context.Background()
	server, err := NewServer(&Ports{
		Search: &mockSearchService{},
		Guides: &mockGuideService{content: map[string]string{
			"voice/tone": "Write like you talk.",
		}},
	})
	require.NoError(t, err)

	t.Run("returns guide text", func(t *testing.T) {
		result, err := server.handleGuideContentResource(ctx, readRequest("styleaudit://guides/voice/tone"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
		assert.Equal(t, "Write like you talk.", result.Contents[0].Text)
	})

	t.Run("percent-encoded nested ID", func(t *testing.T) {
		result, err := server.handleGuideContentResource(ctx, readRequest("styleaudit://guides/voice%2Ftone"))
		require.NoError(t, err)
		assert.Equal(t, "Write like you talk.", result.Contents[0].Text)
	})

	t.Run("unknown guide", func(t *testing.T) {
		_, err := server.handleGuideContentResource(ctx, readRequest("styleaudit://guides/missing"))
		assert.Error(t, err)
	})
}

func TestExtractGuideID(t *testing.T) {
	tests := []struct {
		uri    string
		wantID string
		wantOK bool
	}{
		{"styleaudit://guides/voice", "voice", true},
		{"styleaudit://guides/voice/tone", "voice/tone", true},
		{"styleaudit://guides/voice%2Ftone", "voice/tone", true},
		{"styleaudit://guides/", "", false},
		{"styleaudit://guides", "", false},
		{"other://guides/voice", "", false},
		{"styleaudit://guides/%zz", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			id, ok := extractGuideID(tt.uri)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
