package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuideID(t *testing.T) {
	tests := []struct {
		name     string
		relPath  string
		expected string
	}{
		{name: "markdown file", relPath: "brand-voice.md", expected: "brand-voice"},
		{name: "nested path", relPath: "voice/tone.md", expected: "voice/tone"},
		{name: "pdf", relPath: "legal/trademarks.pdf", expected: "legal/trademarks"},
		{name: "no extension", relPath: "README", expected: "README"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GuideID(tc.relPath))
		})
	}
}

func TestContentType_IsValid(t *testing.T) {
	assert.True(t, ContentHeading.IsValid())
	assert.True(t, ContentBody.IsValid())
	assert.True(t, ContentListItem.IsValid())
	assert.False(t, ContentType("table").IsValid())
}

func TestContentType_Label(t *testing.T) {
	assert.Equal(t, "heading", ContentHeading.Label())
	assert.Equal(t, "list item", ContentListItem.Label())
	assert.Equal(t, "paragraph", ContentBody.Label())
}

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	assert.Len(t, m, 5)
	for _, metric := range AllMetrics() {
		assert.Equal(t, MaxScore, m[metric], "metric %s", metric)
	}
}

func TestEmbeddingProvider_IsValid(t *testing.T) {
	assert.True(t, EmbeddingProviderOllama.IsValid())
	assert.True(t, EmbeddingProviderHash.IsValid())
	assert.False(t, EmbeddingProvider("openai").IsValid())
	assert.Equal(t, unknownDescription, EmbeddingProvider("x").Description())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 1000, s.Index.ChunkSize)
	assert.Equal(t, 200, s.Index.ChunkOverlap)
	assert.Equal(t, 5, s.Index.TopK)
	assert.InDelta(t, 0.6, s.Index.RelevanceThreshold, 1e-9)
	assert.Equal(t, EmbeddingProviderOllama, s.Embedding.Provider)
	assert.Contains(t, s.Guides.Include, "**/*.md")
	assert.True(t, s.Agent.JSONFormat)
}
