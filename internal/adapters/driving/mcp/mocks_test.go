package mcp

import (
	"context"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	text    string
	results []domain.SearchResult
	err     error

	lastQuery string
	lastTopK  int
}

func (m *mockSearchService) Search(_ context.Context, query string, topK int) string {
	m.lastQuery = query
	m.lastTopK = topK
	return m.text
}

func (m *mockSearchService) Find(_ context.Context, query string, topK int) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastTopK = topK
	return m.results, m.err
}

// mockGuideService is a mock implementation of driving.GuideService.
type mockGuideService struct {
	guides  []domain.GuideInfo
	content map[string]string
	err     error
}

func (m *mockGuideService) List(_ context.Context) ([]domain.GuideInfo, error) {
	return m.guides, m.err
}

func (m *mockGuideService) Get(_ context.Context, id string) (*domain.Guide, error) {
	if m.err != nil {
		return nil, m.err
	}
	content, ok := m.content[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Guide{ID: id, Content: content}, nil
}

func (m *mockGuideService) Hide(_ context.Context, _ string) error {
	return m.err
}

func (m *mockGuideService) Unhide(_ context.Context, _ string) error {
	return m.err
}
