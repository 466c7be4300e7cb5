package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driving"
	"github.com/custodia-labs/styleaudit/internal/logger"
)

// Ensure StyleGuideSearch implements the interface.
var _ driving.SearchService = (*StyleGuideSearch)(nil)

// Search defaults and limits.
const (
	DefaultTopK               = 5
	MaxTopK                   = 20
	DefaultRelevanceThreshold = 0.6

	// dedupePrefixRunes is how much leading text two results are compared on.
	dedupePrefixRunes = 200

	// nearDuplicateSimilarity drops results at least this similar to a kept one.
	nearDuplicateSimilarity = 0.95

	resultSeparator = "\n\n---\n\n"
)

// Messages returned by Search instead of results.
const (
	msgEmptyQuery = "Please provide a search query."
	msgNoGuides   = "No style guides available."
)

// SearchConfig tunes result filtering.
type SearchConfig struct {
	// RelevanceThreshold is the largest cosine distance a result may have.
	RelevanceThreshold float64

	// DefaultTopK applies when callers pass topK < 1.
	DefaultTopK int
}

// StyleGuideSearch answers style-guide queries over the IndexStore.
type StyleGuideSearch struct {
	store    *IndexStore
	embedder driven.EmbeddingService
	cfg      SearchConfig
}

// NewStyleGuideSearch creates the search service.
func NewStyleGuideSearch(store *IndexStore, embedder driven.EmbeddingService, cfg SearchConfig) *StyleGuideSearch {
	if cfg.RelevanceThreshold <= 0 {
		cfg.RelevanceThreshold = DefaultRelevanceThreshold
	}
	if cfg.DefaultTopK < 1 {
		cfg.DefaultTopK = DefaultTopK
	}
	return &StyleGuideSearch{store: store, embedder: embedder, cfg: cfg}
}

// Search returns the formatted result block handed to reasoning agents.
// It never fails; problems are described in the returned text.
func (s *StyleGuideSearch) Search(ctx context.Context, query string, topK int) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return msgEmptyQuery
	}

	results, err := s.Find(ctx, query, topK)
	switch {
	case errors.Is(err, domain.ErrNoGuides):
		return msgNoGuides
	case err != nil:
		logger.Warn("Style guide search failed: %v", err)
		return fmt.Sprintf("Error searching style guides: %v", err)
	case len(results) == 0:
		return fmt.Sprintf("No relevant guidelines found for %q.", query)
	}

	return FormatResults(results)
}

// Find returns deduplicated results above the relevance threshold, most relevant first.
// It returns domain.ErrNoGuides when there is nothing to search, and a
// non-nil empty slice when nothing is relevant.
func (s *StyleGuideSearch) Find(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	topK = s.clampTopK(topK)

	logger.Section("Style Guide Search")
	logger.Debug("Query: %q, top_k: %d", query, topK)

	idx, err := s.store.RefreshIfStale(ctx)
	if err != nil {
		return nil, err
	}
	if idx.Len() == 0 {
		return nil, domain.ErrNoGuides
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := idx.Search(ctx, vec, 2*topK)
	if errors.Is(err, errIndexRetired) {
		// A concurrent rebuild swapped the index after our refresh.
		if idx, err = s.store.RefreshIfStale(ctx); err == nil {
			candidates, err = idx.Search(ctx, vec, 2*topK)
		}
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("Retrieved %d candidates", len(candidates))

	results := make([]domain.SearchResult, 0, topK)
	for _, r := range dedupe(candidates) {
		if r.Distance > s.cfg.RelevanceThreshold {
			continue
		}
		r.Relevance = Relevance(r.Distance)
		results = append(results, r)
	}

	if len(results) > topK {
		results = results[:topK]
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Relevance > results[j].Relevance })

	logger.Debug("Returning %d results", len(results))
	return results, nil
}

func (s *StyleGuideSearch) clampTopK(topK int) int {
	if topK < 1 {
		topK = s.cfg.DefaultTopK
	}
	return min(topK, MaxTopK)
}

// Relevance maps a cosine distance in [0,2] to a 0-100 percentage.
func Relevance(distance float64) int {
	r := int(math.Round(100 * (1 - distance/2)))
	return max(0, min(100, r))
}

// FormatResults renders results as blocks separated by horizontal rules.
func FormatResults(results []domain.SearchResult) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		header := "Source: " + r.Chunk.GuideID
		if r.Chunk.Section != "" {
			header += ", Section: " + r.Chunk.Section
		}
		blocks[i] = fmt.Sprintf("%s (relevance %d%%)\n%s", header, r.Relevance, r.Chunk.Content)
	}
	return strings.Join(blocks, resultSeparator)
}

// dedupe keeps the first of any results whose leading text is identical or
// near-identical, preserving order.
func dedupe(results []domain.SearchResult) []domain.SearchResult {
	seen := make(map[string]struct{}, len(results))
	var kept []domain.SearchResult
	var keptKeys [][]rune

	for _, r := range results {
		key := leadingText(r.Chunk.Content)
		if _, dup := seen[key]; dup {
			continue
		}

		runes := []rune(key)
		nearDup := false
		for _, other := range keptKeys {
			if similarity(runes, other) >= nearDuplicateSimilarity {
				nearDup = true
				break
			}
		}
		if nearDup {
			continue
		}

		seen[key] = struct{}{}
		keptKeys = append(keptKeys, runes)
		kept = append(kept, r)
	}
	return kept
}

// leadingText lower-cases, collapses whitespace and keeps the first runes of s.
func leadingText(s string) string {
	normalised := strings.ToLower(strings.Join(strings.Fields(s), " "))
	runes := []rune(normalised)
	if len(runes) > dedupePrefixRunes {
		runes = runes[:dedupePrefixRunes]
	}
	return string(runes)
}

// similarity is 1 - levenshtein(a, b) / max(len(a), len(b)).
func similarity(a, b []rune) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
