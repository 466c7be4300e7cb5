package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

// Ensure HiddenGuideStore implements the interface.
var _ driven.HiddenGuideStore = (*HiddenGuideStore)(nil)

// HiddenGuideStore is an in-memory implementation of driven.HiddenGuideStore.
type HiddenGuideStore struct {
	mu     sync.RWMutex
	hidden map[string]struct{}
}

// NewHiddenGuideStore creates a store seeded with the given IDs.
func NewHiddenGuideStore(ids ...string) *HiddenGuideStore {
	s := &HiddenGuideStore{
		hidden: make(map[string]struct{}, len(ids)),
	}
	for _, id := range ids {
		s.hidden[id] = struct{}{}
	}
	return s
}

// List returns the hidden guide IDs in sorted order.
func (s *HiddenGuideStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]string, 0, len(s.hidden))
	for id := range s.hidden {
		result = append(result, id)
	}
	sort.Strings(result)
	return result, nil
}

// Hide adds a guide ID to the set.
func (s *HiddenGuideStore) Hide(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden[id] = struct{}{}
	return nil
}

// Unhide removes a guide ID from the set.
func (s *HiddenGuideStore) Unhide(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hidden, id)
	return nil
}
