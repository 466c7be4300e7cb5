package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

// Ensure HiddenGuideStore implements the interface.
var _ driven.HiddenGuideStore = (*HiddenGuideStore)(nil)

// HiddenGuideStore persists hidden guide IDs as a JSON array of strings.
// The file is re-read on every List so edits made by other processes
// are seen at the next index refresh.
type HiddenGuideStore struct {
	mu       sync.Mutex
	filePath string
}

// NewHiddenGuideStore creates a store backed by filePath.
// If filePath is empty, defaults to ~/.styleaudit/hidden_guides.json.
func NewHiddenGuideStore(filePath string) (*HiddenGuideStore, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		filePath = filepath.Join(home, ".styleaudit", "hidden_guides.json")
	}
	return &HiddenGuideStore{filePath: filePath}, nil
}

// Path returns the JSON file path.
func (s *HiddenGuideStore) Path() string {
	return s.filePath
}

// List returns the hidden guide IDs in sorted order.
// A missing file is an empty set.
func (s *HiddenGuideStore) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.read()
	if err != nil {
		return nil, err
	}
	return sortedKeys(set), nil
}

// Hide adds a guide ID to the set.
func (s *HiddenGuideStore) Hide(_ context.Context, id string) error {
	return s.update(func(set map[string]struct{}) bool {
		if _, ok := set[id]; ok {
			return false
		}
		set[id] = struct{}{}
		return true
	})
}

// Unhide removes a guide ID from the set.
func (s *HiddenGuideStore) Unhide(_ context.Context, id string) error {
	return s.update(func(set map[string]struct{}) bool {
		if _, ok := set[id]; !ok {
			return false
		}
		delete(set, id)
		return true
	})
}

// update applies fn and writes the file if fn reports a change.
func (s *HiddenGuideStore) update(fn func(map[string]struct{}) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.read()
	if err != nil {
		return err
	}
	if !fn(set) {
		return nil
	}
	return s.write(sortedKeys(set))
}

func (s *HiddenGuideStore) read() (map[string]struct{}, error) {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]struct{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read hidden guides: %w", err)
	}

	var ids []string
	if len(data) > 0 {
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, fmt.Errorf("parse hidden guides %s: %w", s.filePath, err)
		}
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// write replaces the file atomically via a temp file and rename.
func (s *HiddenGuideStore) write(ids []string) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("create hidden guides directory: %w", err)
	}

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal hidden guides: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("write hidden guides: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace hidden guides: %w", err)
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
