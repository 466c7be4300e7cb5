package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driving"
	"github.com/custodia-labs/styleaudit/internal/logger"
)

// Ensure GuideService implements the interface.
var _ driving.GuideService = (*GuideService)(nil)

// GuideService lists guides and manages the hidden-guide set.
// Changes to the hidden set take effect on the next index refresh.
type GuideService struct {
	source driven.GuideSource
	hidden driven.HiddenGuideStore
}

// NewGuideService creates a new guide service.
func NewGuideService(source driven.GuideSource, hidden driven.HiddenGuideStore) *GuideService {
	return &GuideService{
		source: source,
		hidden: hidden,
	}
}

// List returns every guide in the corpus with its hidden flag.
// A missing guide directory yields an empty list.
func (s *GuideService) List(ctx context.Context) ([]domain.GuideInfo, error) {
	guides, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	hiddenIDs, err := s.hidden.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hidden guides: %w", err)
	}
	hidden := make(map[string]bool, len(hiddenIDs))
	for _, id := range hiddenIDs {
		hidden[id] = true
	}

	infos := make([]domain.GuideInfo, 0, len(guides))
	for _, g := range guides {
		infos = append(infos, domain.GuideInfo{
			ID:     g.ID,
			Title:  g.Title,
			Path:   g.Path,
			Format: g.Format,
			Hidden: hidden[g.ID],
		})
	}
	return infos, nil
}

// Get returns a guide with its normalised content.
func (s *GuideService) Get(ctx context.Context, id string) (*domain.Guide, error) {
	guides, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range guides {
		if guides[i].ID == id {
			return &guides[i], nil
		}
	}
	return nil, fmt.Errorf("guide %q: %w", id, domain.ErrNotFound)
}

// Hide excludes a guide from indexing. The guide must exist.
func (s *GuideService) Hide(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.hidden.Hide(ctx, id); err != nil {
		return fmt.Errorf("hide guide %q: %w", id, err)
	}
	logger.Info("Hid guide %s", id)
	return nil
}

// Unhide restores a hidden guide. Unknown IDs are ignored.
func (s *GuideService) Unhide(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("guide id is required: %w", domain.ErrInvalidInput)
	}
	if err := s.hidden.Unhide(ctx, id); err != nil {
		return fmt.Errorf("unhide guide %q: %w", id, err)
	}
	logger.Info("Unhid guide %s", id)
	return nil
}

func (s *GuideService) load(ctx context.Context) ([]domain.Guide, error) {
	guides, err := s.source.Load(ctx)
	if errors.Is(err, domain.ErrNoGuides) {
		return []domain.Guide{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load guides: %w", err)
	}
	return guides, nil
}
