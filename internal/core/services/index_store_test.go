package services

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/styleaudit/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

type indexFixture struct {
	source    *mockGuideSource
	hidden    *memory.HiddenGuideStore
	embedder  *countingEmbedder
	snapshots *mockSnapshotStore
	store     *IndexStore
}

func newIndexFixture(guides ...domain.Guide) *indexFixture {
	f := &indexFixture{
		source:    newMockGuideSource(guides...),
		hidden:    memory.NewHiddenGuideStore(),
		embedder:  newCountingEmbedder(),
		snapshots: &mockSnapshotStore{},
	}
	f.store = f.newStore()
	return f
}

func (f *indexFixture) newStore() *IndexStore {
	return NewIndexStore(
		IndexConfig{ChunkSize: 1000, ChunkOverlap: 200},
		f.source,
		f.hidden,
		f.embedder,
		paragraphPipeline{},
		memory.NewVectorIndexFactory(),
		f.snapshots,
	)
}

func indexedGuideIDs(idx *Index) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range idx.chunks {
		if !seen[c.GuideID] {
			seen[c.GuideID] = true
			ids = append(ids, c.GuideID)
		}
	}
	sort.Strings(ids)
	return ids
}

func TestRefreshIfStale_UnchangedReturnsSameIndex(t *testing.T) {
	f := newIndexFixture(
		guide("voice", "Use active voice.\n\nAddress the reader as you."),
		guide("terms", "Spell out acronyms on first use."),
	)

	first, err := f.store.RefreshIfStale(context.Background())
	require.NoError(t, err)
	second, err := f.store.RefreshIfStale(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, f.embedder.calls())
	assert.Equal(t, 3, first.Len())
	assert.Same(t, first, f.store.Current())
}

func TestRefreshIfStale_RebuildsOnChange(t *testing.T) {
	voice := guide("voice", "Use active voice.")
	terms := guide("terms", "Spell out acronyms on first use.")
	tone := guide("tone", "Be friendly but not flippant.")

	tests := []struct {
		name   string
		change func(t *testing.T, f *indexFixture)
		want   []string
	}{
		{
			name:   "guide added",
			change: func(_ *testing.T, f *indexFixture) { f.source.set(voice, terms, tone) },
			want:   []string{"terms", "tone", "voice"},
		},
		{
			name:   "guide removed",
			change: func(_ *testing.T, f *indexFixture) { f.source.set(voice) },
			want:   []string{"voice"},
		},
		{
			name: "guide edited",
			change: func(_ *testing.T, f *indexFixture) {
				f.source.set(guide("voice", "Prefer active voice in every sentence."), terms)
			},
			want: []string{"terms", "voice"},
		},
		{
			name: "guide hidden",
			change: func(t *testing.T, f *indexFixture) {
				require.NoError(t, f.hidden.Hide(context.Background(), "terms"))
			},
			want: []string{"voice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIndexFixture(voice, terms)
			before, err := f.store.RefreshIfStale(context.Background())
			require.NoError(t, err)

			tt.change(t, f)

			after, err := f.store.RefreshIfStale(context.Background())
			require.NoError(t, err)

			assert.NotSame(t, before, after)
			assert.NotEqual(t, before.Fingerprint(), after.Fingerprint())
			assert.Equal(t, tt.want, indexedGuideIDs(after))
			assert.Equal(t, len(tt.want), after.Stats().Guides)
		})
	}
}

func TestRefreshIfStale_EditReflectsNewContent(t *testing.T) {
	f := newIndexFixture(guide("voice", "Use active voice."))
	_, err := f.store.RefreshIfStale(context.Background())
	require.NoError(t, err)

	f.source.set(guide("voice", "Write in second person."))
	idx, err := f.store.RefreshIfStale(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, idx.Len())
	for _, c := range idx.chunks {
		assert.Equal(t, "Write in second person.", c.Content)
	}
}

func TestRefreshIfStale_NoGuides(t *testing.T) {
	f := newIndexFixture()
	f.source.err = domain.ErrNoGuides

	_, err := f.store.RefreshIfStale(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoGuides)
	assert.Nil(t, f.store.Current())
}

func TestRefreshIfStale_EmptyCorpus(t *testing.T) {
	f := newIndexFixture()

	idx, err := f.store.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
}

func TestRefreshIfStale_EmbeddingFailureKeepsPreviousIndex(t *testing.T) {
	f := newIndexFixture(guide("voice", "Use active voice."))
	before, err := f.store.RefreshIfStale(context.Background())
	require.NoError(t, err)

	f.source.set(guide("voice", "Use active voice."), guide("tone", "Be warm."))
	f.embedder.batchErr = domain.ErrEmbeddingUnavailable

	_, err = f.store.RefreshIfStale(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Same(t, before, f.store.Current())
}

func TestRefreshIfStale_RestoresSnapshot(t *testing.T) {
	f := newIndexFixture(guide("voice", "Use active voice.\n\nKeep it short."))
	built, err := f.store.RefreshIfStale(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, f.snapshots.saves)
	assert.False(t, built.Stats().Restored)

	// A fresh store, as after a process restart.
	restarted := f.newStore()
	restored, err := restarted.RefreshIfStale(context.Background())
	require.NoError(t, err)

	assert.True(t, restored.Stats().Restored)
	assert.Equal(t, built.Fingerprint(), restored.Fingerprint())
	assert.Equal(t, built.Len(), restored.Len())
	assert.Equal(t, 1, f.embedder.calls())
}

func TestRefreshIfStale_SnapshotFromOtherModelIsIgnored(t *testing.T) {
	f := newIndexFixture(guide("voice", "Use active voice."))
	_, err := f.store.RefreshIfStale(context.Background())
	require.NoError(t, err)

	f.embedder.model = "other-model"
	restarted := f.newStore()
	idx, err := restarted.RefreshIfStale(context.Background())
	require.NoError(t, err)

	assert.False(t, idx.Stats().Restored)
	assert.Equal(t, 2, f.embedder.calls())
}

func TestRefreshIfStale_SnapshotSaveFailureIsNotFatal(t *testing.T) {
	f := newIndexFixture(guide("voice", "Use active voice."))
	f.snapshots.saveErr = errBoom

	idx, err := f.store.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestIndexStore_Progress(t *testing.T) {
	f := newIndexFixture(guide("voice", "One.\n\nTwo.\n\nThree."))

	var calls [][2]int
	f.store.SetProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})

	_, err := f.store.RefreshIfStale(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, calls)
	assert.Equal(t, [2]int{0, 3}, calls[0])
	assert.Equal(t, [2]int{3, 3}, calls[len(calls)-1])
}

func TestIndexStore_RefreshAndStats(t *testing.T) {
	f := newIndexFixture(guide("voice", "Use active voice."))
	assert.Equal(t, domain.IndexStats{}, f.store.Stats())

	stats, err := f.store.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Guides)
	assert.Equal(t, 1, stats.Chunks)
	assert.NotEmpty(t, stats.Fingerprint)
	assert.Equal(t, stats, f.store.Stats())
}

func TestFingerprintGuides(t *testing.T) {
	a := guide("a", "alpha")
	b := guide("b", "beta")

	assert.Equal(t, FingerprintGuides([]domain.Guide{a, b}), FingerprintGuides([]domain.Guide{b, a}))

	retitled := b
	retitled.Title = "Something else"
	retitled.Metadata = map[string]any{"tags": []string{"x"}}
	assert.Equal(t, FingerprintGuides([]domain.Guide{a, b}), FingerprintGuides([]domain.Guide{a, retitled}))

	assert.NotEqual(t,
		FingerprintGuides([]domain.Guide{guide("ab", "c")}),
		FingerprintGuides([]domain.Guide{guide("a", "bc")}))
}

func TestFilterHidden(t *testing.T) {
	guides := []domain.Guide{guide("a", "1"), guide("b", "2"), guide("c", "3")}

	active := filterHidden(guides, []string{"b", "unknown"})
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].ID)
	assert.Equal(t, "c", active[1].ID)

	assert.Len(t, filterHidden(guides, nil), 3)
}

// trackedVectors records Close calls on the vector indexes it hands out.
type trackedVectors struct {
	mu      sync.Mutex
	indexes []*closeCounter
}

type closeCounter struct {
	driven.VectorIndex
	mu     sync.Mutex
	closes int
}

func (c *closeCounter) Close() error {
	c.mu.Lock()
	c.closes++
	c.mu.Unlock()
	return c.VectorIndex.Close()
}

func (c *closeCounter) closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

func (tv *trackedVectors) factory() driven.VectorIndexFactory {
	newIndex := memory.NewVectorIndexFactory()
	return func() driven.VectorIndex {
		tv.mu.Lock()
		defer tv.mu.Unlock()
		c := &closeCounter{VectorIndex: newIndex()}
		tv.indexes = append(tv.indexes, c)
		return c
	}
}

func TestRefreshIfStale_ClosesReplacedIndex(t *testing.T) {
	f := newIndexFixture(guide("voice", "Use active voice."))
	var tracked trackedVectors
	f.store.newIndex = tracked.factory()

	first, err := f.store.RefreshIfStale(context.Background())
	require.NoError(t, err)

	f.source.set(guide("voice", "Use active voice."), guide("tone", "Be warm."))
	second, err := f.store.RefreshIfStale(context.Background())
	require.NoError(t, err)
	require.NotSame(t, first, second)

	require.Len(t, tracked.indexes, 2)
	assert.Equal(t, 1, tracked.indexes[0].closed())
	assert.Equal(t, 0, tracked.indexes[1].closed())

	vec, err := f.embedder.Embed(context.Background(), "active voice")
	require.NoError(t, err)
	_, err = first.Search(context.Background(), vec, 3)
	assert.ErrorIs(t, err, errIndexRetired)

	hits, err := second.Search(context.Background(), vec, 3)
	require.NoError(t, err)
	assert.NotEmpty(t, hits)
}

func TestIndex_RetireWaitsForInFlightSearch(t *testing.T) {
	counter := &closeCounter{VectorIndex: memory.NewVectorIndexFactory()()}
	idx := &Index{fingerprint: "abc", vectors: counter}

	require.True(t, idx.acquire())
	idx.retire()
	assert.Equal(t, 0, counter.closed())
	assert.False(t, idx.acquire())

	idx.release()
	assert.Equal(t, 1, counter.closed())

	idx.retire()
	assert.Equal(t, 1, counter.closed())
}
