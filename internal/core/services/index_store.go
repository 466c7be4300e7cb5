package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driving"
	"github.com/custodia-labs/styleaudit/internal/logger"
)

// Ensure IndexStore implements the interface.
var _ driving.IndexService = (*IndexStore)(nil)

// embedBatchSize is the number of chunks sent per EmbedBatch call.
const embedBatchSize = 64

// IndexConfig holds the splitter settings the index is built with.
// They are recorded in snapshots; a snapshot built with other settings is not reused.
type IndexConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// ProgressFunc receives embedding progress during a rebuild.
type ProgressFunc func(done, total int)

// Index is an immutable, searchable build of one active guide set.
type Index struct {
	fingerprint string
	builtAt     time.Time
	restored    bool
	guides      int
	chunks      map[string]domain.Chunk
	vectors     driven.VectorIndex

	refMu   sync.Mutex
	readers int
	retired bool
}

// errIndexRetired is returned by Search on an index a rebuild has replaced.
var errIndexRetired = errors.New("index was replaced by a rebuild")

// Fingerprint identifies the guide set the index was built from.
func (i *Index) Fingerprint() string {
	return i.fingerprint
}

// Len returns the number of indexed chunks.
func (i *Index) Len() int {
	return len(i.chunks)
}

// Stats summarises the index.
func (i *Index) Stats() domain.IndexStats {
	return domain.IndexStats{
		Fingerprint: i.fingerprint,
		Guides:      i.guides,
		Chunks:      len(i.chunks),
		BuiltAt:     i.builtAt,
		Restored:    i.restored,
	}
}

// Search returns up to k chunks nearest to the query vector, by ascending distance.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error) {
	if len(i.chunks) == 0 || k <= 0 {
		return nil, nil
	}
	if !i.acquire() {
		return nil, errIndexRetired
	}
	defer i.release()

	hits, err := i.vectors.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		chunk, ok := i.chunks[hit.ChunkID]
		if !ok {
			continue
		}
		results = append(results, domain.SearchResult{Chunk: chunk, Distance: hit.Distance})
	}
	return results, nil
}

func (i *Index) acquire() bool {
	i.refMu.Lock()
	defer i.refMu.Unlock()
	if i.retired {
		return false
	}
	i.readers++
	return true
}

func (i *Index) release() {
	i.refMu.Lock()
	i.readers--
	last := i.retired && i.readers == 0
	i.refMu.Unlock()
	if last {
		i.close()
	}
}

// retire refuses new searches and closes the vector index once the last
// in-flight search has finished.
func (i *Index) retire() {
	i.refMu.Lock()
	if i.retired {
		i.refMu.Unlock()
		return
	}
	i.retired = true
	idle := i.readers == 0
	i.refMu.Unlock()
	if idle {
		i.close()
	}
}

func (i *Index) close() {
	if err := i.vectors.Close(); err != nil {
		logger.Warn("Failed to close retired index %s: %v", short(i.fingerprint), err)
	}
}

// IndexStore owns the retrieval index and rebuilds it when the active guide set changes.
//
// Searches read the installed *Index under a read lock. A rebuild is computed
// without holding that lock and only takes the write lock to swap the pointer,
// so a failed rebuild never disturbs the installed index. The replaced index
// is retired: its vector index is closed after in-flight searches finish.
type IndexStore struct {
	source    driven.GuideSource
	hidden    driven.HiddenGuideStore
	embedder  driven.EmbeddingService
	pipeline  driven.PostProcessorPipeline
	newIndex  driven.VectorIndexFactory
	snapshots driven.IndexSnapshotStore
	cfg       IndexConfig

	mu      sync.RWMutex
	current *Index

	buildMu  sync.Mutex
	progress ProgressFunc
}

// NewIndexStore creates an index store. hidden and snapshots may be nil.
func NewIndexStore(
	cfg IndexConfig,
	source driven.GuideSource,
	hidden driven.HiddenGuideStore,
	embedder driven.EmbeddingService,
	pipeline driven.PostProcessorPipeline,
	newIndex driven.VectorIndexFactory,
	snapshots driven.IndexSnapshotStore,
) *IndexStore {
	return &IndexStore{
		source:    source,
		hidden:    hidden,
		embedder:  embedder,
		pipeline:  pipeline,
		newIndex:  newIndex,
		snapshots: snapshots,
		cfg:       cfg,
	}
}

// SetProgress installs a callback for embedding progress. Pass nil to remove it.
func (s *IndexStore) SetProgress(fn ProgressFunc) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	s.progress = fn
}

// Current returns the installed index, or nil before the first successful refresh.
func (s *IndexStore) Current() *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Refresh implements driving.IndexService.
func (s *IndexStore) Refresh(ctx context.Context) (domain.IndexStats, error) {
	idx, err := s.RefreshIfStale(ctx)
	if err != nil {
		return domain.IndexStats{}, err
	}
	return idx.Stats(), nil
}

// Stats describes the installed index; zero before the first refresh.
func (s *IndexStore) Stats() domain.IndexStats {
	if idx := s.Current(); idx != nil {
		return idx.Stats()
	}
	return domain.IndexStats{}
}

// RefreshIfStale returns an index matching the current active guide set.
//
// When the fingerprint of the active set equals the installed index's, the
// installed index is returned as-is. Otherwise a new index is restored from a
// compatible snapshot or built from scratch and swapped in. A missing guide
// directory returns domain.ErrNoGuides and leaves the installed index alone.
func (s *IndexStore) RefreshIfStale(ctx context.Context) (*Index, error) {
	guides, err := s.activeGuides(ctx)
	if err != nil {
		return nil, err
	}
	fingerprint := FingerprintGuides(guides)

	if idx := s.Current(); idx != nil && idx.fingerprint == fingerprint {
		return idx, nil
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	// Another caller may have built it while we waited.
	if idx := s.Current(); idx != nil && idx.fingerprint == fingerprint {
		return idx, nil
	}

	logger.Section("Index Refresh")
	logger.Info("Active guide set changed (%d guides, fingerprint %s)", len(guides), short(fingerprint))

	idx, err := s.restore(ctx, fingerprint, len(guides))
	if err != nil {
		logger.Warn("Snapshot restore failed: %v", err)
	}
	if idx == nil {
		idx, err = s.build(ctx, fingerprint, guides)
		if err != nil {
			return nil, err
		}
	}

	var dropped *Index
	s.mu.Lock()
	if s.current != nil && s.current.fingerprint == fingerprint {
		dropped, idx = idx, s.current
	} else {
		dropped, s.current = s.current, idx
	}
	s.mu.Unlock()
	if dropped != nil {
		dropped.retire()
	}

	logger.Info("Index ready: %d guides, %d chunks", idx.guides, idx.Len())
	return idx, nil
}

// activeGuides loads every guide and drops hidden ones.
func (s *IndexStore) activeGuides(ctx context.Context) ([]domain.Guide, error) {
	guides, err := s.source.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoGuides) {
			return nil, err
		}
		return nil, fmt.Errorf("load guides: %w", err)
	}

	if s.hidden == nil {
		return guides, nil
	}

	hiddenIDs, err := s.hidden.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("read hidden guides: %w", err)
	}
	return filterHidden(guides, hiddenIDs), nil
}

// restore loads a persisted snapshot if it matches the active set and settings.
// It returns (nil, nil) when there is no usable snapshot.
func (s *IndexStore) restore(ctx context.Context, fingerprint string, guides int) (*Index, error) {
	if s.snapshots == nil {
		return nil, nil
	}

	snap, err := s.snapshots.LoadSnapshot(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if snap.Fingerprint != fingerprint ||
		snap.EmbeddingModel != s.embedder.ModelName() ||
		snap.ChunkSize != s.cfg.ChunkSize ||
		snap.ChunkOverlap != s.cfg.ChunkOverlap {
		logger.Debug("Snapshot does not match the active guide set or settings, rebuilding")
		return nil, nil
	}

	idx, err := s.assemble(ctx, fingerprint, guides, snap.Chunks, snap.BuiltAt)
	if err != nil {
		return nil, err
	}
	idx.restored = true
	logger.Info("Restored %d chunks from snapshot built %s", idx.Len(), snap.BuiltAt.Format(time.RFC3339))
	return idx, nil
}

// build chunks and embeds every guide. Any failure aborts the build.
func (s *IndexStore) build(ctx context.Context, fingerprint string, guides []domain.Guide) (*Index, error) {
	var chunks []domain.Chunk
	for i := range guides {
		guideChunks, err := s.pipeline.Process(ctx, &guides[i])
		if err != nil {
			return nil, fmt.Errorf("chunk guide %s: %w", guides[i].ID, err)
		}
		chunks = append(chunks, guideChunks...)
	}
	logger.Debug("Chunked %d guides into %d chunks", len(guides), len(chunks))

	if err := s.embed(ctx, chunks); err != nil {
		return nil, err
	}

	builtAt := time.Now().UTC()
	idx, err := s.assemble(ctx, fingerprint, len(guides), chunks, builtAt)
	if err != nil {
		return nil, err
	}

	if s.snapshots != nil {
		snap := &domain.IndexSnapshot{
			Fingerprint:    fingerprint,
			EmbeddingModel: s.embedder.ModelName(),
			ChunkSize:      s.cfg.ChunkSize,
			ChunkOverlap:   s.cfg.ChunkOverlap,
			Chunks:         chunks,
			BuiltAt:        builtAt,
		}
		if err := s.snapshots.SaveSnapshot(ctx, snap); err != nil {
			logger.Warn("Failed to save index snapshot: %v", err)
		}
	}
	return idx, nil
}

// embed fills in chunk embeddings in batches, reporting progress.
func (s *IndexStore) embed(ctx context.Context, chunks []domain.Chunk) error {
	total := len(chunks)
	s.report(0, total)

	for start := 0; start < total; start += embedBatchSize {
		end := min(start+embedBatchSize, total)

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embed chunks: got %d vectors for %d texts", len(vectors), len(texts))
		}
		for i, vec := range vectors {
			chunks[start+i].Embedding = vec
		}
		s.report(end, total)
	}
	return nil
}

// assemble loads embedded chunks into a fresh vector index.
func (s *IndexStore) assemble(
	ctx context.Context, fingerprint string, guides int, chunks []domain.Chunk, builtAt time.Time,
) (*Index, error) {
	vectors := s.newIndex()
	byID := make(map[string]domain.Chunk, len(chunks))

	for _, chunk := range chunks {
		if err := vectors.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
			_ = vectors.Close()
			return nil, fmt.Errorf("index chunk %s: %w", chunk.ID, err)
		}
		byID[chunk.ID] = chunk
	}

	return &Index{
		fingerprint: fingerprint,
		builtAt:     builtAt,
		guides:      guides,
		chunks:      byID,
		vectors:     vectors,
	}, nil
}

func (s *IndexStore) report(done, total int) {
	if s.progress != nil {
		s.progress(done, total)
	}
}

// FingerprintGuides hashes the (id, content) pairs of guides sorted by ID.
// Titles, paths and metadata do not contribute.
func FingerprintGuides(guides []domain.Guide) string {
	sorted := make([]domain.Guide, len(guides))
	copy(sorted, guides)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	h := sha256.New()
	for _, g := range sorted {
		// Length prefixes keep ("ab","c") and ("a","bc") apart.
		h.Write([]byte(strconv.Itoa(len(g.ID)) + ":" + g.ID))
		h.Write([]byte(strconv.Itoa(len(g.Content)) + ":" + g.Content))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func filterHidden(guides []domain.Guide, hiddenIDs []string) []domain.Guide {
	if len(hiddenIDs) == 0 {
		return guides
	}
	hidden := make(map[string]struct{}, len(hiddenIDs))
	for _, id := range hiddenIDs {
		hidden[id] = struct{}{}
	}

	active := make([]domain.Guide, 0, len(guides))
	for _, g := range guides {
		if _, ok := hidden[g.ID]; !ok {
			active = append(active, g)
		}
	}
	return active
}

func short(fingerprint string) string {
	if len(fingerprint) > 12 {
		return fingerprint[:12]
	}
	return fingerprint
}
