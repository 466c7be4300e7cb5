package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a brute-force cosine distance index.
// Style-guide corpora are small enough that a linear scan is fast.
type VectorIndex struct {
	mu         sync.RWMutex
	dimensions int
	ids        []string
	vectors    [][]float32
	norms      []float64
}

// NewVectorIndex creates an empty index. The dimension is fixed by the
// first vector added.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// NewVectorIndexFactory returns a factory producing empty in-memory indexes.
func NewVectorIndexFactory() driven.VectorIndexFactory {
	return func() driven.VectorIndex {
		return NewVectorIndex()
	}
}

// Add stores a copy of the vector under the chunk ID.
func (v *VectorIndex) Add(_ context.Context, chunkID string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("empty vector for chunk %s", chunkID)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.dimensions == 0 {
		v.dimensions = len(embedding)
	}
	if len(embedding) != v.dimensions {
		return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(embedding), v.dimensions)
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	v.ids = append(v.ids, chunkID)
	v.vectors = append(v.vectors, vec)
	v.norms = append(v.norms, norm(vec))
	return nil
}

// Search returns the k nearest vectors by cosine distance, ascending.
// Ties are broken by insertion order.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if k <= 0 || len(v.ids) == 0 {
		return nil, nil
	}
	if len(query) != v.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), v.dimensions)
	}

	qNorm := norm(query)
	hits := make([]driven.VectorHit, len(v.ids))
	for i, vec := range v.vectors {
		hits[i] = driven.VectorHit{
			ChunkID:  v.ids[i],
			Distance: cosineDistance(query, vec, qNorm, v.norms[i]),
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Len returns the number of stored vectors.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.ids)
}

// Close releases the stored vectors.
func (v *VectorIndex) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ids, v.vectors, v.norms = nil, nil, nil
	return nil
}

// cosineDistance returns 1 - cosine similarity, in [0, 2].
// A zero vector is treated as orthogonal to everything.
func cosineDistance(a, b []float32, aNorm, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 1
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	d := 1 - dot/(aNorm*bNorm)
	return math.Max(0, math.Min(2, d))
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
