package driven

import "context"

// VectorIndex provides semantic similarity search over one index snapshot.
// A new VectorIndex is created for every rebuild; instances are never
// updated in place once published.
type VectorIndex interface {
	// Add inserts a vector for the given chunk ID.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Search finds the k nearest neighbours to the query vector,
	// ordered by ascending distance.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Distance is the cosine distance (0 = identical, 2 = opposite).
	Distance float64
}

// VectorIndexFactory creates an empty VectorIndex.
type VectorIndexFactory func() VectorIndex
