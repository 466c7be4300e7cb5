package domain

import "time"

// Chunk is a bounded slice of a guide's text, the unit of embedding and retrieval.
// Neighbouring chunks of the same guide overlap by a fixed amount.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string `json:"id"`

	// GuideID links to the source Guide.
	GuideID string `json:"guide_id"`

	// Content is the text content of this chunk.
	Content string `json:"content"`

	// Position is the ordinal position within the guide.
	Position int `json:"position"`

	// Section is the nearest preceding heading, if any.
	Section string `json:"section,omitempty"`

	// Embedding is the vector representation for semantic search.
	Embedding []float32 `json:"-"`
}

// IndexSnapshot is the full set of embedded chunks built from one active guide set.
type IndexSnapshot struct {
	// Fingerprint identifies the active guide set the snapshot was built from.
	Fingerprint string

	// EmbeddingModel is the model that produced the vectors.
	EmbeddingModel string

	// ChunkSize and ChunkOverlap are the splitter settings used.
	ChunkSize    int
	ChunkOverlap int

	// Chunks holds every chunk with its Embedding populated.
	Chunks []Chunk

	// BuiltAt is when the snapshot was built.
	BuiltAt time.Time
}

// IndexStats summarises the current retrieval index.
type IndexStats struct {
	Fingerprint string    `json:"fingerprint"`
	Guides      int       `json:"guides"`
	Chunks      int       `json:"chunks"`
	BuiltAt     time.Time `json:"built_at"`
	Restored    bool      `json:"restored"`
}
