package domain

// SearchResult is a single style-guide match.
type SearchResult struct {
	// Chunk is the matched guide chunk.
	Chunk Chunk `json:"chunk"`

	// Distance is the cosine distance between query and chunk (0 = identical).
	Distance float64 `json:"distance"`

	// Relevance is the distance normalised to a 0-100 percentage.
	Relevance int `json:"relevance"`
}
