package hash

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService(64)
	a, err := svc.Embed(context.Background(), "Use the active voice.")
	require.NoError(t, err)
	b, err := svc.Embed(context.Background(), "use THE active voice")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbed_UnitLength(t *testing.T) {
	svc := NewEmbeddingService(0)
	assert.Equal(t, DefaultDimensions, svc.Dimensions())

	vec, err := svc.Embed(context.Background(), "Avoid jargon and acronyms in headings")
	require.NoError(t, err)
	require.Len(t, vec, DefaultDimensions)
	assert.InDelta(t, 1.0, math.Sqrt(cosine(vec, vec)), 1e-5)
}

func TestEmbed_SharedVocabularyIsCloser(t *testing.T) {
	svc := NewEmbeddingService(256)
	ctx := context.Background()

	query, _ := svc.Embed(ctx, "passive voice")
	related, _ := svc.Embed(ctx, "Prefer the active voice over the passive voice in body copy.")
	unrelated, _ := svc.Embed(ctx, "Dates are written as 1 January 2024.")

	assert.Greater(t, cosine(query, related), cosine(query, unrelated))
}

func TestEmbed_EmptyText(t *testing.T) {
	svc := NewEmbeddingService(8)
	vec, err := svc.Embed(context.Background(), " ... ")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), vec)
}

func TestEmbed_CancelledContext(t *testing.T) {
	svc := NewEmbeddingService(8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Embed(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbedBatch(t *testing.T) {
	svc := NewEmbeddingService(16)
	vecs, err := svc.EmbedBatch(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	single, _ := svc.Embed(context.Background(), "two")
	assert.Equal(t, single, vecs[1])
}

func TestMetadata(t *testing.T) {
	svc := NewEmbeddingService(16)
	assert.Equal(t, "hash", svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"don", "t", "use", "e", "g", "2024"}, tokenize("Don't use e.g. 2024!"))
	assert.Empty(t, tokenize("--"))
}
