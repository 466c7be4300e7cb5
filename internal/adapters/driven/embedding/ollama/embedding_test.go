package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

func newEmbedServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/api/embed":
			if requests != nil {
				requests.Add(1)
			}
			var req struct {
				Model string   `json:"model"`
				Input []string `json:"input"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			assert.Equal(t, "test-model", req.Model)

			embeddings := make([][]float32, 0, len(req.Input))
			for _, in := range req.Input {
				embeddings = append(embeddings, []float32{float32(len(in)), 1, 0})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"model": req.Model, "embeddings": embeddings})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newService(t *testing.T, cfg Config) *EmbeddingService {
	t.Helper()
	svc, err := NewEmbeddingService(cfg)
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := newService(t, Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, DefaultBatchSize, svc.batchSize)
	assert.Equal(t, 0, svc.Dimensions())
}

func TestNewEmbeddingService_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"::bad", "localhost"} {
		_, err := NewEmbeddingService(Config{BaseURL: raw})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, raw)
	}
}

func TestEmbeddingService_Embed(t *testing.T) {
	server := newEmbedServer(t, nil)
	svc := newService(t, Config{BaseURL: server.URL + "/", Model: "test-model"})

	vec, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 1, 0}, vec)
	assert.Equal(t, 3, svc.Dimensions())
}

func TestEmbeddingService_EmbedBatch_SplitsRequests(t *testing.T) {
	var requests atomic.Int32
	server := newEmbedServer(t, &requests)
	svc := newService(t, Config{BaseURL: server.URL, Model: "test-model", BatchSize: 2})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	require.NoError(t, err)
	require.Len(t, vecs, 5)
	for i, v := range vecs {
		assert.Equal(t, float32(i+1), v[0])
	}
	assert.Equal(t, int32(3), requests.Load())
}

func TestEmbeddingService_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	svc := newService(t, Config{BaseURL: server.URL})
	_, err := svc.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestEmbeddingService_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[]}`))
	}))
	defer server.Close()

	svc := newService(t, Config{BaseURL: server.URL})
	_, err := svc.Embed(context.Background(), "x")
	assert.ErrorContains(t, err, "0 embeddings for 1 inputs")
}

func TestEmbeddingService_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	svc := newService(t, Config{BaseURL: url})
	_, err := svc.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	err = svc.Ping(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbeddingService_Ping(t *testing.T) {
	server := newEmbedServer(t, nil)
	svc := newService(t, Config{BaseURL: server.URL})
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestEmbeddingService_RateLimitHonoursContext(t *testing.T) {
	server := newEmbedServer(t, nil)
	svc := newService(t, Config{BaseURL: server.URL, Model: "test-model", RequestsPerSecond: 0.001})

	_, err := svc.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Embed(ctx, "second")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
