// Package ollama provides an embedding service adapter using Ollama.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ollama/ollama/api"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "http://localhost:11434"
	DefaultModel     = "nomic-embed-text"
	DefaultTimeout   = 60 * time.Second
	DefaultBatchSize = 32
)

// Config holds configuration for the Ollama embedding service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: nomic-embed-text).
	Model string

	// Timeout bounds each request (default: 60s).
	Timeout time.Duration

	// BatchSize is the number of inputs sent per request (default: 32).
	BatchSize int

	// RequestsPerSecond throttles requests to the runtime (0 = unlimited).
	RequestsPerSecond float64

	// HTTPClient overrides the default client. Used by tests.
	HTTPClient *http.Client
}

// EmbeddingService embeds text through the Ollama /api/embed endpoint.
type EmbeddingService struct {
	client    *api.Client
	baseURL   string
	model     string
	batchSize int
	limiter   *rate.Limiter

	mu         sync.RWMutex
	dimensions int
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("%w: ollama base URL %q", domain.ErrInvalidInput, cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &EmbeddingService{
		client:    api.NewClient(base, httpClient),
		baseURL:   base.String(),
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
		limiter:   rate.NewLimiter(limit, 1),
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in order, BatchSize inputs per request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := min(start+s.batchSize, len(texts))
		vectors, err := s.embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed texts %d-%d: %w", start, end-1, err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (s *EmbeddingService) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	resp, err := s.client.Embed(ctx, &api.EmbedRequest{Model: s.model, Input: inputs})
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(resp.Embeddings), len(inputs))
	}

	s.mu.Lock()
	if s.dimensions == 0 {
		s.dimensions = len(resp.Embeddings[0])
	}
	s.mu.Unlock()

	return resp.Embeddings, nil
}

// classify separates errors reported by the runtime (bad model, bad input)
// from failures to reach it, which map to domain.ErrEmbeddingUnavailable.
func classify(err error) error {
	var (
		status    api.StatusError
		transport *url.Error
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.As(err, &status):
		return fmt.Errorf("ollama error (status %d): %s", status.StatusCode, strings.TrimSpace(status.ErrorMessage))
	case errors.As(err, &transport):
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	default:
		return fmt.Errorf("ollama error: %w", err)
	}
}

// Dimensions returns the embedding vector size.
// It is 0 until the first successful request.
func (s *EmbeddingService) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists the installed models, which checks connectivity without
// running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.List(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrEmbeddingUnavailable, s.baseURL, err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
