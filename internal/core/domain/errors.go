package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown file format or normaliser type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoGuides indicates the guide directory is missing.
	// Callers treat it as "no guides available" rather than a failure.
	ErrNoGuides = errors.New("no guides available")

	// ErrEmbeddingUnavailable indicates the embedding service cannot be reached.
	// Index rebuilds abort and the previous index is kept.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrAgentUnavailable indicates the reasoning agent's model runtime cannot be reached.
	// This is the only condition that aborts a whole audit run.
	ErrAgentUnavailable = errors.New("reasoning agent unavailable")
)
