package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoStructure indicates a document with no recognisable pattern
	// headings or an invalid preamble. The batch driver skips such
	// documents and continues.
	ErrNoStructure = errors.New("no recognisable document structure")

	// ErrEmbeddingUnavailable indicates the embedding backend is not
	// configured or failed to initialise. The semantic tier is skipped.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrAdvisorUnavailable indicates the external advisor is not
	// configured. The advisor tier is skipped.
	ErrAdvisorUnavailable = errors.New("mapping advisor unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrDimensionMismatch indicates an adapter checkpoint whose dimension
	// does not match the embedding backend.
	ErrDimensionMismatch = errors.New("adapter dimension mismatch")

	// ErrUnsupportedType indicates an unknown reader or provider type.
	ErrUnsupportedType = errors.New("unsupported type")
)
