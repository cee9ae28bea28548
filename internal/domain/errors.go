package domain

import "errors"

// Sentinel errors shared between layers.
var (
	// ErrPageNotFound signals that a source has no page for the requested place.
	ErrPageNotFound = errors.New("page not found")
	// ErrFetchFailed signals a transient fetch failure (network, API error).
	ErrFetchFailed = errors.New("fetch failed")
	// ErrLengthMismatch signals mismatched parallel sequences (chunks vs embeddings).
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrStoreUnavailable signals an insert or query backend failure.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrInvalidFilter signals an unusable retrieval filter value.
	ErrInvalidFilter = errors.New("invalid filter")
)
