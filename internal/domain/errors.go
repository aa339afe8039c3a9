package domain

import "errors"

var (
	// ErrInvalidRequest signals a malformed match request (missing skills, bad filter values).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmbeddingUnavailable signals an unreachable, unauthorized or failing embedding provider.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrCatalogUnavailable signals that neither the primary nor the fallback catalog store could be loaded.
	ErrCatalogUnavailable = errors.New("course catalog unavailable")
	// ErrDimensionMismatch signals that a query vector and the catalog disagree on dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidCatalog signals a catalog that violates its load-time invariants.
	ErrInvalidCatalog = errors.New("invalid catalog")
)
