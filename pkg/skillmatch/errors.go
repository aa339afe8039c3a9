package skillmatch

import "github.com/madcourses/skillmatch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest       = domain.ErrInvalidRequest
	ErrEmbeddingUnavailable = domain.ErrEmbeddingUnavailable
	ErrCatalogUnavailable   = domain.ErrCatalogUnavailable
	ErrDimensionMismatch    = domain.ErrDimensionMismatch
	ErrInvalidCatalog       = domain.ErrInvalidCatalog
)
