package match

import (
	"context"

	"github.com/madcourses/skillmatch/internal/domain"
	"github.com/madcourses/skillmatch/internal/domain/course"
)

// CatalogProvider returns the cached course catalog, loading it on first use.
type CatalogProvider interface {
	Get(ctx context.Context) (*course.Catalog, error)
}

// Embedder vectorizes skill phrases into normalized embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
