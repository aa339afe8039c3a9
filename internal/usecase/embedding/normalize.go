package embedding

import (
	"context"
	"fmt"

	"github.com/madcourses/skillmatch/internal/domain"
)

// NormalizingEmbedder scales every vector to unit length so dot product
// equals cosine similarity. Zero vectors pass through unchanged.
type NormalizingEmbedder struct {
	inner domain.Embedder
}

// NewNormalizingEmbedder wraps inner.
func NewNormalizingEmbedder(inner domain.Embedder) *NormalizingEmbedder {
	return &NormalizingEmbedder{inner: inner}
}

// Embed implements domain.Embedder.
func (n *NormalizingEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := n.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("normalize: %w", err)
	}
	res.Embedding = domain.Normalize(res.Embedding)
	return res, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (n *NormalizingEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := n.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through decorator
	}
	return nil
}
