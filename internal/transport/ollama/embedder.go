package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/madcourses/skillmatch/internal/domain"
)

// Config holds the Ollama provider settings.
type Config struct {
	// Host is the server base URL, e.g. http://localhost:11434.
	Host  string
	Model string
}

// Embedder produces embeddings with a local Ollama server.
type Embedder struct {
	client *api.Client
	model  string
}

// NewEmbedder creates an Ollama embedding provider.
func NewEmbedder(cfg Config, httpClient *http.Client) (*Embedder, error) {
	base, err := url.Parse(cfg.Host)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid ollama host %q", cfg.Host)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Embedder{client: api.NewClient(base, httpClient), model: cfg.Model}, nil
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	resp, err := e.client.Embed(ctx, &api.EmbedRequest{Model: e.model, Input: text})
	if err != nil {
		return domain.EmbeddingResult{}, wrapError(err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("empty ollama response: %w", domain.ErrEmbeddingUnavailable)
	}
	return domain.EmbeddingResult{
		Embedding:    resp.Embeddings[0],
		PromptTokens: resp.PromptEvalCount,
		TotalTokens:  resp.PromptEvalCount,
	}, nil
}

// HealthCheck pings the server.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if err := e.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama heartbeat: %w", err)
	}
	return nil
}

func wrapError(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Errorf("ollama error %d: %s: %w", statusErr.StatusCode, statusErr.ErrorMessage, domain.ErrEmbeddingUnavailable)
	}
	return fmt.Errorf("ollama request: %w: %w", domain.ErrEmbeddingUnavailable, err)
}
