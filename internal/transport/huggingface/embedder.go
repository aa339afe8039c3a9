package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/madcourses/skillmatch/internal/domain"
)

// DefaultBaseURL is the hosted inference router.
const DefaultBaseURL = "https://router.huggingface.co/hf-inference/models"

const maxErrorBody = 1 << 10

// Config holds the Hugging Face provider settings.
type Config struct {
	Token string
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	Model   string
}

// Embedder calls the feature-extraction pipeline of the Hugging Face
// Inference API.
type Embedder struct {
	http     *http.Client
	endpoint string
	token    string
}

// NewEmbedder creates a Hugging Face embedding provider.
func NewEmbedder(cfg Config, httpClient *http.Client) *Embedder {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Embedder{
		http:     httpClient,
		endpoint: strings.TrimRight(base, "/") + "/" + cfg.Model + "/pipeline/feature-extraction",
		token:    cfg.Token,
	}
}

type request struct {
	Inputs  []string `json:"inputs"`
	Options options  `json:"options"`
}

// options ask the hosted API to block while a cold model loads instead of
// answering 503, and to skip its response cache.
type options struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

// Embed implements domain.Embedder. The API reports no token usage.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if e.token == "" {
		return domain.EmbeddingResult{}, fmt.Errorf("missing API token: %w", domain.ErrEmbeddingUnavailable)
	}

	body, err := json.Marshal(request{
		Inputs:  []string{text},
		Options: options{WaitForModel: true},
	})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embedding request: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.EmbeddingResult{}, fmt.Errorf("embedding API error %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(msg)), domain.ErrEmbeddingUnavailable)
	}

	vec, err := decodeEmbedding(resp.Body)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

// decodeEmbedding accepts the batched shape [[...]] and the single-input shape [...].
func decodeEmbedding(r io.Reader) ([]float32, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var batch [][]float32
	if err := json.Unmarshal(raw, &batch); err == nil {
		if len(batch) == 0 || len(batch[0]) == 0 {
			return nil, fmt.Errorf("empty embedding response")
		}
		return batch[0], nil
	}

	var single []float32
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("unexpected response shape: %w", err)
	}
	if len(single) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return single, nil
}
