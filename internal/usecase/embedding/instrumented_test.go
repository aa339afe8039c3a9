package embedding

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/madcourses/skillmatch/internal/domain"
	"github.com/madcourses/skillmatch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	healthErr error
	wait      bool
}

func (m *mockEmbedder) Embed(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.wait {
		<-ctx.Done()
		return domain.EmbeddingResult{}, ctx.Err()
	}
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

// plainMockEmbedder has no HealthCheck method.
type plainMockEmbedder struct{}

func (plainMockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{3, 4}}, nil
}

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 4,
		TotalTokens:  4,
	}}
	p := NewInstrumentedEmbedder(inner, "openai", "success-model", 0, zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.TotalTokens != 4 {
		t.Errorf("unexpected result %+v", result)
	}

	if got := testutil.ToFloat64(metrics.EmbeddingRequestsTotal.WithLabelValues("openai", "success-model", "success")); got != 1 {
		t.Errorf("requests_total{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.EmbeddingTokensTotal.WithLabelValues("openai", "success-model", "total")); got != 4 {
		t.Errorf("tokens_total{total} = %v, want 4", got)
	}
}

func TestInstrumentedEmbedder_Error(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingUnavailable}
	p := NewInstrumentedEmbedder(inner, "huggingface", "error-model", 0, zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if got := testutil.ToFloat64(metrics.EmbeddingErrorsTotal.WithLabelValues("huggingface", "error-model", "provider_error")); got != 1 {
		t.Errorf("errors_total{provider_error} = %v, want 1", got)
	}
}

func TestInstrumentedEmbedder_Timeout(t *testing.T) {
	inner := &mockEmbedder{wait: true}
	p := NewInstrumentedEmbedder(inner, "ollama", "timeout-model", 10*time.Millisecond, zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if got := testutil.ToFloat64(metrics.EmbeddingErrorsTotal.WithLabelValues("ollama", "timeout-model", "timeout")); got != 1 {
		t.Errorf("errors_total{timeout} = %v, want 1", got)
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	boom := errors.New("down")
	p := NewInstrumentedEmbedder(&mockEmbedder{healthErr: boom}, "p", "m", 0, zap.NewNop())
	if err := p.HealthCheck(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected inner error, got %v", err)
	}

	plain := NewInstrumentedEmbedder(plainMockEmbedder{}, "p", "m", 0, zap.NewNop())
	if err := plain.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected nil for embedder without health check, got %v", err)
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "timeout"},
		{context.Canceled, "canceled"},
		{domain.ErrEmbeddingUnavailable, "provider_error"},
		{errors.New("other"), "internal"},
	}
	for _, tc := range tests {
		if got := errorType(tc.err); got != tc.want {
			t.Errorf("errorType(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestNormalizingEmbedder(t *testing.T) {
	n := NewNormalizingEmbedder(plainMockEmbedder{})

	res, err := n.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(float64(res.Embedding[0])-0.6) > 1e-6 || math.Abs(float64(res.Embedding[1])-0.8) > 1e-6 {
		t.Errorf("expected [0.6 0.8], got %v", res.Embedding)
	}
}

func TestNormalizingEmbedder_ZeroAndError(t *testing.T) {
	zero := NewNormalizingEmbedder(&mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0, 0}}})
	res, err := zero.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embedding[0] != 0 || res.Embedding[1] != 0 {
		t.Errorf("zero vector must pass through, got %v", res.Embedding)
	}

	failing := NewNormalizingEmbedder(&mockEmbedder{err: domain.ErrEmbeddingUnavailable})
	if _, err := failing.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}
