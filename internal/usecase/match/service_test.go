package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/madcourses/skillmatch/internal/domain"
	"github.com/madcourses/skillmatch/internal/domain/filter"
	dommatch "github.com/madcourses/skillmatch/internal/domain/match"
)

func makeRequest(t *testing.T, skills []string, k int) *dommatch.Request {
	t.Helper()
	r, err := dommatch.NewRequest(skills, &k, filter.Filter{}, dommatch.DefaultLimits())
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return &r
}

func twoCourseCatalog(t *testing.T) *mockCatalog {
	t.Helper()
	return &mockCatalog{cat: newCatalog(t,
		entry(t, 1, "MATH", 221, "4", []float32{1, 0}),
		entry(t, 2, "COMP SCI", 300, "3", []float32{0, 1}),
	)}
}

func TestMatch_PreservesSkillOrder(t *testing.T) {
	embed := &mockEmbedder{
		vectors: map[string][]float32{"a": {1, 0}, "b": {0, 1}},
		// "a" resolves after "b"
		delays: map[string]time.Duration{"a": 50 * time.Millisecond},
	}
	svc := New(twoCourseCatalog(t), embed)

	results, err := svc.Match(context.Background(), makeRequest(t, []string{"a", "b"}, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Skill != "a" || results[1].Skill != "b" {
		t.Fatalf("unexpected order: %q, %q", results[0].Skill, results[1].Skill)
	}
	if c := results[0].Matches[0].Course(); c.ID() != 1 {
		t.Errorf("skill a should match course 1, got %d", c.ID())
	}
	if c := results[1].Matches[0].Course(); c.ID() != 2 {
		t.Errorf("skill b should match course 2, got %d", c.ID())
	}
}

func TestMatch_EmbeddingFailureFailsRequest(t *testing.T) {
	embed := &mockEmbedder{
		vectors: map[string][]float32{"a": {1, 0}},
		errs:    map[string]error{"b": domain.ErrEmbeddingUnavailable},
	}
	svc := New(twoCourseCatalog(t), embed)

	results, err := svc.Match(context.Background(), makeRequest(t, []string{"a", "b"}, 2))
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if results != nil {
		t.Errorf("expected no partial results, got %v", results)
	}
}

func TestMatch_CatalogUnavailable(t *testing.T) {
	cat := &mockCatalog{err: domain.ErrCatalogUnavailable}
	embed := &mockEmbedder{}
	svc := New(cat, embed)

	_, err := svc.Match(context.Background(), makeRequest(t, []string{"a"}, 5))
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if embed.callCount() != 0 {
		t.Error("embedder should not be called without a catalog")
	}
}

func TestMatch_DimensionMismatch(t *testing.T) {
	embed := &mockEmbedder{vectors: map[string][]float32{"a": {1, 0, 0}}}
	svc := New(twoCourseCatalog(t), embed)

	_, err := svc.Match(context.Background(), makeRequest(t, []string{"a"}, 5))
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestMatch_ZeroKSkipsEmbedding(t *testing.T) {
	embed := &mockEmbedder{}
	svc := New(twoCourseCatalog(t), embed)

	results, err := svc.Match(context.Background(), makeRequest(t, []string{"a", "b"}, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 || len(results[0].Matches) != 0 || results[0].Matches == nil {
		t.Errorf("expected empty non-nil match lists, got %+v", results)
	}
	if embed.callCount() != 0 {
		t.Errorf("expected no embed calls, got %d", embed.callCount())
	}
}

func TestMatch_EmptyCatalog(t *testing.T) {
	embed := &mockEmbedder{}
	svc := New(&mockCatalog{cat: newCatalog(t)}, embed)

	results, err := svc.Match(context.Background(), makeRequest(t, []string{"a"}, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || len(results[0].Matches) != 0 {
		t.Errorf("expected one empty result, got %+v", results)
	}
}

func TestMatch_FetchesCatalogOncePerRequest(t *testing.T) {
	cat := twoCourseCatalog(t)
	embed := &mockEmbedder{vectors: map[string][]float32{"a": {1, 0}, "b": {0, 1}, "c": {1, 1}}}
	svc := New(cat, embed)

	if _, err := svc.Match(context.Background(), makeRequest(t, []string{"a", "b", "c"}, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cat.calls.Load(); got != 1 {
		t.Errorf("expected 1 catalog fetch, got %d", got)
	}
}

func TestMatch_RecordsUsage(t *testing.T) {
	embed := &mockEmbedder{
		vectors: map[string][]float32{"a": {1, 0}, "b": {0, 1}},
		tokens:  7,
	}
	svc := New(twoCourseCatalog(t), embed).WithMaxConcurrency(1)

	ctx, usage := domain.NewContextWithUsage(context.Background())
	if _, err := svc.Match(ctx, makeRequest(t, []string{"a", "b"}, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usage.TotalTokens() != 14 || usage.Calls() != 2 {
		t.Errorf("usage = %d tokens / %d calls, want 14 / 2", usage.TotalTokens(), usage.Calls())
	}
}

func TestMatch_CacheHitsAreNotProviderCalls(t *testing.T) {
	embed := &mockEmbedder{
		vectors: map[string][]float32{"a": {1, 0}, "b": {0, 1}},
		cached:  map[string]bool{"a": true},
		tokens:  7,
	}
	svc := New(twoCourseCatalog(t), embed)

	ctx, usage := domain.NewContextWithUsage(context.Background())
	if _, err := svc.Match(ctx, makeRequest(t, []string{"a", "b"}, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usage.TotalTokens() != 7 || usage.Calls() != 1 {
		t.Errorf("usage = %d tokens / %d calls, want 7 / 1", usage.TotalTokens(), usage.Calls())
	}
}

func TestMatchAll_OverallRanksAgainstCentroid(t *testing.T) {
	cat := &mockCatalog{cat: newCatalog(t,
		entry(t, 1, "MATH", 221, "4", []float32{1, 0}),
		entry(t, 2, "COMP SCI", 300, "3", []float32{0, 1}),
		entry(t, 3, "STAT", 240, "3", []float32{0.8, 0.6}),
	)}
	embed := &mockEmbedder{vectors: map[string][]float32{"a": {1, 0}, "b": {0.6, 0.8}}}
	svc := New(cat, embed)

	req := makeRequest(t, []string{"a", "b"}, 2)
	req.SetOverall(true)

	res, err := svc.MatchAll(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Skills) != 2 {
		t.Fatalf("expected 2 skill results, got %d", len(res.Skills))
	}
	// centroid of [1 0] and [0.6 0.8] points at [0.894 0.447]
	if len(res.Overall) != 2 {
		t.Fatalf("expected 2 overall matches, got %d", len(res.Overall))
	}
	if c := res.Overall[0].Course(); c.ID() != 3 {
		t.Errorf("overall top should be course 3, got %d", c.ID())
	}
	if c := res.Overall[1].Course(); c.ID() != 1 {
		t.Errorf("overall second should be course 1, got %d", c.ID())
	}
	if embed.callCount() != 2 {
		t.Errorf("overall ranking must reuse skill vectors, got %d embed calls", embed.callCount())
	}
}

func TestMatchAll_OverallOffOrEmpty(t *testing.T) {
	embed := &mockEmbedder{vectors: map[string][]float32{"a": {1, 0}}}
	svc := New(twoCourseCatalog(t), embed)

	res, err := svc.MatchAll(context.Background(), makeRequest(t, []string{"a"}, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Overall != nil {
		t.Errorf("expected nil overall when not requested, got %v", res.Overall)
	}

	req := makeRequest(t, []string{"a"}, 0)
	req.SetOverall(true)
	res, err = svc.MatchAll(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Overall == nil || len(res.Overall) != 0 {
		t.Errorf("expected empty non-nil overall for k=0, got %v", res.Overall)
	}
}
