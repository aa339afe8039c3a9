package match

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/madcourses/skillmatch/internal/domain"
	"github.com/madcourses/skillmatch/internal/domain/course"
)

func entry(t *testing.T, id int64, subject string, level int, credits string, vec []float32) course.Entry {
	t.Helper()
	c, err := course.New(id, subject, level, "Course", course.ParseCredits(credits), "F24", "")
	if err != nil {
		t.Fatalf("course.New: %v", err)
	}
	return course.Entry{Course: c, Embedding: vec}
}

func newCatalog(t *testing.T, entries ...course.Entry) *course.Catalog {
	t.Helper()
	cat, err := course.NewCatalog(entries, 0, "test")
	if err != nil {
		t.Fatalf("course.NewCatalog: %v", err)
	}
	return cat
}

// --- Mocks ---

type mockCatalog struct {
	cat   *course.Catalog
	err   error
	calls atomic.Int32
}

func (m *mockCatalog) Get(_ context.Context) (*course.Catalog, error) {
	m.calls.Add(1)
	return m.cat, m.err
}

// mockEmbedder returns a fixed vector per text, optionally after a per-text delay.
type mockEmbedder struct {
	vectors map[string][]float32
	delays  map[string]time.Duration
	errs    map[string]error
	tokens  int
	cached  map[string]bool

	mu    sync.Mutex
	calls []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if d := m.delays[text]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return domain.EmbeddingResult{}, ctx.Err()
		}
	}
	if err := m.errs[text]; err != nil {
		return domain.EmbeddingResult{}, err
	}
	if m.cached[text] {
		return domain.EmbeddingResult{Embedding: m.vectors[text], Cached: true}, nil
	}
	return domain.EmbeddingResult{Embedding: m.vectors[text], TotalTokens: m.tokens}, nil
}

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
