package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/madcourses/skillmatch/internal/domain"
	"github.com/madcourses/skillmatch/internal/domain/course"
)

// --- Mocks ---

type mockLoader struct {
	name    string
	entries []course.Entry
	err     error
	gate    chan struct{} // if set, Load blocks until closed
	calls   atomic.Int32
}

func (m *mockLoader) Load(ctx context.Context) ([]course.Entry, error) {
	m.calls.Add(1)
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.entries, m.err
}

func (m *mockLoader) Name() string { return m.name }

func sampleEntries(t *testing.T, ids ...int64) []course.Entry {
	t.Helper()
	out := make([]course.Entry, 0, len(ids))
	for _, id := range ids {
		c, err := course.New(id, "MATH", 100+int(id), "Course", course.ParseCredits("3"), "F24", "")
		if err != nil {
			t.Fatalf("course.New: %v", err)
		}
		out = append(out, course.Entry{Course: c, Embedding: []float32{1, 0, 0}})
	}
	return out
}

// --- Tests ---

func TestGet_LoadsOnceAndCaches(t *testing.T) {
	primary := &mockLoader{name: "redis", entries: sampleEntries(t, 1, 2)}
	c := NewCache(primary, zap.NewNop())

	first, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("expected the cached catalog on the second call")
	}
	if primary.calls.Load() != 1 {
		t.Errorf("expected 1 load, got %d", primary.calls.Load())
	}
	if first.Source() != "redis" || first.Len() != 2 {
		t.Errorf("unexpected catalog: source=%q len=%d", first.Source(), first.Len())
	}
}

func TestGet_ConcurrentFirstCallersShareOneLoad(t *testing.T) {
	gate := make(chan struct{})
	primary := &mockLoader{name: "redis", entries: sampleEntries(t, 1), gate: gate}
	c := NewCache(primary, zap.NewNop())

	const callers = 20
	results := make([]*course.Catalog, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.Get(context.Background())
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := primary.calls.Load(); got != 1 {
		t.Fatalf("expected exactly 1 load, got %d", got)
	}
	for i := range callers {
		if errs[i] != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("caller %d got a different catalog", i)
		}
	}
}

func TestGet_FallsBackWhenPrimaryFails(t *testing.T) {
	primary := &mockLoader{name: "redis", err: errors.New("connection refused")}
	fallback := &mockLoader{name: "postgres", entries: sampleEntries(t, 1, 2, 3)}
	c := NewCache(primary, zap.NewNop(), WithFallback(fallback))

	cat, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Source() != "postgres" || cat.Len() != 3 {
		t.Errorf("expected fallback catalog, got source=%q len=%d", cat.Source(), cat.Len())
	}
}

func TestGet_InvalidPrimaryCountsAsFailure(t *testing.T) {
	bad := sampleEntries(t, 1, 1) // duplicate ids
	primary := &mockLoader{name: "redis", entries: bad}
	fallback := &mockLoader{name: "file", entries: sampleEntries(t, 1)}
	c := NewCache(primary, zap.NewNop(), WithFallback(fallback))

	cat, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Source() != "file" {
		t.Errorf("expected fallback source, got %q", cat.Source())
	}
}

func TestGet_ExpectedDimMismatch(t *testing.T) {
	primary := &mockLoader{name: "redis", entries: sampleEntries(t, 1)}
	c := NewCache(primary, zap.NewNop(), WithExpectedDim(384))

	_, err := c.Get(context.Background())
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Errorf("expected wrapped ErrInvalidCatalog, got %v", err)
	}
}

func TestGet_BothFailThenRetrySucceeds(t *testing.T) {
	primary := &mockLoader{name: "redis", err: errors.New("down")}
	fallback := &mockLoader{name: "postgres", err: errors.New("also down")}
	c := NewCache(primary, zap.NewNop(), WithFallback(fallback))

	_, err := c.Get(context.Background())
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if c.Loaded() {
		t.Fatal("failed load must leave the cache empty")
	}

	primary.err = nil
	primary.entries = sampleEntries(t, 7)

	cat, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("retry: unexpected error: %v", err)
	}
	if cat.Len() != 1 {
		t.Errorf("expected 1 course, got %d", cat.Len())
	}
	if primary.calls.Load() != 2 {
		t.Errorf("expected 2 primary loads, got %d", primary.calls.Load())
	}
}

func TestGet_NoFallback(t *testing.T) {
	c := NewCache(&mockLoader{name: "file", err: errors.New("no such file")}, zap.NewNop())

	_, err := c.Get(context.Background())
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestGet_CallerCancellationDoesNotAbortLoad(t *testing.T) {
	gate := make(chan struct{})
	primary := &mockLoader{name: "redis", entries: sampleEntries(t, 1), gate: gate}
	c := NewCache(primary, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled for the cancelled caller, got %v", err)
	}

	close(gate)
	cat, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Len() != 1 {
		t.Errorf("expected 1 course, got %d", cat.Len())
	}
	if primary.calls.Load() != 1 {
		t.Errorf("expected the original load to complete, got %d loads", primary.calls.Load())
	}
}

func TestGet_LoadTimeout(t *testing.T) {
	primary := &mockLoader{name: "redis", gate: make(chan struct{})}
	c := NewCache(primary, zap.NewNop(), WithLoadTimeout(20*time.Millisecond))

	_, err := c.Get(context.Background())
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped DeadlineExceeded, got %v", err)
	}
}

func TestReload_SwapsCatalog(t *testing.T) {
	primary := &mockLoader{name: "redis", entries: sampleEntries(t, 1)}
	c := NewCache(primary, zap.NewNop())

	old, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	primary.entries = sampleEntries(t, 1, 2, 3)
	fresh, err := c.Reload(context.Background())
	if err != nil {
		t.Fatalf("reload: unexpected error: %v", err)
	}
	if fresh == old || fresh.Len() != 3 {
		t.Fatalf("expected a new 3-course catalog, got len=%d", fresh.Len())
	}
	got, _ := c.Get(context.Background())
	if got != fresh {
		t.Error("Get should return the reloaded catalog")
	}
	if old.Len() != 1 {
		t.Error("previous snapshot must stay intact")
	}
}

func TestReload_FailureKeepsPrevious(t *testing.T) {
	primary := &mockLoader{name: "redis", entries: sampleEntries(t, 1)}
	c := NewCache(primary, zap.NewNop())

	old, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	primary.err = errors.New("down")
	if _, err := c.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error")
	}
	got, err := c.Get(context.Background())
	if err != nil || got != old {
		t.Errorf("expected previous catalog after failed reload, got %v, %v", got, err)
	}
}

func TestInvalidateAndStats(t *testing.T) {
	primary := &mockLoader{name: "redis", entries: sampleEntries(t, 1, 2)}
	c := NewCache(primary, zap.NewNop())

	if _, ok := c.Stats(); ok {
		t.Error("expected no stats before load")
	}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Errorf("expected unhealthy before load, got %v", err)
	}

	if _, err := c.Get(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats, ok := c.Stats()
	if !ok || stats.Courses != 2 || stats.Source != "redis" || stats.Dimensions != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy after load, got %v", err)
	}

	c.Invalidate()
	if c.Loaded() {
		t.Fatal("expected empty cache after Invalidate")
	}
	if _, err := c.Get(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.calls.Load() != 2 {
		t.Errorf("expected reload after invalidate, got %d loads", primary.calls.Load())
	}
}
