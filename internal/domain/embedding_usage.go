package domain

import (
	"context"
	"sync/atomic"
)

type embeddingUsageKey struct{}

// EmbeddingUsage collects token usage for a single HTTP request.
// Skills are embedded concurrently, so counters are updated atomically.
type EmbeddingUsage struct {
	totalTokens atomic.Int64
	calls       atomic.Int64
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// Record counts one provider call and its tokens. Cache hits are skipped.
func (u *EmbeddingUsage) Record(res EmbeddingResult) {
	if u == nil || res.Cached {
		return
	}
	u.totalTokens.Add(int64(res.TotalTokens))
	u.calls.Add(1)
}

// TotalTokens returns the tokens consumed so far.
func (u *EmbeddingUsage) TotalTokens() int64 {
	if u == nil {
		return 0
	}
	return u.totalTokens.Load()
}

// Calls returns how many provider calls were made.
func (u *EmbeddingUsage) Calls() int64 {
	if u == nil {
		return 0
	}
	return u.calls.Load()
}
