package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/madcourses/skillmatch/internal/domain"
	"github.com/madcourses/skillmatch/internal/domain/course"
	"github.com/madcourses/skillmatch/internal/metrics"
)

// DefaultLoadTimeout bounds a single catalog load across both stores.
const DefaultLoadTimeout = 30 * time.Second

const flightKey = "catalog"

// Cache holds the process-wide course catalog. The first Get loads it from
// the primary store, falling back to the secondary; concurrent callers share
// that one load. A failed load leaves the cache empty so the next call retries.
type Cache struct {
	primary     Loader
	fallback    Loader
	expectedDim int
	loadTimeout time.Duration
	logger      *zap.Logger

	current atomic.Pointer[course.Catalog]
	group   singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithFallback sets the store used when the primary load fails.
func WithFallback(l Loader) Option {
	return func(c *Cache) { c.fallback = l }
}

// WithExpectedDim rejects catalogs whose embeddings have a different dimension.
func WithExpectedDim(dim int) Option {
	return func(c *Cache) { c.expectedDim = dim }
}

// WithLoadTimeout overrides DefaultLoadTimeout.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

// NewCache creates an empty cache over primary.
func NewCache(primary Loader, logger *zap.Logger, opts ...Option) *Cache {
	c := &Cache{
		primary:     primary,
		loadTimeout: DefaultLoadTimeout,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached catalog, loading it on first use.
func (c *Cache) Get(ctx context.Context) (*course.Catalog, error) {
	if cat := c.current.Load(); cat != nil {
		return cat, nil
	}
	return c.load(ctx, false)
}

// Reload loads a fresh catalog and swaps it in. On failure the previous
// catalog stays in place.
func (c *Cache) Reload(ctx context.Context) (*course.Catalog, error) {
	return c.load(ctx, true)
}

// Invalidate drops the cached catalog; the next Get reloads it.
func (c *Cache) Invalidate() {
	c.current.Store(nil)
	metrics.CatalogCourses.Set(0)
}

// Loaded reports whether a catalog is cached.
func (c *Cache) Loaded() bool {
	return c.current.Load() != nil
}

// Stats summarizes the cached catalog. ok is false if nothing is loaded.
func (c *Cache) Stats() (stats course.Stats, ok bool) {
	cat := c.current.Load()
	if cat == nil {
		return course.Stats{}, false
	}
	return cat.Stats(), true
}

// HealthCheck fails if no catalog is cached.
func (c *Cache) HealthCheck(_ context.Context) error {
	if !c.Loaded() {
		return domain.ErrCatalogUnavailable
	}
	return nil
}

func (c *Cache) load(ctx context.Context, force bool) (*course.Catalog, error) {
	key := flightKey
	if force {
		key += ":reload"
	}

	ch := c.group.DoChan(key, func() (any, error) {
		if !force {
			if cat := c.current.Load(); cat != nil {
				return cat, nil
			}
		}

		// Detached from the caller: one cancelled request must not abort a
		// load other requests are waiting on.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		cat, err := c.loadFromStores(loadCtx)
		if err != nil {
			return nil, err
		}
		c.current.Store(cat)
		metrics.CatalogCourses.Set(float64(cat.Len()))
		return cat, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err //nolint:wrapcheck // wrapped in loadFromStores
		}
		return res.Val.(*course.Catalog), nil //nolint:errcheck,forcetypeassert // only *course.Catalog is stored
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for catalog: %w", ctx.Err())
	}
}

func (c *Cache) loadFromStores(ctx context.Context) (*course.Catalog, error) {
	cat, primaryErr := c.loadFrom(ctx, c.primary)
	if primaryErr == nil {
		return cat, nil
	}
	if c.fallback == nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCatalogUnavailable, c.primary.Name(), primaryErr)
	}

	c.logger.Warn("Primary catalog store failed, trying fallback",
		zap.String("primary", c.primary.Name()),
		zap.String("fallback", c.fallback.Name()),
		zap.Error(primaryErr),
	)

	cat, fallbackErr := c.loadFrom(ctx, c.fallback)
	if fallbackErr == nil {
		return cat, nil
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, errors.Join(
		fmt.Errorf("%s: %w", c.primary.Name(), primaryErr),
		fmt.Errorf("%s: %w", c.fallback.Name(), fallbackErr),
	))
}

func (c *Cache) loadFrom(ctx context.Context, l Loader) (*course.Catalog, error) {
	start := time.Now()
	name := l.Name()

	cat, err := c.build(ctx, l)
	metrics.CatalogLoadDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogLoadsTotal.WithLabelValues(name, "error").Inc()
		return nil, err
	}
	metrics.CatalogLoadsTotal.WithLabelValues(name, "success").Inc()

	c.logger.Info("Catalog loaded",
		zap.String("source", name),
		zap.Int("courses", cat.Len()),
		zap.Int("dimensions", cat.Dim()),
		zap.Duration("duration", time.Since(start)),
	)
	return cat, nil
}

func (c *Cache) build(ctx context.Context, l Loader) (*course.Catalog, error) {
	entries, err := l.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	cat, err := course.NewCatalog(entries, c.expectedDim, l.Name())
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return cat, nil
}
