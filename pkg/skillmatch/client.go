package skillmatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	dbRedis "github.com/madcourses/skillmatch/internal/db/redis"
	"github.com/madcourses/skillmatch/internal/domain"
	"github.com/madcourses/skillmatch/internal/domain/course"
	dommatch "github.com/madcourses/skillmatch/internal/domain/match"
	"github.com/madcourses/skillmatch/internal/metrics"
	catalogrepo "github.com/madcourses/skillmatch/internal/repository/catalog"
	"github.com/madcourses/skillmatch/internal/repository/embcache"
	hfEmb "github.com/madcourses/skillmatch/internal/transport/huggingface"
	cataloguc "github.com/madcourses/skillmatch/internal/usecase/catalog"
	embeddinguc "github.com/madcourses/skillmatch/internal/usecase/embedding"
	healthuc "github.com/madcourses/skillmatch/internal/usecase/health"
	matchuc "github.com/madcourses/skillmatch/internal/usecase/match"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced in tests.
type matchUseCase interface {
	MatchAll(ctx context.Context, req *dommatch.Request) (dommatch.Result, error)
}

type catalogUseCase interface {
	Get(ctx context.Context) (*course.Catalog, error)
	Reload(ctx context.Context) (*course.Catalog, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the skillmatch entry point.
type Client struct {
	redis     *dbRedis.Store
	pool      *pgxpool.Pool
	matchSvc  matchUseCase
	catalog   catalogUseCase
	healthSvc healthUseCase
	limits    dommatch.Limits
	obs       *observer
}

// New creates a Client and connects to the configured stores.
// The provided context is used for the initial connections only; the
// catalog itself loads on the first Match.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.sources) == 0 {
		return nil, errors.New("skillmatch: catalog source required (use WithRedis, WithPostgres or WithCatalogFile)")
	}
	if cfg.embedder == nil && cfg.hfToken == "" {
		return nil, errors.New("skillmatch: embedder required (use WithEmbedder or WithHuggingFace)")
	}
	if cfg.embedCache && len(cfg.redisAddrs) == 0 {
		return nil, errors.New("skillmatch: WithEmbeddingCache requires WithRedis")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{limits: dommatch.DefaultLimits(), obs: obs}
	if err := c.connect(ctx, cfg); err != nil {
		c.Close()
		return nil, err
	}

	loaders := make([]cataloguc.Loader, 0, 2)
	for _, src := range cfg.sources[:min(2, len(cfg.sources))] {
		loaders = append(loaders, c.loader(cfg, src))
	}
	catOpts := []cataloguc.Option{cataloguc.WithExpectedDim(cfg.expectedDim)}
	if len(loaders) > 1 {
		catOpts = append(catOpts, cataloguc.WithFallback(loaders[1]))
	}
	cache := cataloguc.NewCache(loaders[0], zap.NewNop(), catOpts...)

	emb := c.embedder(cfg)
	c.catalog = cache
	c.matchSvc = matchuc.New(cache, emb).WithMaxConcurrency(cfg.maxConcurrency)

	var pinger healthuc.Pinger
	if c.redis != nil {
		pinger = c.redis
	}
	c.healthSvc = healthuc.New(cache, pinger, nil)

	return c, nil
}

func (c *Client) connect(ctx context.Context, cfg *clientConfig) error {
	if len(cfg.redisAddrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.redisAddrs, Password: cfg.redisPassword})
		if err != nil {
			return fmt.Errorf("skillmatch: create redis store: %w", err)
		}
		c.redis = store
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			return fmt.Errorf("skillmatch: redis not ready: %w", err)
		}
	}
	if cfg.postgresDSN != "" {
		pool, err := catalogrepo.NewPool(ctx, cfg.postgresDSN)
		if err != nil {
			return fmt.Errorf("skillmatch: %w", err)
		}
		c.pool = pool
	}
	return nil
}

func (c *Client) loader(cfg *clientConfig, source string) cataloguc.Loader {
	switch source {
	case sourceRedis:
		return catalogrepo.NewRedisStore(c.redis, cfg.catalogKey)
	case sourcePostgres:
		return catalogrepo.NewPostgresStore(c.pool)
	default:
		return catalogrepo.NewFileStore(cfg.catalogFile)
	}
}

// embedder builds provider -> normalizing -> optional cache.
func (c *Client) embedder(cfg *clientConfig) domain.Embedder {
	var base domain.Embedder
	model := cfg.hfModel
	if cfg.embedder != nil {
		base = &embedderAdapter{inner: cfg.embedder}
		model = "custom"
	} else {
		if model == "" {
			model = domain.DefaultVectorConfig().Model
		}
		base = hfEmb.NewEmbedder(hfEmb.Config{Token: cfg.hfToken, Model: model}, nil)
	}

	var emb domain.Embedder = embeddinguc.NewNormalizingEmbedder(base)
	if cfg.embedCache {
		emb = embcache.New(emb, c.redis, model, cfg.embedCacheTTL, metrics.EmbeddingCacheTotal, zap.NewNop())
	}
	return emb
}

// Close releases all resources.
func (c *Client) Close() {
	if c.redis != nil {
		c.redis.Close()
	}
	if c.pool != nil {
		c.pool.Close()
	}
}

// HealthStatus represents the aggregated client health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component → "ok"/"error"
}

// Health reports whether the catalog is loaded and Redis is reachable.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

// Catalog loads the catalog if needed and returns its statistics.
func (c *Client) Catalog(ctx context.Context) (stats CatalogStats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("catalog", start, err) }()

	cat, err := c.catalog.Get(ctx)
	if err != nil {
		return CatalogStats{}, fmt.Errorf("catalog: %w", err)
	}
	return statsFromDomain(cat.Stats()), nil
}

// Reload replaces the cached catalog with a fresh load. On failure the
// previous catalog keeps serving.
func (c *Client) Reload(ctx context.Context) (stats CatalogStats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("reload", start, err) }()

	cat, err := c.catalog.Reload(ctx)
	if err != nil {
		return CatalogStats{}, fmt.Errorf("reload: %w", err)
	}
	return statsFromDomain(cat.Stats()), nil
}
