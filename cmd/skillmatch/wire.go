package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/madcourses/skillmatch/internal/config"
	dbRedis "github.com/madcourses/skillmatch/internal/db/redis"
	"github.com/madcourses/skillmatch/internal/domain"
	"github.com/madcourses/skillmatch/internal/metrics"
	catalogrepo "github.com/madcourses/skillmatch/internal/repository/catalog"
	"github.com/madcourses/skillmatch/internal/repository/embcache"
	hfEmb "github.com/madcourses/skillmatch/internal/transport/huggingface"
	ollamaEmb "github.com/madcourses/skillmatch/internal/transport/ollama"
	openaiEmb "github.com/madcourses/skillmatch/internal/transport/openai"
	cataloguc "github.com/madcourses/skillmatch/internal/usecase/catalog"
	embeddinguc "github.com/madcourses/skillmatch/internal/usecase/embedding"
)

// deps opens backing services on first use and closes whatever was opened.
type deps struct {
	cfg    config.Config
	logger *zap.Logger

	redis *dbRedis.Store
	pool  *pgxpool.Pool
}

func newDeps(cfg config.Config, logger *zap.Logger) *deps {
	return &deps{cfg: cfg, logger: logger}
}

func (d *deps) Close() {
	if d.redis != nil {
		d.redis.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

func (d *deps) redisStore(ctx context.Context) (*dbRedis.Store, error) {
	if d.redis != nil {
		return d.redis, nil
	}
	if !d.cfg.Redis.Enabled() {
		return nil, fmt.Errorf("redis is not configured")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    d.cfg.Redis.Addrs,
		Username: d.cfg.Redis.Username,
		Password: d.cfg.Redis.Password,
		DB:       d.cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis store: %w", err)
	}
	timeout := time.Duration(d.cfg.Redis.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("redis not ready: %w", err)
	}

	d.logger.Info("Connected to redis", zap.Strings("addrs", d.cfg.Redis.Addrs))
	d.redis = store
	return store, nil
}

func (d *deps) postgresPool(ctx context.Context) (*pgxpool.Pool, error) {
	if d.pool != nil {
		return d.pool, nil
	}
	pool, err := catalogrepo.NewPool(ctx, d.cfg.Postgres.DSN)
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped
	}
	d.logger.Info("Connected to postgres")
	d.pool = pool
	return pool, nil
}

// loader builds the named catalog store.
func (d *deps) loader(ctx context.Context, name string) (cataloguc.Loader, error) {
	switch name {
	case config.StoreRedis:
		s, err := d.redisStore(ctx)
		if err != nil {
			return nil, err
		}
		return catalogrepo.NewRedisStore(s, d.cfg.Catalog.RedisKey), nil
	case config.StorePostgres:
		pool, err := d.postgresPool(ctx)
		if err != nil {
			return nil, err
		}
		return catalogrepo.NewPostgresStore(pool), nil
	case config.StoreFile:
		return catalogrepo.NewFileStore(d.cfg.Catalog.FilePath), nil
	default:
		return nil, fmt.Errorf("unknown catalog store %q", name)
	}
}

// catalogCache wires the primary and optional fallback stores.
func (d *deps) catalogCache(ctx context.Context) (*cataloguc.Cache, error) {
	primary, err := d.loader(ctx, d.cfg.Catalog.Primary)
	if err != nil {
		return nil, fmt.Errorf("catalog primary: %w", err)
	}

	opts := []cataloguc.Option{
		cataloguc.WithExpectedDim(d.cfg.Catalog.Dimensions),
		cataloguc.WithLoadTimeout(time.Duration(d.cfg.Catalog.LoadTimeoutSec) * time.Second),
	}
	if name := d.cfg.Catalog.Fallback; name != "" {
		fallback, err := d.loader(ctx, name)
		if err != nil {
			d.logger.Warn("Catalog fallback unavailable", zap.String("store", name), zap.Error(err))
		} else {
			opts = append(opts, cataloguc.WithFallback(fallback))
		}
	}

	return cataloguc.NewCache(primary, d.logger, opts...), nil
}

// embedder assembles the decorator chain:
// provider -> normalizing -> cached -> instrumented -> instruction.
func (d *deps) embedder(ctx context.Context) (domain.Embedder, error) {
	ec := d.cfg.Embedding

	base, err := providerEmbedder(ec)
	if err != nil {
		return nil, err
	}

	var emb domain.Embedder = embeddinguc.NewNormalizingEmbedder(base)

	if ec.Cache.Enabled {
		store, err := d.redisStore(ctx)
		if err != nil {
			return nil, fmt.Errorf("embedding cache: %w", err)
		}
		emb = embcache.New(emb, store, ec.Model,
			time.Duration(ec.Cache.TTLSec)*time.Second, metrics.EmbeddingCacheTotal, d.logger)
	}

	emb = embeddinguc.NewInstrumentedEmbedder(emb, ec.Provider, ec.Model,
		time.Duration(ec.TimeoutSec)*time.Second, d.logger)

	// Outermost so the cache key includes the instruction.
	if ec.QueryInstruction != "" {
		emb = domain.NewInstructionEmbedder(emb, ec.QueryInstruction)
	}

	d.logger.Info("Embedder created",
		zap.String("provider", ec.Provider),
		zap.String("model", ec.Model),
		zap.Bool("cache", ec.Cache.Enabled),
	)
	return emb, nil
}

func providerEmbedder(ec config.EmbeddingConfig) (domain.Embedder, error) {
	switch ec.Provider {
	case config.ProviderHuggingFace:
		return hfEmb.NewEmbedder(hfEmb.Config{Token: ec.APIKey, BaseURL: ec.BaseURL, Model: ec.Model}, nil), nil
	case config.ProviderOpenAI:
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     ec.APIKey,
			BaseURL:    ec.BaseURL,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
			User:       "skillmatch",
		}), nil
	case config.ProviderOllama:
		emb, err := ollamaEmb.NewEmbedder(ollamaEmb.Config{Host: ec.BaseURL, Model: ec.Model}, nil)
		if err != nil {
			return nil, fmt.Errorf("ollama embedder: %w", err)
		}
		return emb, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", ec.Provider)
	}
}

// embeddingHealthChecker adapts domain.Embedder to health.Checker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func (h embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
