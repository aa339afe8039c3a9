package skillmatch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

const (
	sourceRedis    = "redis"
	sourcePostgres = "postgres"
	sourceFile     = "file"
)

type clientConfig struct {
	sources []string // catalog stores in priority order

	redisAddrs    []string
	redisPassword string
	catalogKey    string
	postgresDSN   string
	catalogFile   string
	expectedDim   int

	embedder       Embedder
	hfToken        string
	hfModel        string
	embedCacheTTL  time.Duration
	embedCache     bool
	maxConcurrency int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func (c *clientConfig) addSource(name string) {
	for _, s := range c.sources {
		if s == name {
			return
		}
	}
	c.sources = append(c.sources, name)
}

// WithRedis reads the published catalog from a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
		c.addSource(sourceRedis)
	})
}

// WithCatalogKey overrides the Redis key holding the catalog.
func WithCatalogKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogKey = key
	})
}

// WithPostgres reads the catalog from the courses and embeddings tables.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.postgresDSN = dsn
		c.addSource(sourcePostgres)
	})
}

// WithCatalogFile reads the catalog from a JSON export.
func WithCatalogFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogFile = path
		c.addSource(sourceFile)
	})
}

// WithExpectedDimensions rejects catalogs whose vectors are not dim long.
func WithExpectedDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.expectedDim = dim
	})
}

// WithEmbedder sets a custom embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithHuggingFace embeds skills with the Hugging Face inference API.
// An empty model uses the sentence-transformers model the catalog is built with.
func WithHuggingFace(token, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.hfToken = token
		c.hfModel = model
	})
}

// WithEmbeddingCache caches skill embeddings in Redis. Requires WithRedis.
// A ttl of 0 keeps entries forever.
func WithEmbeddingCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedCache = true
		c.embedCacheTTL = ttl
	})
}

// WithMaxConcurrency bounds how many skills of one call are embedded at once.
func WithMaxConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxConcurrency = n
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
