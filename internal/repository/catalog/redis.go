package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/madcourses/skillmatch/internal/db"
	"github.com/madcourses/skillmatch/internal/domain"
	"github.com/madcourses/skillmatch/internal/domain/course"
)

// DefaultRedisKey holds the published catalog blob.
const DefaultRedisKey = domain.KeyPrefix + "catalog"

// kvStore is the consumer interface for the Redis catalog (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// RedisStore keeps the whole catalog as a JSON blob under one key.
type RedisStore struct {
	store kvStore
	key   string
}

// NewRedisStore creates a Redis-backed catalog store. An empty key uses DefaultRedisKey.
func NewRedisStore(s kvStore, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{store: s, key: key}
}

// Name implements usecase/catalog.Loader.
func (s *RedisStore) Name() string { return "redis" }

// Load reads the catalog blob. A missing key is an error: the catalog has not been published.
func (s *RedisStore) Load(ctx context.Context) ([]course.Entry, error) {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("catalog not published at %s: %w", s.key, err)
		}
		return nil, fmt.Errorf("get %s: %w", s.key, err)
	}
	var dtos []courseDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("decode catalog blob: %w", err)
	}
	return toEntries(dtos)
}

// Save publishes entries, replacing the previous blob in one SET.
func (s *RedisStore) Save(ctx context.Context, entries []course.Entry) error {
	data, err := json.Marshal(fromEntries(entries))
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("set %s: %w", s.key, err)
	}
	return nil
}
