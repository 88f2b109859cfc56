// Package cache implements the optional run-result cache of §4.14: memoizing
// per-pair subgraph construction across runs over the same network with only
// MIP-tuning parameters changed.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"chalet/internal/apperror"
	"chalet/internal/config"
)

// Cache stores and retrieves opaque byte payloads keyed by a content hash.
// Implementations must be safe for concurrent use. The CLI itself looks up
// and stores subgraphs one pair at a time; cached builds do not go through
// D5's worker pool.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// New builds the Cache backend selected by cfg. A disabled cache still
// returns a working no-op implementation so callers never need a nil check.
func New(cfg config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return noopCache{}, nil
	}
	switch cfg.Backend {
	case "redis":
		return newRedisCache(cfg.RedisURL)
	case "", "memory":
		return newMemoryCache(), nil
	default:
		return nil, apperror.Parameter("cache.backend", "unknown cache backend "+cfg.Backend)
	}
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (noopCache) Close() error { return nil }

type entry struct {
	value   []byte
	expires time.Time
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]entry)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.entries[key] = entry{value: value, expires: exp}
	return nil
}

func (c *memoryCache) Close() error { return nil }

type redisCache struct {
	client *redis.Client
}

func newRedisCache(url string) (*redisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apperror.Parameter("cache.redis_url", "malformed redis url: "+err.Error())
	}
	return &redisCache{client: redis.NewClient(opts)}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperror.Callback("redis cache get failed", err)
	}
	return val, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return apperror.Callback("redis cache set failed", err)
	}
	return nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
