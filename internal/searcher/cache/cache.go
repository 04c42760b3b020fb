// Package cache provides an optional Redis-backed cache of query results,
// keyed on the normalised query text and requested result count.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/quaero-search/quaero/internal/searcher/executor"
	"github.com/quaero-search/quaero/pkg/config"
	pkgredis "github.com/quaero-search/quaero/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "quaero:query:"

type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached result for (normalized, k), if present.
func (c *QueryCache) Get(ctx context.Context, normalized string, k int) (*executor.Result, bool) {
	key := c.buildKey(normalized, k)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result executor.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &result, true
}

// Set stores a result under its (normalized, k) key.
func (c *QueryCache) Set(ctx context.Context, result *executor.Result) {
	key := c.buildKey(result.Normalized, result.K)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, string(data), c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or computes and stores it. Workers
// asking for the same key concurrently share one compute call.
func (c *QueryCache) GetOrCompute(ctx context.Context, normalized string, k int, compute func() *executor.Result) *executor.Result {
	if result, ok := c.Get(ctx, normalized, k); ok {
		return result
	}
	key := c.buildKey(normalized, k)
	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		result := compute()
		c.Set(ctx, result)
		return result, nil
	})
	return v.(*executor.Result)
}

// Stats returns the hit and miss counts since startup.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(normalized string, k int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", normalized, k)))
	return fmt.Sprintf("%s%x", keyPrefix, sum[:16])
}
