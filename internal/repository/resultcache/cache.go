// Package resultcache stores fused result sets keyed by the full query
// fingerprint (normalized text, filters, identity, top_k). Entries expire
// after a short TTL so freshly ingested documents surface quickly.
//
// The cache is best-effort: read and write failures are logged and absorbed,
// never surfaced to the search path.
package resultcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/veridian-kb/searchd/internal/db"
	"github.com/veridian-kb/searchd/internal/domain"
	"github.com/veridian-kb/searchd/internal/domain/search/fused"
)

var cacheKeyPrefix = domain.KeyPrefix + "result_cache:"

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache caches fused search results in a key-value store with a TTL.
type Cache struct {
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a result cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	return &Cache{store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Get returns the cached results for a query key. The second return value
// reports a hit; misses and unreadable entries both count as misses.
func (c *Cache) Get(ctx context.Context, key string) ([]fused.Result, bool) {
	data, err := c.store.Get(ctx, cacheKeyPrefix+key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read result cache",
				zap.String("key", key), zap.Error(cacheErr(err)))
		}
		c.incCache("miss")
		return nil, false
	}

	var entry cachedSet
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("Failed to decode cached results", zap.String("key", key), zap.Error(err))
		c.incCache("miss")
		return nil, false
	}

	c.incCache("hit")
	return entry.toDomain(), true
}

// Put stores the results under the query key for the configured TTL.
// Callers skip Put for degraded sets; a degraded answer must not mask a
// complete one for the TTL window.
func (c *Cache) Put(ctx context.Context, key string, results []fused.Result) {
	data, err := json.Marshal(newCachedSet(results))
	if err != nil {
		c.logger.Warn("Failed to encode results for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, cacheKeyPrefix+key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to write result cache",
			zap.String("key", key), zap.Error(cacheErr(err)))
	}
}

// cacheErr classifies a backend failure as a cache outage while keeping the
// underlying error in the chain.
func cacheErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
