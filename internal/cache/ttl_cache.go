package cache

import (
	"time"

	"github.com/maxappraiser/appraiser-api/pkg/logger"
	"github.com/maxappraiser/appraiser-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// TTLCache is a typed in-memory cache with per-entry expiry
type TTLCache[V any] struct {
	cache *gocache.Cache
	name  string
	ttl   time.Duration
}

// NewTTLCache creates a cache whose entries live for ttl. Expired entries are
// swept every cleanupInterval.
func NewTTLCache[V any](name string, ttl, cleanupInterval time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		cache: gocache.New(ttl, cleanupInterval),
		name:  name,
		ttl:   ttl,
	}
}

// Get retrieves a value and records a hit or miss
func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V

	data, found := c.cache.Get(key)
	if !found {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return zero, false
	}

	value, ok := data.(V)
	if !ok {
		logger.Error("Invalid cache data type", zap.String("cache", c.name), zap.String("key", key))
		c.cache.Delete(key)
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return zero, false
	}

	metrics.CacheHits.WithLabelValues(c.name).Inc()
	return value, true
}

// Set stores a value with the cache's default TTL
func (c *TTLCache[V]) Set(key string, value V) {
	c.cache.Set(key, value, c.ttl)
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(c.cache.ItemCount()))
}

// Len returns the number of stored entries, including expired ones not yet swept
func (c *TTLCache[V]) Len() int {
	return c.cache.ItemCount()
}

// Flush removes every entry
func (c *TTLCache[V]) Flush() {
	c.cache.Flush()
	metrics.CacheSize.WithLabelValues(c.name).Set(0)
}
