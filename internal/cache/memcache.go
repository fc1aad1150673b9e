package cache

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheCache stores JSON-encoded values in memcached. Backend errors are
// logged and reported as misses; the cache never fails a request.
type MemcacheCache[T any] struct {
	client *memcache.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewMemcache connects to hosts and pings them once.
func NewMemcache[T any](hosts []string, prefix string, ttl time.Duration, logger *slog.Logger) (*MemcacheCache[T], error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Connecting to memcached", "hosts", hosts)
	mc := memcache.New(hosts...)
	return &MemcacheCache[T]{client: mc, prefix: prefix, ttl: ttl, logger: logger}, mc.Ping()
}

func (c *MemcacheCache[T]) Get(key string) (T, bool) {
	var zero T
	item, err := c.client.Get(c.prefix + key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			c.logger.Warn("Memcached get failed", "key", key, "error", err)
		}
		return zero, false
	}

	var v T
	if err := json.Unmarshal(item.Value, &v); err != nil {
		c.logger.Warn("Memcached value undecodable, dropping", "key", key, "error", err)
		c.Delete(key)
		return zero, false
	}
	return v, true
}

func (c *MemcacheCache[T]) Set(key string, data T) {
	raw, err := json.Marshal(data)
	if err != nil {
		c.logger.Warn("Memcached value unencodable", "key", key, "error", err)
		return
	}
	err = c.client.Set(&memcache.Item{
		Key:        c.prefix + key,
		Value:      raw,
		Expiration: int32(c.ttl / time.Second),
	})
	if err != nil {
		c.logger.Warn("Memcached set failed", "key", key, "error", err)
	}
}

func (c *MemcacheCache[T]) Delete(key string) {
	err := c.client.Delete(c.prefix + key)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		c.logger.Warn("Memcached delete failed", "key", key, "error", err)
	}
}
