package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache keeps hot entries in process memory in front of an optional
// shared Redis layer. Without Redis it behaves like MemoryCache.
type LayeredCache struct {
	mem   *MemoryCache
	redis *RedisCache
}

var _ Service = (*LayeredCache)(nil)

// NewLayeredCache builds the two layers. redis may be nil.
func NewLayeredCache(redis *RedisCache, opts ...MemoryOption) *LayeredCache {
	return &LayeredCache{
		mem:   NewMemoryCache(opts...),
		redis: redis,
	}
}

// Shared reports whether a Redis layer is attached.
func (lc *LayeredCache) Shared() bool { return lc.redis != nil }

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if lc.redis != nil {
		if err := lc.redis.client.Set(ctx, lc.redis.wrapKey(key), data, expiration).Err(); err != nil {
			return err
		}
	}
	lc.mem.setRaw(key, data, expiration)
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if data, ok := lc.mem.getRaw(key); ok {
		return decode(data, dest)
	}
	if lc.redis == nil {
		return ErrCacheMiss
	}

	data, ttl, err := lc.redis.getRaw(ctx, key)
	if err != nil {
		return err
	}
	// Backfill with the remaining Redis TTL so L1 never outlives L2.
	lc.mem.setRaw(key, data, ttl)
	return decode(data, dest)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.mem.Delete(ctx, keys...)
	if lc.redis == nil {
		return nil
	}
	return lc.redis.Delete(ctx, keys...)
}

func (lc *LayeredCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if lc.redis == nil {
		return lc.mem.TryLock(ctx, key, ttl)
	}
	return lc.redis.TryLock(ctx, key, ttl)
}

func (lc *LayeredCache) Unlock(ctx context.Context, key string) error {
	if lc.redis == nil {
		return lc.mem.Unlock(ctx, key)
	}
	return lc.redis.Unlock(ctx, key)
}

func (lc *LayeredCache) Close() error {
	memErr := lc.mem.Close()
	if lc.redis == nil {
		return memErr
	}
	return errors.Join(memErr, lc.redis.Close())
}
