package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryItem struct {
	data     []byte
	expireAt time.Time
}

func (m memoryItem) expired(now time.Time) bool {
	return !m.expireAt.IsZero() && now.After(m.expireAt)
}

// MemoryCache implements Service on a size-bounded expirable LRU.
type MemoryCache struct {
	lru    *expirable.LRU[string, memoryItem]
	lockMu sync.Mutex
	locks  map[string]time.Time
	now    func() time.Time
}

var _ Service = (*MemoryCache)(nil)

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize: 1000,
		MaxTTL:  24 * time.Hour,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &MemoryCache{
		lru:   expirable.NewLRU[string, memoryItem](cfg.MaxSize, nil, cfg.MaxTTL),
		locks: make(map[string]time.Time),
		now:   time.Now,
	}
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	mc.setRaw(key, data, expiration)
	return nil
}

func (mc *MemoryCache) setRaw(key string, data []byte, expiration time.Duration) {
	item := memoryItem{data: data}
	if expiration > 0 {
		item.expireAt = mc.now().Add(expiration)
	}
	mc.lru.Add(key, item)
}

func (mc *MemoryCache) getRaw(key string) ([]byte, bool) {
	item, ok := mc.lru.Get(key)
	if !ok {
		return nil, false
	}
	if item.expired(mc.now()) {
		mc.lru.Remove(key)
		return nil, false
	}
	return item.data, true
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := mc.getRaw(key)
	if !ok {
		return ErrCacheMiss
	}
	return decode(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		mc.lru.Remove(key)
	}
	return nil
}

// TryLock takes key for ttl if nobody holds it. Only this process sees it.
// Locks are kept apart from cached values so LRU eviction never drops them.
func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	mc.lockMu.Lock()
	defer mc.lockMu.Unlock()

	now := mc.now()
	if until, held := mc.locks[key]; held && (until.IsZero() || now.Before(until)) {
		return false, nil
	}
	var until time.Time
	if ttl > 0 {
		until = now.Add(ttl)
	}
	mc.locks[key] = until
	return true, nil
}

func (mc *MemoryCache) Unlock(_ context.Context, key string) error {
	mc.lockMu.Lock()
	delete(mc.locks, key)
	mc.lockMu.Unlock()
	return nil
}

func (mc *MemoryCache) Len() int {
	return mc.lru.Len()
}

func (mc *MemoryCache) Close() error {
	mc.lru.Purge()
	return nil
}
