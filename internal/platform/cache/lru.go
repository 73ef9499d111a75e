package cache

import (
	"context"
	"path"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

var _ Cache = (*LRUCache)(nil)

const defaultLocalSize = 1024

// LRUCache is the in-process fallback. Entries carry their own expiry and the
// least recently used entry is evicted once the size bound is reached.
type LRUCache struct {
	entries *lru.Cache[string, lruEntry]
	now     func() time.Time
}

type lruEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewLRU builds a bounded in-process cache; non-positive sizes use a default.
func NewLRU(size int) *LRUCache {
	if size <= 0 {
		size = defaultLocalSize
	}
	entries, err := lru.New[string, lruEntry](size)
	if err != nil {
		// only reachable with a non-positive size
		panic(err)
	}
	return &LRUCache{entries: entries, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (c *LRUCache) WithClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

func (c *LRUCache) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	if c.expired(entry) {
		c.entries.Remove(key)
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), entry.value...), nil
}

func (c *LRUCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := lruEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries.Add(key, entry)
	return nil
}

func (c *LRUCache) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

func (c *LRUCache) Exists(_ context.Context, key string) (bool, error) {
	entry, ok := c.entries.Peek(key)
	if !ok {
		return false, nil
	}
	if c.expired(entry) {
		c.entries.Remove(key)
		return false, nil
	}
	return true, nil
}

// DeleteByPattern matches keys with the same glob rules Redis SCAN uses for * and ?.
func (c *LRUCache) DeleteByPattern(_ context.Context, pattern string) error {
	for _, key := range c.entries.Keys() {
		if ok, err := path.Match(pattern, key); err != nil {
			return err
		} else if ok {
			c.entries.Remove(key)
		}
	}
	return nil
}

func (c *LRUCache) Close() error {
	c.entries.Purge()
	return nil
}

func (c *LRUCache) expired(entry lruEntry) bool {
	return !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt)
}
