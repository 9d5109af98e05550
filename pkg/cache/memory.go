package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultCleanupInterval is how often expired in-memory entries are purged.
const DefaultCleanupInterval = 10 * time.Minute

// MemoryCache keeps entries in process memory. Entries are lost on restart
// and are not shared between server instances.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates an in-memory cache that purges expired entries
// every cleanup interval. Zero selects DefaultCleanupInterval.
func NewMemoryCache(cleanup time.Duration) *MemoryCache {
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}
	return &MemoryCache{items: gocache.New(gocache.NoExpiration, cleanup)}
}

// Get returns a copy of the stored bytes.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	data := v.([]byte)
	return append([]byte(nil), data...), true, nil
}

// Set stores a copy of data.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrInvalidKey
	}
	exp := gocache.NoExpiration
	if ttl > 0 {
		exp = ttl
	}
	c.items.Set(key, append([]byte(nil), data...), exp)
	return nil
}

// Delete removes a value.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.items.Flush()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// purged.
func (c *MemoryCache) Len() int { return c.items.ItemCount() }

// Close drops all entries.
func (c *MemoryCache) Close() error {
	c.items.Flush()
	return nil
}

var (
	_ Cache   = (*MemoryCache)(nil)
	_ Clearer = (*MemoryCache)(nil)
)
