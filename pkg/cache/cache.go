// Package cache stores rendered artifacts and uploaded datasets.
//
// All backends implement [Cache]: a byte-oriented key/value store with
// optional expiry. [NewNullCache] disables caching, [NewFileCache] keeps
// entries on disk for the CLI, [NewMemoryCache] keeps them in process for a
// single server, and [NewRedisCache] and [NewMongoCache] share them between
// server instances.
//
// Keys are built by a [Keyer] so the same inputs always map to the same
// entry:
//
//	k := cache.NewDefaultKeyer()
//	key := k.RenderKey(datasetHash, spec, cache.RenderKeyOpts{DPI: 100})
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for opaque byte payloads.
//
// Get reports a miss with ok == false and a nil error. A ttl of zero means
// the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear empties c if the backend supports it and reports whether it did.
func Clear(ctx context.Context, c Cache) (bool, error) {
	cl, ok := c.(Clearer)
	if !ok {
		return false, nil
	}
	return true, cl.Clear(ctx)
}
