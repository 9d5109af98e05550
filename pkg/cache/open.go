package cache

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend string
	// Dir is the FileCache directory.
	Dir   string
	Redis RedisConfig
	Mongo MongoConfig
}

// Open creates the cache named by opts.Backend. An empty backend means none.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: directory not set")
		}
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMemory:
		return NewMemoryCache(0), nil
	case BackendRedis:
		if opts.Redis.Addr == "" {
			return nil, fmt.Errorf("redis cache: address not set")
		}
		c, err := NewRedisCache(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		if opts.Mongo.URI == "" {
			return nil, fmt.Errorf("mongo cache: uri not set")
		}
		c, err := NewMongoCache(ctx, opts.Mongo)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q (want none, file, memory, redis or mongo)", opts.Backend)
}
