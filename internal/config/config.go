// Package config loads GraphyPad settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/graphypad/config.toml (falling back to
// ~/.config/graphypad/config.toml) unless a path is given explicitly. A
// missing default file is not an error; every field has a default, and
// command-line flags override whatever the file sets.
//
// # Example
//
//	[server]
//	addr = ":8080"
//	request_timeout = "30s"
//
//	[render]
//	dpi = 120
//
//	[cache]
//	backend = "redis"
//
//	[cache.redis]
//	addr = "localhost:6379"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/graphypad/pkg/cache"
	"github.com/matzehuels/graphypad/pkg/pipeline"
	"github.com/matzehuels/graphypad/pkg/upload"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// AppName names the config and cache directories.
	AppName = "graphypad"

	// FileName is the config file name inside the config directory.
	FileName = "config.toml"

	DefaultAddr           = ":8080"
	DefaultRequestTimeout = 60 * time.Second
	DefaultCacheBackend   = cache.BackendFile
	DefaultRedisAddr      = "localhost:6379"
	DefaultMongoURI       = "mongodb://localhost:27017"
)

// =============================================================================
// Config
// =============================================================================

// Config holds all settings.
type Config struct {
	Server ServerConfig `toml:"server"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Upload UploadConfig `toml:"upload"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
	// MaxUploadMB bounds request bodies and uploaded files.
	MaxUploadMB int `toml:"max_upload_mb"`
}

// RenderConfig configures chart rendering.
type RenderConfig struct {
	DPI float64  `toml:"dpi"`
	TTL Duration `toml:"ttl"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// UploadConfig configures the upload store.
type UploadConfig struct {
	TTL Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns a config with every field set to its default.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           DefaultAddr,
			RequestTimeout: Duration{DefaultRequestTimeout},
			MaxUploadMB:    pipeline.MaxUploadSize >> 20,
		},
		Render: RenderConfig{
			DPI: pipeline.DefaultDPI,
			TTL: Duration{pipeline.TTLRender},
		},
		Cache: CacheConfig{
			Backend: DefaultCacheBackend,
			Redis:   RedisConfig{Addr: DefaultRedisAddr, Prefix: AppName + ":"},
			Mongo:   MongoConfig{URI: DefaultMongoURI},
		},
		Upload: UploadConfig{TTL: Duration{upload.DefaultTTL}},
	}
}

// =============================================================================
// Loading
// =============================================================================

// Load reads the config at path on top of the defaults. An empty path
// selects DefaultPath, which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML data into cfg, leaving unset fields untouched, and
// validates the result. Unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks value ranges and the backend name.
func (c Config) Validate() error {
	if c.Render.DPI <= 0 {
		return fmt.Errorf("render.dpi must be positive, got %g", c.Render.DPI)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.RequestTimeout.Duration < 0 {
		return fmt.Errorf("server.request_timeout must not be negative")
	}
	switch strings.ToLower(c.Cache.Backend) {
	case cache.BackendNone, cache.BackendFile, cache.BackendMemory, cache.BackendRedis, cache.BackendMongo:
	default:
		return fmt.Errorf("cache.backend %q is not one of none, file, memory, redis, mongo", c.Cache.Backend)
	}
	return nil
}

// CacheOptions converts the cache section for cache.Open. An empty file
// cache directory falls back to dir.
func (c Config) CacheOptions(dir string) cache.Options {
	if c.Cache.Dir != "" {
		dir = c.Cache.Dir
	}
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     dir,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
			Prefix:   c.Cache.Redis.Prefix,
		},
		Mongo: cache.MongoConfig{
			URI:        c.Cache.Mongo.URI,
			Database:   c.Cache.Mongo.Database,
			Collection: c.Cache.Mongo.Collection,
		},
	}
}

// MaxUploadBytes returns the upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// Encode writes cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns the XDG config path (~/.config/graphypad/config.toml).
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, FileName), nil
}

// CacheDir returns the XDG cache directory (~/.cache/graphypad/).
func CacheDir() (string, error) {
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
