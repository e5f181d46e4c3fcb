// Package config loads the traceband TOML configuration used by serve
// mode and by CLI commands that share the cache and trace catalog.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/traceband/traceband/pkg/errors"
)

// DefaultPath is where Load looks when no explicit path is given.
const DefaultPath = "traceband.toml"

// Config is the root configuration document.
type Config struct {
	Server ServerConfig  `toml:"server"`
	Cache  CacheConfig   `toml:"cache"`
	Store  StoreConfig   `toml:"store"`
	Traces []TraceConfig `toml:"traces"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Listen is the address the API binds to, e.g. ":8080".
	Listen string `toml:"listen"`

	// ReadTimeout and WriteTimeout bound request handling.
	ReadTimeout  duration `toml:"read_timeout"`
	WriteTimeout duration `toml:"write_timeout"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is "file", "redis", or "none".
	Backend string `toml:"backend"`

	// Dir is the file backend's directory. Empty means a per-user
	// default under the OS cache directory.
	Dir string `toml:"dir"`

	// TTL overrides the default entry lifetime.
	TTL duration `toml:"ttl"`

	// Redis holds connection settings for the redis backend.
	Redis RedisConfig `toml:"redis"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StoreConfig selects and configures the trace catalog backend.
type StoreConfig struct {
	// Backend is "memory" or "mongo".
	Backend string `toml:"backend"`

	// MongoURI and MongoDatabase configure the mongo backend.
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// TraceConfig registers one trace in the catalog at startup.
type TraceConfig struct {
	Name        string `toml:"name"`
	Path        string `toml:"path"`
	Description string `toml:"description"`
}

// duration wraps time.Duration so TOML values like "30s" decode directly.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// Duration returns the wrapped value, or fallback when unset.
func (d duration) Duration(fallback time.Duration) time.Duration {
	if d == 0 {
		return fallback
	}
	return time.Duration(d)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Listen: ":8080"},
		Cache:  CacheConfig{Backend: "file"},
		Store:  StoreConfig{Backend: "memory", MongoDatabase: "traceband"},
	}
}

// Load reads and validates a TOML config file. A missing file at the
// default path is not an error; explicit paths must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "failed to read config %q", path)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to parse config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend selectors and registered traces.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "", "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis.addr is required for the redis backend")
	}

	switch c.Store.Backend {
	case "", "memory", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == "mongo" && c.Store.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidInput, "store.mongo_uri is required for the mongo backend")
	}

	for _, tr := range c.Traces {
		if err := errors.ValidateTraceName(tr.Name); err != nil {
			return err
		}
		if err := errors.ValidateTracePath(tr.Path); err != nil {
			return err
		}
	}
	return nil
}

// CacheDir resolves the file cache directory, defaulting to a traceband
// subdirectory of the OS cache directory.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot resolve cache directory")
	}
	return filepath.Join(base, "traceband"), nil
}
