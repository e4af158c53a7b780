// Package config loads server configuration from a TOML file.
//
// Every field has a working default, so `packhub serve` runs with no config
// file at all: in-memory cache, in-memory operation store, and the GitHub
// raw-content manifest URL template.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/packhub/packhub/pkg/errors"
)

// Cache backend names accepted in [cache].backend.
const (
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is the full server configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Fetch  FetchConfig  `toml:"fetch"`
	Cache  CacheConfig  `toml:"cache"`
	Ops    OpsConfig    `toml:"ops"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// FetchConfig configures the upstream manifest fetcher.
type FetchConfig struct {
	// URLTemplate is the manifest URL with a {repo} placeholder.
	URLTemplate string `toml:"url_template"`

	// Timeout bounds one upstream request, e.g. "30s".
	Timeout duration `toml:"timeout"`
}

// CacheConfig selects and configures the bundle cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"` // memory | file | redis | none

	// Dir is the file backend's root directory.
	Dir string `toml:"dir"`

	// Prefix scopes every cache key, for instances sharing one redis.
	Prefix string `toml:"prefix"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// OpsConfig configures operation persistence. An empty MongoURI selects the
// in-memory store.
type OpsConfig struct {
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// duration lets TOML carry values like "30s".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// Value returns the duration as a time.Duration.
func (d duration) Value() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{Listen: ":8080"},
		Fetch: FetchConfig{
			URLTemplate: "https://raw.githubusercontent.com/{repo}/main/manifest.yml",
			Timeout:     duration(30 * time.Second),
		},
		Cache: CacheConfig{Backend: CacheMemory},
		Ops:   OpsConfig{MongoDatabase: "packhub"},
	}
}

// Load reads a TOML config file on top of the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case CacheMemory, CacheFile, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("unknown cache backend %q (want memory, file, redis, or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheFile && c.Cache.Dir == "" {
		return fmt.Errorf("cache backend %q requires cache.dir", CacheFile)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache backend %q requires cache.redis.addr", CacheRedis)
	}
	if err := errors.ValidateURL(c.Fetch.URLTemplate); err != nil {
		return fmt.Errorf("fetch.url_template: %w", err)
	}
	if !strings.Contains(c.Fetch.URLTemplate, "{repo}") {
		return fmt.Errorf("fetch.url_template must contain a {repo} placeholder")
	}
	return nil
}
