// Package config handles loading and validation of regpulse.yaml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/regpulse-io/regpulse/pkg/types"
)

// Defaults applied when the corresponding fields are absent.
const (
	DefaultAddr     = ":3000"
	DefaultCacheTTL = 30 * time.Minute
	DefaultTimeout  = 30 * time.Second
)

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr           string `yaml:"addr,omitempty"`
	APIKey         string `yaml:"apiKey,omitempty"`
	MaxRequestBody int64  `yaml:"maxRequestBody,omitempty"`
}

// BackendConfig identifies the hosted platform the RPC client talks to.
type BackendConfig struct {
	URL        string `yaml:"url"`
	ServiceKey string `yaml:"serviceKey"`
	Timeout    string `yaml:"timeout,omitempty"`
}

// PostgresConfig holds connection settings for the postgres store.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig holds connection settings for the redis store.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password,omitempty"`
	DB        int    `yaml:"db,omitempty"`
	KeyPrefix string `yaml:"keyPrefix,omitempty"`
}

// StoreConfig selects and configures the table store backend.
type StoreConfig struct {
	Driver   string          `yaml:"driver"`
	Postgres *PostgresConfig `yaml:"postgres,omitempty"`
	Redis    *RedisConfig    `yaml:"redis,omitempty"`
}

// CacheConfig tunes the search result cache.
type CacheConfig struct {
	TTL         string `yaml:"ttl,omitempty"`
	MaxKeyLen   int    `yaml:"maxKeyLen,omitempty"`
	MaxQueryLen int    `yaml:"maxQueryLen,omitempty"`
}

// Config is the root regpulse.yaml structure.
type Config struct {
	Server  *ServerConfig        `yaml:"server,omitempty"`
	Backend BackendConfig        `yaml:"backend"`
	Store   StoreConfig          `yaml:"store"`
	Cache   *CacheConfig         `yaml:"cache,omitempty"`
	Notify  []types.NoticeConfig `yaml:"notify,omitempty"`
}

// Load reads and parses regpulse.yaml from the given directory, then applies
// environment overrides.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "regpulse.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// applyEnv overlays REGPULSE_* environment variables onto the parsed config.
// Credentials normally arrive this way rather than through the YAML file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("REGPULSE_BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv("REGPULSE_BACKEND_SERVICE_KEY"); v != "" {
		cfg.Backend.ServiceKey = v
	}
	if v := os.Getenv("REGPULSE_API_KEY"); v != "" {
		if cfg.Server == nil {
			cfg.Server = &ServerConfig{}
		}
		cfg.Server.APIKey = v
	}
}

func validate(cfg *Config) error {
	if cfg.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	if cfg.Backend.ServiceKey == "" {
		return fmt.Errorf("backend.serviceKey is required")
	}
	if cfg.Backend.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Backend.Timeout); err != nil {
			return fmt.Errorf("backend.timeout is not a valid duration: %w", err)
		}
	}
	switch cfg.Store.Driver {
	case "postgres":
		if cfg.Store.Postgres == nil || cfg.Store.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn is required when driver is postgres")
		}
	case "redis":
		if cfg.Store.Redis == nil || cfg.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required when driver is redis")
		}
	case "":
		return fmt.Errorf("store.driver is required")
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if cfg.Cache != nil && cfg.Cache.TTL != "" {
		if _, err := time.ParseDuration(cfg.Cache.TTL); err != nil {
			return fmt.Errorf("cache.ttl is not a valid duration: %w", err)
		}
	}
	for i, n := range cfg.Notify {
		switch n.Type {
		case types.NoticeConsole:
		case types.NoticeFile:
			if n.Path == "" {
				return fmt.Errorf("notify[%d]: file path required", i)
			}
		case types.NoticeWebhook:
			if n.URL == "" {
				return fmt.Errorf("notify[%d]: webhook URL required", i)
			}
		case types.NoticeSNS:
			if n.TopicARN == "" {
				return fmt.Errorf("notify[%d]: SNS topic ARN required", i)
			}
		default:
			return fmt.Errorf("notify[%d]: unknown notice type %q", i, n.Type)
		}
	}
	return nil
}

// BackendTimeout returns the configured backend timeout or the default.
func (c *Config) BackendTimeout() time.Duration {
	if c.Backend.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

// CacheTTL returns the configured cache TTL or the default.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache == nil || c.Cache.TTL == "" {
		return DefaultCacheTTL
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return DefaultCacheTTL
	}
	return d
}

// Addr returns the configured listen address or the default.
func (c *Config) Addr() string {
	if c.Server == nil || c.Server.Addr == "" {
		return DefaultAddr
	}
	return c.Server.Addr
}
