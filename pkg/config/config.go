// Package config handles YAML configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/cache"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/logging"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Config is the top-level client configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Cache   CacheConfig   `yaml:"cache"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// BackendConfig holds RPC transport settings.
type BackendConfig struct {
	URL          string        `yaml:"url"`
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	SessionToken string        `yaml:"session_token"`
	DNSCache     bool          `yaml:"dns_cache"`
}

// CacheConfig holds query cache settings.
type CacheConfig struct {
	StaleTime     time.Duration `yaml:"stale_time"`
	CacheTime     time.Duration `yaml:"cache_time"`
	Retries       int           `yaml:"retries"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
	Persist       bool          `yaml:"persist"`
	PersistMaxAge time.Duration `yaml:"persist_max_age"`
	Buster        string        `yaml:"buster"` // snapshots written with another buster are discarded
}

// StorageConfig selects the key-value store for preferences and snapshots.
type StorageConfig struct {
	Driver        string `yaml:"driver"`   // "file", "memory" or "redis"
	FileDir       string `yaml:"file_dir"` // empty means <user cache dir>/couchers
	MemorySize    int    `yaml:"memory_size"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:       "https://api.couchers.org",
			Timeout:   rpc.DefaultTimeout,
			UserAgent: "couchers-cli/0.1.0",
			DNSCache:  true,
		},
		Cache: CacheConfig{
			StaleTime:     0,
			CacheTime:     cache.DefaultCacheTime,
			Retries:       1,
			Persist:       true,
			PersistMaxAge: cache.DefaultPersistMaxAge,
		},
		Storage: StorageConfig{
			Driver:     DriverFile,
			MemorySize: 10_000,
			RedisAddr:  "localhost:6379",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${VAR} patterns with environment variable values.
// Unset variables are left as written.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := string(match[2 : len(match)-1])
		if val, ok := os.LookupEnv(varName); ok {
			return []byte(val)
		}
		return match
	})
}

// Load reads and parses a YAML config file, expanding environment variables.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(expandEnv(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.url: %q is not an absolute URL", c.Backend.URL))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("backend.timeout: must be positive"))
	}
	if c.Cache.StaleTime < 0 || c.Cache.CacheTime < 0 || c.Cache.RetryDelay < 0 {
		errs = append(errs, errors.New("cache: durations cannot be negative"))
	}
	if c.Cache.Retries < 0 {
		errs = append(errs, errors.New("cache.retries: cannot be negative"))
	}
	if c.Cache.PersistMaxAge <= 0 {
		errs = append(errs, errors.New("cache.persist_max_age: must be positive"))
	}
	switch c.Storage.Driver {
	case DriverMemory, DriverFile:
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			errs = append(errs, errors.New("storage.redis_addr: required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// RPC returns the transport configuration.
func (c *Config) RPC() rpc.Config {
	cfg := rpc.DefaultConfig(c.Backend.URL, c.Backend.UserAgent)
	cfg.Timeout = c.Backend.Timeout
	cfg.SessionToken = c.Backend.SessionToken
	if !c.Backend.DNSCache {
		cfg.Resolver = nil
	}
	return cfg
}

// QueryCache returns the query cache configuration.
func (c *Config) QueryCache() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.StaleTime = c.Cache.StaleTime
	cfg.CacheTime = c.Cache.CacheTime
	cfg.Retry.Retries = c.Cache.Retries
	cfg.Retry.InitialBackoff = c.Cache.RetryDelay
	return cfg
}

// PersistOptions returns the snapshot settings for Persist and Restore.
func (c *Config) PersistOptions() cache.PersistOptions {
	return cache.PersistOptions{MaxAge: c.Cache.PersistMaxAge, Buster: c.Cache.Buster}
}

// Logging returns the logger configuration. Level was checked by Validate.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level, _ = logging.ParseLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}
