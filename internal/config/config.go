package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/krisalay/querycache/eviction"
)

// CacheConfig sizes the shared Manager.
type CacheConfig struct {
	MaxSize         int                 `yaml:"max_size"`
	TTL             time.Duration       `yaml:"ttl"`
	Eviction        eviction.PolicyType `yaml:"eviction"`
	CleanupInterval time.Duration       `yaml:"cleanup_interval"` // zero disables the janitor
}

// QueryConfig holds defaults for cached queries.
type QueryConfig struct {
	StaleTime            time.Duration `yaml:"stale_time"`
	RefetchOnMount       bool          `yaml:"refetch_on_mount"`
	RefetchOnWindowFocus bool          `yaml:"refetch_on_window_focus"`
}

// MemoConfig holds defaults for memoized functions.
type MemoConfig struct {
	Prefix  string        `yaml:"prefix"`
	TTL     time.Duration `yaml:"ttl"`
	MaxSize int           `yaml:"max_size"`
}

// PreloadConfig bounds preload fan-out. Zero means unlimited.
type PreloadConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// RedisConfig holds Redis connection settings for the invalidation bus.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// LogConfig selects the slog handler and level.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig names the Prometheus namespace.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// Config is the central configuration struct embedding all component configs
type Config struct {
	Cache   CacheConfig   `yaml:"cache"`
	Query   QueryConfig   `yaml:"query"`
	Memo    MemoConfig    `yaml:"memo"`
	Preload PreloadConfig `yaml:"preload"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			MaxSize:  100,
			TTL:      5 * time.Minute,
			Eviction: eviction.Oldest,
		},
		Query: QueryConfig{
			StaleTime:      5 * time.Minute,
			RefetchOnMount: true,
		},
		Memo: MemoConfig{
			Prefix:  "fn",
			TTL:     5 * time.Minute,
			MaxSize: 100,
		},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			Channel: "querycache:invalidate",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Namespace: "querycache",
		},
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv applies environment variable overrides to the config.
// Malformed numeric or duration values are reported, not ignored.
func LoadFromEnv(cfg *Config) error {
	var errs []error

	if v := os.Getenv("QUERYCACHE_MAX_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("QUERYCACHE_MAX_SIZE: %w", err))
		} else {
			cfg.Cache.MaxSize = n
		}
	}
	if v := os.Getenv("QUERYCACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("QUERYCACHE_TTL: %w", err))
		} else {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("QUERYCACHE_EVICTION"); v != "" {
		cfg.Cache.Eviction = eviction.PolicyType(v)
	}
	if v := os.Getenv("QUERYCACHE_STALE_TIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("QUERYCACHE_STALE_TIME: %w", err))
		} else {
			cfg.Query.StaleTime = d
		}
	}
	if v := os.Getenv("QUERYCACHE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("QUERYCACHE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("QUERYCACHE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("QUERYCACHE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return errors.Join(errs...)
}

// Validate checks that sizes and durations are usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Cache.MaxSize <= 0 {
		errs = append(errs, fmt.Errorf("cache.max_size must be positive, got %d", c.Cache.MaxSize))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL))
	}
	if !eviction.Valid(c.Cache.Eviction) {
		errs = append(errs, fmt.Errorf("cache.eviction: unknown policy %q", c.Cache.Eviction))
	}
	if c.Cache.CleanupInterval < 0 {
		errs = append(errs, fmt.Errorf("cache.cleanup_interval must not be negative"))
	}
	if c.Query.StaleTime < 0 {
		errs = append(errs, fmt.Errorf("query.stale_time must not be negative"))
	}
	if c.Memo.TTL <= 0 {
		errs = append(errs, fmt.Errorf("memo.ttl must be positive, got %s", c.Memo.TTL))
	}
	if c.Preload.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("preload.concurrency must not be negative"))
	}
	return errors.Join(errs...)
}
