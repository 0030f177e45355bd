package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	cache "github.com/krisalay/querycache"
	"github.com/krisalay/querycache/internal/config"
	"github.com/krisalay/querycache/internal/logging"
	"github.com/krisalay/querycache/metrics"
)

var (
	configPath string
	logLevel   string
)

// loadConfig reads the file (if any), applies env overrides and validates.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := config.LoadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logging.Init(cfg.Log.Format, cfg.Log.Level)
	return cfg, nil
}

// newSharedManager builds the process-wide Manager from cfg, instruments it,
// and installs it as cache.Default().
func newSharedManager(cfg *config.Config, reg *prometheus.Registry) (*cache.Manager, *metrics.StatsCollector, error) {
	rec, err := metrics.NewRecorder(cfg.Metrics.Namespace, reg)
	if err != nil {
		return nil, nil, fmt.Errorf("register metrics: %w", err)
	}

	m := cache.New(
		cache.Config{MaxSize: cfg.Cache.MaxSize, TTL: cfg.Cache.TTL},
		cache.WithName("shared"),
		cache.WithEviction(cfg.Cache.Eviction),
		cache.WithMetrics(rec.For("shared")),
	)
	cache.SetDefault(m)

	stats := metrics.NewStatsCollector(cfg.Metrics.Namespace)
	stats.Add("shared", m)
	if err := reg.Register(stats); err != nil {
		return nil, nil, fmt.Errorf("register stats collector: %w", err)
	}
	return m, stats, nil
}

func printStats(name string, s cache.Stats) {
	fmt.Printf("%-10s hits=%d misses=%d hit_rate=%.1f%% size=%d/%d\n",
		name, s.HitCount, s.MissCount, s.HitRate, s.Size, s.MaxSize)
}
