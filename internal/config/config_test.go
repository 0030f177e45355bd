package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/krisalay/querycache/eviction"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "querycache.yaml")
	body := `
cache:
  max_size: 2
  ttl: 1s
  eviction: fifo
query:
  stale_time: 30s
  refetch_on_window_focus: true
log:
  format: json
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cache.MaxSize != 2 || cfg.Cache.TTL != time.Second || cfg.Cache.Eviction != eviction.FIFO {
		t.Fatalf("unexpected cache config: %+v", cfg.Cache)
	}
	if cfg.Query.StaleTime != 30*time.Second || !cfg.Query.RefetchOnWindowFocus {
		t.Fatalf("unexpected query config: %+v", cfg.Query)
	}
	// untouched sections keep their defaults
	if !cfg.Query.RefetchOnMount || cfg.Memo.Prefix != "fn" || cfg.Log.Level != "info" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("cache: [oops"), 0o644)
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("QUERYCACHE_MAX_SIZE", "7")
	t.Setenv("QUERYCACHE_TTL", "2m")
	t.Setenv("QUERYCACHE_REDIS_ADDR", "redis:6380")

	cfg := DefaultConfig()
	if err := LoadFromEnv(cfg); err != nil {
		t.Fatalf("env: %v", err)
	}
	if cfg.Cache.MaxSize != 7 || cfg.Cache.TTL != 2*time.Minute || cfg.Redis.Addr != "redis:6380" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadFromEnvMalformed(t *testing.T) {
	t.Setenv("QUERYCACHE_MAX_SIZE", "many")
	t.Setenv("QUERYCACHE_STALE_TIME", "soon")

	cfg := DefaultConfig()
	err := LoadFromEnv(cfg)
	if err == nil {
		t.Fatal("expected error for malformed env values")
	}
	if !strings.Contains(err.Error(), "QUERYCACHE_MAX_SIZE") || !strings.Contains(err.Error(), "QUERYCACHE_STALE_TIME") {
		t.Fatalf("both variables should be reported: %v", err)
	}
	if cfg.Cache.MaxSize != 100 {
		t.Fatalf("malformed value must not be applied, got %d", cfg.Cache.MaxSize)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.MaxSize = 0
	cfg.Cache.TTL = -time.Second
	cfg.Cache.Eviction = "lfu"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"max_size", "ttl", "eviction"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %v", want, err)
		}
	}
}
