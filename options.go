package cache

import (
	"log/slog"
	"time"

	"github.com/krisalay/querycache/eviction"
	"github.com/krisalay/querycache/types"
)

const (
	// DefaultMaxSize is the capacity used when Config.MaxSize is not positive.
	DefaultMaxSize = 100

	// DefaultTTL is the time-to-live used when Config.TTL is not positive.
	DefaultTTL = 5 * time.Minute
)

// Config sizes a Manager. Non-positive values fall back to the defaults.
type Config struct {
	MaxSize int
	TTL     time.Duration
}

type options struct {
	name     string
	clock    func() time.Time
	metrics  types.Metrics
	eviction eviction.PolicyType
	logger   *slog.Logger
}

// Option customizes a Manager.
type Option func(*options)

// WithName labels the Manager in logs and metrics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithMetrics routes cache events to m.
func WithMetrics(m types.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithEviction selects the eviction policy. The default is eviction.Oldest.
func WithEviction(t eviction.PolicyType) Option {
	return func(o *options) { o.eviction = t }
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}
