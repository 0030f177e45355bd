package query

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	cache "github.com/krisalay/querycache"
)

// DefaultStaleTime is how long fetched data counts as fresh.
const DefaultStaleTime = 5 * time.Minute

type options struct {
	enabled        bool
	staleTime      time.Duration
	refetchOnMount bool
	refetchOnFocus bool

	manager *cache.Manager
	env     Environment
	clock   func() time.Time
	logger  *slog.Logger
	tracer  trace.Tracer
}

func defaultOptions() options {
	return options{
		enabled:        true,
		staleTime:      DefaultStaleTime,
		refetchOnMount: true,
	}
}

// Option customizes a Query.
type Option func(*options)

// WithEnabled turns fetching on or off. Default true.
func WithEnabled(enabled bool) Option {
	return func(o *options) { o.enabled = enabled }
}

// WithStaleTime sets the freshness window. Zero makes data stale immediately.
func WithStaleTime(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.staleTime = d
		}
	}
}

// WithRefetchOnMount controls whether Mount fetches when data is already held. Default true.
func WithRefetchOnMount(v bool) Option {
	return func(o *options) { o.refetchOnMount = v }
}

// WithRefetchOnWindowFocus registers a focus listener while mounted. Default false.
func WithRefetchOnWindowFocus(v bool) Option {
	return func(o *options) { o.refetchOnFocus = v }
}

// WithManager stores results in m instead of cache.Default().
func WithManager(m *cache.Manager) Option {
	return func(o *options) { o.manager = m }
}

// WithEnvironment supplies the focus source.
func WithEnvironment(env Environment) Option {
	return func(o *options) { o.env = env }
}

// WithClock replaces time.Now for staleness checks.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithLogger sets where producer failures are logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTracer sets the tracer used for producer spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}
