// Package query binds an asynchronous producer to the cache and exposes the
// state a consumer renders: data, loading and error, plus staleness.
package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	cache "github.com/krisalay/querycache"
	"github.com/krisalay/querycache/internal/logging"
	"github.com/krisalay/querycache/types"
)

const tracerName = "github.com/krisalay/querycache/query"

// State is a snapshot of a Query.
type State[T any] struct {
	Data      T
	HasData   bool
	Loading   bool
	Err       error
	LastFetch time.Time
}

/*
Query associates a cache key and a producer with consumer-facing state.

Producer errors never escape Fetch: they are stored and read back with Err.
There is no request deduplication; two overlapping fetches both run the
producer and the last one to finish wins.
*/
type Query[T any] struct {
	key     string
	fn      types.Producer[T]
	manager *cache.Manager
	env     Environment
	clock   func() time.Time
	logger  *slog.Logger
	tracer  trace.Tracer

	staleTime      time.Duration
	refetchOnMount bool
	refetchOnFocus bool

	mu        sync.Mutex
	enabled   bool
	data      T
	hasData   bool
	inflight  int
	err       error
	lastFetch time.Time

	mounted     bool
	mountCtx    context.Context
	unsubscribe func()
	// generation changes on Unmount; fetches started before that are dropped.
	generation uint64
}

// New creates a Query for key. It does not fetch until Mount or Fetch is called.
func New[T any](key string, fn types.Producer[T], opts ...Option) *Query[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.manager == nil {
		o.manager = cache.Default()
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	if o.logger == nil {
		o.logger = logging.Op()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}

	return &Query[T]{
		key:            key,
		fn:             fn,
		manager:        o.manager,
		env:            o.env,
		clock:          o.clock,
		logger:         o.logger,
		tracer:         o.tracer,
		staleTime:      o.staleTime,
		refetchOnMount: o.refetchOnMount,
		refetchOnFocus: o.refetchOnFocus,
		enabled:        o.enabled,
	}
}

// Key returns the cache key.
func (q *Query[T]) Key() string { return q.key }

// Data returns the held value and whether there is one.
func (q *Query[T]) Data() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.data, q.hasData
}

func (q *Query[T]) Loading() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inflight > 0
}

func (q *Query[T]) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

func (q *Query[T]) LastFetch() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastFetch
}

func (q *Query[T]) Snapshot() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return State[T]{
		Data:      q.data,
		HasData:   q.hasData,
		Loading:   q.inflight > 0,
		Err:       q.err,
		LastFetch: q.lastFetch,
	}
}

// IsStale reports whether the data was never fetched or is older than the stale time.
func (q *Query[T]) IsStale() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.isStaleLocked()
}

func (q *Query[T]) isStaleLocked() bool {
	return q.lastFetch.IsZero() || q.clock().Sub(q.lastFetch) > q.staleTime
}

/*
Fetch loads data for the key.

BEHAVIOR:
---------
- Disabled queries do nothing.
- A cached value is adopted without calling the producer unless force is set
  or the query is stale.
- Otherwise the producer runs on the caller's goroutine. Success updates the
  local data, the cache and the fetch time. Failure records the error and
  keeps prior data.
*/
func (q *Query[T]) Fetch(ctx context.Context, force bool) {
	q.mu.Lock()
	if !q.enabled {
		q.mu.Unlock()
		return
	}

	if cached, ok := q.manager.Get(q.key); ok && !force && !q.isStaleLocked() {
		if v, ok := cached.(T); ok {
			q.data = v
			q.hasData = true
			q.mu.Unlock()
			return
		}
	}

	q.inflight++
	q.err = nil
	gen := q.generation
	q.mu.Unlock()

	v, err := q.produce(ctx)

	// the cache is shared, so a good value is kept even if this query is gone
	if err == nil {
		q.manager.Set(q.key, v)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if gen != q.generation {
		return
	}
	q.inflight--

	if err != nil {
		q.err = err
		q.logger.Error("query fetch failed", "key", q.key, "error", err)
		return
	}
	q.data = v
	q.hasData = true
	q.lastFetch = q.clock()
}

func (q *Query[T]) produce(ctx context.Context) (T, error) {
	ctx, span := q.tracer.Start(ctx, "query.fetch",
		trace.WithAttributes(attribute.String("cache.key", q.key)))
	defer span.End()

	v, err := q.fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return v, err
}

// Refetch fetches even if fresh data is cached.
func (q *Query[T]) Refetch(ctx context.Context) {
	q.Fetch(ctx, true)
}

// Invalidate drops the key from the cache and forgets local data.
// The last error is kept.
func (q *Query[T]) Invalidate() {
	q.manager.Delete(q.key)

	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	q.data = zero
	q.hasData = false
	q.lastFetch = time.Time{}
}

/*
Mount attaches the query to its consumer.

It fetches when enabled and either refetch-on-mount is set or no data is held,
and registers the focus listener when refetch-on-focus is set. ctx is reused
for focus-triggered fetches, so it should live as long as the mount.
*/
func (q *Query[T]) Mount(ctx context.Context) {
	q.mu.Lock()
	q.mounted = true
	q.mountCtx = ctx
	if q.refetchOnFocus && q.env != nil && q.unsubscribe == nil {
		q.unsubscribe = q.env.OnFocus(q.onFocus)
	}
	fetch := q.enabled && (q.refetchOnMount || !q.hasData)
	q.mu.Unlock()

	if fetch {
		q.Fetch(ctx, false)
	}
}

// Unmount removes the focus listener. Fetches still in flight finish but
// their results no longer reach this query's state.
func (q *Query[T]) Unmount() {
	q.mu.Lock()
	unsubscribe := q.unsubscribe
	q.unsubscribe = nil
	q.mounted = false
	q.mountCtx = nil
	q.generation++
	q.inflight = 0
	q.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

/*
SetEnabled toggles fetching. Enabling a mounted query applies the mount rule
again, the same way a consumer re-rendering with enabled=true would.
*/
func (q *Query[T]) SetEnabled(enabled bool) {
	q.mu.Lock()
	was := q.enabled
	q.enabled = enabled
	ctx := q.mountCtx
	fetch := !was && enabled && q.mounted && (q.refetchOnMount || !q.hasData)
	q.mu.Unlock()

	if fetch {
		q.Fetch(ctx, false)
	}
}

func (q *Query[T]) onFocus() {
	q.mu.Lock()
	ctx := q.mountCtx
	stale := q.isStaleLocked()
	q.mu.Unlock()

	if ctx != nil && stale {
		q.Fetch(ctx, false)
	}
}
