// Package preload warms a cache with a batch of producers.
package preload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	cache "github.com/krisalay/querycache"
	"github.com/krisalay/querycache/internal/logging"
	"github.com/krisalay/querycache/types"
)

// ErrPanic wraps a panic raised by a producer.
var ErrPanic = errors.New("preload: producer panicked")

// Item pairs a cache key with the producer for its value.
type Item struct {
	Key   string
	Fetch types.Producer[any]
}

// Settlement is the outcome of one Item.
type Settlement struct {
	Key     string
	Success bool
	Err     error
}

type options struct {
	manager     *cache.Manager
	concurrency int
	logger      *slog.Logger
}

// Option customizes Run.
type Option func(*options)

// WithManager writes into m instead of cache.Default().
func WithManager(m *cache.Manager) Option {
	return func(o *options) { o.manager = m }
}

// WithConcurrency caps how many producers run at once. n <= 0 means no cap.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

// WithLogger sets where failures are logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

/*
Run invokes every producer concurrently and stores each successful value
under its key.

A failing producer never stops its siblings: every item gets a Settlement, in
the same order as items. Run itself does not fail.
*/
func Run(ctx context.Context, items []Item, opts ...Option) []Settlement {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.manager == nil {
		o.manager = cache.Default()
	}
	if o.logger == nil {
		o.logger = logging.Op()
	}

	ctx, span := otel.Tracer("github.com/krisalay/querycache/preload").Start(ctx, "preload.run")
	defer span.End()
	span.SetAttributes(attribute.Int("preload.items", len(items)))

	settlements := make([]Settlement, len(items))

	// plain Group, not WithContext: one failure must not cancel the rest
	var g errgroup.Group
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			v, err := call(ctx, item.Fetch)
			if err != nil {
				settlements[i] = Settlement{Key: item.Key, Err: err}
				o.logger.Warn("preload failed", "key", item.Key, "error", err)
				return nil
			}
			o.manager.Set(item.Key, v)
			settlements[i] = Settlement{Key: item.Key, Success: true}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, s := range settlements {
		if !s.Success {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("preload.failed", failed))
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d of %d producers failed", failed, len(items)))
	}
	return settlements
}

func call(ctx context.Context, fetch types.Producer[any]) (v any, err error) {
	if fetch == nil {
		return nil, errors.New("preload: nil producer")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fetch(ctx)
}
