// Package memo memoizes asynchronous functions behind a private cache.
package memo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	cache "github.com/krisalay/querycache"
)

const defaultPrefix = "fn"

// Config configures a memoized function. Zero values take the defaults:
// prefix "fn", TTL five minutes, capacity 100.
type Config struct {
	Prefix  string
	TTL     time.Duration
	MaxSize int

	// Coalesce shares one fn call among concurrent misses for the same
	// arguments. Off by default: overlapping misses each call fn.
	Coalesce bool

	// Options are passed to the private Manager.
	Options []cache.Option
}

/*
Func wraps fn so that calls with structurally equal arguments are answered
from a private Manager. Errors are returned as-is and never cached.

Each Func owns its Manager; two memoized functions never share keys or
eviction pressure even when they use the same prefix.
*/
type Func[A, R any] struct {
	fn      func(context.Context, A) (R, error)
	prefix  string
	manager *cache.Manager

	coalesce bool
	sf       singleflight.Group
}

// New builds a Func.
func New[A, R any](fn func(context.Context, A) (R, error), cfg Config) *Func[A, R] {
	if cfg.Prefix == "" {
		cfg.Prefix = defaultPrefix
	}
	name := "memo:" + cfg.Prefix + ":" + uuid.NewString()

	opts := append([]cache.Option{cache.WithName(name)}, cfg.Options...)
	return &Func[A, R]{
		fn:       fn,
		prefix:   cfg.Prefix,
		manager:  cache.New(cache.Config{MaxSize: cfg.MaxSize, TTL: cfg.TTL}, opts...),
		coalesce: cfg.Coalesce,
	}
}

// Wrap returns the memoized function directly.
func Wrap[A, R any](fn func(context.Context, A) (R, error), cfg Config) func(context.Context, A) (R, error) {
	return New(fn, cfg).Call
}

// Key returns the cache key used for args.
func (f *Func[A, R]) Key(args A) string {
	return cache.GenerateKey(f.prefix, []any{args})
}

// Call returns the cached result for args, or runs fn and caches its result.
func (f *Func[A, R]) Call(ctx context.Context, args A) (R, error) {
	key := f.Key(args)
	if v, ok := f.manager.Get(key); ok {
		if r, ok := v.(R); ok {
			return r, nil
		}
	}

	if !f.coalesce {
		return f.load(ctx, key, args)
	}

	v, err, _ := f.sf.Do(key, func() (any, error) {
		return f.load(ctx, key, args)
	})
	r, _ := v.(R)
	return r, err
}

func (f *Func[A, R]) load(ctx context.Context, key string, args A) (R, error) {
	r, err := f.fn(ctx, args)
	if err != nil {
		return r, err
	}
	f.manager.Set(key, r)
	return r, nil
}

// Forget drops the cached result for args.
func (f *Func[A, R]) Forget(args A) {
	f.manager.Delete(f.Key(args))
}

// Reset drops every cached result and the counters.
func (f *Func[A, R]) Reset() {
	f.manager.Clear()
}

// Stats reports the private Manager's counters.
func (f *Func[A, R]) Stats() cache.Stats {
	return f.manager.Stats()
}

// Name is the private Manager's name, unique per Func.
func (f *Func[A, R]) Name() string {
	return f.manager.Name()
}
