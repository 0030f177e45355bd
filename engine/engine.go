package engine

import (
	"log/slog"
	"time"

	"github.com/krisalay/querycache/expiration"
	"github.com/krisalay/querycache/types"
)

/*
CacheEngine is the "brain" of the cache system.
It is responsible for the "behavior" of the cache, NOT storage.
This acts as the policy layer.

It decides:
- What time it is
- When data is expired
- How timestamps move on reads/writes
- How metrics are recorded
- Where diagnostics are logged

It does NOT:
- Store data
- Handle locking
- Decide eviction order
*/
type CacheEngine struct {

	// Expiration controls when a cache entry is considered too old.
	// If this is nil, entries never expire based on time.
	Expiration expiration.Strategy

	// Metrics receives hit, miss, eviction and expiry events.
	Metrics types.Metrics

	// Clock returns the current time. Tests replace it to step time by hand.
	Clock func() time.Time

	// Logger receives debug-level cache diagnostics.
	Logger *slog.Logger
}

/*
NewCacheEngine creates a CacheEngine.
Nil metrics, clock or logger are replaced with working defaults.
*/
func NewCacheEngine(
	exp expiration.Strategy,
	metrics types.Metrics,
	clock func() time.Time,
	logger *slog.Logger,
) *CacheEngine {
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CacheEngine{
		Expiration: exp,
		Metrics:    metrics,
		Clock:      clock,
		Logger:     logger,
	}
}

// Now returns the engine's notion of the current time.
func (e *CacheEngine) Now() time.Time {
	return e.Clock()
}

/*
IsExpired checks whether a cache entry is expired at now.
Returns false if no expiration strategy is configured.
*/
func (e *CacheEngine) IsExpired(ent *types.Entry, now time.Time) bool {
	return e.Expiration != nil && e.Expiration.IsExpired(ent, now)
}

/*
OnRead is called every time the cache successfully returns a value.
Sliding expiration strategies move the entry's timestamp here.
*/
func (e *CacheEngine) OnRead(ent *types.Entry, now time.Time) {
	e.Metrics.Hit()
	if e.Expiration != nil {
		e.Expiration.OnAccess(ent, now)
	} else {
		ent.Timestamp = now
	}
}

/*
OnWrite is called whenever something is written to the cache.
*/
func (e *CacheEngine) OnWrite(ent *types.Entry, now time.Time) {
	if e.Expiration != nil {
		e.Expiration.OnWrite(ent, now)
	} else {
		ent.Timestamp = now
	}
}

// OnMiss records a miss.
func (e *CacheEngine) OnMiss() {
	e.Metrics.Miss()
}

// OnExpire records that key was dropped for outliving its TTL.
func (e *CacheEngine) OnExpire(key string) {
	e.Metrics.Expire()
	e.Logger.Debug("cache entry expired", "key", key)
}

// OnEvict records that key was dropped to make room.
func (e *CacheEngine) OnEvict(key string) {
	e.Metrics.Eviction()
	e.Logger.Debug("cache entry evicted", "key", key)
}
