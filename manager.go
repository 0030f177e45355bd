package cache

import (
	"context"
	"sync"
	"time"

	"github.com/krisalay/querycache/engine"
	"github.com/krisalay/querycache/eviction"
	"github.com/krisalay/querycache/expiration"
	"github.com/krisalay/querycache/internal/logging"
	"github.com/krisalay/querycache/store"
	"github.com/krisalay/querycache/types"
)

/*
Manager is the main cache implementation.
This struct is the orchestrator that connects:
- storage (insertion-ordered store)
- eviction (which single entry to drop when full)
- expiration (TTL measured from the last write or read)
- metrics and hit/miss accounting

Every method takes the same mutex, so operations are atomic with respect to
each other. None of them block on I/O.
*/
type Manager struct {
	mu sync.Mutex

	name string

	// store holds the entries. Its iteration order is the eviction tie-break.
	store store.Store

	// policy picks the victim when the store is full.
	policy eviction.Policy

	// engine contains the "rules" of the cache: clock, TTL, metrics, logging.
	engine *engine.CacheEngine

	maxSize int
	ttl     time.Duration

	hits   uint64
	misses uint64
}

// Stats is a point-in-time snapshot of a Manager.
type Stats struct {
	HitCount  uint64
	MissCount uint64
	// HitRate is a percentage in [0, 100]; 0 when nothing has been read yet.
	HitRate float64
	Size    int
	MaxSize int
}

// New creates a Manager.
func New(cfg Config, opts ...Option) *Manager {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	o := options{name: "default", eviction: eviction.Oldest}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Op()
	}

	return &Manager{
		name:   o.name,
		store:  store.NewOrderedStore(),
		policy: eviction.NewEvictionPolicy(o.eviction),
		engine: engine.NewCacheEngine(
			&expiration.ExpireAfterAccess{TTL: cfg.TTL},
			o.metrics,
			o.clock,
			o.logger.With("cache", o.name),
		),
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
	}
}

// Name returns the label given with WithName.
func (m *Manager) Name() string {
	return m.name
}

// TTL returns the configured time-to-live.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

/*
Get retrieves a value from the cache.
*/
func (m *Manager) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.engine.Now()

	ent, ok := m.store.Get(key)
	if ok && m.engine.IsExpired(ent, now) {
		m.store.Delete(key)
		m.engine.OnExpire(key)
		ok = false
	}
	if !ok {
		m.misses++
		m.engine.OnMiss()
		return nil, false
	}

	m.hits++
	m.engine.OnRead(ent, now)
	return ent.Value, true
}

/*
Set stores a value, evicting one entry first when the cache is full.

The capacity check does not look at whether key is already present: a full
cache evicts even when the write would only overwrite.
*/
func (m *Manager) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store.Size() >= m.maxSize {
		if victim := m.policy.Victim(m.store); victim != "" {
			m.store.Delete(victim)
			m.engine.OnEvict(victim)
		}
	}

	ent := &types.Entry{Key: key, Value: value}
	m.engine.OnWrite(ent, m.engine.Now())
	m.store.Put(key, ent)
}

// Delete removes key. It is safe to delete a key that does not exist.
func (m *Manager) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Delete(key)
}

// Clear drops all entries and resets the hit/miss counters.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Clear()
	m.hits = 0
	m.misses = 0
}

// Stats returns a snapshot without touching any entry.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rate float64
	if total := m.hits + m.misses; total > 0 {
		rate = float64(m.hits) / float64(total) * 100
	}
	return Stats{
		HitCount:  m.hits,
		MissCount: m.misses,
		HitRate:   rate,
		Size:      m.store.Size(),
		MaxSize:   m.maxSize,
	}
}

/*
Cleanup proactively removes every expired entry.
Get already expires lazily, so this only reclaims memory early.
*/
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.engine.Now()
	removed := 0
	m.store.Range(func(ent *types.Entry) bool {
		if m.engine.IsExpired(ent, now) {
			m.store.Delete(ent.Key)
			m.engine.OnExpire(ent.Key)
			removed++
		}
		return true
	})
	return removed
}

// Has reports whether key is present and live, without counting a hit or
// miss and without refreshing its timestamp.
func (m *Manager) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ent, ok := m.store.Get(key)
	return ok && !m.engine.IsExpired(ent, m.engine.Now())
}

// Keys lists stored keys in iteration order, expired ones included.
func (m *Manager) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, m.store.Size())
	m.store.Range(func(ent *types.Entry) bool {
		keys = append(keys, ent.Key)
		return true
	})
	return keys
}

/*
StartJanitor runs Cleanup every interval until ctx is cancelled.
It returns immediately; the sweep runs on its own goroutine.
*/
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.Cleanup(); n > 0 {
					m.engine.Logger.Debug("janitor removed expired entries", "count", n)
				}
			}
		}
	}()
}
