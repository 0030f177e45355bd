package types

// This file defines how the cache reports what it is doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in the cache lifecycle. The cache will call these methods whenever something happens.

These are event hooks only. The hit/miss counters reported by Stats are kept by the
Manager itself and do not depend on a Metrics implementation.
*/
type Metrics interface {

	// Hit is called when Get returns a live value.
	Hit()

	// Miss is called when Get finds nothing, or finds an expired entry.
	Miss()

	// Eviction is called when an entry is removed because the cache is full.
	Eviction()

	// Expire is called when an entry is removed because it outlived its TTL,
	// either lazily on read or during a Cleanup sweep.
	Expire()
}

// NoopMetrics ignores every event so the cache never needs nil checks.
type NoopMetrics struct{}

func (NoopMetrics) Hit()      {}
func (NoopMetrics) Miss()     {}
func (NoopMetrics) Eviction() {}
func (NoopMetrics) Expire()   {}
