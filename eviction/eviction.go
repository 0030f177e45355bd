package eviction

import "github.com/krisalay/querycache/types"

/*
This file defines how the cache decides what to remove when it runs out of space.
*/

// Entries is the read-only view of the store a policy scans.
// Range visits entries in insertion order.
type Entries interface {
	Range(fn func(*types.Entry) bool)
}

/*
Policy is the interface that all eviction strategies must follow.

The cache does NOT care how a victim is chosen. When it is full it asks the
policy for exactly one key and removes it before inserting the new entry.
*/
type Policy interface {

	// Victim returns the key that should be evicted, or "" when there is nothing to evict.
	Victim(Entries) string
}

// PolicyType is a simple identifier for supported eviction strategies.
type PolicyType string

const (
	// Oldest evicts the entry with the smallest timestamp. Timestamps move on
	// every read, so this approximates least-recently-accessed.
	Oldest PolicyType = "oldest"

	// FIFO evicts the first inserted key, regardless of access.
	FIFO PolicyType = "fifo"
)

// NewEvictionPolicy is a small factory function.
// An empty PolicyType selects Oldest.
func NewEvictionPolicy(t PolicyType) Policy {
	switch t {
	case Oldest, "":
		return oldest{}
	case FIFO:
		return fifo{}
	default:
		panic("unknown eviction policy: " + string(t))
	}
}

// Valid reports whether t names a known policy.
func Valid(t PolicyType) bool {
	return t == "" || t == Oldest || t == FIFO
}
