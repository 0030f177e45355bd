package types

import "time"

// Entry is one slot of the cache.
// Timestamp is the insertion time, moved forward on every successful read.
type Entry struct {
	Key       string
	Value     any
	Timestamp time.Time
}
