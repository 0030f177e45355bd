// This file implements FIFO eviction.

package eviction

import "github.com/krisalay/querycache/types"

// fifo relies on the store's iteration order: the front is the oldest insertion.
// Overwrites keep their position, so FIFO only cares about the first insertion.
type fifo struct{}

func (fifo) Victim(entries Entries) string {
	key := ""
	entries.Range(func(e *types.Entry) bool {
		key = e.Key
		return false
	})
	return key
}
