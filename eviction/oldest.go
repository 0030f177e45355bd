package eviction

import "github.com/krisalay/querycache/types"

// oldest scans every entry once: O(n) in store size.
type oldest struct{}

// Victim picks the smallest timestamp. The comparison is strict, so among
// equal timestamps the first one encountered in iteration order wins.
func (oldest) Victim(entries Entries) string {
	var victim *types.Entry
	entries.Range(func(e *types.Entry) bool {
		if victim == nil || e.Timestamp.Before(victim.Timestamp) {
			victim = e
		}
		return true
	})
	if victim == nil {
		return ""
	}
	return victim.Key
}
