package expiration

import (
	"time"

	"github.com/krisalay/querycache/types"
)

/*
ExpireAfterAccess implements "expire after access", also called sliding TTL.
Every read moves the entry's timestamp forward. As long as the data keeps
getting used, it stays alive. If nobody touches it for longer than TTL, it expires.

The same timestamp is what the eviction policy compares, so a read both
extends the life of an entry and protects it from capacity eviction.
*/
type ExpireAfterAccess struct {

	// TTL is how long an entry stays valid after its last write or read.
	TTL time.Duration
}

// IsExpired reports whether more than TTL has passed since the entry's timestamp.
// An entry exactly TTL old is still live.
func (e *ExpireAfterAccess) IsExpired(ent *types.Entry, now time.Time) bool {
	return e.TTL > 0 && now.Sub(ent.Timestamp) > e.TTL
}

// OnAccess refreshes the timestamp on a successful read.
func (e *ExpireAfterAccess) OnAccess(ent *types.Entry, now time.Time) {
	ent.Timestamp = now
}

// OnWrite stamps a freshly written or overwritten entry.
func (e *ExpireAfterAccess) OnWrite(ent *types.Entry, now time.Time) {
	ent.Timestamp = now
}
