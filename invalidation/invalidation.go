// Package invalidation propagates cache deletions between processes.
//
// The cache itself stays purely in-memory; Redis only carries the names of
// keys that every subscriber should drop.
package invalidation

import (
	"context"
	"errors"
)

// DefaultChannel is the Pub/Sub channel used when none is configured.
const DefaultChannel = "querycache:invalidate"

// ErrClosed is returned by publishers after Close.
var ErrClosed = errors.New("invalidation: closed")

// Deleter is the part of a cache a listener needs.
type Deleter interface {
	Delete(key string)
}

// Publisher announces that key should be dropped everywhere.
type Publisher interface {
	Publish(ctx context.Context, key string) error
}

// Invalidate deletes key locally and then announces it.
func Invalidate(ctx context.Context, local Deleter, pub Publisher, key string) error {
	local.Delete(key)
	if pub == nil {
		return nil
	}
	return pub.Publish(ctx, key)
}
