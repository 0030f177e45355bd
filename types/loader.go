package types

import "context"

/*
Producer is the contract between the cache and whatever computes a value.

It is called when the cache misses (or a query is stale):
 1. Cache checks memory -> key not found or too old
 2. Caller invokes the Producer
 3. Producer fetches from an API / DB / computation
 4. The resolved value is stored verbatim under the key

The cache imposes no schema on T.
*/
type Producer[T any] func(ctx context.Context) (T, error)
