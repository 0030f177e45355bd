package cache

/*
Cache defines the PUBLIC API of the in-memory cache.
This is a contract that guarantees certain behaviors, without exposing internals.
Storage order, expiration and eviction details are hidden behind this interface.
*/
type Cache interface {

	/*
		Get retrieves the value associated with the given key.

		BEHAVIOR:
		-------------------
		1. If the key exists and is NOT expired:
		   - Refresh its timestamp
		   - Count a hit and return the value

		2. If the key does NOT exist or is expired:
		   - Remove the expired entry, if any
		   - Count a miss and return false
	*/
	Get(key string) (any, bool)

	/*
		Set stores a key-value pair in the cache.

		BEHAVIOR:
		---------
		- If the cache is at or above capacity, evicts exactly one entry first
		- Stores the value stamped with the current time
	*/
	Set(key string, value any)

	// Delete removes a key. Removing a missing key is a no-op.
	Delete(key string)

	// Clear empties the cache and resets hit/miss counters.
	Clear()

	// Stats returns a read-only snapshot of the counters.
	Stats() Stats

	// Cleanup removes every expired entry and returns how many were removed.
	Cleanup() int
}

var _ Cache = (*Manager)(nil)
