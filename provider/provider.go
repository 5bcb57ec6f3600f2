// Package provider defines where memo keeps computed results.
//
// The memo cache owns the keyspace it writes ("memo:<ns>:<digest>"); a
// provider shared with foreign writers may hand back values memo never stored.
package provider

import "context"

// Provider is a keyed value store. Implementations must be safe for
// concurrent use.
type Provider[V any] interface {
	// Get returns (value, true, nil) on hit and (zero, false, nil) on miss.
	// IO/decode failures return (zero, false, err).
	Get(ctx context.Context, key string) (V, bool, error)

	// Set stores value under key. ok=false means the store refused the write
	// (capacity reached, admission policy, contention) and nothing was stored.
	Set(ctx context.Context, key string, value V) (ok bool, err error)

	// Len reports how many entries are currently held. Stores that cannot
	// count exactly return a best-effort figure.
	Len() int

	// Close releases resources.
	Close(ctx context.Context) error
}
