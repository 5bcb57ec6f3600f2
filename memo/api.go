package memo

import (
	"context"
	"errors"

	"github.com/unkn0wn-root/orchid"
	pr "github.com/unkn0wn-root/orchid/provider"
)

var ErrInvalidMaxSize = errors.New("memo: MaxSize must be >= 0")

// Cache is an explicit memoization table owned by the caller. One Cache
// usually serves one memoized function; share it only between functions whose
// keys cannot collide (use distinct Namespaces otherwise).
type Cache[V any] interface {
	// GetOrCompute returns the stored value for key, or runs compute and
	// stores its result if the provider accepts it. Errors from compute are
	// returned unchanged and never stored.
	GetOrCompute(ctx context.Context, key Key, compute func(context.Context) (V, error)) (V, error)

	// Bypass runs compute without reading or writing the table. Memoize uses
	// it for calls whose arguments cannot form a key.
	Bypass(ctx context.Context, compute func(context.Context) (V, error)) (V, error)

	Get(ctx context.Context, key Key) (v V, ok bool, err error)

	Namespace() string
	Len() int
	MaxSize() int
	Stats() Stats
	Enabled() bool
	Close(ctx context.Context) error
}

// Options tune a Cache. The zero value is a usable unbounded cache.
type Options[V any] struct {
	Namespace string // key prefix; "" => "memo"
	// MaxSize caps the number of stored results for the default provider.
	// 0 => unbounded. When full, new results are returned but not stored;
	// nothing is ever evicted.
	MaxSize int

	Provider pr.Provider[V] // nil => bounded.New[V](MaxSize)
	Logger   orchid.Logger  // nil => NopLogger
	Hooks    Hooks          // nil => NopHooks

	// SingleFlight collapses concurrent misses of the same key into a single
	// compute call. Off by default: concurrent misses each compute, and the
	// first successful Set wins.
	SingleFlight bool
	Disabled     bool // always compute, never store
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits     uint64
	Misses   uint64
	Bypassed uint64 // unhashable arguments
	Rejected uint64 // computed but refused by the provider (full)
	Len      int
	MaxSize  int
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache(opts)
}
