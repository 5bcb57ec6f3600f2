package memo

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/orchid"
	pr "github.com/unkn0wn-root/orchid/provider"
	"github.com/unkn0wn-root/orchid/provider/bounded"
)

const defaultNamespace = "memo"

type cache[V any] struct {
	ns       string
	provider pr.Provider[V]
	log      orchid.Logger
	hooks    Hooks
	enabled  bool
	maxSize  int
	flight   *singleflight.Group // nil unless Options.SingleFlight

	hits     atomic.Uint64
	misses   atomic.Uint64
	bypassed atomic.Uint64
	rejected atomic.Uint64
}

type sizer interface{ MaxSize() int }

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.MaxSize < 0 {
		return nil, ErrInvalidMaxSize
	}

	c := &cache[V]{
		ns:      orchid.Coalesce(opts.Namespace, defaultNamespace),
		enabled: !opts.Disabled,
		maxSize: opts.MaxSize,
	}
	c.log = orchid.Coalesce[orchid.Logger](opts.Logger, orchid.NopLogger{})
	c.hooks = orchid.Coalesce[Hooks](opts.Hooks, NopHooks{})

	if opts.Provider != nil {
		c.provider = opts.Provider
		if s, ok := opts.Provider.(sizer); ok && c.maxSize == 0 {
			c.maxSize = s.MaxSize()
		}
	} else {
		c.provider = bounded.New[V](opts.MaxSize)
	}
	if opts.SingleFlight {
		c.flight = new(singleflight.Group)
	}
	return c, nil
}

func (c *cache[V]) Namespace() string { return c.ns }
func (c *cache[V]) Enabled() bool     { return c.enabled }
func (c *cache[V]) MaxSize() int      { return c.maxSize }
func (c *cache[V]) Len() int          { return c.provider.Len() }

func (c *cache[V]) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Bypassed: c.bypassed.Load(),
		Rejected: c.rejected.Load(),
		Len:      c.provider.Len(),
		MaxSize:  c.maxSize,
	}
}

func (c *cache[V]) Close(ctx context.Context) error {
	return c.provider.Close(ctx)
}

func (c *cache[V]) Get(ctx context.Context, key Key) (V, bool, error) {
	var zero V
	if !c.enabled {
		return zero, false, nil
	}
	return c.provider.Get(ctx, string(key))
}

func (c *cache[V]) GetOrCompute(ctx context.Context, key Key, compute func(context.Context) (V, error)) (V, error) {
	if !c.enabled {
		return compute(ctx)
	}
	k := string(key)
	if v, ok := c.lookup(ctx, k); ok {
		return v, nil
	}
	c.misses.Add(1)
	c.hooks.Miss(k)

	if c.flight == nil {
		return c.computeAndStore(ctx, k, compute)
	}
	res, err, shared := c.flight.Do(k, func() (any, error) {
		// a flight that finished just before ours may already have stored it
		if v, ok, _ := c.provider.Get(ctx, k); ok {
			return v, nil
		}
		return c.computeAndStore(ctx, k, compute)
	})
	if shared {
		c.log.Debug("memo miss joined in-flight compute", orchid.Fields{"key": k})
	}
	if err != nil {
		var zero V
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}

func (c *cache[V]) Bypass(ctx context.Context, compute func(context.Context) (V, error)) (V, error) {
	c.bypassed.Add(1)
	c.hooks.Bypass("unhashable")
	return compute(ctx)
}

func (c *cache[V]) lookup(ctx context.Context, k string) (V, bool) {
	v, ok, err := c.provider.Get(ctx, k)
	if err != nil {
		// treat as miss; the compute path will try to overwrite it
		c.log.Warn("memo provider get failed", orchid.Fields{"key": k, "err": err})
		c.hooks.ProviderError("get", err)
		return v, false
	}
	if ok {
		c.hits.Add(1)
		c.hooks.Hit(k)
	}
	return v, ok
}

func (c *cache[V]) computeAndStore(ctx context.Context, k string, compute func(context.Context) (V, error)) (V, error) {
	v, err := compute(ctx)
	if err != nil {
		return v, err
	}
	ok, err := c.provider.Set(ctx, k, v)
	switch {
	case err != nil:
		c.log.Warn("memo provider set failed", orchid.Fields{"key": k, "err": err})
		c.hooks.ProviderError("set", err)
	case !ok:
		c.rejected.Add(1)
		c.hooks.Rejected(k)
		c.log.Debug("memo result not stored (provider full)", orchid.Fields{"key": k, "maxSize": c.maxSize})
	}
	return v, nil
}
