// Package ristretto backs memo with dgraph-io/ristretto. Unlike the default
// bounded provider it evicts: when full, TinyLFU admission decides whether a
// new result replaces an older one, so MaxEntries is a soft ceiling.
package ristretto

import (
	"context"
	"errors"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/orchid/provider"
)

type Provider[V any] struct {
	c    *rc.Cache
	sync bool
}

var _ pr.Provider[int] = (*Provider[int])(nil)

type Config struct {
	MaxEntries  int64 // every entry costs 1, so this is ristretto's MaxCost
	NumCounters int64 // 0 => 10 * MaxEntries
	BufferItems int64 // 0 => 64
	// Sync waits for ristretto's write buffer after each Set so the value is
	// visible to the next Get. Costs a little throughput.
	Sync bool
}

func New[V any](cfg Config) (*Provider[V], error) {
	if cfg.MaxEntries <= 0 {
		return nil, errors.New("ristretto: MaxEntries must be > 0")
	}
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = 10 * cfg.MaxEntries
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = 64
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxEntries,
		BufferItems: cfg.BufferItems,
		Metrics:     true, // Len depends on it
	})
	if err != nil {
		return nil, err
	}
	return &Provider[V]{c: c, sync: cfg.Sync}, nil
}

func (p *Provider[V]) Get(_ context.Context, key string) (V, bool, error) {
	var zero V
	raw, ok := p.c.Get(key)
	if !ok {
		return zero, false, nil
	}
	v, ok := raw.(V)
	if !ok {
		// foreign write under our key; drop it
		p.c.Del(key)
		return zero, false, nil
	}
	return v, true, nil
}

// Set reports ok=false when ristretto drops the write from its buffer.
// Admission is decided asynchronously, so ok=true does not promise the
// entry survives.
func (p *Provider[V]) Set(_ context.Context, key string, value V) (bool, error) {
	ok := p.c.Set(key, value, 1)
	if ok && p.sync {
		p.c.Wait()
	}
	return ok, nil
}

// Len is keys added minus keys evicted, from ristretto's metrics.
func (p *Provider[V]) Len() int {
	m := p.c.Metrics
	if m == nil {
		return 0
	}
	added, evicted := m.KeysAdded(), m.KeysEvicted()
	if evicted >= added {
		return 0
	}
	return int(added - evicted)
}

func (p *Provider[V]) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Metrics exposes ristretto's counters (hits, misses, cost) to the application.
func (p *Provider[V]) Metrics() *rc.Metrics { return p.c.Metrics }
