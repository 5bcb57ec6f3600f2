// Package bounded is the default memo provider: an in-process map with a fixed
// entry capacity and no eviction. Once full, writes of new keys are refused
// and existing entries live until Close.
package bounded

import (
	"context"
	"sync"

	pr "github.com/unkn0wn-root/orchid/provider"
)

type Provider[V any] struct {
	mu      sync.RWMutex
	m       map[string]V
	maxSize int // 0 => unbounded
}

var _ pr.Provider[int] = (*Provider[int])(nil)

// New returns an empty provider holding at most maxSize entries.
// maxSize <= 0 means unbounded.
func New[V any](maxSize int) *Provider[V] {
	if maxSize < 0 {
		maxSize = 0
	}
	return &Provider[V]{m: make(map[string]V), maxSize: maxSize}
}

func (p *Provider[V]) Get(_ context.Context, key string) (V, bool, error) {
	p.mu.RLock()
	v, ok := p.m[key]
	p.mu.RUnlock()
	return v, ok, nil
}

// Set overwrites an existing key even when full; only new keys count
// against capacity.
func (p *Provider[V]) Set(_ context.Context, key string, value V) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.m[key]; !exists && p.maxSize > 0 && len(p.m) >= p.maxSize {
		return false, nil
	}
	p.m[key] = value
	return true, nil
}

func (p *Provider[V]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.m)
}

func (p *Provider[V]) MaxSize() int { return p.maxSize }

// Close drops all entries. The provider stays usable afterwards.
func (p *Provider[V]) Close(_ context.Context) error {
	p.mu.Lock()
	p.m = make(map[string]V)
	p.mu.Unlock()
	return nil
}
