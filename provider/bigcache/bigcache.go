// Package bigcache backs memo with allegro/bigcache. Values are stored as
// bytes through a codec, so V must survive the codec's round trip. Entries
// expire after LifeWindow; there is no per-entry capacity refusal.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/orchid/codec"
	pr "github.com/unkn0wn-root/orchid/provider"
)

type Provider[V any] struct {
	c     *bc.BigCache
	codec codec.Codec[V]
}

var _ pr.Provider[int] = (*Provider[int])(nil)

type Config struct {
	LifeWindow         time.Duration // 0 => 10m
	CleanWindow        time.Duration
	Shards             int // power of two; 0 => bigcache default (1024)
	MaxEntriesInWindow int // sizes the initial shard allocation; 0 => bigcache default
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New[V any](cfg Config, cd codec.Codec[V]) (*Provider[V], error) {
	if cd == nil {
		return nil, errors.New("bigcache: codec is required")
	}
	life := cfg.LifeWindow
	if life <= 0 {
		life = 10 * time.Minute
	}
	conf := bc.DefaultConfig(life)
	conf.Verbose = false
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Provider[V]{c: c, codec: cd}, nil
}

func (p *Provider[V]) Get(_ context.Context, key string) (V, bool, error) {
	var zero V
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	v, err := p.codec.Decode(b)
	if err != nil {
		_ = p.c.Delete(key) // self-heal undecodable entry
		return zero, false, err
	}
	return v, true, nil
}

func (p *Provider[V]) Set(_ context.Context, key string, value V) (bool, error) {
	b, err := p.codec.Encode(value)
	if err != nil {
		return false, err
	}
	if err := p.c.Set(key, b); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider[V]) Len() int { return p.c.Len() }

func (p *Provider[V]) Close(_ context.Context) error { return p.c.Close() }
