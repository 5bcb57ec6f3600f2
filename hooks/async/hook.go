// Package asynchook moves memo hook callbacks off the calling goroutine.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{HitEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker, queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := memo.New[Report](memo.Options[Report]{
//	    Namespace: "reports",
//	    MaxSize:   256,
//	    Hooks:     hooks,
//	})
//
// Events are dropped when the queue is full; Dropped reports how many.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/orchid/memo"
)

type Hooks struct {
	inner   memo.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ memo.Hooks = (*Hooks)(nil)

func New(inner memo.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(k string)      { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) Miss(k string)     { h.try(func() { h.inner.Miss(k) }) }
func (h *Hooks) Bypass(r string)   { h.try(func() { h.inner.Bypass(r) }) }
func (h *Hooks) Rejected(k string) { h.try(func() { h.inner.Rejected(k) }) }
func (h *Hooks) ProviderError(op string, err error) {
	h.try(func() { h.inner.ProviderError(op, err) })
}
