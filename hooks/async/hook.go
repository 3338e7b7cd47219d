// Package asynchook moves omnicache hook delivery off the hot path.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{PartialEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	reg := omnicache.NewRegistry(omnicache.RegistryOptions{Hooks: hooks})
//
// Events are dropped, not blocked on, when the queue is full; Dropped
// reports how many.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/omnicache"
)

type Hooks struct {
	inner   omnicache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards q against send-after-close
	closed  bool
	dropped atomic.Uint64
}

var _ omnicache.Hooks = (*Hooks)(nil)

func New(inner omnicache.Hooks, workers, qlen int) *Hooks {
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

// Close drains queued events and stops the workers. Events fired after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports events lost to a full queue or a closed hook.
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

func (h *Hooks) DriverResolved(t, k string) { h.try(func() { h.inner.DriverResolved(t, k) }) }
func (h *Hooks) DriverFallback(r, u string) { h.try(func() { h.inner.DriverFallback(r, u) }) }
func (h *Hooks) DriverError(op string, err error) {
	h.try(func() { h.inner.DriverError(op, err) })
}
func (h *Hooks) DriverSetRejected(k string, multi bool) {
	h.try(func() { h.inner.DriverSetRejected(k, multi) })
}
func (h *Hooks) SelfHeal(k, reason string) { h.try(func() { h.inner.SelfHeal(k, reason) }) }
func (h *Hooks) PartialMulti(p string, req, found int) {
	h.try(func() { h.inner.PartialMulti(p, req, found) })
}
