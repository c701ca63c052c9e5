// Package asynchook moves hook work off the cache's hot paths onto a small
// worker pool with a bounded queue. Events are dropped when the queue is
// full rather than blocking a cache call.
//
// usage:
//
//	hooks := asynchook.New(myHooks, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := tagcache.New[User](tagcache.Options[User]{
//	    Namespace: "app:prod",
//	    Provider:  provider,
//	    Codec:     codec.JSON[User]{},
//	    Hooks:     hooks, // or myHooks directly if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/tagcache"
)

type Hooks struct {
	inner tagcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ tagcache.Hooks = (*Hooks)(nil)

func New(inner tagcache.Hooks, workers, qlen int) *Hooks {
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

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) SelfHeal(k, r string) {
	h.try(func() { h.inner.SelfHeal(k, r) })
}

func (h *Hooks) ProviderSetRejected(k string) {
	h.try(func() { h.inner.ProviderSetRejected(k) })
}

func (h *Hooks) TagInvalidated(t string, n int) {
	h.try(func() { h.inner.TagInvalidated(t, n) })
}

func (h *Hooks) IndexError(op, k string, err error) {
	h.try(func() { h.inner.IndexError(op, k, err) })
}
