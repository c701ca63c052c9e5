package tagcache

import (
	"sync"
	"sync/atomic"
)

// Stats is a point-in-time snapshot of one namespace's counters.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Total returns the number of counted lookups.
func (s Stats) Total() uint64 { return s.Hits + s.Misses }

// HitRatio returns Hits/Total, or 0 when nothing was counted yet.
func (s Stats) HitRatio() float64 {
	t := s.Total()
	if t == 0 {
		return 0
	}
	return float64(s.Hits) / float64(t)
}

type counters struct {
	hits   atomic.Uint64
	misses atomic.Uint64
}

// statsTable tracks hit/miss counters per namespace. Counter bumps are
// atomic; losing an increment under a reset race is tolerable, the table
// itself is not allowed to corrupt.
type statsTable struct {
	mu sync.RWMutex
	m  map[string]*counters
}

func newStatsTable() *statsTable {
	return &statsTable{m: make(map[string]*counters)}
}

func (t *statsTable) get(ns string) *counters {
	t.mu.RLock()
	c, ok := t.m[ns]
	t.mu.RUnlock()
	if ok {
		return c
	}
	t.mu.Lock()
	c, ok = t.m[ns]
	if !ok {
		c = &counters{}
		t.m[ns] = c
	}
	t.mu.Unlock()
	return c
}

func (t *statsTable) hit(ns string)  { t.get(ns).hits.Add(1) }
func (t *statsTable) miss(ns string) { t.get(ns).misses.Add(1) }

func (t *statsTable) snapshot(ns string) Stats {
	t.mu.RLock()
	c, ok := t.m[ns]
	t.mu.RUnlock()
	if !ok {
		return Stats{}
	}
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

func (t *statsTable) reset() {
	t.mu.Lock()
	t.m = make(map[string]*counters)
	t.mu.Unlock()
}
