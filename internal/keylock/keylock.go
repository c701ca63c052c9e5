// Package keylock provides striped per-key mutexes. Two distinct keys may
// share a stripe; that only coarsens the critical section, never breaks it.
package keylock

import (
	"hash/fnv"
	"sync"
)

type Striped struct {
	shards []sync.Mutex
	mask   uint32
}

// New creates a striped lock with n shards, rounded up to a power of two.
// n <= 0 defaults to 256.
func New(n int) *Striped {
	if n <= 0 {
		n = 256
	}
	size := 1
	for size < n {
		size <<= 1
	}
	return &Striped{shards: make([]sync.Mutex, size), mask: uint32(size - 1)}
}

func (s *Striped) idx(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() & s.mask
}

func (s *Striped) Lock(key string)   { s.shards[s.idx(key)].Lock() }
func (s *Striped) Unlock(key string) { s.shards[s.idx(key)].Unlock() }
