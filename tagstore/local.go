package tagstore

import (
	"context"
	"sort"
	"sync"
)

// Local keeps the tag index in-process (default). Both directions of the
// index are held under one mutex, so every operation is linearizable and
// empty sets are pruned eagerly - no sweep loop needed.
type Local struct {
	mu    sync.RWMutex
	byTag map[string]map[string]struct{} // tag -> member keys
	byKey map[string]map[string]struct{} // key -> tags it carries
}

var _ TagStore = (*Local)(nil)

func NewLocal() *Local {
	return &Local{
		byTag: make(map[string]map[string]struct{}),
		byKey: make(map[string]map[string]struct{}),
	}
}

func (s *Local) Link(_ context.Context, key string, tags []string) ([]string, error) {
	s.mu.Lock()
	prev := s.unlinkLocked(key)
	if len(tags) > 0 {
		set := make(map[string]struct{}, len(tags))
		for _, t := range tags {
			set[t] = struct{}{}
			members, ok := s.byTag[t]
			if !ok {
				members = make(map[string]struct{})
				s.byTag[t] = members
			}
			members[key] = struct{}{}
		}
		s.byKey[key] = set
	}
	s.mu.Unlock()
	return prev, nil
}

func (s *Local) Unlink(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	prev := s.unlinkLocked(key)
	s.mu.Unlock()
	return prev, nil
}

// unlinkLocked removes key from both directions and returns its former tags,
// sorted. Caller holds s.mu.
func (s *Local) unlinkLocked(key string) []string {
	set, ok := s.byKey[key]
	if !ok {
		return nil
	}
	prev := make([]string, 0, len(set))
	for t := range set {
		prev = append(prev, t)
		if members, ok := s.byTag[t]; ok {
			delete(members, key)
			if len(members) == 0 {
				delete(s.byTag, t)
			}
		}
	}
	delete(s.byKey, key)
	sort.Strings(prev)
	return prev
}

func (s *Local) Members(_ context.Context, tag string) ([]string, error) {
	s.mu.RLock()
	members := s.byTag[tag]
	out := make([]string, 0, len(members))
	for k := range members {
		out = append(out, k)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

func (s *Local) Tags(_ context.Context, key string) ([]string, error) {
	s.mu.RLock()
	set := s.byKey[key]
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

func (s *Local) DropTag(_ context.Context, tag string) error {
	s.mu.Lock()
	if members, ok := s.byTag[tag]; ok && len(members) == 0 {
		delete(s.byTag, tag)
	}
	s.mu.Unlock()
	return nil
}

func (s *Local) Close(context.Context) error { return nil }
