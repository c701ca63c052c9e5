package tagcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/tagcache/codec"
	pr "github.com/unkn0wn-root/tagcache/provider"
	ts "github.com/unkn0wn-root/tagcache/tagstore"
)

// SetCostFunc computes the admission cost passed to the provider on Set.
// Providers that are not cost-aware ignore it.
type SetCostFunc func(key string, raw []byte) int64

// Cache is the high-level, provider-agnostic tagged cache API.
// V is the caller's value type. Serialization is handled by a pluggable Codec[V].
//
// All methods are safe for concurrent use.
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Get returns the live value for key. Expired entries are treated as
	// absent. A store failure is returned as an error, never as a miss.
	Get(ctx context.Context, key string) (v V, ok bool, err error)

	// Set stores value under key for ttl (must be > 0) and registers key
	// under every tag. A re-Set replaces the previous tag memberships.
	Set(ctx context.Context, key string, value V, ttl time.Duration, tags ...string) error

	// Warm bulk-seeds entries in one call - a collection cache plus its
	// per-record caches, for example. Every entry is written like Set,
	// sharing one ttl and one tag list; per-key failures are collected and
	// the remaining entries are still seeded.
	Warm(ctx context.Context, entries map[string]V, ttl time.Duration, tags ...string) error

	// Delete removes the entry and its tag memberships. Idempotent.
	Delete(ctx context.Context, key string) error

	// InvalidateTag deletes every entry currently registered under tag and
	// removes those keys from all other tags they belonged to.
	InvalidateTag(ctx context.Context, tag string) error

	// InvalidateKeys deletes a fixed group of keys (convenience for event
	// handlers that clear e.g. "user_list" plus "user_<id>" together).
	InvalidateKeys(ctx context.Context, keys ...string) error

	// Members lists the keys currently registered under tag, sorted.
	Members(ctx context.Context, tag string) ([]string, error)

	// WriteThrough runs the authoritative update first and caches its result
	// only after the update succeeded. An update failure propagates unchanged
	// and leaves the cache untouched. If the update succeeds but the cache
	// write fails, the committed value is still returned alongside the error.
	WriteThrough(ctx context.Context, key string, ttl time.Duration, tags []string, update func(context.Context) (V, error)) (V, error)

	// Stats returns a snapshot of the hit/miss counters for a namespace
	// (the portion of a key before the first separator). Read-only.
	Stats(namespace string) Stats

	// ResetStats zeroes all counters.
	ResetStats()
}

// Options tune the behavior of the generic tagged cache.
// Only Namespace, Provider and Codec are required; others have defaults.
type Options[V any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions, e.g. "app:prod"
	Provider  pr.Provider
	Codec     c.Codec[V]

	Logger         Logger      // if nil, NopLogger is used
	Hooks          Hooks       // if nil, NopHooks is used
	TagStore       ts.TagStore // nil => tagstore.NewLocal() (in-process)
	StatsSeparator string      // namespace separator in keys; "" => "_"
	LockShards     int         // striped key-lock count; 0 => 256
	Disabled       bool        // default false (enabled)
	ComputeSetCost SetCostFunc // default 1
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
