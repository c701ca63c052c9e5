package tagcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/unkn0wn-root/tagcache/codec"
	"github.com/unkn0wn-root/tagcache/internal/keylock"
	"github.com/unkn0wn-root/tagcache/internal/util"
	"github.com/unkn0wn-root/tagcache/internal/wire"
	"github.com/unkn0wn-root/tagcache/provider"
	"github.com/unkn0wn-root/tagcache/tagstore"
)

type cache[V any] struct {
	ns             string
	provider       provider.Provider
	codec          codec.Codec[V]
	tags           tagstore.TagStore
	log            Logger
	hooks          Hooks
	enabled        bool
	sep            string
	computeSetCost SetCostFunc

	// locks serialize entry+index mutations per key. Acquisition order is
	// always key lock first, then the tag store's internal lock.
	locks *keylock.Striped
	stats *statsTable
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("tagcache: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("tagcache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("tagcache: namespace is required")
	}

	c := &cache[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		enabled:  !opts.Disabled,
		stats:    newStatsTable(),
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.sep = coalesce[string](opts.StatsSeparator, "_")
	c.locks = keylock.New(opts.LockShards)

	if opts.ComputeSetCost != nil {
		c.computeSetCost = opts.ComputeSetCost
	} else {
		c.computeSetCost = func(_ string, _ []byte) int64 { return 1 }
	}

	if opts.TagStore != nil {
		c.tags = opts.TagStore
	} else {
		c.tags = tagstore.NewLocal()
	}

	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Close(ctx context.Context) error {
	// Close tag store first (best effort)
	if c.tags != nil {
		_ = c.tags.Close(ctx)
	}
	if c.provider != nil {
		return c.provider.Close(ctx)
	}
	return nil
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if key == "" {
		return zero, false, ErrInvalidKey
	}
	if !c.enabled {
		return zero, false, nil
	}
	sk := c.entryKey(key)
	raw, ok, err := c.provider.Get(ctx, sk)
	if err != nil {
		// store failure is not a miss; caller decides the fallback
		return zero, false, classify("get", key, err)
	}
	if !ok {
		c.stats.miss(c.namespaceOf(key))
		return zero, false, nil
	}
	expiresAt, payload, err := wire.Decode(raw)
	if err != nil {
		c.prune(ctx, key, sk, raw, "corrupt")
		c.stats.miss(c.namespaceOf(key))
		return zero, false, nil
	}
	if !time.Now().Before(expiresAt) {
		// logically absent; physical purge is best-effort
		c.prune(ctx, key, sk, raw, "expired")
		c.stats.miss(c.namespaceOf(key))
		return zero, false, nil
	}
	v, err := c.codec.Decode(payload)
	if err != nil {
		c.prune(ctx, key, sk, raw, "value_decode")
		c.stats.miss(c.namespaceOf(key))
		return zero, false, nil
	}
	c.stats.hit(c.namespaceOf(key))
	return v, true, nil
}

func (c *cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration, tags ...string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	for _, t := range tags {
		if t == "" {
			return ErrInvalidTag
		}
	}
	if !c.enabled {
		return nil
	}
	payload, err := c.codec.Encode(value)
	if err != nil {
		return err
	}
	frame := wire.Encode(time.Now().Add(ttl), payload)
	sk := c.entryKey(key)

	// entry write and index refresh form one critical section per key
	c.locks.Lock(key)
	defer c.locks.Unlock(key)

	if _, err := c.tags.Link(ctx, key, tags); err != nil {
		c.hooks.IndexError("link", key, err)
		return classify("link", key, err)
	}
	ok, err := c.provider.Set(ctx, sk, frame, c.computeSetCost(sk, frame), ttl)
	if err != nil {
		// fail closed: a key the index references must not point at a stale
		// entry, so drop both sides
		if _, uerr := c.tags.Unlink(ctx, key); uerr != nil {
			c.hooks.IndexError("unlink", key, uerr)
		}
		_ = c.provider.Del(ctx, sk)
		return classify("set", key, err)
	}
	if !ok {
		// admission rejected under pressure: the new value was not stored,
		// and any previous value must not linger unindexed, so "not stored"
		// becomes "absent" on both sides
		if _, uerr := c.tags.Unlink(ctx, key); uerr != nil {
			c.hooks.IndexError("unlink", key, uerr)
		}
		_ = c.provider.Del(ctx, sk)
		c.hooks.ProviderSetRejected(sk)
		c.log.Debug("set rejected by provider (pressure)", Fields{"key": key})
	}
	return nil
}

func (c *cache[V]) Warm(ctx context.Context, entries map[string]V, ttl time.Duration, tags ...string) error {
	if len(entries) == 0 {
		return nil
	}
	// seed in sorted key order so partial failures are deterministic
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if err := c.Set(ctx, k, entries[k], ttl, tags...); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("tagcache: warm: %w", errors.Join(errs...))
	}
	return nil
}

func (c *cache[V]) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if !c.enabled {
		return nil
	}
	c.locks.Lock(key)
	defer c.locks.Unlock(key)
	return c.deleteLocked(ctx, key)
}

// deleteLocked removes the entry and its memberships. Caller holds the key lock.
func (c *cache[V]) deleteLocked(ctx context.Context, key string) error {
	if _, err := c.tags.Unlink(ctx, key); err != nil {
		c.hooks.IndexError("unlink", key, err)
		return classify("unlink", key, err)
	}
	if err := c.provider.Del(ctx, c.entryKey(key)); err != nil {
		return classify("delete", key, err)
	}
	return nil
}

func (c *cache[V]) InvalidateTag(ctx context.Context, tag string) error {
	if tag == "" {
		return ErrInvalidTag
	}
	if !c.enabled {
		return nil
	}
	members, err := c.tags.Members(ctx, tag)
	if err != nil {
		c.hooks.IndexError("members", tag, err)
		return classify("members", tag, err)
	}

	var errs []error
	cleared := 0
	for _, key := range members {
		c.locks.Lock(key)
		// recheck under the key lock: a racing Set may have re-tagged the
		// key since the member snapshot, in which case it survives
		current, terr := c.tags.Tags(ctx, key)
		if terr != nil {
			c.locks.Unlock(key)
			c.hooks.IndexError("tags", key, terr)
			errs = append(errs, classify("tags", key, terr))
			continue
		}
		if !containsString(current, tag) {
			c.locks.Unlock(key)
			continue
		}
		err := c.deleteLocked(ctx, key)
		c.locks.Unlock(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cleared++
	}

	if err := c.tags.DropTag(ctx, tag); err != nil {
		c.hooks.IndexError("drop", tag, err)
		errs = append(errs, classify("drop", tag, err))
	}

	c.hooks.TagInvalidated(tag, cleared)
	c.log.Debug("invalidated tag", Fields{"tag": tag, "members": len(members), "cleared": cleared})
	if len(errs) > 0 {
		return &InvalidateTagError{Tag: tag, Errs: errs}
	}
	return nil
}

func (c *cache[V]) InvalidateKeys(ctx context.Context, keys ...string) error {
	var errs []error
	for _, k := range keys {
		if err := c.Delete(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("tagcache: invalidate keys: %w", errors.Join(errs...))
	}
	return nil
}

func (c *cache[V]) Members(ctx context.Context, tag string) ([]string, error) {
	if tag == "" {
		return nil, ErrInvalidTag
	}
	if !c.enabled {
		return nil, nil
	}
	out, err := c.tags.Members(ctx, tag)
	if err != nil {
		c.hooks.IndexError("members", tag, err)
		return nil, classify("members", tag, err)
	}
	return out, nil
}

func (c *cache[V]) WriteThrough(ctx context.Context, key string, ttl time.Duration, tags []string, update func(context.Context) (V, error)) (V, error) {
	v, err := update(ctx)
	if err != nil {
		// never cache a value the system of record did not commit;
		// the upstream failure propagates unchanged
		var zero V
		return zero, err
	}
	if err := c.Set(ctx, key, v, ttl, tags...); err != nil {
		// the value is authoritative even though caching it failed
		return v, err
	}
	return v, nil
}

func (c *cache[V]) Stats(namespace string) Stats { return c.stats.snapshot(namespace) }

func (c *cache[V]) ResetStats() { c.stats.reset() }

// prune removes a dead entry from both the provider and the tag index.
// The entry is re-read under the key lock and deleted only if its bytes are
// unchanged, so a concurrent re-Set is never clobbered.
func (c *cache[V]) prune(ctx context.Context, key, sk string, seen []byte, reason string) {
	c.locks.Lock(key)
	defer c.locks.Unlock(key)

	raw, ok, err := c.provider.Get(ctx, sk)
	if err != nil || !ok || !bytes.Equal(raw, seen) {
		return
	}
	if _, uerr := c.tags.Unlink(ctx, key); uerr != nil {
		c.hooks.IndexError("unlink", key, uerr)
	}
	_ = c.provider.Del(ctx, sk)
	c.hooks.SelfHeal(sk, reason)
}

func (c *cache[V]) entryKey(userKey string) string {
	// isolate by namespace
	return "entry:" + c.ns + ":" + userKey
}

func (c *cache[V]) namespaceOf(key string) string {
	return util.NamespaceOf(key, c.sep)
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
