// Package tagcache implements a provider-agnostic cache with tag-based group
// invalidation. Entries carry a TTL and an optional set of tags; invalidating
// a tag atomically removes every entry registered under it. Per-namespace
// hit/miss counters are kept for instrumentation.
//
// Components:
//   - Provider: byte store with TTL (e.g. Ristretto, BigCache, Redis).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - TagStore: tag <-> key index. Local (in-process) by default, optional
//     Redis implementation for multi-replica setups.
//
// Keys:
//
//	entry:<ns>:<key> - cache entries (value framed with absolute expiry)
//
// The tag index lives outside the entry keyspace (own namespace, no data TTL)
// so it can never expire or be evicted independently of its members.
//
// Cache-aside pattern:
//
//	v, ok, err := cache.Get(ctx, "user_42")
//	if err != nil { /* store unreachable; fall back to DB */ }
//	if !ok {
//	    v = loadFromDB(42)
//	    _ = cache.Set(ctx, "user_42", v, 5*time.Minute, "user")
//	}
//
// Write-through pattern:
//
//	v, err := cache.WriteThrough(ctx, "user_42", 5*time.Minute, []string{"user"},
//	    func(ctx context.Context) (User, error) { return saveToDB(ctx, u) })
//
// On a domain mutation, invalidate the whole group:
//
//	_ = cache.InvalidateTag(ctx, "user") // clears user_list, user_42, ...
package tagcache
