// Package tagstore holds the tag <-> key index used for group invalidation.
//
// The index is structurally distinct from cache entries: it lives in its own
// keyspace, carries no data TTL, and is only mutated through Link/Unlink, so
// it can never expire or be evicted independently of its members.
package tagstore

import "context"

// TagStore abstracts where the tag index lives.
// Use Local (default) for in-process indexing, or Redis for an index shared
// with a networked provider.
//
// Callers serialize Link/Unlink per key (the engine holds a per-key lock);
// implementations must additionally be safe for concurrent use across keys.
type TagStore interface {
	// Link replaces key's tag memberships with tags and returns the previous
	// memberships. The replacement is atomic: no observer sees key under a
	// half-updated set of tags.
	Link(ctx context.Context, key string, tags []string) (prev []string, err error)

	// Unlink removes key from every tag it was registered under and returns
	// the memberships it had. Unknown keys return an empty slice.
	Unlink(ctx context.Context, key string) (prev []string, err error)

	// Members returns the keys currently registered under tag, sorted.
	Members(ctx context.Context, tag string) ([]string, error)

	// Tags returns the tags key is currently registered under, sorted.
	Tags(ctx context.Context, key string) ([]string, error)

	// DropTag removes tag's set only if it is empty (bookkeeping after the
	// last member was unlinked). Dropping a non-empty tag is a no-op so a
	// racing Link is never orphaned.
	DropTag(ctx context.Context, tag string) error

	// Close releases resources (no-op ok).
	Close(context.Context) error
}
