package tagcache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; the cache calls them on
// hot paths. Wrap with hooks/async to move work off the caller.
type Hooks interface {
	// An entry was deleted by the cache on read.
	// reason ∈ {"corrupt", "expired", "value_decode"}
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// A tag index operation failed.
	// op ∈ {"link", "unlink", "members", "tags", "drop"}
	IndexError(op, key string, err error)

	// InvalidateTag finished; members is how many keys it cleared.
	TagInvalidated(tag string, members int)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)          {}
func (NopHooks) ProviderSetRejected(string)       {}
func (NopHooks) IndexError(string, string, error) {}
func (NopHooks) TagInvalidated(string, int)       {}
