package tagcache

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrInvalidKey is returned for an empty key, before any store interaction.
	ErrInvalidKey = errors.New("tagcache: key must be non-empty")
	// ErrInvalidTTL is returned for a non-positive TTL, before any store interaction.
	ErrInvalidTTL = errors.New("tagcache: ttl must be positive")
	// ErrInvalidTag is returned for an empty tag, before any store interaction.
	ErrInvalidTag = errors.New("tagcache: tag must be non-empty")

	// ErrTimeout marks a store call that exceeded the caller's deadline.
	// Distinct from ErrUnavailable so callers can tell "not cached" from
	// "cache slow" from "cache down".
	ErrTimeout = errors.New("tagcache: store timeout")
	// ErrUnavailable marks any other backing store or tag index failure.
	ErrUnavailable = errors.New("tagcache: store unavailable")
)

// StoreError wraps a provider or tag-index failure with its classification
// (ErrTimeout or ErrUnavailable). errors.Is matches both the class and the
// underlying cause.
type StoreError struct {
	Op    string // "get", "set", "delete", "link", "unlink", "members"
	Key   string // user key or tag the operation targeted
	Class error  // ErrTimeout or ErrUnavailable
	Err   error  // underlying cause
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("tagcache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{e.Class, e.Err} }

// classify wraps a raw store error into a StoreError. nil passes through.
func classify(op, key string, err error) error {
	if err == nil {
		return nil
	}
	class := ErrUnavailable
	if isTimeout(err) {
		class = ErrTimeout
	}
	return &StoreError{Op: op, Key: key, Class: class, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// InvalidateTagError reports member keys that could not be invalidated.
// Keys that failed stay registered under the tag, so a retry of
// InvalidateTag covers exactly the leftovers.
type InvalidateTagError struct {
	Tag  string
	Errs []error
}

func (e *InvalidateTagError) Error() string {
	return fmt.Sprintf("tagcache: invalidate tag %q: %d member(s) failed: %v", e.Tag, len(e.Errs), errors.Join(e.Errs...))
}

func (e *InvalidateTagError) Unwrap() []error { return e.Errs }
