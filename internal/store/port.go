package store

import (
	"context"

	"github.com/Global19-atlassian-net/wayback/pkg/failure"
)

// ValueStore defines the port interface for the remote key-value store
// holding cached robots.txt values. This interface follows the
// port-adapter pattern, allowing different store implementations to be
// swapped without changing the cache logic.
//
// Contract:
//   - The store owns physical expiry: a value whose TTL has counted down
//     to zero is still returned by GetValue until the store removes or
//     overwrites it.
//   - Individual operations are atomic; concurrent callers see
//     last-writer-wins semantics, never a partial value.
//   - Implementations are responsible for payload compression.
type ValueStore interface {
	// GetValue retrieves the stored value and its remaining TTL for key.
	// Returns found == false on a plain miss. A store that cannot be
	// reached returns a StoreError with ErrCauseUnavailable.
	GetValue(ctx context.Context, key string) (StoredValue, bool, failure.ClassifiedError)

	// UpdateValue writes value with the given TTL. A nil value performs a
	// TTL-only touch: the freshness clock is reset without rewriting
	// content. When compress is true the payload is gzip-compressed
	// before being written.
	UpdateValue(ctx context.Context, key string, value *string, ttlSeconds int, compress bool) failure.ClassifiedError

	// PushKey enqueues member onto the capped list at queueKey. The queue
	// never grows beyond maxSize; overflow policy belongs to the store,
	// not the caller. PushKey must never block.
	PushKey(ctx context.Context, queueKey string, member string, maxSize int) failure.ClassifiedError

	// Close releases the underlying connection resources.
	Close() error
}
