package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by SessionStore.Load when no session exists under
// the given key.
var ErrNotFound = errors.New("session not found")

// SessionStore persists serialized conversation sessions. Keys are opaque
// strings assembled by the engine; values are small JSON documents.
//
// Implementations must honor the TTL passed to Save: an expired session
// behaves exactly like a missing one.
type SessionStore interface {
	// Save stores data under key for at most ttl. A non-positive ttl
	// persists without expiry.
	Save(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Load retrieves the session saved under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the session under key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// List returns every live session key.
	List(ctx context.Context) ([]string, error)
}
