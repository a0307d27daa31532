// Package session holds refresh tokens in a fast key-value store, one entry
// per user. Entries expire on their own; nothing else prunes them.
package session

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long a stored refresh token lives in the cache.
const DefaultTTL = 7 * 24 * time.Hour

// ErrMiss is returned by Get when no live entry exists for a key.
var ErrMiss = errors.New("session: cache miss")

// Cache is a string key-value store with per-entry expiry. Implementations
// must be safe for concurrent use. Only single-key operations are offered, so
// concurrent logins for the same user are last-writer-wins.
type Cache interface {
	// Set stores value under key, replacing any previous entry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns ErrMiss when the key is absent or expired.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
	Close() error
}

// RefreshKey is the cache key holding a user's current refresh token.
func RefreshKey(username string) string {
	return "refresh_token:" + username
}
