// Package cache stores solved scenes so repeated runs over an unchanged
// scene skip the solver.
//
// A [Cache] is a byte store with per-entry TTLs. [FileCache] keeps entries
// under a directory for CLI use; [NullCache] disables caching. Keys come
// from a [Keyer], which hashes the scene content together with every solver
// option that can change the result.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long solve results are kept when no TTL is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a key-value store for serialized solve results.
//
// Get reports a miss with ok=false and a nil error. Expired and corrupt
// entries are misses.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
