// Package cache stores rendered artifacts between runs.
//
// Rendering a schema is deterministic, so an artifact is fully identified by
// the schema bytes, the options that shape the drawing and the program
// version. [Keyer] turns those into keys; a [Cache] backend stores the bytes:
//
//   - [NullCache] disables caching
//   - [FileCache] keeps entries under the user cache directory (CLI default)
//   - [RedisCache] shares entries between server instances
//
// Cache failures are never fatal to a run: callers log them and render
// without the cache.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
	Close() error
}

// NullCache misses on every Get and drops every Set.
type NullCache struct{}

// NewNullCache returns a Cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Clear(context.Context) (int, error)                       { return 0, nil }
func (NullCache) Close() error                                             { return nil }
