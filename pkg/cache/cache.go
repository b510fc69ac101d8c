// Package cache provides the layout result cache.
//
// Computing a layout is the one expensive operation in the engine, so
// positioned graphs are cached under a content hash of the layout input.
// Backends:
//   - memory: per-process, for the single-binary case
//   - file: on-disk, shared between CLI invocations
//   - redis: shared between server instances
//   - disabled: every lookup misses
package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Sentinel errors for caching operations.
var (
	// ErrCacheMiss is returned when an item is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)

// Cache stores opaque byte payloads under string keys with optional TTL.
type Cache interface {
	// Get retrieves a value. The boolean reports whether the key was found;
	// an expired or missing entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// layoutKeyPrefix scopes layout entries so backends shared with other data
// (redis) can tell them apart.
const layoutKeyPrefix = "layout:"

// LayoutKey builds the cache key for a positioned graph from the content
// hash of its layout input.
func LayoutKey(inputHash string) string {
	return layoutKeyPrefix + inputHash
}

// IsLayoutKey reports whether key names a positioned-graph entry.
func IsLayoutKey(key string) bool {
	return strings.HasPrefix(key, layoutKeyPrefix)
}

// Disabled is the backend used when caching is turned off: every lookup
// misses and writes vanish.
type Disabled struct{}

// NewDisabled creates the no-op cache.
func NewDisabled() Cache { return Disabled{} }

func (Disabled) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Disabled) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Disabled) Delete(context.Context, string) error { return nil }
func (Disabled) Close() error { return nil }
