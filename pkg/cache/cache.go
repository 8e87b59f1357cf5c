// Package cache stores rendered diagram artifacts keyed by their source.
//
// Keys are content hashes of the DOT source mixed with [RenderVersion], so an
// entry goes stale only when the renderer changes.
//
// Two implementations are provided:
//
//   - [FileCache] stores entries under a directory, for the CLI and server
//   - [NullCache] never stores anything, for tests or when caching is off
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RenderVersion is mixed into every key. Bump it when the SVG post-processing
// changes so old entries miss.
const RenderVersion = "1"

// DefaultTTL bounds how long an entry is served before it is rendered again.
const DefaultTTL = 30 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// SVGKey returns the key for the SVG rendering of DOT source src.
func SVGKey(src string) string {
	return hashKey("svg", RenderVersion, src)
}

// DefaultDir returns the render cache directory,
// $XDG_CACHE_HOME/flowlane/render on Linux.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return filepath.Join(dir, "flowlane", "render"), nil
}
