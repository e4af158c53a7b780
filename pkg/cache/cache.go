// Package cache provides pluggable storage backends for manifest bundles
// and upstream HTTP responses.
//
// The Cache interface abstracts over several implementations:
//   - memory: In-process map for single-instance servers and tests
//   - file: File-based cache for CLI usage
//   - redis: Redis-backed cache for multi-instance deployments
//   - null: No-op cache backing the "none" backend
//
// Keys are derived through a Keyer so that callers never embed raw repository
// identifiers (which may contain filesystem- or protocol-hostile characters)
// in storage keys. Bundle keys hold pipeline output; HTTP keys hold validated
// upstream responses for the fetcher's conditional requests.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// A ttl of 0 means the entry never expires. Get reports a miss (not an error)
// when the key is absent or expired. Implementations must provide atomic
// get/set per key; callers needing cross-call coordination (single-flight)
// layer it on top.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given time-to-live. Use 0 for no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Keyer generates cache keys for the different cached artifact types.
type Keyer interface {
	// BundleKey generates a key for a repository's manifest bundle.
	// The ref is optional; pass "" when the fetcher resolves no ref.
	BundleKey(repoKey, ref string) string

	// HTTPKey generates a key for a stored upstream HTTP response.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer hashes key components with SHA-256 so that arbitrary
// repository identifiers produce safe, fixed-width storage keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// BundleKey generates a key for a repository's manifest bundle.
func (k *DefaultKeyer) BundleKey(repoKey, ref string) string {
	return hashKey("bundle", repoKey, ref)
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// BundleKey generates a prefixed bundle key.
func (k *ScopedKeyer) BundleKey(repoKey, ref string) string {
	return k.prefix + k.inner.BundleKey(repoKey, ref)
}

// HTTPKey generates a prefixed HTTP response key.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}
