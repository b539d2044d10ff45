// Package cache stores fitted spline trees and rendered masks by content
// hash so repeated CLI and API calls skip the expensive stages.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI default)
//   - [BadgerCache]: embedded key-value store for long-running servers
//   - [RedisCache]: shared cache across API replicas
//   - [MongoCache]: shared cache with a TTL index
//   - [NullCache]: caching disabled
//
// Use [Open] to build one from a [Config].
//
// # Keys
//
// A [Keyer] turns a content hash plus the options that affect the result
// into a cache key, so changing a radius or a fit degree never returns a
// stale artifact. [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value and true on a hit, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live per artifact kind.
const (
	TTLTree = 7 * 24 * time.Hour
	TTLMask = 24 * time.Hour
)

// TreeKeyOpts holds the options that change a fitted spline tree.
type TreeKeyOpts struct {
	Mode          string `json:"mode"`
	Root          string `json:"root,omitempty"`
	Degree        int    `json:"degree"`
	ControlPoints int    `json:"control_points"`
}

// MaskKeyOpts holds the options that change a rendered mask.
type MaskKeyOpts struct {
	Shape       [3]int  `json:"shape"`
	Radius      float64 `json:"radius"`
	Mode        string  `json:"mode"`
	Compression string  `json:"compression"`
}

// Keyer generates cache keys.
type Keyer interface {
	// TreeKey keys a spline tree by the hash of its input trace.
	TreeKey(traceHash string, opts TreeKeyOpts) string

	// MaskKey keys an encoded mask by the hash of its vertex sequence.
	MaskKey(verticesHash string, opts MaskKeyOpts) string
}

// DefaultKeyer hashes the input hash together with its options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TreeKey returns "tree:<sha256>".
func (DefaultKeyer) TreeKey(traceHash string, opts TreeKeyOpts) string {
	return hashKey("tree", traceHash, opts)
}

// MaskKey returns "mask:<sha256>".
func (DefaultKeyer) MaskKey(verticesHash string, opts MaskKeyOpts) string {
	return hashKey("mask", verticesHash, opts)
}
