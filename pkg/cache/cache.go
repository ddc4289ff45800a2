// Package cache stores rendered artifacts keyed by graph content.
//
// Rendering a layout is deterministic, so an artifact is identified by the
// hash of the layout it was drawn from plus the render options. The [Keyer]
// builds those keys; a [Cache] backend stores the bytes:
//
//   - [FileCache]: one file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for several editor instances
//   - [NullCache]: disables caching
//
// # Usage
//
//	c, _ := cache.NewFileCache(dir)
//	defer c.Close()
//
//	key := cache.NewDefaultKeyer().ArtifactKey(layoutHash, cache.ArtifactKeyOpts{Format: "svg"})
//	if data, hit, _ := c.Get(ctx, key); hit {
//	    return data
//	}
//	data := render()
//	_ = c.Set(ctx, key, data, cache.TTLArtifact)
//
// Cache errors are never fatal to rendering: callers treat a failed Get as a
// miss and ignore failed Sets.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Default entry lifetimes.
const (
	TTLArtifact = 7 * 24 * time.Hour
	TTLLayout   = 24 * time.Hour
)

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey identifies the routed layout of a graph. graphHash is the
	// hash of the graph's content after all edits were applied.
	LayoutKey(graphHash string) string

	// ArtifactKey identifies one rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format        string  `json:"format"`
	Width         float64 `json:"width,omitempty"`
	Height        float64 `json:"height,omitempty"`
	FlowLabels    bool    `json:"flow_labels"`
	Grid          bool    `json:"grid"`
	SelectedJoint string  `json:"selected_joint,omitempty"`
	Scale         float64 `json:"scale,omitempty"`
}

// DefaultKeyer produces content-addressed keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(graphHash string) string {
	return contentKey("layout", graphHash)
}

// ArtifactKey returns "artifact:<hash>" over the layout hash and options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return contentKey("artifact", layoutHash, opts)
}

// contentKey hashes the JSON encoding of parts under a kind prefix. Every
// part is a string or a struct of scalars, so encoding cannot fail.
func contentKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// =============================================================================
// NullCache
// =============================================================================

// NullCache stores nothing; every Get misses. The CLI uses it for --no-cache
// and for the "none" backend.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
