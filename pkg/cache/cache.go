// Package cache stores rendered artifacts between CLI runs.
//
// Rendering a scene to PNG resamples every image, which is the slow part of
// `memeforge render`. The pipeline keys each artifact by a hash of the scene
// document and the render settings, so re-rendering an unchanged scene is a
// file read.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, with expiry.
//   - [NullCache]: stores nothing; used for --no-cache.
//
// # Keys
//
// A [Keyer] builds keys from content hashes. [DefaultKeyer] hashes the
// options with SHA-256; [ScopedKeyer] prefixes every key, which the CLI
// uses to separate builds of the renderer.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the data stored under key. A miss is not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Entry lifetimes.
const (
	// TTLLayout bounds cached arrangements. Arrangements with a fixed seed
	// are deterministic, so they only expire to bound disk use.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact bounds cached renders.
	TTLArtifact = 7 * 24 * time.Hour
)

// LayoutKeyOpts are the arrangement settings that change its result.
type LayoutKeyOpts struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Seed       uint64  `json:"seed"`
	MaxUpscale float64 `json:"max_upscale,omitempty"`
	Padding    float64 `json:"padding,omitempty"`
}

// ArtifactKeyOpts are the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Background string  `json:"background,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
	EmbedFont  bool    `json:"embed_font,omitempty"`
	HrefBase   string  `json:"href_base,omitempty"`
	Stats      bool    `json:"stats,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey keys an arrangement of the scene with the given hash.
	LayoutKey(sceneHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a render of the scene with the given hash.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(sceneHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", sceneHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}
