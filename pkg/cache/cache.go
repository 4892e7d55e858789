// Package cache provides pluggable byte caches and cache-key derivation for
// scan results, computed layouts, and rendered exports.
//
// Backends share the Cache interface: a file-based cache for CLI usage, a
// Redis cache for the serve command, and a null cache for tests or when
// caching is disabled. Keys are derived through a Keyer so every caller
// hashes the same inputs the same way.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented cache with optional per-entry TTL.
//
// Get returns (data, true, nil) on a hit and (nil, false, nil) on a miss;
// errors are reserved for backend failures, never for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ScanKeyOpts are the scan parameters that affect the produced graph.
// Two scans of the same root with equal opts may share a cache entry.
type ScanKeyOpts struct {
	MaxDepth       int  `json:"max_depth"`
	GroupFiles     bool `json:"group_files"`
	GroupThreshold int  `json:"group_threshold"`
	IncludeHidden  bool `json:"include_hidden"`
}

// LayoutKeyOpts are the simulation parameters that affect settled positions.
type LayoutKeyOpts struct {
	Mode           string  `json:"mode"`
	HorizontalStep float64 `json:"h_step"`
	VerticalStep   float64 `json:"v_step"`
	RadiusStep     float64 `json:"radius_step"`
}

// ExportKeyOpts are the rendering parameters for an exported artifact.
type ExportKeyOpts struct {
	Format string `json:"format"`
}

// Keyer derives cache keys for the three cacheable stages of the pipeline.
// Implementations must be deterministic: equal inputs yield equal keys.
type Keyer interface {
	// ScanKey keys a scanned graph by the scanned root path and scan options.
	ScanKey(root string, opts ScanKeyOpts) string

	// LayoutKey keys settled positions by the content hash of the graph they
	// were computed for plus the layout options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ExportKey keys a rendered artifact by the layout it renders.
	ExportKey(layoutHash string, opts ExportKeyOpts) string
}

// DefaultKeyer is the standard key derivation: a stage prefix plus a SHA-256
// hash of the JSON-encoded inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ScanKey generates a key for a scanned graph.
func (k *DefaultKeyer) ScanKey(root string, opts ScanKeyOpts) string {
	return hashKey("scan", root, opts)
}

// LayoutKey generates a key for settled layout positions.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ExportKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ExportKey(layoutHash string, opts ExportKeyOpts) string {
	return hashKey("export", layoutHash, opts)
}
