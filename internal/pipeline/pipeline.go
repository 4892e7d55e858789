// Package pipeline runs the complete scan → layout → render flow.
//
// The CLI's one-shot render command and any embedding program use the same
// Runner, so stage caching and defaults live here instead of being duplicated
// per entry point. Each stage can also be run on its own.
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/ShantaRam81/Nodes/pkg/errors"
	"github.com/ShantaRam81/Nodes/pkg/graph"
	"github.com/ShantaRam81/Nodes/pkg/sim"
)

// Defaults applied by ValidateAndSetDefaults.
const (
	// DefaultScanTTL bounds how long a cached directory scan is trusted.
	// Scans are cheap to redo; the cache only smooths rapid re-renders.
	DefaultScanTTL = 30 * time.Second

	// DefaultRenderTTL bounds cached rendered artifacts.
	DefaultRenderTTL = 24 * time.Hour
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatDOT = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatDOT: true,
}

// Options configures a pipeline run.
type Options struct {
	// Scan options.
	Root           string `json:"root"`
	MaxDepth       int    `json:"max_depth,omitempty"`
	GroupFiles     bool   `json:"group_files,omitempty"`
	GroupThreshold int    `json:"group_threshold,omitempty"`
	IncludeHidden  bool   `json:"include_hidden,omitempty"`

	// Layout options.
	Mode   string  `json:"mode,omitempty"`
	Energy float64 `json:"energy,omitempty"` // <= 0 means engine default

	// Render options.
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh bypasses every stage cache.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options, not serialized.
	Sim       sim.Config    `json:"-"`
	ScanTTL   time.Duration `json:"-"`
	RenderTTL time.Duration `json:"-"`

	mode      sim.Mode
	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Root == "" {
		return errors.New(errors.ErrCodeInvalidInput, "scan root is required")
	}
	if o.Mode == "" {
		o.Mode = sim.ModeFree.String()
	}
	mode, err := sim.ParseMode(o.Mode)
	if err != nil {
		return err
	}
	o.mode = mode

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidInput, "unsupported format: %s", f)
		}
	}

	if o.Sim == (sim.Config{}) {
		o.Sim = sim.DefaultConfig()
	}
	if o.Energy <= 0 {
		o.Energy = -1
	}
	if o.ScanTTL <= 0 {
		o.ScanTTL = DefaultScanTTL
	}
	if o.RenderTTL <= 0 {
		o.RenderTTL = DefaultRenderTTL
	}
	o.validated = true
	return nil
}

// applyLogger threads a logger default when the caller supplied none.
func applyLogger(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Nodes and Edges are the repaired, positioned graph.
	Nodes []*graph.Node
	Edges []*graph.Edge

	// GraphHash is the content hash of the scanned graph before layout.
	GraphHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Repairs    int
	Ticks      int
	ScanTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ScanHit   bool
	LayoutHit bool
	RenderHit bool
}
