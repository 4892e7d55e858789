package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ShantaRam81/Nodes/internal/scan"
	"github.com/ShantaRam81/Nodes/pkg/cache"
	"github.com/ShantaRam81/Nodes/pkg/export"
	"github.com/ShantaRam81/Nodes/pkg/graph"
	"github.com/ShantaRam81/Nodes/pkg/sim"
	"github.com/ShantaRam81/Nodes/pkg/store"
)

// settleTickBudget bounds the synchronous settle loop against a
// misconfigured decay rate.
const settleTickBudget = 2000

// Runner executes the scan → layout → render flow with stage caching.
//
// The Runner is stateless apart from the cache and logger; concurrent runs
// with different options are safe.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects the default key derivation.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: applyLogger(logger)}
}

// Execute runs the complete pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	scanStart := time.Now()
	st, err := r.scanStage(ctx, opts, result)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	result.Stats.ScanTime = time.Since(scanStart)
	result.Stats.NodeCount = len(st.Nodes())
	result.Stats.EdgeCount = len(st.Edges())
	r.Logger.Info("scanned tree",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"cached", result.CacheInfo.ScanHit,
		"duration", result.Stats.ScanTime)

	layoutStart := time.Now()
	if err := r.layoutStage(ctx, opts, st, result); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	r.Logger.Info("settled layout",
		"mode", opts.Mode,
		"ticks", result.Stats.Ticks,
		"cached", result.CacheInfo.LayoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	if err := r.renderStage(ctx, opts, st, result); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Stats.RenderTime = time.Since(renderStart)
	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"cached", result.CacheInfo.RenderHit,
		"duration", result.Stats.RenderTime)

	result.Nodes = st.Nodes()
	result.Edges = st.Edges()
	return result, nil
}

// =============================================================================
// Stage 1: Scan
// =============================================================================

func (r *Runner) scanStage(ctx context.Context, opts Options, result *Result) (*store.Store, error) {
	st := store.New(r.Logger)

	key := r.scanKey(opts)
	if !opts.Refresh {
		if g, ok := r.loadCachedScan(ctx, key); ok {
			result.CacheInfo.ScanHit = true
			result.Stats.Repairs = st.Load(g.Nodes, g.Edges)
			result.GraphHash = r.graphHash(st)
			return st, nil
		}
	}

	scanner := scan.NewScanner(scan.Options{
		MaxDepth:       opts.MaxDepth,
		GroupFiles:     opts.GroupFiles,
		GroupThreshold: opts.GroupThreshold,
		IncludeHidden:  opts.IncludeHidden,
	}, r.Logger)
	nodes, edges, err := scanner.Scan(ctx, opts.Root)
	if err != nil {
		return nil, err
	}
	result.Stats.Repairs = st.Load(nodes, edges)
	result.GraphHash = r.graphHash(st)

	if data, err := graph.Marshal(st.Nodes(), st.Edges()); err == nil {
		if err := r.Cache.Set(ctx, key, data, opts.ScanTTL); err != nil {
			r.Logger.Debug("scan cache write failed", "err", err)
		}
	}
	return st, nil
}

func (r *Runner) scanKey(opts Options) string {
	abs, err := filepath.Abs(opts.Root)
	if err != nil {
		abs = opts.Root
	}
	return r.Keyer.ScanKey(abs, cache.ScanKeyOpts{
		MaxDepth:       opts.MaxDepth,
		GroupFiles:     opts.GroupFiles,
		GroupThreshold: opts.GroupThreshold,
		IncludeHidden:  opts.IncludeHidden,
	})
}

func (r *Runner) loadCachedScan(ctx context.Context, key string) (graph.Graph, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil || !ok {
		return graph.Graph{}, false
	}
	g, err := graph.Unmarshal(data)
	if err != nil {
		return graph.Graph{}, false
	}
	return g, true
}

func (r *Runner) graphHash(st *store.Store) string {
	data, err := graph.Marshal(st.Nodes(), st.Edges())
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// =============================================================================
// Stage 2: Layout
// =============================================================================

// position is the per-node payload of a cached layout entry.
type position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (r *Runner) layoutStage(ctx context.Context, opts Options, st *store.Store, result *Result) error {
	key := r.Keyer.LayoutKey(result.GraphHash, cache.LayoutKeyOpts{
		Mode:           opts.Mode,
		HorizontalStep: opts.Sim.HorizontalStep,
		VerticalStep:   opts.Sim.VerticalStep,
		RadiusStep:     opts.Sim.RadiusStep,
	})

	if !opts.Refresh {
		if r.restorePositions(ctx, key, st) {
			result.CacheInfo.LayoutHit = true
			return nil
		}
	}

	engine := sim.New(st, opts.Sim, sim.NewManualTicker(), r.Logger)
	engine.SetMode(opts.mode)
	engine.Reheat(opts.Energy)
	for i := 0; engine.State() == sim.StateRunning; i++ {
		if err := ctx.Err(); err != nil {
			engine.Stop()
			return err
		}
		if i >= settleTickBudget {
			engine.Stop()
			r.Logger.Warn("settle budget exhausted, stopping early", "ticks", i)
			break
		}
		engine.Step()
	}
	result.Stats.Ticks = engine.TickCount()

	positions := make(map[string]position, len(st.Nodes()))
	for _, n := range st.Nodes() {
		positions[n.ID] = position{X: n.X, Y: n.Y}
	}
	if data, err := json.Marshal(positions); err == nil {
		if err := r.Cache.Set(ctx, key, data, opts.RenderTTL); err != nil {
			r.Logger.Debug("layout cache write failed", "err", err)
		}
	}
	return nil
}

func (r *Runner) restorePositions(ctx context.Context, key string, st *store.Store) bool {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	var positions map[string]position
	if err := json.Unmarshal(data, &positions); err != nil {
		return false
	}
	for _, n := range st.Nodes() {
		p, ok := positions[n.ID]
		if !ok {
			return false // stale entry, re-simulate
		}
		n.X, n.Y = p.X, p.Y
	}
	return true
}

// =============================================================================
// Stage 3: Render
// =============================================================================

func (r *Runner) renderStage(ctx context.Context, opts Options, st *store.Store, result *Result) error {
	// The artifact key hashes the positioned graph, so a layout cache miss
	// naturally invalidates rendered outputs too.
	layoutHash := r.graphHash(st)

	allHit := true
	exportOpts := export.Options{Detailed: opts.Detailed}
	for _, format := range opts.Formats {
		key := r.Keyer.ExportKey(layoutHash, cache.ExportKeyOpts{Format: format})
		if !opts.Refresh {
			if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
				result.Artifacts[format] = data
				continue
			}
		}
		allHit = false

		var (
			data []byte
			err  error
		)
		switch format {
		case FormatDOT:
			data = []byte(export.ToDOT(st.Nodes(), st.Edges(), exportOpts))
		case FormatSVG:
			data, err = export.RenderSVG(ctx, export.ToDOT(st.Nodes(), st.Edges(), exportOpts))
		case FormatPNG:
			data, err = export.RenderPNG(st.Nodes(), st.Edges(), exportOpts)
		}
		if err != nil {
			return err
		}
		result.Artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, opts.RenderTTL); err != nil {
			r.Logger.Debug("render cache write failed", "err", err)
		}
	}
	result.CacheInfo.RenderHit = allHit && len(opts.Formats) > 0
	return nil
}
