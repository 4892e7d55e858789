package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShantaRam81/Nodes/pkg/cache"
	"github.com/ShantaRam81/Nodes/pkg/graph"
	"github.com/ShantaRam81/Nodes/pkg/sim"
	"github.com/ShantaRam81/Nodes/pkg/store"
)

// settleTickBudget bounds the synchronous settle loop. Energy decay
// guarantees settling in well under 400 ticks from full energy; the budget
// only guards against a misconfigured decay rate.
const settleTickBudget = 2000

// layoutCommand creates the layout command for settling positions offline.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		modeStr string
		energy  float64
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Settle the force simulation and write positioned output",
		Long: `Settle the force simulation and write positioned output.

The layout command takes a graph.json file (produced by 'scan'), runs the
force simulation to rest, and writes the same graph with settled positions.
Strict mode skips physics and uses the deterministic depth/sibling formula.

Settled positions are cached by graph content and layout options, so
re-running layout on an unchanged graph restores positions instantly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], modeStr, energy, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVarP(&modeStr, "mode", "m", "free", "layout mode: free (default), strict, radial")
	cmd.Flags().Float64Var(&energy, "energy", -1, "initial energy (default: engine default)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

// runLayout loads the graph, settles it (or restores cached positions), and
// writes the output file.
func (c *CLI) runLayout(cmd *cobra.Command, input, modeStr string, energy float64, output string, noCache bool) error {
	ctx := cmd.Context()

	mode, err := sim.ParseMode(modeStr)
	if err != nil {
		return err
	}

	g, err := graph.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	st := store.New(c.Logger)
	if fixed := st.Load(g.Nodes, g.Edges); fixed > 0 {
		c.Logger.Warn("input graph repaired", "repairs", fixed)
	}

	layoutCache := c.newCache(cmd, noCache)
	defer layoutCache.Close()
	key := c.layoutCacheKey(st, mode)

	cacheHit, err := c.restoreCachedPositions(ctx, layoutCache, key, st)
	if err != nil {
		c.Logger.Debug("layout cache unavailable", "err", err)
	}

	if !cacheHit {
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Settling %s layout...", mode))
		spinner.Start()
		if err := c.settle(ctx, st, mode, energy); err != nil {
			spinner.StopWithError("Layout failed")
			return err
		}
		spinner.Stop()
		if err := c.storeCachedPositions(ctx, layoutCache, key, st); err != nil {
			c.Logger.Debug("layout cache write failed", "err", err)
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}
	if err := graph.WriteFile(st.Nodes(), st.Edges(), outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(st.Nodes()), len(st.Edges()), cacheHit)
	printNewline()
	printNextStep("Export", appName+" export "+outputPath)

	return nil
}

// settle runs the engine synchronously until it reaches rest.
func (c *CLI) settle(ctx context.Context, st *store.Store, mode sim.Mode, energy float64) error {
	engine := sim.New(st, c.Config.Sim, sim.NewManualTicker(), c.Logger)
	engine.SetMode(mode)
	engine.Reheat(energy)

	for i := 0; engine.State() == sim.StateRunning; i++ {
		if err := ctx.Err(); err != nil {
			engine.Stop()
			return err
		}
		if i >= settleTickBudget {
			engine.Stop()
			c.Logger.Warn("settle budget exhausted, stopping early", "ticks", i)
			break
		}
		engine.Step()
	}
	c.Logger.Debug("simulation settled", "ticks", engine.TickCount(), "mode", mode.String())
	return nil
}

// layoutCacheKey keys cached positions by graph content and layout tuning.
func (c *CLI) layoutCacheKey(st *store.Store, mode sim.Mode) string {
	data, _ := graph.Marshal(st.Nodes(), st.Edges())
	keyer := cache.NewDefaultKeyer()
	return keyer.LayoutKey(cache.Hash(data), cache.LayoutKeyOpts{
		Mode:           mode.String(),
		HorizontalStep: c.Config.Sim.HorizontalStep,
		VerticalStep:   c.Config.Sim.VerticalStep,
		RadiusStep:     c.Config.Sim.RadiusStep,
	})
}

// cachedPosition is the per-node payload of a layout cache entry.
type cachedPosition struct {
	X  float64  `json:"x"`
	Y  float64  `json:"y"`
	FX *float64 `json:"fx,omitempty"`
	FY *float64 `json:"fy,omitempty"`
}

func (c *CLI) restoreCachedPositions(ctx context.Context, lc cache.Cache, key string, st *store.Store) (bool, error) {
	data, ok, err := lc.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	var positions map[string]cachedPosition
	if err := json.Unmarshal(data, &positions); err != nil {
		return false, err
	}
	for _, n := range st.Nodes() {
		p, ok := positions[n.ID]
		if !ok {
			return false, nil // stale entry, re-simulate
		}
		n.X, n.Y = p.X, p.Y
		n.FX, n.FY = p.FX, p.FY
	}
	return true, nil
}

func (c *CLI) storeCachedPositions(ctx context.Context, lc cache.Cache, key string, st *store.Store) error {
	positions := make(map[string]cachedPosition, len(st.Nodes()))
	for _, n := range st.Nodes() {
		positions[n.ID] = cachedPosition{X: n.X, Y: n.Y, FX: n.FX, FY: n.FY}
	}
	data, err := json.Marshal(positions)
	if err != nil {
		return err
	}
	ttl := time.Duration(c.Config.Cache.TTLMinutes) * time.Minute
	return lc.Set(ctx, key, data, ttl)
}
