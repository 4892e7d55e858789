package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShantaRam81/Nodes/internal/scan"
	"github.com/ShantaRam81/Nodes/internal/server"
	"github.com/ShantaRam81/Nodes/pkg/graph"
	"github.com/ShantaRam81/Nodes/pkg/sim"
	"github.com/ShantaRam81/Nodes/pkg/store"
)

// serveCommand creates the serve command exposing the graph API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	opts := c.scanOptions()

	cmd := &cobra.Command{
		Use:   "serve [directory]",
		Short: "Expose the graph and engine over HTTP and WebSocket",
		Long: `Expose the graph and engine over HTTP and WebSocket.

The serve command scans a directory, keeps the graph fresh via filesystem
watching, runs the simulation continuously, and serves the REST API plus a
WebSocket event stream for canvas clients. Snapshots persist to the
configured snapshot store.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runServe(cmd, dir, opts, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Server.Addr, "listen address")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", opts.MaxDepth, "recursion limit (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.IncludeHidden, "hidden", opts.IncludeHidden, "include dotfiles and dot-directories")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, dir string, opts scan.Options, addr string) error {
	ctx := cmd.Context()

	st := store.New(c.Logger)

	// One mutex serializes simulation frames with API handlers; the engine
	// itself is single-threaded by contract.
	mu := &sync.Mutex{}
	engine := sim.New(st, c.Config.Sim,
		server.LockedTicker{Inner: sim.NewFrameTicker(), Mu: mu}, c.Logger)

	scanner := scan.NewScanner(opts, c.Logger)
	debounce := time.Duration(c.Config.Scan.DebounceMS) * time.Millisecond
	watcher := scan.NewWatcher(dir, scanner, debounce, c.Logger,
		func(nodes []*graph.Node, edges []*graph.Edge) {
			mu.Lock()
			defer mu.Unlock()
			fixed := st.Refresh(nodes, edges)
			engine.Reheat(-1)
			c.Logger.Info("graph refreshed",
				"nodes", len(nodes), "edges", len(edges), "repairs", fixed)
		})

	snaps, err := c.newSnapshotStore(cmd)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer snaps.Close(ctx)

	srv := server.New(st, engine, snaps, dir, mu, c.Logger)

	watchErr := make(chan error, 1)
	go func() { watchErr <- watcher.Run(ctx) }()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe(ctx, addr) }()

	select {
	case err := <-watchErr:
		if err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		return <-serveErr
	case err := <-serveErr:
		return err
	}
}
