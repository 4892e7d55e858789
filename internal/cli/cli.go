// Package cli implements the nodes command-line interface.
//
// This package provides commands for scanning directory trees into graphs,
// settling force-directed layouts, exporting static artifacts, serving the
// graph API, and watching a tree live in a terminal UI. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - scan: Walk a directory tree into a node-link graph file
//   - layout: Settle the force simulation and write positioned output
//   - export: Render a positioned graph to SVG, PNG, or DOT
//   - render: Scan, settle, and export a directory in one shot
//   - serve: Expose the graph and engine over HTTP and WebSocket
//   - watch: Live terminal view of the simulation over a watched tree
//   - snapshots: List, inspect, and delete stored layout snapshots
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ShantaRam81/Nodes/pkg/buildinfo"
	"github.com/ShantaRam81/Nodes/pkg/cache"
	"github.com/ShantaRam81/Nodes/pkg/snapshot"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "nodes"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and the resolved
// configuration (nodes.toml when present, defaults otherwise).
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
	cfg, err := LoadConfig("")
	if err != nil {
		c.Logger.Warn("config file ignored", "err", err)
		cfg = DefaultCLIConfig()
	}
	c.Config = cfg
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Nodes lays out file trees as living force-directed graphs",
		Long:         `Nodes scans directory trees into node-link graphs and positions them with a force simulation, with strict and radial structural modes, live filesystem watching, and HTTP/WebSocket serving for canvas clients.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.snapshotsCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Backend Factories
// =============================================================================

// newCache builds the configured cache backend. Failures degrade to the null
// cache so commands still run, just without reuse.
func (c *CLI) newCache(cmd *cobra.Command, noCache bool) cache.Cache {
	if noCache || c.Config.Cache.Backend == "none" {
		return cache.NewNullCache()
	}

	if c.Config.Cache.Backend == "redis" {
		rc, err := cache.NewRedisCache(cmd.Context(),
			c.Config.Cache.RedisAddr, c.Config.Cache.RedisPassword, c.Config.Cache.RedisDB)
		if err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
		return rc
	}

	dir := c.Config.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache()
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// newSnapshotStore builds the configured snapshot backend.
func (c *CLI) newSnapshotStore(cmd *cobra.Command) (snapshot.Store, error) {
	if c.Config.Snapshot.Backend == "mongo" {
		return snapshot.NewMongoStore(cmd.Context(),
			c.Config.Snapshot.MongoURI, c.Config.Snapshot.MongoDatabase)
	}
	return snapshot.NewFileStore(c.Config.Snapshot.Dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/nodes/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
