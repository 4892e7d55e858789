package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShantaRam81/Nodes/internal/pipeline"
	"github.com/ShantaRam81/Nodes/internal/scan"
)

// renderCommand creates the one-shot render command: scan, settle, and
// export in a single invocation.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output   string
		modeStr  string
		formats  []string
		detailed bool
		refresh  bool
		noCache  bool
	)
	opts := c.scanOptions()

	cmd := &cobra.Command{
		Use:   "render [directory]",
		Short: "Scan, settle, and export a directory in one shot",
		Long: `Scan, settle, and export a directory in one shot.

The render command runs the full scan, layout, and export flow without
intermediate files. Every stage is cached, so re-rendering an unchanged
tree is close to instant.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runRender(cmd, dir, opts, renderFlags{
				output:   output,
				mode:     modeStr,
				formats:  formats,
				detailed: detailed,
				refresh:  refresh,
				noCache:  noCache,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output basename (default: <directory name>)")
	cmd.Flags().StringVarP(&modeStr, "mode", "m", "free", "layout mode: free (default), strict, radial")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{"svg"}, "output formats: svg, png, dot")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include path, size, and depth in node labels")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass every stage cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the stage cache")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", opts.MaxDepth, "recursion limit (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.IncludeHidden, "hidden", opts.IncludeHidden, "include dotfiles and dot-directories")

	return cmd
}

type renderFlags struct {
	output   string
	mode     string
	formats  []string
	detailed bool
	refresh  bool
	noCache  bool
}

func (c *CLI) runRender(cmd *cobra.Command, dir string, scanOpts scan.Options, flags renderFlags) error {
	stageCache := c.newCache(cmd, flags.noCache)
	defer stageCache.Close()

	runner := pipeline.NewRunner(stageCache, nil, c.Logger)
	result, err := runner.Execute(cmd.Context(), pipeline.Options{
		Root:           dir,
		MaxDepth:       scanOpts.MaxDepth,
		GroupFiles:     scanOpts.GroupFiles,
		GroupThreshold: scanOpts.GroupThreshold,
		IncludeHidden:  scanOpts.IncludeHidden,
		Mode:           flags.mode,
		Formats:        flags.formats,
		Detailed:       flags.detailed,
		Refresh:        flags.refresh,
		Sim:            c.Config.Sim,
	})
	if err != nil {
		return err
	}

	base := flags.output
	if base == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}
		base = filepath.Base(abs)
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))

	printSuccess("Render complete")
	for _, format := range flags.formats {
		path := base + "." + format
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	cached := result.CacheInfo.ScanHit && result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, cached)

	return nil
}
