package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShantaRam81/Nodes/pkg/export"
	"github.com/ShantaRam81/Nodes/pkg/graph"
	"github.com/ShantaRam81/Nodes/pkg/store"
)

// exportCommand creates the export command for static artifacts.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output   string
		format   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "export [layout.json]",
		Short: "Render a positioned graph to DOT or SVG",
		Long: `Render a positioned graph to DOT or SVG.

The export command takes a positioned graph (produced by 'layout') and
renders a static artifact. Node positions are pinned, so the artifact
reproduces the settled layout exactly. Graphs that were never laid out
fall back to Graphviz's own placement.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, args[0], format, output, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg (default), png, dot")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include path, size, and depth in node labels")

	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, input, format, output string, detailed bool) error {
	g, err := graph.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	st := store.New(c.Logger)
	st.Load(g.Nodes, g.Edges)

	opts := export.Options{
		Detailed:   detailed,
		FreeLayout: !hasPositions(st.Nodes()),
	}
	dot := export.ToDOT(st.Nodes(), st.Edges(), opts)

	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		prog := newProgress(c.Logger)
		data, err = export.RenderSVG(cmd.Context(), dot)
		if err != nil {
			return err
		}
		prog.done("Rendered SVG")
	case "png":
		if opts.FreeLayout {
			return fmt.Errorf("png export needs settled positions, run '%s layout' first", appName)
		}
		prog := newProgress(c.Logger)
		data, err = export.RenderPNG(st.Nodes(), st.Edges(), opts)
		if err != nil {
			return err
		}
		prog.done("Rendered PNG")
	default:
		return fmt.Errorf("unsupported format: %s (want svg, png, or dot)", format)
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + "." + format
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Export complete")
	printFile(outputPath)
	printStats(len(st.Nodes()), len(st.Edges()), false)

	return nil
}

// hasPositions reports whether any node carries a non-origin position,
// distinguishing laid-out graphs from raw scans.
func hasPositions(nodes []*graph.Node) bool {
	for _, n := range nodes {
		if n.X != 0 || n.Y != 0 {
			return true
		}
	}
	return false
}
