// Package export renders a positioned graph to Graphviz DOT and SVG.
//
// Unlike a plain digraph dump, the DOT output pins every node to its settled
// simulation position (neato's pos="x,y!" syntax), so the rendered artifact
// reproduces the layout the engine computed instead of letting Graphviz
// re-layout the tree.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ShantaRam81/Nodes/pkg/graph"
)

// pointsPerUnit converts simulation coordinates to Graphviz points.
// Simulation units map 1:1 onto points today; the constant keeps the
// conversion in one place.
const pointsPerUnit = 1.0

// Options configures DOT generation.
type Options struct {
	// Detailed includes path, size and depth in node labels.
	// When false, only the node name is shown.
	Detailed bool

	// FreeLayout omits position pins and lets Graphviz lay the tree out
	// itself. Useful when exporting a graph that was never simulated.
	FreeLayout bool
}

// ToDOT converts a positioned graph to Graphviz DOT. Folders render as
// boxes, file groups as dashed boxes, and files as ellipses tinted by
// category. The output targets the neato engine so position pins hold.
func ToDOT(nodes []*graph.Node, edges []*graph.Edge, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if !opts.FreeLayout {
		buf.WriteString("  layout=neato;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("  edge [color=grey40, arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		if !opts.FreeLayout {
			// Graphviz y grows upward; the simulation's grows downward.
			attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"",
				n.X*pointsPerUnit, -n.Y*pointsPerUnit))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *graph.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}
	parts := []string{n.Path}
	if n.SizeBytes > 0 {
		parts = append(parts, fmt.Sprintf("size: %d", n.SizeBytes))
	}
	parts = append(parts, fmt.Sprintf("depth: %d", n.Depth))
	return n.Name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *graph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.IsFolder():
		attrs = append(attrs, "shape=box", "fillcolor=lightyellow")
	case n.IsFileGroup():
		attrs = append(attrs, "shape=box", "style=\"filled,dashed\"", "fillcolor=lightgrey")
	default:
		attrs = append(attrs, "shape=ellipse", "fillcolor="+categoryFill(n.Category))
	}
	return attrs
}

func categoryFill(c graph.Category) string {
	switch c {
	case graph.CategoryImage:
		return "lightpink"
	case graph.CategoryCode:
		return "lightblue"
	case graph.CategoryVideo:
		return "plum"
	case graph.CategoryAudio:
		return "palegreen"
	case graph.CategoryDocument:
		return "wheat"
	case graph.CategoryArchive:
		return "khaki"
	default:
		return "white"
	}
}
