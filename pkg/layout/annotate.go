package layout

import (
	"slices"

	"github.com/ShantaRam81/Nodes/pkg/graph"
)

// Annotate recomputes the depth and sibling-order annotations for every node
// in place. It is a pure structural pass: positions, velocities, and pins are
// untouched.
//
// The pass makes these guarantees:
//
//   - All annotation fields are reset first, so no value from a previous
//     structure (e.g., a node's depth under its old parent) survives a
//     reparent.
//   - Depth is the BFS hop count from a root (a node with no incoming edge).
//     Multiple roots are tolerated for robustness even though the integrity
//     store normally guarantees exactly one; with zero roots the first node
//     is forced to act as one.
//   - Each node is visited at most once (first-writer-wins), so a transient
//     cycle in the input cannot loop forever.
//   - Nodes unreached by BFS get depth maxDepth+1 rather than a crash.
//   - SiblingIndex is a per-depth running counter in DFS visitation order,
//     with roots and children visited alphabetically by name, so identical
//     input always produces identical ordering. A final sweep covers any
//     node DFS did not reach.
//   - SiblingCount is the maximum SiblingIndex+1 observed at that depth.
//
// Annotate is idempotent: calling it twice on unchanged input yields
// identical annotations.
func Annotate(nodes []*graph.Node, edges []*graph.Edge) {
	if len(nodes) == 0 {
		return
	}

	for _, n := range nodes {
		n.Depth = 0
		n.SiblingIndex = 0
		n.SiblingCount = 0
		n.MaxDepth = 0
	}

	byID := make(map[string]*graph.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	children := make(map[string][]*graph.Node, len(nodes))
	incoming := make(map[string]int, len(nodes))
	for _, e := range edges {
		child, okT := byID[e.Target]
		if _, okS := byID[e.Source]; !okS || !okT {
			continue // dangling edge, the store repairs these
		}
		children[e.Source] = append(children[e.Source], child)
		incoming[e.Target]++
	}

	var roots []*graph.Node
	for _, n := range nodes {
		if incoming[n.ID] == 0 {
			roots = append(roots, n)
		}
	}
	if len(roots) == 0 {
		roots = nodes[:1]
	}

	// BFS: shortest hop count from a root, first-writer-wins.
	visited := make(map[string]bool, len(nodes))
	queue := make([]*graph.Node, 0, len(nodes))
	for _, r := range roots {
		if !visited[r.ID] {
			visited[r.ID] = true
			r.Depth = 0
			queue = append(queue, r)
		}
	}
	maxDepth := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, c := range children[curr.ID] {
			if visited[c.ID] {
				continue
			}
			visited[c.ID] = true
			c.Depth = curr.Depth + 1
			if c.Depth > maxDepth {
				maxDepth = c.Depth
			}
			queue = append(queue, c)
		}
	}

	for _, n := range nodes {
		if !visited[n.ID] {
			n.Depth = maxDepth + 1
		}
	}

	// DFS from name-sorted roots assigns per-depth sibling indices.
	nextIndex := make(map[int]int)
	placed := make(map[string]bool, len(nodes))
	var dfs func(n *graph.Node)
	dfs = func(n *graph.Node) {
		if placed[n.ID] {
			return
		}
		placed[n.ID] = true
		n.SiblingIndex = nextIndex[n.Depth]
		nextIndex[n.Depth]++
		for _, c := range sortedByName(children[n.ID]) {
			dfs(c)
		}
	}
	for _, r := range sortedByName(roots) {
		dfs(r)
	}
	for _, n := range nodes {
		if !placed[n.ID] {
			dfs(n)
		}
	}

	counts := make(map[int]int)
	trueMax := 0
	for _, n := range nodes {
		if n.SiblingIndex+1 > counts[n.Depth] {
			counts[n.Depth] = n.SiblingIndex + 1
		}
		if n.Depth > trueMax {
			trueMax = n.Depth
		}
	}
	for _, n := range nodes {
		n.SiblingCount = counts[n.Depth]
		n.MaxDepth = trueMax
	}
}

// sortedByName returns a copy of nodes ordered alphabetically by name,
// with ID as a tiebreaker for stability.
func sortedByName(nodes []*graph.Node) []*graph.Node {
	out := slices.Clone(nodes)
	slices.SortFunc(out, func(a, b *graph.Node) int {
		if a.Name != b.Name {
			if a.Name < b.Name {
				return -1
			}
			return 1
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}
