package sim

import (
	"math"

	"github.com/ShantaRam81/Nodes/pkg/graph"
)

// grid is a uniform spatial hash used to approximate pairwise forces in
// near-linear time for large graphs. Nodes bucket by cell; a node interacts
// only with nodes in its own cell and the eight surrounding cells, so forces
// beyond one cell radius are treated as negligible.
type grid struct {
	cell    float64
	buckets map[cellKey][]*graph.Node
}

type cellKey struct{ cx, cy int }

func newGrid(cellSize float64, nodes []*graph.Node) *grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	g := &grid{
		cell:    cellSize,
		buckets: make(map[cellKey][]*graph.Node, len(nodes)/2+1),
	}
	for _, n := range nodes {
		k := g.keyFor(n.X, n.Y)
		g.buckets[k] = append(g.buckets[k], n)
	}
	return g
}

func (g *grid) keyFor(x, y float64) cellKey {
	return cellKey{
		cx: int(math.Floor(x / g.cell)),
		cy: int(math.Floor(y / g.cell)),
	}
}

// neighbors calls fn for every node other than n within one cell radius.
func (g *grid) neighbors(n *graph.Node, fn func(*graph.Node)) {
	center := g.keyFor(n.X, n.Y)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			k := cellKey{cx: center.cx + dx, cy: center.cy + dy}
			for _, other := range g.buckets[k] {
				if other != n {
					fn(other)
				}
			}
		}
	}
}
