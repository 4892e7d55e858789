package sim

import (
	"math"

	"github.com/ShantaRam81/Nodes/pkg/graph"
)

// Force pipeline. Order matters and is fixed: repulsion, springs, centering
// or radial, collision, integration. Collision must see post-spring
// positions, and pin snapping inside integrate is the final word over every
// accumulated force.

// applyRepulsion pushes every pair of active nodes apart with an
// inverse-square force scaled by energy. Small graphs use the exact O(n²)
// pass; larger ones use a uniform-grid spatial hash that only considers
// neighbors within one cell radius.
func (e *Engine) applyRepulsion(nodes []*graph.Node) {
	if len(nodes) <= e.cfg.RepulsionExactLimit {
		e.repelExact(nodes)
		return
	}
	e.repelGrid(nodes)
}

func (e *Engine) repelExact(nodes []*graph.Node) {
	k := e.cfg.Repulsion * e.energy
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			dx, dy, d := e.delta(a, b)
			f := k / (d * d)
			fx, fy := dx/d*f, dy/d*f
			a.VX -= fx
			a.VY -= fy
			b.VX += fx
			b.VY += fy
		}
	}
}

func (e *Engine) repelGrid(nodes []*graph.Node) {
	k := e.cfg.Repulsion * e.energy
	g := newGrid(e.cfg.GridCellSize, nodes)
	for _, a := range nodes {
		g.neighbors(a, func(b *graph.Node) {
			dx, dy, d := e.delta(a, b)
			f := k / (d * d)
			// One-directional accumulation: b runs its own neighbor pass,
			// so the net force stays symmetric.
			a.VX -= dx / d * f
			a.VY -= dy / d * f
		})
	}
}

// applySprings pulls each edge's endpoints toward the rest length.
func (e *Engine) applySprings(nodes []*graph.Node, edges []*graph.Edge) {
	byID := make(map[string]*graph.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	for _, ed := range edges {
		s, okS := byID[ed.Source]
		t, okT := byID[ed.Target]
		if !okS || !okT {
			continue
		}
		dx, dy, d := e.delta(s, t)
		f := (d - e.cfg.LinkDistance) * e.cfg.SpringStrength * e.energy
		fx, fy := dx/d*f, dy/d*f
		s.VX += fx
		s.VY += fy
		t.VX -= fx
		t.VY -= fy
	}
}

// applyCentering pulls the whole layout toward the origin. Free mode only:
// the structural modes define their own positional targets and must not
// fight a global center pull.
func (e *Engine) applyCentering(nodes []*graph.Node) {
	k := e.cfg.CenterStrength * e.energy
	for _, n := range nodes {
		n.VX -= n.X * k
		n.VY -= n.Y * k
	}
}

// applyRadial pulls each node toward the orbit for its depth and toward its
// evenly spaced angular slot among depth siblings. The root's target radius
// is zero, so it is pulled to the origin.
func (e *Engine) applyRadial(nodes []*graph.Node) {
	for _, n := range nodes {
		r := math.Hypot(n.X, n.Y)
		if r < e.cfg.Epsilon {
			r = e.cfg.Epsilon
		}
		ux, uy := n.X/r, n.Y/r

		target := float64(n.Depth) * e.cfg.RadiusStep
		k := (target - r) * e.cfg.RadialStrength * e.energy
		n.VX += ux * k
		n.VY += uy * k

		if n.Depth == 0 || n.SiblingCount <= 1 {
			continue
		}
		slot := 2 * math.Pi * float64(n.SiblingIndex) / float64(n.SiblingCount)
		cur := math.Atan2(n.Y, n.X)
		diff := wrapAngle(slot - cur)
		// Tangential pull proportional to arc length toward the slot.
		a := diff * e.cfg.AngularStrength * e.energy
		n.VX += -uy * a * r
		n.VY += ux * a * r
	}
}

// applyCollision separates overlapping node extents by shifting positions
// directly. Pinned nodes never move; their counterpart absorbs the full
// correction.
func (e *Engine) applyCollision(nodes []*graph.Node) {
	if len(nodes) <= e.cfg.RepulsionExactLimit {
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				e.separate(nodes[i], nodes[j])
			}
		}
		return
	}
	g := newGrid(e.cfg.GridCellSize, nodes)
	for _, a := range nodes {
		g.neighbors(a, func(b *graph.Node) {
			if a.ID < b.ID { // visit each pair once
				e.separate(a, b)
			}
		})
	}
}

func (e *Engine) separate(a, b *graph.Node) {
	dx, dy, d := e.delta(a, b)
	minDist := a.Radius() + b.Radius() + e.cfg.CollidePadding
	overlap := minDist - d
	if overlap <= 0 {
		return
	}
	ux, uy := dx/d, dy/d
	switch {
	case a.Pinned() && b.Pinned():
		// Both pinned: nothing to do, pins win.
	case a.Pinned():
		b.X += ux * overlap
		b.Y += uy * overlap
	case b.Pinned():
		a.X -= ux * overlap
		a.Y -= uy * overlap
	default:
		a.X -= ux * overlap / 2
		a.Y -= uy * overlap / 2
		b.X += ux * overlap / 2
		b.Y += uy * overlap / 2
	}
}

// integrate applies damping and the per-tick displacement clamp, then snaps
// pinned nodes to their pin. The pin snap is deliberately last so it
// overrides every force contribution.
func (e *Engine) integrate(nodes []*graph.Node) {
	for _, n := range nodes {
		if n.Pinned() {
			n.X, n.Y = *n.FX, *n.FY
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= e.cfg.Damping
		n.VY *= e.cfg.Damping
		n.X += clamp(n.VX, e.cfg.MaxDisplacement)
		n.Y += clamp(n.VY, e.cfg.MaxDisplacement)
	}
}

// delta returns the displacement vector from a to b and its length, with the
// length floored at epsilon so coincident points never divide by zero.
func (e *Engine) delta(a, b *graph.Node) (dx, dy, d float64) {
	dx = b.X - a.X
	dy = b.Y - a.Y
	d = math.Hypot(dx, dy)
	if d < e.cfg.Epsilon {
		// Deterministic nudge along x for perfectly coincident nodes.
		dx, dy = e.cfg.Epsilon, 0
		d = e.cfg.Epsilon
	}
	return dx, dy, d
}

func clamp(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
