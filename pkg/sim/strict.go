package sim

import "github.com/ShantaRam81/Nodes/pkg/layout"

// ApplyStrict places every node by the deterministic strict-tree formula:
// x grows with depth, siblings spread vertically centered around the axis of
// their depth column, and velocity is zeroed. Depth/order annotations are
// recomputed first.
//
// With onlyUnpositioned set, nodes that already hold a non-origin position
// are skipped, so newly added nodes slot into the tree without disturbing
// positions the user has dragged elsewhere.
//
// The function is idempotent and order-independent: re-running it with the
// same input and no new nodes leaves already-positioned nodes bit-identical.
func (e *Engine) ApplyStrict(onlyUnpositioned bool) {
	nodes := e.store.Nodes()
	if len(nodes) == 0 {
		return
	}
	layout.Annotate(nodes, e.store.Edges())

	h, v := e.cfg.HorizontalStep, e.cfg.VerticalStep
	for _, n := range nodes {
		if onlyUnpositioned && (n.X != 0 || n.Y != 0) {
			continue
		}
		n.X = float64(n.Depth) * h
		n.Y = float64(n.SiblingIndex)*v - float64(n.SiblingCount-1)*v/2
		n.VX, n.VY = 0, 0
	}
}
