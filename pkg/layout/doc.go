// Package layout computes derived tree annotations for the layout engine.
//
// The single entry point, [Annotate], assigns each node a depth (BFS hop
// count from the root), a stable per-depth sibling index and sibling count
// (DFS in alphabetical order), and the tree's maximum depth. The simulation
// engine and the strict positioner consume these annotations to place nodes;
// rendering collaborators may also read them (e.g., for collapsing).
//
// The pass is pure with respect to everything except the annotation fields,
// deterministic across runs on identical input, and tolerant of momentarily
// malformed structure (cycles, multiple roots, unreachable nodes) so it can
// run between a mutation and the next integrity repair.
package layout
