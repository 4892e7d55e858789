package layout

import (
	"testing"

	"github.com/ShantaRam81/Nodes/pkg/graph"
)

func node(id, name, parent string) *graph.Node {
	kind := graph.KindFile
	if parent == "" {
		kind = graph.KindFolder
	}
	return &graph.Node{ID: id, Name: name, Path: "/" + name, Kind: kind, ParentID: parent}
}

func edge(src, tgt string) *graph.Edge {
	return &graph.Edge{ID: src + ":" + tgt, Source: src, Target: tgt}
}

func TestAnnotateDepths(t *testing.T) {
	// root → {A, B}, A → C
	nodes := []*graph.Node{
		node("root", "root", ""),
		node("A", "alpha", "root"),
		node("B", "beta", "root"),
		node("C", "gamma", "A"),
	}
	edges := []*graph.Edge{
		edge("root", "A"),
		edge("root", "B"),
		edge("A", "C"),
	}

	Annotate(nodes, edges)

	wantDepth := map[string]int{"root": 0, "A": 1, "B": 1, "C": 2}
	for _, n := range nodes {
		if n.Depth != wantDepth[n.ID] {
			t.Errorf("depth(%s) = %d, want %d", n.ID, n.Depth, wantDepth[n.ID])
		}
		if n.MaxDepth != 2 {
			t.Errorf("maxDepth(%s) = %d, want 2", n.ID, n.MaxDepth)
		}
	}

	// A ("alpha") sorts before B ("beta") at depth 1.
	byID := indexByID(nodes)
	if byID["A"].SiblingIndex != 0 || byID["B"].SiblingIndex != 1 {
		t.Errorf("sibling order: A=%d B=%d, want 0 1",
			byID["A"].SiblingIndex, byID["B"].SiblingIndex)
	}
	if byID["A"].SiblingCount != 2 || byID["B"].SiblingCount != 2 {
		t.Errorf("siblingCount at depth 1 = %d/%d, want 2/2",
			byID["A"].SiblingCount, byID["B"].SiblingCount)
	}
	if byID["C"].SiblingCount != 1 {
		t.Errorf("siblingCount(C) = %d, want 1", byID["C"].SiblingCount)
	}
}

func TestAnnotateDepthMonotonicity(t *testing.T) {
	nodes := []*graph.Node{
		node("r", "r", ""),
		node("a", "a", "r"), node("b", "b", "r"),
		node("c", "c", "a"), node("d", "d", "a"), node("e", "e", "b"),
		node("f", "f", "e"),
	}
	edges := []*graph.Edge{
		edge("r", "a"), edge("r", "b"),
		edge("a", "c"), edge("a", "d"), edge("b", "e"),
		edge("e", "f"),
	}

	Annotate(nodes, edges)

	byID := indexByID(nodes)
	for _, e := range edges {
		src, tgt := byID[e.Source], byID[e.Target]
		if tgt.Depth != src.Depth+1 {
			t.Errorf("edge %s→%s: depth %d→%d, want +1",
				e.Source, e.Target, src.Depth, tgt.Depth)
		}
	}
}

func TestAnnotateIdempotent(t *testing.T) {
	nodes := []*graph.Node{
		node("r", "r", ""),
		node("a", "zeta", "r"), node("b", "alpha", "r"), node("c", "mid", "a"),
	}
	edges := []*graph.Edge{edge("r", "a"), edge("r", "b"), edge("a", "c")}

	Annotate(nodes, edges)
	first := snapshot(nodes)
	Annotate(nodes, edges)
	second := snapshot(nodes)

	for id, a := range first {
		if b := second[id]; a != b {
			t.Errorf("annotations for %s changed across runs: %+v vs %+v", id, a, b)
		}
	}
}

func TestAnnotateStaleDepthReset(t *testing.T) {
	// Move c from under a (depth 2) to directly under r (depth 1).
	nodes := []*graph.Node{
		node("r", "r", ""),
		node("a", "a", "r"),
		node("c", "c", "a"),
	}
	edges := []*graph.Edge{edge("r", "a"), edge("a", "c")}
	Annotate(nodes, edges)

	if nodes[2].Depth != 2 {
		t.Fatalf("setup: depth(c) = %d, want 2", nodes[2].Depth)
	}

	nodes[2].ParentID = "r"
	edges = []*graph.Edge{edge("r", "a"), edge("r", "c")}
	Annotate(nodes, edges)

	if nodes[2].Depth != 1 {
		t.Errorf("after reparent, depth(c) = %d, want 1", nodes[2].Depth)
	}
}

func TestAnnotateCycleTerminates(t *testing.T) {
	// a→b→c→a plus a detached root. BFS must not loop.
	nodes := []*graph.Node{
		node("r", "r", ""),
		node("a", "a", ""), node("b", "b", "a"), node("c", "c", "b"),
	}
	edges := []*graph.Edge{
		edge("a", "b"), edge("b", "c"), edge("c", "a"),
	}

	Annotate(nodes, edges)

	// Every node got a deterministic depth and a sibling index.
	seen := map[int]bool{}
	for _, n := range nodes {
		if n.Depth < 0 {
			t.Errorf("depth(%s) = %d", n.ID, n.Depth)
		}
		seen[n.Depth] = true
	}
	if len(seen) == 0 {
		t.Fatal("no depths assigned")
	}
}

func TestAnnotateNoRoots(t *testing.T) {
	// Pure cycle: zero in-degree-0 candidates. First node is forced root.
	nodes := []*graph.Node{
		node("a", "a", ""), node("b", "b", "a"),
	}
	edges := []*graph.Edge{edge("a", "b"), edge("b", "a")}

	Annotate(nodes, edges)

	if nodes[0].Depth != 0 {
		t.Errorf("forced root depth = %d, want 0", nodes[0].Depth)
	}
	if nodes[1].Depth != 1 {
		t.Errorf("depth(b) = %d, want 1", nodes[1].Depth)
	}
}

func TestAnnotateUnreachableFallback(t *testing.T) {
	// d has an incoming edge from a node that does not exist, so it is
	// neither a root nor reachable. It must land at maxDepth+1.
	nodes := []*graph.Node{
		node("r", "r", ""),
		node("a", "a", "r"),
		node("d", "d", "ghost"),
	}
	edges := []*graph.Edge{edge("r", "a"), edge("ghost", "d")}

	Annotate(nodes, edges)

	byID := indexByID(nodes)
	if byID["d"].Depth != byID["a"].Depth+1 {
		t.Errorf("unreachable depth = %d, want maxDepth+1 = %d",
			byID["d"].Depth, byID["a"].Depth+1)
	}
	// The final sweep must still give it a sibling slot.
	if byID["d"].SiblingCount == 0 {
		t.Error("unreachable node missing sibling annotations")
	}
}

func TestAnnotateEmpty(t *testing.T) {
	Annotate(nil, nil) // must not panic
}

func indexByID(nodes []*graph.Node) map[string]*graph.Node {
	m := make(map[string]*graph.Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m
}

type ann struct {
	depth, idx, count, max int
}

func snapshot(nodes []*graph.Node) map[string]ann {
	m := make(map[string]ann, len(nodes))
	for _, n := range nodes {
		m[n.ID] = ann{n.Depth, n.SiblingIndex, n.SiblingCount, n.MaxDepth}
	}
	return m
}
