package store

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ShantaRam81/Nodes/pkg/graph"
	"github.com/ShantaRam81/Nodes/pkg/layout"
)

func quiet() *log.Logger { return log.New(io.Discard) }

func node(id, parent string) *graph.Node {
	return &graph.Node{ID: id, Name: id, Path: "/" + id, Kind: graph.KindFolder, ParentID: parent}
}

func edge(id, src, tgt string) *graph.Edge {
	return &graph.Edge{ID: id, Source: src, Target: tgt}
}

// assertSingleRooted checks the post-repair invariants: exactly one node
// without an incoming edge, at most one parent everywhere else, every node
// reachable from the root, and no duplicate (source,target) pairs.
func assertSingleRooted(t *testing.T, s *Store) {
	t.Helper()

	nodes, edges := s.Nodes(), s.Edges()
	if len(nodes) == 0 {
		return
	}

	keys := make(map[string]bool)
	incoming := make(map[string]int)
	children := make(map[string][]string)
	for _, e := range edges {
		if keys[e.Key()] {
			t.Errorf("duplicate edge %s", e.Key())
		}
		keys[e.Key()] = true
		incoming[e.Target]++
		children[e.Source] = append(children[e.Source], e.Target)
	}

	var roots []*graph.Node
	for _, n := range nodes {
		if incoming[n.ID] == 0 {
			roots = append(roots, n)
		}
		if incoming[n.ID] > 1 {
			t.Errorf("node %s has %d incoming edges after repair (want at most 1)", n.ID, incoming[n.ID])
		}
	}
	if len(roots) != 1 {
		t.Fatalf("got %d rootless nodes, want exactly 1", len(roots))
	}

	reached := map[string]bool{roots[0].ID: true}
	queue := []string{roots[0].ID}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, c := range children[curr] {
			if !reached[c] {
				reached[c] = true
				queue = append(queue, c)
			}
		}
	}
	for _, n := range nodes {
		if !reached[n.ID] {
			t.Errorf("node %s unreachable from root %s", n.ID, roots[0].ID)
		}
	}
}

func TestLoadRepairsMalformedInputs(t *testing.T) {
	tests := []struct {
		name      string
		nodes     []*graph.Node
		edges     []*graph.Edge
		wantFixed int // -1 means "at least one"
	}{
		{
			name:      "AlreadyValid",
			nodes:     []*graph.Node{node("r", ""), node("a", "r")},
			edges:     []*graph.Edge{edge("e1", "r", "a")},
			wantFixed: 0,
		},
		{
			name:  "DuplicateEdge",
			nodes: []*graph.Node{node("r", ""), node("a", "r")},
			edges: []*graph.Edge{
				edge("e1", "r", "a"),
				edge("e2", "r", "a"), // different id, same (source,target)
			},
			wantFixed: 1,
		},
		{
			name:  "DanglingEdge",
			nodes: []*graph.Node{node("r", ""), node("a", "r")},
			edges: []*graph.Edge{
				edge("e1", "r", "a"),
				edge("e2", "r", "ghost"),
				edge("e3", "ghost", "a"),
			},
			wantFixed: 2,
		},
		{
			name: "MissingEdgeToChild",
			nodes: []*graph.Node{
				node("r", ""), node("a", "r"), node("d", "r"),
			},
			edges:     []*graph.Edge{edge("e1", "r", "a")},
			wantFixed: 1,
		},
		{
			name: "MultipleRoots",
			nodes: []*graph.Node{
				node("r", ""), node("a", "r"),
				node("x", ""), node("y", "x"),
			},
			edges: []*graph.Edge{
				edge("e1", "r", "a"),
				edge("e2", "x", "y"),
			},
			wantFixed: -1,
		},
		{
			name: "PureCycle",
			nodes: []*graph.Node{
				node("a", "b"), node("b", "a"),
			},
			edges: []*graph.Edge{
				edge("e1", "a", "b"),
				edge("e2", "b", "a"),
			},
			wantFixed: -1,
		},
		{
			name: "DetachedCycleComponent",
			nodes: []*graph.Node{
				node("r", ""),
				node("a", "b"), node("b", "a"),
			},
			edges: []*graph.Edge{
				edge("e1", "a", "b"),
				edge("e2", "b", "a"),
			},
			wantFixed: -1,
		},
		{
			name:      "Empty",
			wantFixed: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(quiet())
			fixed := s.Load(tt.nodes, tt.edges)

			if tt.wantFixed == -1 {
				if fixed < 1 {
					t.Errorf("fixed = %d, want >= 1", fixed)
				}
			} else if fixed != tt.wantFixed {
				t.Errorf("fixed = %d, want %d", fixed, tt.wantFixed)
			}

			assertSingleRooted(t, s)

			// A second pass over the repaired structure is a no-op.
			if again := s.Refresh(s.Nodes(), s.Edges()); again != 0 {
				t.Errorf("repair not idempotent: second pass fixed %d", again)
			}
			assertSingleRooted(t, s)
		})
	}
}

func TestLoadSynthesizesParentEdge(t *testing.T) {
	// Node d has parentId=r but no edge; repair must create r→d.
	nodes := []*graph.Node{node("r", ""), node("a", "r"), node("d", "r")}
	edges := []*graph.Edge{edge("e1", "r", "a")}

	s := New(quiet())
	fixed := s.Load(nodes, edges)

	if fixed < 1 {
		t.Errorf("fixed = %d, want >= 1", fixed)
	}
	found := false
	for _, e := range s.Edges() {
		if e.Source == "r" && e.Target == "d" {
			found = true
			if e.ID == "" {
				t.Error("synthesized edge has empty ID")
			}
		}
	}
	if !found {
		t.Error("expected synthesized edge r→d")
	}
}

func TestLoadReattachesSubtreeWithoutFlattening(t *testing.T) {
	// Subtree s→{c1,c2} has intact internal edges but no edge from r.
	// Repair must add exactly one edge (r→s) and keep c1/c2 under s.
	nodes := []*graph.Node{
		node("r", ""),
		node("s", "r"),
		node("c1", "s"), node("c2", "s"),
	}
	edges := []*graph.Edge{
		edge("e1", "s", "c1"),
		edge("e2", "s", "c2"),
	}

	st := New(quiet())
	fixed := st.Load(nodes, edges)

	if fixed != 1 {
		t.Errorf("fixed = %d, want 1 (single reattachment edge)", fixed)
	}
	for _, e := range st.Edges() {
		if e.Target == "c1" && e.Source != "s" {
			t.Errorf("c1 reparented to %s, want s", e.Source)
		}
		if e.Target == "c2" && e.Source != "s" {
			t.Errorf("c2 reparented to %s, want s", e.Source)
		}
	}
	assertSingleRooted(t, st)
}

func TestLoadDetachedCycleKeepsSingleParents(t *testing.T) {
	// A detached a↔b cycle is reattached by pruning one in-cycle edge and
	// wiring the component to the root, never by adding a second parent.
	nodes := []*graph.Node{
		node("r", ""),
		node("a", "b"), node("b", "a"),
	}
	edges := []*graph.Edge{
		edge("e1", "a", "b"),
		edge("e2", "b", "a"),
	}

	s := New(quiet())
	s.Load(nodes, edges)
	assertSingleRooted(t, s)

	incoming := make(map[string]int)
	for _, e := range s.Edges() {
		incoming[e.Target]++
	}
	for _, n := range s.Nodes() {
		if incoming[n.ID] > 1 {
			t.Errorf("node %s has %d incoming edges after repair (want at most 1)", n.ID, incoming[n.ID])
		}
	}

	// With single parents everywhere, every surviving edge steps down
	// exactly one depth level.
	layout.Annotate(s.Nodes(), s.Edges())
	for _, e := range s.Edges() {
		src, _ := s.Node(e.Source)
		tgt, _ := s.Node(e.Target)
		if tgt.Depth != src.Depth+1 {
			t.Errorf("edge %s->%s: depth(target)=%d, depth(source)=%d",
				e.Source, e.Target, tgt.Depth, src.Depth)
		}
	}
}

func TestLoadKeepsNodeReferences(t *testing.T) {
	// External collaborators hold node pointers across repairs.
	a := node("a", "r")
	r := node("r", "")
	s := New(quiet())
	s.Load([]*graph.Node{r, a}, nil)

	got, ok := s.Node("a")
	if !ok {
		t.Fatal("node a missing from index")
	}
	if got != a {
		t.Error("repair replaced the node object instead of reusing it")
	}
}

func TestRoot(t *testing.T) {
	s := New(quiet())
	if s.Root() != nil {
		t.Error("empty store should have nil root")
	}

	r := node("r", "")
	s.Load([]*graph.Node{r, node("a", "r")}, []*graph.Edge{edge("e1", "r", "a")})
	if got := s.Root(); got != r {
		t.Errorf("Root() = %v, want r", got)
	}
}

func TestSubscribe(t *testing.T) {
	s := New(quiet())

	calls := 0
	var lastNodes int
	unsub := s.Subscribe(func(nodes []*graph.Node, edges []*graph.Edge) {
		calls++
		lastNodes = len(nodes)
	})

	s.Load([]*graph.Node{node("r", "")}, nil)
	if calls != 1 || lastNodes != 1 {
		t.Errorf("after Load: calls=%d lastNodes=%d, want 1/1", calls, lastNodes)
	}

	s.Refresh(s.Nodes(), s.Edges())
	if calls != 2 {
		t.Errorf("after Refresh: calls=%d, want 2", calls)
	}

	unsub()
	unsub() // second call is harmless
	s.Refresh(s.Nodes(), s.Edges())
	if calls != 2 {
		t.Errorf("listener fired after unsubscribe: calls=%d", calls)
	}
}

func TestRefreshAfterMove(t *testing.T) {
	// Simulates a move operation: collaborator rewires parentId and the
	// edge array in place, then calls Refresh.
	r := node("r", "")
	a := node("a", "r")
	b := node("b", "r")
	c := node("c", "a")
	nodes := []*graph.Node{r, a, b, c}
	edges := []*graph.Edge{
		edge("e1", "r", "a"), edge("e2", "r", "b"), edge("e3", "a", "c"),
	}

	s := New(quiet())
	if fixed := s.Load(nodes, edges); fixed != 0 {
		t.Fatalf("setup fixed = %d, want 0", fixed)
	}

	// Move c under b, but "forget" to rewrite the edge (racy collaborator).
	c.ParentID = "b"
	edges = []*graph.Edge{edge("e1", "r", "a"), edge("e2", "r", "b")}

	fixed := s.Refresh(nodes, edges)
	if fixed < 1 {
		t.Errorf("fixed = %d, want >= 1", fixed)
	}
	for _, e := range s.Edges() {
		if e.Target == "c" && e.Source != "b" {
			t.Errorf("c attached to %s, want b (its parentId)", e.Source)
		}
	}
	assertSingleRooted(t, s)
}
