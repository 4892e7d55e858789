package store

import (
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ShantaRam81/Nodes/pkg/graph"
)

// Listener receives the current node/edge set after every load or refresh.
type Listener func(nodes []*graph.Node, edges []*graph.Edge)

// Store owns the canonical node and edge collections and keeps them
// structurally consistent. Every Load or Refresh runs the repair pass, so
// downstream consumers (the simulation engine, renderers) always observe a
// connected, de-duplicated, single-rooted tree no matter what asynchronous
// mutation produced the input.
//
// Store never fails: at worst it fabricates parentage. The only caller-visible
// signal is the repair count, intended for logging, never for control flow.
//
// Store is not safe for concurrent use; all mutation is expected to happen on
// the single cooperative layout thread, between simulation ticks.
type Store struct {
	nodes []*graph.Node
	edges []*graph.Edge
	index map[string]*graph.Node

	logger    *log.Logger
	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn Listener
}

// New creates an empty store. A nil logger falls back to log.Default().
func New(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		index:  make(map[string]*graph.Node),
		logger: logger,
	}
}

// Load replaces the graph wholesale, runs the repair pass, and notifies
// subscribers. It returns the number of repairs made (edges dropped,
// de-duplicated, or synthesized).
func (s *Store) Load(nodes []*graph.Node, edges []*graph.Edge) int {
	return s.apply(nodes, edges, "load")
}

// Refresh re-runs the repair pass over arrays the caller may have mutated in
// place (moves, renames, optimistic creates). Repair semantics are identical
// to Load; the distinction exists only to express caller intent.
func (s *Store) Refresh(nodes []*graph.Node, edges []*graph.Edge) int {
	return s.apply(nodes, edges, "refresh")
}

// Node returns the node with the given ID, or nil and false if not present.
func (s *Store) Node(id string) (*graph.Node, bool) {
	n, ok := s.index[id]
	return n, ok
}

// Nodes returns the live node slice. Callers must treat node objects as
// read-mostly per the field-ownership contract on graph.Node.
func (s *Store) Nodes() []*graph.Node { return s.nodes }

// Edges returns the live edge slice. Only the store may add or remove edges.
func (s *Store) Edges() []*graph.Edge { return s.edges }

// Root returns the tree root (the unique node with no incoming edge), or nil
// for an empty graph.
func (s *Store) Root() *graph.Node {
	hasIncoming := make(map[string]bool, len(s.edges))
	for _, e := range s.edges {
		hasIncoming[e.Target] = true
	}
	for _, n := range s.nodes {
		if !hasIncoming[n.ID] {
			return n
		}
	}
	return nil
}

// Subscribe registers a listener fired after every Load or Refresh.
// The returned function removes the listener; calling it twice is harmless.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		s.listeners = slices.DeleteFunc(s.listeners, func(l listener) bool {
			return l.id == id
		})
	}
}

func (s *Store) apply(nodes []*graph.Node, edges []*graph.Edge, op string) int {
	s.nodes = nodes
	s.edges = edges

	fixed := s.repair()

	s.index = make(map[string]*graph.Node, len(s.nodes))
	for _, n := range s.nodes {
		s.index[n.ID] = n
	}

	if fixed > 0 {
		s.logger.Warn("repaired graph structure",
			"op", op, "fixed", fixed,
			"nodes", len(s.nodes), "edges", len(s.edges))
	}

	for _, l := range s.listeners {
		l.fn(s.nodes, s.edges)
	}
	return fixed
}

// repair restores the structural invariants in a fixed order: drop dangling
// edges, de-duplicate by (source, target), choose a root, reconnect every
// node unreachable from it. Each step feeds the next. The node objects are
// never replaced, only the edge slice is rebuilt, so external references to
// nodes stay valid.
func (s *Store) repair() int {
	if len(s.nodes) == 0 {
		s.edges = s.edges[:0]
		return 0
	}

	fixed := 0
	ids := make(map[string]bool, len(s.nodes))
	for _, n := range s.nodes {
		ids[n.ID] = true
	}

	// Step 1+2: drop edges with missing endpoints, dedupe by (source,target).
	seen := make(map[string]bool, len(s.edges))
	kept := s.edges[:0]
	for _, e := range s.edges {
		if !ids[e.Source] || !ids[e.Target] {
			fixed++
			continue
		}
		if seen[e.Key()] {
			fixed++
			continue
		}
		seen[e.Key()] = true
		kept = append(kept, e)
	}
	s.edges = kept

	// Step 3: root selection. Candidates are nodes with no incoming edge,
	// in input array order; with zero candidates the first node is forced
	// (an ambiguous-root condition: its incoming cycle edges are removed so
	// exactly one rootless node remains).
	hasIncoming := make(map[string]bool, len(s.edges))
	for _, e := range s.edges {
		hasIncoming[e.Target] = true
	}
	var root *graph.Node
	for _, n := range s.nodes {
		if !hasIncoming[n.ID] {
			root = n
			break
		}
	}
	if root == nil {
		root = s.nodes[0]
		s.logger.Warn("ambiguous root: no rootless node, forcing first", "id", root.ID)
		pruned := s.edges[:0]
		for _, e := range s.edges {
			if e.Target == root.ID {
				delete(seen, e.Key())
				fixed++
				continue
			}
			pruned = append(pruned, e)
		}
		s.edges = pruned
	}

	// Step 4: reconnect nodes unreachable from the chosen root. Prefer the
	// node's ParentID when that parent exists and the edge is free; fall
	// back to the root. Secondary root candidates are reconnected here too.
	fixed += s.reconnect(root, ids, seen)

	// Parent chains can form detached cycles; a second sweep wires whatever
	// is still unreachable directly to the root.
	fixed += s.reconnectToRoot(root, seen)

	return fixed
}

func (s *Store) reconnect(root *graph.Node, ids map[string]bool, seen map[string]bool) int {
	fixed := 0
	reachable := s.reachableFrom(root)
	for _, n := range s.nodes {
		if reachable[n.ID] {
			continue
		}
		source := root.ID
		if n.ParentID != "" && n.ParentID != n.ID && ids[n.ParentID] {
			source = n.ParentID
		}
		key := source + "->" + n.ID
		if seen[key] {
			// The parent edge already exists; connectivity arrives
			// transitively once the parent itself is reconnected.
			continue
		}
		// Any incoming edge an unreachable node still has comes from another
		// unreachable node (a detached cycle); drop it so the node ends the
		// repair with exactly one parent.
		fixed += s.dropIncoming(n.ID, seen)
		seen[key] = true
		s.edges = append(s.edges, &graph.Edge{
			ID:     uuid.NewString(),
			Source: source,
			Target: n.ID,
		})
		fixed++
	}
	return fixed
}

func (s *Store) reconnectToRoot(root *graph.Node, seen map[string]bool) int {
	fixed := 0
	for {
		reachable := s.reachableFrom(root)
		var orphan *graph.Node
		for _, n := range s.nodes {
			if !reachable[n.ID] {
				orphan = n
				break
			}
		}
		if orphan == nil {
			return fixed
		}
		fixed += s.dropIncoming(orphan.ID, seen)
		seen[root.ID+"->"+orphan.ID] = true
		s.edges = append(s.edges, &graph.Edge{
			ID:     uuid.NewString(),
			Source: root.ID,
			Target: orphan.ID,
		})
		fixed++
	}
}

// dropIncoming removes every incoming edge of target, keeping the seen set
// in sync. Called before synthesizing a replacement parent edge so no node
// ends up with two parents.
func (s *Store) dropIncoming(target string, seen map[string]bool) int {
	dropped := 0
	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.Target == target {
			delete(seen, e.Key())
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	s.edges = kept
	return dropped
}

func (s *Store) reachableFrom(root *graph.Node) map[string]bool {
	children := make(map[string][]string, len(s.nodes))
	for _, e := range s.edges {
		children[e.Source] = append(children[e.Source], e.Target)
	}
	reachable := map[string]bool{root.ID: true}
	queue := []string{root.ID}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, c := range children[curr] {
			if !reachable[c] {
				reachable[c] = true
				queue = append(queue, c)
			}
		}
	}
	return reachable
}
