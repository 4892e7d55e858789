package graph

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Kind distinguishes the structural role of a node.
type Kind string

// Node kinds.
const (
	KindFolder    Kind = "folder"
	KindFile      Kind = "file"
	KindFileGroup Kind = "file-group" // synthetic aggregate of many sibling files
)

// Category classifies file content for presentation purposes only.
// The layout engine never inspects it.
type Category string

// File categories.
const (
	CategoryImage    Category = "image"
	CategoryCode     Category = "code"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryDocument Category = "document"
	CategoryArchive  Category = "archive"
	CategoryUnknown  Category = "unknown"
)

// =============================================================================
// Node - File/Folder Entity
// =============================================================================

// Node represents a file, folder, or synthetic file-group in the visualized
// tree. Node objects are shared by reference between the integrity store, the
// simulation engine, and external renderers: repair passes must never replace
// node objects, only annotate them.
//
// Field ownership follows a strict contract:
//   - X, Y, VX, VY are written only by the simulation engine and the strict
//     positioner.
//   - FX, FY are written only by drag/placement collaborators. A non-nil pin
//     overrides every force during integration.
//   - Depth, SiblingIndex, SiblingCount, MaxDepth are derived annotations,
//     recomputed on every layout pass and never persisted as authoritative.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Name     string   `json:"name" bson:"name"`
	Path     string   `json:"path" bson:"path"`
	Kind     Kind     `json:"kind" bson:"kind"`
	Category Category `json:"category,omitempty" bson:"category,omitempty"`

	SizeBytes        int64 `json:"sizeBytes,omitempty" bson:"size_bytes,omitempty"`
	SubtreeSizeBytes int64 `json:"subtreeSizeBytes,omitempty" bson:"subtree_size_bytes,omitempty"` // folders only, recursive sum

	// ParentID is a weak back-reference used for repair; the edge set is the
	// authoritative structure. Exactly one node (the root) has an empty ParentID.
	ParentID string `json:"parentId,omitempty" bson:"parent_id,omitempty"`

	// Collapsed marks a folder whose subtree is hidden from the simulation.
	Collapsed bool `json:"collapsed,omitempty" bson:"collapsed,omitempty"`

	// Simulation-owned position and velocity.
	X  float64 `json:"x" bson:"x"`
	Y  float64 `json:"y" bson:"y"`
	VX float64 `json:"-" bson:"-"`
	VY float64 `json:"-" bson:"-"`

	// Pin override. When both are non-nil the integrator forces X=FX, Y=FY
	// and zeroes velocity.
	FX *float64 `json:"fx,omitempty" bson:"fx,omitempty"`
	FY *float64 `json:"fy,omitempty" bson:"fy,omitempty"`

	// Layout annotations, recomputed by layout.Annotate.
	Depth        int `json:"depth" bson:"depth"`
	SiblingIndex int `json:"siblingIndex" bson:"sibling_index"`
	SiblingCount int `json:"siblingCount" bson:"sibling_count"`
	MaxDepth     int `json:"maxDepth" bson:"max_depth"`
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool { return n.Kind == KindFolder }

// IsFileGroup reports whether the node is a synthetic file-group aggregate.
func (n *Node) IsFileGroup() bool { return n.Kind == KindFileGroup }

// IsRoot reports whether the node has no parent reference.
func (n *Node) IsRoot() bool { return n.ParentID == "" }

// Pinned reports whether the node has a pin override position.
func (n *Node) Pinned() bool { return n.FX != nil && n.FY != nil }

// Pin fixes the node at (x, y). The integrator snaps the node there on every
// tick until Unpin is called.
func (n *Node) Pin(x, y float64) {
	n.FX = &x
	n.FY = &y
}

// Unpin releases the pin override, returning the node to the physics forces.
func (n *Node) Unpin() {
	n.FX = nil
	n.FY = nil
}

// Clone returns a deep copy of the node. The pin pointers are re-allocated
// so the copy cannot observe later Pin/Unpin calls on the original.
func (n *Node) Clone() *Node {
	c := *n
	if n.FX != nil {
		fx := *n.FX
		c.FX = &fx
	}
	if n.FY != nil {
		fy := *n.FY
		c.FY = &fy
	}
	return &c
}

// Radius returns the visual half-extent used for collision separation.
func (n *Node) Radius() float64 {
	switch n.Kind {
	case KindFolder:
		return 22
	case KindFileGroup:
		return 18
	default:
		return 14
	}
}

// =============================================================================
// Edge - Directed Parent→Child Relation
// =============================================================================

// Edge represents a directed parent→child structural relation.
// The edge set always forms a spanning tree after an integrity repair pass:
// at most one edge per (source, target) pair, both endpoints present, a
// single node with no incoming edge.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"` // parent node ID
	Target string `json:"target" bson:"target"` // child node ID
}

// Key returns the deduplication key for the ordered (source, target) pair.
func (e *Edge) Key() string { return e.Source + "->" + e.Target }

// Clone returns a copy of the edge.
func (e *Edge) Clone() *Edge {
	c := *e
	return &c
}

// CloneNodes deep-copies a node slice via Node.Clone.
func CloneNodes(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// CloneEdges copies an edge slice.
func CloneEdges(edges []*Edge) []*Edge {
	if edges == nil {
		return nil
	}
	out := make([]*Edge, len(edges))
	for i, e := range edges {
		out[i] = e.Clone()
	}
	return out
}

// =============================================================================
// Graph - Node-Link Serialization Format
// =============================================================================

// Graph is the canonical serialization format for file-tree graphs.
// Used for API responses, snapshots, caching, and file export.
type Graph struct {
	Nodes []*Node `json:"nodes" bson:"nodes"`
	Edges []*Edge `json:"edges" bson:"edges"`
}
