package graph

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestMarshal(t *testing.T) {
	tests := []struct {
		name      string
		nodes     []*Node
		edges     []*Edge
		wantNodes int
		wantEdges int
		check     func(t *testing.T, g Graph)
	}{
		{
			name:      "Empty",
			wantNodes: 0,
			wantEdges: 0,
		},
		{
			name: "Simple",
			nodes: []*Node{
				{ID: "r", Name: "root", Path: "/", Kind: KindFolder},
				{ID: "a", Name: "a.txt", Path: "/a.txt", Kind: KindFile, ParentID: "r"},
			},
			edges:     []*Edge{{ID: "e1", Source: "r", Target: "a"}},
			wantNodes: 2,
			wantEdges: 1,
		},
		{
			name: "SortedByPath",
			nodes: []*Node{
				{ID: "z", Path: "/z"},
				{ID: "a", Path: "/a"},
				{ID: "m", Path: "/m"},
			},
			wantNodes: 3,
			check: func(t *testing.T, g Graph) {
				if g.Nodes[0].ID != "a" || g.Nodes[1].ID != "m" || g.Nodes[2].ID != "z" {
					t.Errorf("nodes not sorted by path: %s %s %s",
						g.Nodes[0].ID, g.Nodes[1].ID, g.Nodes[2].ID)
				}
			},
		},
		{
			name: "PinSurvivesRoundTrip",
			nodes: []*Node{
				func() *Node {
					n := &Node{ID: "p", Path: "/p", Kind: KindFile}
					n.Pin(42, -7)
					return n
				}(),
			},
			wantNodes: 1,
			check: func(t *testing.T, g Graph) {
				n := g.Nodes[0]
				if !n.Pinned() {
					t.Fatal("pin lost in round trip")
				}
				if *n.FX != 42 || *n.FY != -7 {
					t.Errorf("pin = (%v, %v), want (42, -7)", *n.FX, *n.FY)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.nodes, tt.edges)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}

			result, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}

			if got := len(result.Nodes); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := len(result.Edges); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, result)
			}
		})
	}
}

func TestMarshalDoesNotReorderInput(t *testing.T) {
	nodes := []*Node{{ID: "z", Path: "/z"}, {ID: "a", Path: "/a"}}
	if _, err := Marshal(nodes, nil); err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if nodes[0].ID != "z" {
		t.Error("Marshal reordered the caller's slice")
	}
}

func TestVelocityNotSerialized(t *testing.T) {
	n := &Node{ID: "n", Path: "/n", VX: 3, VY: 4}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if bytes.Contains(data, []byte("VX")) || bytes.Contains(data, []byte("vx")) {
		t.Errorf("velocity leaked into JSON: %s", data)
	}
}

func TestNodeHelpers(t *testing.T) {
	folder := &Node{Kind: KindFolder}
	file := &Node{Kind: KindFile, ParentID: "x"}
	group := &Node{Kind: KindFileGroup}

	if !folder.IsFolder() || file.IsFolder() {
		t.Error("IsFolder misclassified")
	}
	if !group.IsFileGroup() {
		t.Error("IsFileGroup misclassified")
	}
	if !folder.IsRoot() || file.IsRoot() {
		t.Error("IsRoot misclassified")
	}
	if folder.Radius() <= file.Radius() {
		t.Error("folders should have a larger collision radius than files")
	}

	file.Pin(1, 2)
	if !file.Pinned() {
		t.Error("Pinned should be true after Pin")
	}
	file.Unpin()
	if file.Pinned() {
		t.Error("Pinned should be false after Unpin")
	}
}

func TestNodeCloneDetachesPins(t *testing.T) {
	n := &Node{ID: "n", Path: "/n", Kind: KindFile, X: 5, Y: 6}
	n.Pin(1, 2)

	c := n.Clone()
	n.Pin(9, 9)
	n.X = -1

	if c.X != 5 {
		t.Errorf("clone x = %v, want 5", c.X)
	}
	if *c.FX != 1 || *c.FY != 2 {
		t.Errorf("clone pin = (%v, %v), want (1, 2)", *c.FX, *c.FY)
	}

	// Unpinned nodes clone to unpinned nodes.
	n.Unpin()
	if n.Clone().Pinned() {
		t.Error("clone of an unpinned node should be unpinned")
	}
}

func TestEdgeKey(t *testing.T) {
	e1 := &Edge{ID: "x", Source: "a", Target: "b"}
	e2 := &Edge{ID: "y", Source: "a", Target: "b"}
	e3 := &Edge{ID: "z", Source: "b", Target: "a"}

	if e1.Key() != e2.Key() {
		t.Error("same (source,target) should share a key regardless of ID")
	}
	if e1.Key() == e3.Key() {
		t.Error("key must be ordered: a->b != b->a")
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		file string
		want Category
	}{
		{"Image", "photo.JPG", CategoryImage},
		{"Code", "main.go", CategoryCode},
		{"Video", "clip.mp4", CategoryVideo},
		{"Audio", "song.flac", CategoryAudio},
		{"Document", "notes.md", CategoryDocument},
		{"Archive", "backup.tar", CategoryArchive},
		{"Unknown", "data.xyz", CategoryUnknown},
		{"NoExtension", "Makefile", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.file); got != tt.want {
				t.Errorf("Categorize(%q) = %s, want %s", tt.file, got, tt.want)
			}
		})
	}
}
