// Package snapshot persists named captures of a graph and its settled
// positions so a layout can be restored later without re-scanning or
// re-simulating.
//
// Two backends implement the Store interface: a file-based store for CLI
// usage and a MongoDB store for the server, where snapshots are shared
// across processes.
package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ShantaRam81/Nodes/pkg/graph"
)

// Meta describes a stored snapshot without its node/edge payload.
type Meta struct {
	ID        string    `json:"id" bson:"_id"`
	Label     string    `json:"label" bson:"label"`
	Root      string    `json:"root" bson:"root"`
	Mode      string    `json:"mode" bson:"mode"`
	NodeCount int       `json:"nodeCount" bson:"nodeCount"`
	EdgeCount int       `json:"edgeCount" bson:"edgeCount"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Snapshot is a full capture: metadata plus the positioned graph.
type Snapshot struct {
	Meta  `bson:",inline"`
	Nodes []*graph.Node `json:"nodes" bson:"nodes"`
	Edges []*graph.Edge `json:"edges" bson:"edges"`
}

// New builds a snapshot of the given graph with a fresh ID and timestamp.
// The node and edge payload is deep-copied, so the capture stays stable
// while the simulation keeps mutating the live graph.
func New(label, root, mode string, nodes []*graph.Node, edges []*graph.Edge) *Snapshot {
	return &Snapshot{
		Meta: Meta{
			ID:        uuid.NewString(),
			Label:     label,
			Root:      root,
			Mode:      mode,
			NodeCount: len(nodes),
			EdgeCount: len(edges),
			CreatedAt: time.Now().UTC(),
		},
		Nodes: graph.CloneNodes(nodes),
		Edges: graph.CloneEdges(edges),
	}
}

// Store persists snapshots. Load returns ErrCodeSnapshotNotFound for unknown
// IDs; List returns metadata only, newest first.
type Store interface {
	Save(ctx context.Context, s *Snapshot) error
	Load(ctx context.Context, id string) (*Snapshot, error)
	List(ctx context.Context) ([]Meta, error)
	Delete(ctx context.Context, id string) error
	Close(ctx context.Context) error
}
