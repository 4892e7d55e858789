// Package graph defines the node/edge data model and serialization format
// for file-tree graphs.
//
// This package defines the canonical wire format for Nodes graph data, used
// for JSON files, API responses, snapshots, and caching.
//
// # Core Types
//
//   - [Node]: a file, folder, or synthetic file-group entity
//   - [Edge]: a directed parent→child structural relation
//   - [Graph]: node-link serialization envelope
//
// # Structure Contract
//
// A repaired graph (see the store package) satisfies three invariants:
//
//  1. Exactly one node has no incoming edge (the root)
//  2. At most one edge exists per ordered (source, target) pair
//  3. Every node is reachable from the root via edges
//
// # Shared Mutation
//
// Node objects are intentionally shared by reference between components.
// The simulation engine owns X/Y/VX/VY, drag collaborators own FX/FY, and
// the integrity store owns the edge set. See the field comments on [Node].
//
// # Serialization
//
// Graphs use a simple node-link JSON format:
//
//	{
//	  "nodes": [{"id": "a1", "name": "docs", "kind": "folder", ...}],
//	  "edges": [{"id": "e1", "source": "a1", "target": "b2"}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadFile("graph.json")         // File → Graph
//	graph.WriteFile(nodes, edges, "graph.json")  // Graph → File
//	data, _ := graph.Marshal(nodes, edges)       // Graph → []byte
//	parsed, _ := graph.Unmarshal(data)           // []byte → Graph
//
// Output is deterministic: nodes sort by path, edges by (source, target).
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
