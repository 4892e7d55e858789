// Package pkg provides the core libraries for Nodes file-tree visualization.
//
// # Overview
//
// Nodes turns directory trees into living node-link graphs positioned by a
// force simulation. The pkg directory is organized into these areas:
//
//  1. [graph] - Node/edge types and the node-link serialization format
//  2. [store] - The integrity store: structural repair and change events
//  3. [layout] - Depth and sibling-order annotation passes
//  4. [sim] - The force simulation engine and its layout modes
//  5. [export] - DOT, SVG, and PNG artifact rendering
//  6. [cache] - Stage caches (file, Redis) and cache-key derivation
//  7. [snapshot] - Persisted layout snapshots (file, MongoDB)
//
// # Architecture
//
// The typical data flow:
//
//	Directory Tree
//	         ↓ scan
//	Node-Link Graph → integrity repair → annotation
//	         ↓ simulate (free / strict / radial)
//	Settled Positions
//	         ↓ export
//	SVG / PNG / DOT artifacts, HTTP + WebSocket serving
//
// The scan, serve, and pipeline orchestration layers live under internal/.
package pkg
