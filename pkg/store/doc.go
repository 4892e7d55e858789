// Package store implements the graph integrity store.
//
// The store owns the canonical node/edge collections for a visualized file
// tree and guarantees they always form a connected, de-duplicated,
// single-rooted structure, even when create/move/delete/rename mutations from
// multiple asynchronous sources race with background sync.
//
// # Repair Pass
//
// Every [Store.Load] and [Store.Refresh] applies repairs in a fixed order:
//
//  1. Drop edges whose source or target is not in the node set
//  2. De-duplicate edges by (source, target), keeping the first occurrence
//  3. Choose the root: the first node (in array order) with no incoming
//     edge, or the first node outright when none qualifies
//  4. Reconnect every node unreachable from the root, preferring a
//     synthesized edge from the node's ParentID, falling back to the root
//  5. Rebuild the id→node index
//
// The pass never raises: it always produces a valid structure, at worst by
// fabricating parentage, and reports the number of repairs for telemetry.
//
// # Aliasing Contract
//
// External collaborators may hold long-lived references to node objects, so
// repair mutates the edge slice but never replaces nodes. Synthesized edges
// carry fresh UUIDs.
//
// # Observation
//
// [Store.Subscribe] registers a listener fired synchronously after every
// Load/Refresh with the repaired nodes and edges.
package store
