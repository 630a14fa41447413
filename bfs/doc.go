// Package bfs provides breadth-first search over a production core.Graph,
// returning hop distances, parent links, and visit order.
//
// What
//
//   - Walk producers of a node (Upstream, the default) or its consumers
//     (Downstream) in non-decreasing hop distance from a start node.
//   - Returns a BFSResult containing:
//   - Order: visit sequence
//   - Depth: map from node → distance (edges) from start
//   - Parent: map from node → its predecessor in the BFS tree
//   - Supports functional hooks:
//   - OnEnqueue (before a node is enqueued)
//   - OnVisit   (when visiting; may abort with an error)
//   - Allows filtering of individual steps via WithFilterNeighbor.
//   - Honors MaxDepth limit (d>0) or explicit “no limit” (d==0).
//
// Why
//
//   - Upstream-only propagation: push a consumer's input rates back into
//     its producers and keep going, visiting each node once.
//   - Reachability: "which nodes are strictly downstream of X".
//
// Determinism
//
//	core.Graph keeps edges in insertion order, and BFS enqueues neighbors
//	in that order, so the visit sequence is fully reproducible.
//
// Cycles
//
//	A visited-set guards every enqueue. Cyclic production graphs are legal
//	and the walk still terminates after at most V visits.
//
// Complexity (V = |Nodes|, E = |Edges|)
//
//   - Time:   O(V · E)   (each visit scans the edge list once)
//   - Memory: O(V)       (queue, Depth map, Parent map, visited set)
//
// Usage
//
//	res, err := bfs.BFS(g, "assembler",
//	    bfs.WithOnVisit(func(id string, depth int) error { /* ... */ return nil }),
//	)
//
// Errors
//
//   - ErrGraphNil             if the graph pointer is nil.
//   - ErrStartNodeNotFound    if the start node does not exist.
//   - ErrOptionViolation      if invalid Option (e.g. negative MaxDepth).
//   - Wrapped user-supplied hook errors from OnVisit.
package bfs
