// Package dfs finds feedback loops and producer-first orderings in a
// production graph with depth-first search.
//
// What:
//
//   - DetectCycles: reports every loop closed by a back edge, each one in a
//     canonical rotation so the same loop is never listed twice.
//   - TopologicalSort: orders nodes so that every producer precedes its
//     consumers; ErrCycleDetected when a loop makes that impossible.
//
// Why:
//
//   - Full-mode solving settles in a bounded number of passes on acyclic
//     graphs. A loop (a recipe feeding its own input through other nodes)
//     may keep the solver moving until it hits its bound, so callers surface
//     the loops next to a non-converged result.
//   - Reports list producers before consumers.
//
// Edges are followed Source → Target. Self-loops count as loops of length one.
//
// Complexity:
//
//   - DetectCycles:    Time O(V+E + C·L), Memory O(V+L_max)
//   - TopologicalSort: Time O(V+E), Memory O(V)
//
// Errors:
//
//   - ErrGraphNil        graph pointer is nil (TopologicalSort)
//   - ErrCycleDetected   TopologicalSort met a back edge
//   - context.Canceled   TopologicalSort canceled via WithCancelContext
package dfs
