// Package solver propagates production rates through a core.Graph until every
// edge's source output agrees with its target input.
//
// What
//
//   - ModeFull: detect manual overrides, then repeat demand passes
//     (accumulate target inputs per source → overwrite source outputs →
//     rescale recipes) until nothing changes or IterationFactor × V passes ran.
//   - ModeUpstreamOnly: breadth-first walk over producers of the changed
//     node, pushing its input rates back up the chain. Downstream nodes are
//     never touched.
//   - ModeAuto: upstream-only for an unlocked recipe edit, full otherwise.
//
// Numerics
//
//	Every written value is rounded to two decimals and "changed" means a
//	difference larger than Epsilon (0.01 by default). Values that move by
//	Epsilon or less are left alone, which makes Solve idempotent.
//
// Multi-output recipes
//
//	A recipe runs at the largest scale any of its demanded outputs asks
//	for and over-produces the rest. Outputs without downstream demand do not
//	pin the scale.
//
// Fan-in
//
//	When k edges deliver the same material into one target input, each
//	source is asked for input/k.
//
// Non-convergence
//
//	Hitting the pass bound is not an error. The best-effort graph comes
//	back with Converged == false and Loops naming the feedback loops
//	(dfs.DetectCycles) that usually cause it.
//
// Concurrency
//
//	Solve works on a private clone and never mutates its argument, so it
//	is safe to call concurrently on the same graph. Callers serialize
//	commits of the returned Result.Graph themselves.
//
// Usage
//
//	res, err := solver.Solve(g,
//	    solver.WithChangedNode("rubber-1"),
//	    solver.WithLogger(log),
//	)
//	if err != nil { ... }
//	g.Replace(res.Graph)
//
// Errors
//
//   - ErrGraphNil              if the graph pointer is nil.
//   - ErrOptionViolation       for invalid options.
//   - ErrChangedNodeRequired   for ModeUpstreamOnly without a changed node.
//   - core.ErrNodeNotFound     (wrapped) if the changed node is absent.
package solver
