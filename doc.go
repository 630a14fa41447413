// Package prodflow models a factory production network and keeps its rates
// in balance while it is being edited.
//
// A production graph has two kinds of nodes:
//
//	recipe    a machine archetype scaled to a fractional machine count, with
//	          fixed per-machine input and output rates
//	balancer  a passive router locked to one material, with up to seven
//	          ports per side
//
// Edges connect an output port to an input port and carry one material.
// After every edit the solver pushes demand from consumers back to their
// producers until each edge's source output matches its target input.
//
// Packages:
//
//	core/      Graph snapshot, RecipeNode / BalancerNode payloads, rounding helpers
//	recipe/    scale a recipe to a target output rate; recipe port rules
//	balancer/  balancer port state machine as explicit commands
//	bfs/       producer-first breadth-first walk (upstream-only propagation)
//	dfs/       feedback-loop detection and topological order
//	solver/    full and upstream-only rate propagation
//	demand/    demand-seeded backward scaling
//	catalog/   embedded recipe catalog (YAML)
//	editor/    Session: serialized edits with copy-then-swap solves
//	metrics/   Prometheus collectors fed by Session hooks
//	scenario/  YAML scripts replayed onto a Session
//	cmd/prodflow CLI: solve, demand, catalog, version
//
// Quick example:
//
//	Rubber Maker ──Rubber──► Assembly I (Electronics1 96/min)
//
// asks for 24 Rubber/min, so the Rubber Maker runs 1.5 machines and
// consumes Diesel 12 and Coal 3.
//
//	go install github.com/katalvlaran/prodflow/cmd/prodflow@latest
package prodflow
