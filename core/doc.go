// Package core provides the production network snapshot handed to the solver:
// an arena of nodes addressed by stable IDs plus an ordered edge list.
//
// A node payload is one of two variants:
//
//   - *RecipeNode   – a scalable production unit with immutable one-machine
//     base rates (BaseInputs/BaseOutputs), current rates (Inputs/Outputs),
//     a Machines scale factor and the HasManualOverride/Locked/Unlocked flags.
//   - *BalancerNode – a passive router with growable ports (capped at
//     MaxBalancerPorts per side), a Material locked by its first connection,
//     and a single Throughput mirrored on both sides.
//
// Dispatch on the variant with a type switch on Node.Data, or with the
// Node.Recipe / Node.Balancer accessors. There is no field probing.
//
// Edges are (Source, SourcePort) → (Target, TargetPort) carrying one Material.
// Edges never carry a rate; rates are read from the endpoints' records.
//
// Why a copy-on-entry snapshot?
//
//   - The editor keeps its live Graph; every solve runs on g.Clone().
//   - A failed or partial pass never touches caller-visible state.
//   - The caller commits the result with Replace once the call returns.
//
// Numeric conventions:
//
//	Round2(x)     – all rates and machine counts are rounded to 2 decimals.
//	Differs(a, b) – "changed" means |a-b| > Epsilon (0.01).
//
// Core Methods:
//
//	AddNode(id, data) error          // O(1)
//	RemoveNode(id) error             // O(V+E), removes incident edges too
//	Node(id) (*Node, error)          // O(1)
//	Nodes() []*Node                  // insertion order
//	AddEdge(Edge) (id string, error) // O(1), IDs "e1","e2",…
//	RemoveEdge(id) error             // O(E)
//	InEdges/OutEdges(id) []Edge      // insertion order
//	Producers(id) []string           // unique sources feeding id
//	Neighbors(id) ([]string, error)  // unique adjacent IDs, both directions
//	Clone() *Graph                   // deep copy
//	Replace(src *Graph)              // commit a solved snapshot
package core
