// File: methods_clone.go
// Role: Cloning and clearing graph instances.
// Determinism:
//   - Clone carries over nextEdgeID so AddEdge on the clone never collides with copied IDs.
// Concurrency:
//   - Read lock for snapshotting; no mutation of the source graph.

package core

// Clone returns a deep copy of the Graph: every node payload, every edge,
// insertion order and the edge ID counter. Mutating the clone never touches g.
//
// Complexity: O(V + E)
func (g *Graph) Clone() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	clone := &Graph{
		nextEdgeID: g.nextEdgeID,
		order:      append([]string(nil), g.order...),
		nodes:      make(map[string]*Node, len(g.nodes)),
		edges:      make([]*Edge, 0, len(g.edges)),
	}
	for id, n := range g.nodes {
		clone.nodes[id] = &Node{ID: n.ID, Data: n.Data.cloneData()}
	}
	for _, e := range g.edges {
		ne := *e
		clone.edges = append(clone.edges, &ne)
	}

	return clone
}

// Replace swaps the whole content of g with a deep copy of src.
// Editors use it to commit a solved snapshot after the solver returns.
func (g *Graph) Replace(src *Graph) {
	c := src.Clone()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextEdgeID = c.nextEdgeID
	g.order = c.order
	g.nodes = c.nodes
	g.edges = c.edges
}

// Clear resets the graph to an empty state and restarts edge IDs at "e1".
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextEdgeID = 0
	g.order = nil
	g.nodes = make(map[string]*Node)
	g.edges = nil
}
