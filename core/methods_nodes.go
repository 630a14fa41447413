// File: methods_nodes.go
// Role: Node lifecycle & queries.
//
// Determinism:
//   - Nodes() and NodeIDs() return nodes in insertion order.
//
// Concurrency:
//   - Node arena and edge list protected by mu.
//   - Returned *Node pointers are live; mutate them only on a Graph you own (a Clone).

package core

import "fmt"

// AddNode inserts a node with the given payload.
//
// Errors:
//   - ErrEmptyNodeID: if id == "".
//   - ErrNilData: if data is nil.
//   - ErrDuplicateNode: if id already exists.
//
// Complexity: O(1) amortized.
func (g *Graph) AddNode(id string, data Data) error {
	if id == "" {
		return ErrEmptyNodeID
	}
	if data == nil {
		return ErrNilData
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, id)
	}
	g.nodes[id] = &Node{ID: id, Data: data}
	g.order = append(g.order, id)

	return nil
}

// RemoveNode deletes the node and every edge incident to it.
//
// Errors:
//   - ErrEmptyNodeID, ErrNodeNotFound.
//
// Complexity: O(V + E).
func (g *Graph) RemoveNode(id string) error {
	if id == "" {
		return ErrEmptyNodeID
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	delete(g.nodes, id)
	for i, nid := range g.order {
		if nid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	// clear the tail so removed edges can be collected
	for i := len(kept); i < len(g.edges); i++ {
		g.edges[i] = nil
	}
	g.edges = kept

	return nil
}

// HasNode reports whether the node ID exists (empty ID ⇒ false).
func (g *Graph) HasNode(id string) bool {
	if id == "" {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[id]

	return ok
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, error) {
	if id == "" {
		return nil, ErrEmptyNodeID
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}

	return n, nil
}

// Nodes returns all nodes in insertion order.
// Complexity: O(V).
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}

	return out
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return append([]string(nil), g.order...)
}

// NodeCount returns the number of nodes. Complexity: O(1).
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes)
}

// Neighbors returns the IDs of every node sharing an edge with id, unique,
// in edge insertion order. Direction is ignored.
func (g *Graph) Neighbors(id string) ([]string, error) {
	if id == "" {
		return nil, ErrEmptyNodeID
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	seen := make(map[string]struct{})
	var out []string
	for _, e := range g.edges {
		var other string
		switch id {
		case e.Source:
			other = e.Target
		case e.Target:
			other = e.Source
		default:
			continue
		}
		if _, dup := seen[other]; dup || other == id {
			continue
		}
		seen[other] = struct{}{}
		out = append(out, other)
	}

	return out, nil
}
