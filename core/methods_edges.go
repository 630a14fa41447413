// File: methods_edges.go
// Role: Edge lifecycle & queries: AddEdge/RemoveEdge/SetEdgeMaterial/Edge/Edges/EdgeCount,
//       directional queries InEdges/OutEdges/Producers. Also: nextEdgeID().
// Determinism:
//   - Every edge query returns edges in insertion order.
//   - nextEdgeID() is monotonic and stable ("e" + decimal).
// Concurrency:
//   - Mutations under mu write lock; queries under mu read lock.

package core

import (
	"fmt"
	"strconv"
)

// edgeIDPrefix is the textual prefix for edge identifiers ("e1", "e2", ...).
const edgeIDPrefix = 'e'

// AddEdge appends a copy of e with a freshly generated ID and returns that ID.
// Any ID already set on e is ignored.
//
// An empty Material is only allowed between two balancers that have no
// material yet; such a pending edge gets its material through
// SetEdgeMaterial once either side is locked.
//
// Errors:
//   - ErrEmptyNodeID: Source or Target is empty.
//   - ErrNodeNotFound: an endpoint is not in the graph.
//   - ErrEmptyMaterial: Material is empty and an endpoint is not an unset balancer.
//
// Material agreement between the endpoints is a caller precondition
// (see recipe.IsValidConnection and balancer.IsValidConnection).
func (g *Graph) AddEdge(e Edge) (string, error) {
	if e.Source == "" || e.Target == "" {
		return "", ErrEmptyNodeID
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	src, ok := g.nodes[e.Source]
	if !ok {
		return "", fmt.Errorf("%w: source %q", ErrNodeNotFound, e.Source)
	}
	dst, ok := g.nodes[e.Target]
	if !ok {
		return "", fmt.Errorf("%w: target %q", ErrNodeNotFound, e.Target)
	}
	if e.Material == "" && !(unsetBalancer(src) && unsetBalancer(dst)) {
		return "", ErrEmptyMaterial
	}
	ne := e
	ne.ID = nextEdgeID(g)
	g.edges = append(g.edges, &ne)

	return ne.ID, nil
}

// RemoveEdge deletes one edge. Removing an absent edge returns ErrEdgeNotFound.
func (g *Graph) RemoveEdge(eid string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, e := range g.edges {
		if e.ID == eid {
			copy(g.edges[i:], g.edges[i+1:])
			g.edges[len(g.edges)-1] = nil
			g.edges = g.edges[:len(g.edges)-1]
			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrEdgeNotFound, eid)
}

// SetEdgeMaterial stamps material on a pending edge. Edges that already carry
// a material keep it unless it equals material.
//
// Errors: ErrEmptyMaterial, ErrEdgeNotFound, ErrMaterialSet.
func (g *Graph) SetEdgeMaterial(eid, material string) error {
	if material == "" {
		return ErrEmptyMaterial
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range g.edges {
		if e.ID != eid {
			continue
		}
		if e.Material != "" && e.Material != material {
			return fmt.Errorf("%w: %q carries %q", ErrMaterialSet, eid, e.Material)
		}
		e.Material = material
		return nil
	}

	return fmt.Errorf("%w: %q", ErrEdgeNotFound, eid)
}

// Edge returns a copy of the edge with the given ID.
func (g *Graph) Edge(eid string) (Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, e := range g.edges {
		if e.ID == eid {
			return *e, nil
		}
	}

	return Edge{}, fmt.Errorf("%w: %q", ErrEdgeNotFound, eid)
}

// Edges returns copies of all edges in insertion order.
// Complexity: O(E).
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.filterEdges(func(*Edge) bool { return true })
}

// EdgeCount returns the total number of edges. Complexity: O(1).
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.edges)
}

// InEdges returns the edges whose Target is id.
func (g *Graph) InEdges(id string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.filterEdges(func(e *Edge) bool { return e.Target == id })
}

// OutEdges returns the edges whose Source is id.
func (g *Graph) OutEdges(id string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.filterEdges(func(e *Edge) bool { return e.Source == id })
}

// Producers returns the unique source IDs of the edges feeding id, in edge order.
func (g *Graph) Producers(id string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range g.InEdges(id) {
		if _, ok := seen[e.Source]; ok {
			continue
		}
		seen[e.Source] = struct{}{}
		out = append(out, e.Source)
	}

	return out
}

// filterEdges copies the edges matching keep. Caller holds mu.
func (g *Graph) filterEdges(keep func(*Edge) bool) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if keep(e) {
			out = append(out, *e)
		}
	}

	return out
}

// nextEdgeID returns "e<N>" for the next counter value. Caller holds mu.
func nextEdgeID(g *Graph) string {
	g.nextEdgeID++
	var buf [24]byte
	b := append(buf[:0], edgeIDPrefix)
	b = strconv.AppendUint(b, g.nextEdgeID, 10)

	return string(b)
}

func unsetBalancer(n *Node) bool {
	b, ok := n.Balancer()
	return ok && !b.HasMaterial()
}
