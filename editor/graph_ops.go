// File: graph_ops.go
// Role: Structural edits: place nodes, connect ports, delete nodes and edges.
// Determinism:
//   - Edge materials are resolved from the ports, never taken from the caller.
//   - A link between two unset balancers is pending (no material) until a
//     lock on either side spreads over it.

package editor

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/prodflow/balancer"
	"github.com/katalvlaran/prodflow/core"
	"github.com/katalvlaran/prodflow/recipe"
	"github.com/katalvlaran/prodflow/solver"
)

// Port addresses one side slot of a node: an output port on the source side
// of an edge or an input port on the target side.
type Port struct {
	Node  string
	Index int
}

// AddRecipe places a one-machine node of the catalog recipe machine and
// returns its ID.
func (s *Session) AddRecipe(machine string) (id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.done(OpAddRecipe, &err)

	r, err := s.cat.NewNode(machine)
	if err != nil {
		return "", err
	}
	return s.place(OpAddRecipe, r)
}

// AddRecipeNode places a caller-built recipe node (custom recipes outside
// the catalog) and returns its ID.
func (s *Session) AddRecipeNode(r *core.RecipeNode) (id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.done(OpAddRecipe, &err)

	if r == nil {
		return "", core.ErrNilData
	}
	return s.place(OpAddRecipe, r.Clone())
}

// AddBalancer places an empty balancer (one port per side, no material).
func (s *Session) AddBalancer() (id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.done(OpAddBalancer, &err)

	return s.place(OpAddBalancer, core.NewBalancerNode())
}

// place adds data under a fresh ID and solves. Caller holds mu.
func (s *Session) place(op Op, data core.Data) (string, error) {
	id := s.opts.NewID(data.Kind())
	w := s.g.Clone()
	if err := w.AddNode(id, data); err != nil {
		return "", err
	}
	if _, err := s.commit(op, w, solver.WithMode(solver.ModeFull)); err != nil {
		return "", err
	}
	return id, nil
}

// Connect adds an edge from output port from.Index of from.Node to input port
// to.Index of to.Node and solves in full mode.
//
// Validity:
//   - recipe → recipe: both ports exist and carry the same material.
//   - any balancer end: balancer.Plan accepts the candidate; its commands
//     (material lock, port mark, port growth) are applied.
//
// The edge material is the source recipe's output at from.Index, or the
// source balancer's locked material. Two unset balancers link with no
// material; the first lock on either spreads across such links.
// Rejections wrap ErrInvalidConnection.
func (s *Session) Connect(from, to Port) (edgeID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.done(OpConnect, &err)

	w := s.g.Clone()
	src, err := w.Node(from.Node)
	if err != nil {
		return "", err
	}
	dst, err := w.Node(to.Node)
	if err != nil {
		return "", err
	}

	material, cmds, err := plan(src, from.Index, dst, to.Index)
	if err != nil {
		return "", fmt.Errorf("%w: %s[%d] → %s[%d]: %w", ErrInvalidConnection, from.Node, from.Index, to.Node, to.Index, err)
	}
	ends := []*core.Node{src}
	if dst.ID != src.ID {
		ends = append(ends, dst)
	}
	for _, n := range ends {
		if b, ok := n.Balancer(); ok {
			balancer.Apply(n.ID, b, cmds...)
		}
	}
	edgeID, err = w.AddEdge(core.Edge{
		Source:     from.Node,
		SourcePort: from.Index,
		Target:     to.Node,
		TargetPort: to.Index,
		Material:   material,
	})
	if err != nil {
		return "", err
	}
	for _, c := range cmds {
		s.log.V(2).Info("balancer command", "command", c.String())
		if lock, ok := c.(balancer.LockMaterial); ok {
			if err = s.spread(w, lock.Node, lock.Material); err != nil {
				return "", err
			}
		}
	}
	if _, err = s.commit(OpConnect, w, solver.WithMode(solver.ModeFull)); err != nil {
		return "", err
	}

	return edgeID, nil
}

var errPortsMismatch = errors.New("ports do not exist or materials differ")

// plan resolves the edge material and the balancer commands for a proposed
// connection, or explains why it is rejected.
func plan(src *core.Node, srcPort int, dst *core.Node, dstPort int) (string, []balancer.Command, error) {
	sr, srcIsRecipe := src.Recipe()
	dr, dstIsRecipe := dst.Recipe()

	switch {
	case srcIsRecipe && dstIsRecipe:
		if !recipe.IsValidConnection(sr, srcPort, dr, dstPort) {
			return "", nil, errPortsMismatch
		}
		m, _ := recipe.OutputMaterial(sr, srcPort)
		return m, nil, nil

	case srcIsRecipe:
		m, ok := recipe.OutputMaterial(sr, srcPort)
		if !ok {
			return "", nil, fmt.Errorf("source output port %d does not exist", srcPort)
		}
		b, _ := dst.Balancer()
		cmds, err := balancer.Plan(dst.ID, b, balancer.Candidate{Side: balancer.Input, Port: dstPort, Material: m})
		return m, cmds, err

	case dstIsRecipe:
		m, ok := recipe.InputMaterial(dr, dstPort)
		if !ok {
			return "", nil, fmt.Errorf("target input port %d does not exist", dstPort)
		}
		b, _ := src.Balancer()
		cmds, err := balancer.Plan(src.ID, b, balancer.Candidate{Side: balancer.Output, Port: srcPort, Material: m})
		return m, cmds, err

	default:
		sb, _ := src.Balancer()
		db, _ := dst.Balancer()
		m := sb.Material
		if m == "" {
			m = db.Material
		}
		out, err := balancer.Plan(src.ID, sb, balancer.Candidate{Side: balancer.Output, Port: srcPort, Material: m})
		if err != nil {
			return "", nil, err
		}
		in, err := balancer.Plan(dst.ID, db, balancer.Candidate{Side: balancer.Input, Port: dstPort, Material: m})
		if err != nil {
			return "", nil, err
		}
		return m, append(out, in...), nil
	}
}

// RemoveEdge deletes one edge and solves. Balancer ports it used stay used.
func (s *Session) RemoveEdge(edgeID string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.done(OpRemoveEdge, &err)

	w := s.g.Clone()
	e, err := w.Edge(edgeID)
	if err != nil {
		return err
	}
	if err = w.RemoveEdge(edgeID); err != nil {
		return err
	}
	release(w, e)
	_, err = s.commit(OpRemoveEdge, w, solver.WithMode(solver.ModeFull))

	return err
}

// RemoveNode deletes a node with every incident edge and solves. Balancer
// ports those edges used on surviving neighbors stay used.
func (s *Session) RemoveNode(id string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.done(OpRemoveNode, &err)

	w := s.g.Clone()
	incident := append(w.InEdges(id), w.OutEdges(id)...)
	if err = w.RemoveNode(id); err != nil {
		return err
	}
	for _, e := range incident {
		release(w, e)
	}
	_, err = s.commit(OpRemoveNode, w, solver.WithMode(solver.ModeFull))

	return err
}

// release runs the balancer bookkeeping for a removed edge on the endpoints
// still present in g. The used ports stay used; a side left without a free
// port grows a new one.
func release(g *core.Graph, e core.Edge) {
	ends := []struct {
		id   string
		side balancer.Side
	}{{e.Source, balancer.Output}, {e.Target, balancer.Input}}
	for _, end := range ends {
		n, err := g.Node(end.id)
		if err != nil {
			continue
		}
		if b, ok := n.Balancer(); ok {
			balancer.Apply(n.ID, b, balancer.Release(n.ID, b, end.side)...)
		}
	}
}

// spread locks material on every unset balancer reachable from id over
// pending links and stamps those links. Caller holds mu.
func (s *Session) spread(g *core.Graph, id, material string) error {
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range append(g.InEdges(cur), g.OutEdges(cur)...) {
			if e.Material != "" {
				continue
			}
			if err := g.SetEdgeMaterial(e.ID, material); err != nil {
				return err
			}
			peer := e.Source
			if peer == cur {
				peer = e.Target
			}
			n, err := g.Node(peer)
			if err != nil {
				return err
			}
			if b, ok := n.Balancer(); ok && !b.HasMaterial() {
				balancer.Apply(peer, b, balancer.LockMaterial{Node: peer, Material: material})
				s.log.V(1).Info("balancer material spread", "from", cur, "node", peer, "edge", e.ID, "material", material)
				queue = append(queue, peer)
			}
		}
	}
	return nil
}
