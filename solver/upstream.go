// File: upstream.go
// Role: Upstream-only propagation from an edited node back through its producers.
// Determinism:
//   - bfs.Upstream visits producers in edge insertion order, each node once.
// Isolation:
//   - Only sources of visited nodes are written. Nothing strictly downstream
//     of the changed node is ever touched, and the changed node itself keeps
//     whatever the editor set on it.

package solver

import (
	"github.com/katalvlaran/prodflow/bfs"
	"github.com/katalvlaran/prodflow/core"
)

// upstream walks producers of start breadth-first. At each visited node, every
// feeding source whose output disagrees with that node's input share is
// overwritten and, for recipes, rescaled.
func (s *state) upstream(start string, res *Result) error {
	walk, err := bfs.BFS(s.g, start, bfs.WithOnVisit(func(id string, depth int) error {
		n, err := s.g.Node(id)
		if err != nil {
			return err
		}
		s.pullInto(n, depth)
		return nil
	}))
	if err != nil {
		return err
	}
	res.Visited = walk.Order
	res.Converged = true

	return nil
}

// pullInto reconciles every source feeding target with target's inputs.
func (s *state) pullInto(target *core.Node, depth int) {
	for _, in := range inputsOf(target) {
		part, edges := s.share(target.ID, in)
		for _, e := range edges {
			src, err := s.g.Node(e.Source)
			if err != nil {
				continue
			}
			cur, ok := outputRate(src, in.Material)
			if !ok || !s.differs(cur, part) {
				continue
			}
			s.setOutput(src, in.Material, part)
			if r, ok := src.Recipe(); ok {
				s.rescale(src.ID, r, drivingScale(r, s.consumedBy(src.ID)))
			}
			s.o.Logger.V(1).Info("upstream source updated",
				"source", src.ID, "target", target.ID, "material", in.Material, "rate", part, "depth", depth)
		}
	}
}

// consumedBy reports the materials id ships over at least one edge.
func (s *state) consumedBy(id string) func(string) bool {
	shipped := make(map[string]struct{})
	for _, e := range s.g.OutEdges(id) {
		shipped[e.Material] = struct{}{}
	}
	return func(material string) bool {
		_, ok := shipped[material]
		return ok
	}
}
