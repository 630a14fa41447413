// File: state.go
// Role: Shared mutable state for one Solve call: edge index, tolerant writes, rescaling.
// Determinism:
//   - Nodes are processed in graph insertion order; streams in slice order.
//   - Every write is rounded to two decimals and skipped unless it moves the
//     value by more than Epsilon, so re-solving a solved graph writes nothing.

package solver

import (
	"math"

	"github.com/katalvlaran/prodflow/core"
)

// roundingSlack is half a machine-count rounding step. A recipe whose machine
// count was rounded to two decimals may legitimately sit up to
// base*roundingSlack away from base*Machines.
const roundingSlack = 0.005

// state is the working set shared by the full and upstream strategies.
type state struct {
	g     *core.Graph
	o     Options
	nodes []*core.Node

	// feeders[target][material] lists the edges delivering material into target.
	feeders map[string]map[string][]core.Edge

	updates int
}

func newState(g *core.Graph, o Options) *state {
	s := &state{
		g:       g,
		o:       o,
		nodes:   g.Nodes(),
		feeders: make(map[string]map[string][]core.Edge),
	}
	for _, e := range g.Edges() {
		byMat, ok := s.feeders[e.Target]
		if !ok {
			byMat = make(map[string][]core.Edge)
			s.feeders[e.Target] = byMat
		}
		byMat[e.Material] = append(byMat[e.Material], e)
	}

	return s
}

func (s *state) differs(a, b float64) bool {
	return math.Abs(a-b) > s.o.Epsilon
}

// set writes v (rounded) into *dst when it moves by more than Epsilon.
func (s *state) set(dst *float64, v float64, node string, f Field, material string) bool {
	v = core.Round2(v)
	if !s.differs(*dst, v) {
		return false
	}
	old := *dst
	*dst = v
	s.updates++
	u := Update{Node: node, Field: f, Material: material, Old: old, New: v}
	s.o.OnUpdate(u)
	s.o.Logger.V(2).Info("rate updated",
		"node", node, "field", string(f), "material", material, "old", old, "new", v)

	return true
}

// inputsOf returns the current input records of n.
func inputsOf(n *core.Node) []core.Stream {
	switch d := n.Data.(type) {
	case *core.RecipeNode:
		return d.Inputs
	case *core.BalancerNode:
		return d.Inputs()
	}
	return nil
}

// outputRate returns the current rate n produces of material.
func outputRate(n *core.Node, material string) (float64, bool) {
	switch d := n.Data.(type) {
	case *core.RecipeNode:
		if i := d.OutputIndex(material); i >= 0 {
			return d.Outputs[i].Rate, true
		}
	case *core.BalancerNode:
		if d.Material == material {
			return d.Throughput, true
		}
	}
	return 0, false
}

// setOutput overwrites the rate n produces of material.
func (s *state) setOutput(n *core.Node, material string, v float64) bool {
	switch d := n.Data.(type) {
	case *core.RecipeNode:
		if i := d.OutputIndex(material); i >= 0 {
			return s.set(&d.Outputs[i].Rate, v, n.ID, FieldOutput, material)
		}
	case *core.BalancerNode:
		if d.Material == material {
			return s.set(&d.Throughput, v, n.ID, FieldThroughput, material)
		}
	}
	return false
}

// share is the part of target's input of material each feeding edge carries.
// Fan-in splits the input evenly across all edges delivering that material.
func (s *state) share(target string, in core.Stream) (float64, []core.Edge) {
	edges := s.feeders[target][in.Material]
	if len(edges) == 0 {
		return 0, nil
	}
	return in.Rate / float64(len(edges)), edges
}

// drivingScale returns the machine scale implied by r's outputs: the maximum
// of rate/base over the outputs accepted by driven (all outputs when driven
// accepts none). When every ratio is zero, the current Machines is kept.
func drivingScale(r *core.RecipeNode, driven func(material string) bool) float64 {
	best, found := 0.0, false
	if driven != nil {
		best, found = maxRatio(r, driven)
	}
	if !found {
		best, _ = maxRatio(r, func(string) bool { return true })
	}
	if best == 0 {
		return r.Machines
	}

	return best
}

func maxRatio(r *core.RecipeNode, accept func(string) bool) (float64, bool) {
	best, found := 0.0, false
	for _, out := range r.Outputs {
		if !accept(out.Material) {
			continue
		}
		base, ok := r.BaseOutput(out.Material)
		if !ok || base <= 0 {
			continue
		}
		found = true
		if ratio := out.Rate / base; ratio > best {
			best = ratio
		}
	}
	return best, found
}

// rescale sets r to scale: Machines = round2(scale) and every input and
// output = round2(base*scale).
func (s *state) rescale(id string, r *core.RecipeNode, scale float64) {
	s.set(&r.Machines, scale, id, FieldMachines, "")
	for i := range r.Inputs {
		if base, ok := r.BaseInput(r.Inputs[i].Material); ok {
			s.set(&r.Inputs[i].Rate, base*scale, id, FieldInput, r.Inputs[i].Material)
		}
	}
	for i := range r.Outputs {
		if base, ok := r.BaseOutput(r.Outputs[i].Material); ok {
			s.set(&r.Outputs[i].Rate, base*scale, id, FieldOutput, r.Outputs[i].Material)
		}
	}
}

// isOverridden reports whether some output of r departs from base*Machines by
// more than Epsilon plus the machine-count rounding slack.
func (s *state) isOverridden(r *core.RecipeNode) bool {
	for i, out := range r.Outputs {
		if i >= len(r.BaseOutputs) {
			break
		}
		base := r.BaseOutputs[i].Rate
		tol := s.o.Epsilon + math.Abs(base)*roundingSlack
		if math.Abs(out.Rate-base*r.Machines) > tol {
			return true
		}
	}
	return false
}

// snapshot flattens every numeric field of the graph in a fixed order.
func (s *state) snapshot() []float64 {
	out := make([]float64, 0, 4*len(s.nodes))
	for _, n := range s.nodes {
		switch d := n.Data.(type) {
		case *core.RecipeNode:
			out = append(out, d.Machines)
			for _, in := range d.Inputs {
				out = append(out, in.Rate)
			}
			for _, o := range d.Outputs {
				out = append(out, o.Rate)
			}
		case *core.BalancerNode:
			out = append(out, d.Throughput)
		}
	}
	return out
}

func (s *state) changedSince(before []float64) bool {
	after := s.snapshot()
	for i := range before {
		if s.differs(before[i], after[i]) {
			return true
		}
	}
	return false
}
