// File: full.go
// Role: Full-mode relaxation: override detection, then bounded demand passes.
// Determinism:
//   - Sources are updated in node insertion order; a pass is "changed" when
//     any value differs from its pre-pass value by more than Epsilon.
// Termination:
//   - At most IterationFactor × V passes. Hitting the bound while still
//     changing yields Converged == false with the best-effort graph.

package solver

import (
	"github.com/katalvlaran/prodflow/core"
	"github.com/katalvlaran/prodflow/dfs"
)

// demandTable maps source ID → material → total downstream demand.
type demandTable map[string]map[string]float64

func (d demandTable) add(source, material string, rate float64) {
	m, ok := d[source]
	if !ok {
		m = make(map[string]float64)
		d[source] = m
	}
	m[material] += rate
}

// full runs override detection followed by the relaxation loop.
func (s *state) full(res *Result) {
	s.detectOverrides()

	res.Bound = s.o.IterationFactor * len(s.nodes)
	if len(s.nodes) == 0 {
		res.Converged = true
		return
	}

	for pass := 1; pass <= res.Bound; pass++ {
		before := s.snapshot()
		demand := s.accumulate()
		s.updateSources(demand)
		s.rescaleAll(demand)
		changed := s.changedSince(before)

		res.Passes = pass
		s.o.OnPass(pass, changed)
		s.o.Logger.V(1).Info("relaxation pass", "pass", pass, "bound", res.Bound, "changed", changed)
		if !changed {
			res.Converged = true
			return
		}
	}
	_, res.Loops, _ = dfs.DetectCycles(s.g)
	s.o.Logger.Info("relaxation hit iteration bound", "bound", res.Bound, "nodes", len(s.nodes), "loops", len(res.Loops))
}

// detectOverrides recomputes HasManualOverride for every recipe node.
// Balancers have no recipe and are never marked.
func (s *state) detectOverrides() {
	for _, n := range s.nodes {
		r, ok := n.Recipe()
		if !ok {
			continue
		}
		r.HasManualOverride = s.isOverridden(r)
		if r.HasManualOverride {
			s.o.Logger.V(1).Info("manual override detected", "node", n.ID, "machine", r.Machine)
		}
	}
}

// accumulate sums, per source and material, the input rates of every edge
// target. A target input fed by k edges contributes input/k to each source.
func (s *state) accumulate() demandTable {
	demand := make(demandTable)
	for _, n := range s.nodes {
		for _, in := range inputsOf(n) {
			part, edges := s.share(n.ID, in)
			for _, e := range edges {
				demand.add(e.Source, in.Material, part)
			}
		}
	}
	return demand
}

// updateSources overwrites each non-overridden source's output with its
// accumulated demand.
func (s *state) updateSources(demand demandTable) {
	for _, n := range s.nodes {
		md, ok := demand[n.ID]
		if !ok {
			continue
		}
		switch d := n.Data.(type) {
		case *core.RecipeNode:
			if d.HasManualOverride {
				continue
			}
			for i := range d.Outputs {
				if total, ok := md[d.Outputs[i].Material]; ok {
					s.set(&d.Outputs[i].Rate, total, n.ID, FieldOutput, d.Outputs[i].Material)
				}
			}
		case *core.BalancerNode:
			if total, ok := md[d.Material]; ok && d.HasMaterial() {
				s.set(&d.Throughput, total, n.ID, FieldThroughput, d.Material)
			}
		}
	}
}

// rescaleAll resynchronizes every non-overridden recipe to the scale its
// outputs imply. Outputs with downstream demand drive the scale; a recipe
// without demand keeps the scale implied by all of its outputs.
func (s *state) rescaleAll(demand demandTable) {
	for _, n := range s.nodes {
		r, ok := n.Recipe()
		if !ok || r.HasManualOverride {
			continue
		}
		md := demand[n.ID]
		driven := func(material string) bool {
			_, ok := md[material]
			return ok
		}
		s.rescale(n.ID, r, drivingScale(r, driven))
	}
}
