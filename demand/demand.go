// Package demand is the demand-seeded backward solver: callers pin what some
// nodes must consume, and every producer feeding those nodes is scaled to
// meet it, pass after pass, until the demand table stops moving.
//
// Unlike the solver package, demand never reads downstream inputs that were
// not seeded or derived from a seed, so it is suited to "I need 60 PCB/min
// here, size the factory behind it" questions.
package demand

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-logr/logr"

	"github.com/katalvlaran/prodflow/core"
	"github.com/katalvlaran/prodflow/recipe"
)

// changeTolerance is the smallest demand movement that triggers another pass.
const changeTolerance = 1e-6

// Seed builds the root demand list from (node, material, rate) triples
// without consulting any graph. Later entries for the same (node, material)
// replace earlier ones.
func Seed(demands ...Demand) ([]Demand, error) {
	out := make([]Demand, 0, len(demands))
	pos := make(map[key]int, len(demands))
	for _, d := range demands {
		switch {
		case d.NodeID == "":
			return nil, ErrEmptyNode
		case d.Material == "":
			return nil, fmt.Errorf("%w: node %q", ErrEmptyMaterial, d.NodeID)
		case d.Rate < 0:
			return nil, fmt.Errorf("%w: node %q material %q (%g)", ErrNegativeRate, d.NodeID, d.Material, d.Rate)
		}
		k := key{d.NodeID, d.Material}
		if i, ok := pos[k]; ok {
			out[i] = d
			continue
		}
		pos[k] = len(out)
		out = append(out, d)
	}

	return out, nil
}

// Validate checks that every demand names a node present in g.
func Validate(g *core.Graph, demands []Demand) error {
	if g == nil {
		return ErrGraphNil
	}
	for _, d := range demands {
		if !g.HasNode(d.NodeID) {
			return fmt.Errorf("demand: seed %q: %w", d.NodeID, core.ErrNodeNotFound)
		}
	}
	return nil
}

// Propagate scales every producer reachable backwards from the seeds.
//
// Each pass walks the edges in insertion order. For an edge whose
// (target, material) slot holds a demand, the source is scaled so that its
// output of that material meets the target's share of it (demand split
// evenly over the edges feeding the slot). The scaled source's inputs become
// new demands. A pass that moves no demand ends the run; otherwise the run
// stops after IterationFactor × V passes with Converged == false.
//
// Recipe sources are scaled with recipe.Scale; balancer sources take the
// share as Throughput and forward it as their own input demand.
func Propagate(g *core.Graph, seeds []Demand, opts ...Option) (*Result, error) {
	if g == nil {
		return nil, ErrGraphNil
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	seeds, err := Seed(seeds...)
	if err != nil {
		return nil, err
	}
	if err = Validate(g, seeds); err != nil {
		return nil, err
	}

	p := &propagator{
		g:      g.Clone(),
		o:      o,
		table:  make(map[key]float64, len(seeds)),
		fanIn:  make(map[key]int),
		logger: o.Logger.WithName("demand"),
	}
	for _, d := range seeds {
		p.table[key{d.NodeID, d.Material}] = d.Rate
	}
	edges := p.g.Edges()
	for _, e := range edges {
		p.fanIn[key{e.Target, e.Material}]++
	}

	res := &Result{Graph: p.g, Bound: o.IterationFactor * p.g.NodeCount()}
	for pass := 1; pass <= res.Bound; pass++ {
		changed := false
		for _, e := range edges {
			if p.relax(e) {
				changed = true
			}
		}
		res.Passes = pass
		p.logger.V(1).Info("demand pass", "pass", pass, "changed", changed, "slots", len(p.table))
		if !changed {
			res.Converged = true
			break
		}
	}
	if res.Bound == 0 {
		res.Converged = true
	}
	res.Demands = p.demands()

	return res, nil
}

type propagator struct {
	g      *core.Graph
	o      Options
	table  map[key]float64
	fanIn  map[key]int
	logger logr.Logger
}

// relax applies one edge and reports whether any demand moved.
func (p *propagator) relax(e core.Edge) bool {
	slot := key{e.Target, e.Material}
	want, ok := p.table[slot]
	if !ok {
		return false
	}
	want /= float64(p.fanIn[slot])

	src, err := p.g.Node(e.Source)
	if err != nil {
		return false
	}
	var inputs []core.Stream
	switch d := src.Data.(type) {
	case *core.RecipeNode:
		sc, ok := recipe.Scale(d, e.Material, want)
		if !ok {
			return false
		}
		d.Machines, d.Inputs, d.Outputs = sc.Machines, sc.Inputs, sc.Outputs
		inputs = d.Inputs
	case *core.BalancerNode:
		if d.Material != e.Material {
			return false
		}
		d.Throughput = core.Round2(want)
		inputs = d.Inputs()
	}

	changed := false
	for _, in := range inputs {
		k := key{src.ID, in.Material}
		if prev, ok := p.table[k]; ok && math.Abs(prev-in.Rate) <= changeTolerance {
			continue
		}
		p.table[k] = in.Rate
		changed = true
		p.logger.V(2).Info("demand updated", "node", src.ID, "material", in.Material, "rate", in.Rate)
	}

	return changed
}

// demands lists the table in node insertion order, then by the node's input order.
func (p *propagator) demands() []Demand {
	var out []Demand
	for _, n := range p.g.Nodes() {
		seen := make(map[string]bool)
		for _, in := range inputsOf(n) {
			if v, ok := p.table[key{n.ID, in.Material}]; ok && !seen[in.Material] {
				seen[in.Material] = true
				out = append(out, Demand{NodeID: n.ID, Material: in.Material, Rate: v})
			}
		}
		var extra []string
		for k := range p.table {
			if k.node == n.ID && !seen[k.material] {
				extra = append(extra, k.material)
			}
		}
		slices.Sort(extra)
		for _, m := range extra {
			out = append(out, Demand{NodeID: n.ID, Material: m, Rate: p.table[key{n.ID, m}]})
		}
	}
	return out
}

func inputsOf(n *core.Node) []core.Stream {
	switch d := n.Data.(type) {
	case *core.RecipeNode:
		return d.Inputs
	case *core.BalancerNode:
		return d.Inputs()
	}
	return nil
}
