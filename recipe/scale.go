// Package recipe maps a target rate for one output of a recipe node to a
// complete, consistent {machines, inputs, outputs} set for that node, and
// holds the connection predicate between two recipe ports.
//
// Everything here is side-effect-free: inputs are never mutated.
package recipe

import "github.com/katalvlaran/prodflow/core"

// Scaled is the result of Scale: a full consistent rate set for one node.
type Scaled struct {
	Machines float64
	Inputs   []core.Stream
	Outputs  []core.Stream
}

// Scale computes scaleFactor = rate / baseRate(material) and returns
// machines = Round2(scaleFactor) plus every base input and output scaled by
// scaleFactor and rounded to two decimals.
//
// The second result is false ("no result") when material is absent from
// r.BaseOutputs or its base rate is not positive.
func Scale(r *core.RecipeNode, material string, rate float64) (Scaled, bool) {
	if r == nil {
		return Scaled{}, false
	}
	base, ok := r.BaseOutput(material)
	if !ok || base <= 0 {
		return Scaled{}, false
	}
	factor := rate / base

	return Scaled{
		Machines: core.Round2(factor),
		Inputs:   scaleList(r.BaseInputs, factor),
		Outputs:  scaleList(r.BaseOutputs, factor),
	}, true
}

// Apply returns a copy of r carrying the scaled rates. r itself is untouched.
func Apply(r *core.RecipeNode, s Scaled) *core.RecipeNode {
	c := r.Clone()
	c.Machines = s.Machines
	c.Inputs = append([]core.Stream(nil), s.Inputs...)
	c.Outputs = append([]core.Stream(nil), s.Outputs...)

	return c
}

// Expected returns the outputs implied by base rates times machines, unrounded.
func Expected(r *core.RecipeNode) []core.Stream {
	return scaleListRaw(r.BaseOutputs, r.Machines)
}

func scaleList(base []core.Stream, factor float64) []core.Stream {
	out := scaleListRaw(base, factor)
	for i := range out {
		out[i].Rate = core.Round2(out[i].Rate)
	}

	return out
}

func scaleListRaw(base []core.Stream, factor float64) []core.Stream {
	out := make([]core.Stream, len(base))
	for i, s := range base {
		out[i] = core.Stream{Material: s.Material, Rate: s.Rate * factor}
	}

	return out
}
