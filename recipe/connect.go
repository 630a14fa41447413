package recipe

import "github.com/katalvlaran/prodflow/core"

// IsValidConnection reports whether the output port srcPort of src may feed the
// input port dstPort of dst: valid iff both ports exist and carry the same material.
// This predicate is the only gate; the solver never validates.
func IsValidConnection(src *core.RecipeNode, srcPort int, dst *core.RecipeNode, dstPort int) bool {
	m, ok := OutputMaterial(src, srcPort)
	if !ok {
		return false
	}
	n, ok := InputMaterial(dst, dstPort)

	return ok && m == n
}

// OutputMaterial returns the material on output port i.
func OutputMaterial(r *core.RecipeNode, i int) (string, bool) {
	if r == nil || i < 0 || i >= len(r.Outputs) {
		return "", false
	}
	return r.Outputs[i].Material, true
}

// InputMaterial returns the material on input port i.
func InputMaterial(r *core.RecipeNode, i int) (string, bool) {
	if r == nil || i < 0 || i >= len(r.Inputs) {
		return "", false
	}
	return r.Inputs[i].Material, true
}
