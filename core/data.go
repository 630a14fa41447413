// File: data.go
// Role: Node payload variants (RecipeNode, BalancerNode), constructors and deep copies.
// Determinism:
//   - Stream slices keep catalog order; lookups return the first match by material.

package core

// MaxBalancerPorts caps the number of ports on each side of a balancer.
const MaxBalancerPorts = 7

// RecipeNode is a scalable production unit with fixed per-machine ratios.
//
// BaseInputs/BaseOutputs are the one-machine rates and never change after creation.
// Inputs/Outputs are the current rates and equal base*Machines unless
// HasManualOverride is set.
type RecipeNode struct {
	// Machine is the archetype name, e.g. "Rubber Maker".
	Machine string

	BaseInputs  []Stream
	BaseOutputs []Stream
	Inputs      []Stream
	Outputs     []Stream

	// Machines is the (possibly fractional) number of machine instances.
	Machines float64

	// HasManualOverride exempts the node from demand accumulation in full mode.
	HasManualOverride bool

	// Locked is the user-facing manual lock flag.
	Locked bool

	// Unlocked selects upstream-only propagation for edits made on this node.
	Unlocked bool
}

// NewRecipeNode returns a RecipeNode at Machines = 1 whose current rates equal the base rates.
func NewRecipeNode(machine string, baseInputs, baseOutputs []Stream) *RecipeNode {
	return &RecipeNode{
		Machine:     machine,
		BaseInputs:  cloneStreams(baseInputs),
		BaseOutputs: cloneStreams(baseOutputs),
		Inputs:      cloneStreams(baseInputs),
		Outputs:     cloneStreams(baseOutputs),
		Machines:    1,
	}
}

// Kind implements Data.
func (r *RecipeNode) Kind() Kind { return KindRecipe }

func (r *RecipeNode) cloneData() Data { return r.Clone() }

// Clone returns a deep copy of r.
func (r *RecipeNode) Clone() *RecipeNode {
	if r == nil {
		return nil
	}
	c := *r
	c.BaseInputs = cloneStreams(r.BaseInputs)
	c.BaseOutputs = cloneStreams(r.BaseOutputs)
	c.Inputs = cloneStreams(r.Inputs)
	c.Outputs = cloneStreams(r.Outputs)

	return &c
}

// OutputIndex returns the index of the current output carrying material, or -1.
func (r *RecipeNode) OutputIndex(material string) int { return indexOf(r.Outputs, material) }

// InputIndex returns the index of the current input carrying material, or -1.
func (r *RecipeNode) InputIndex(material string) int { return indexOf(r.Inputs, material) }

// BaseOutput returns the one-machine rate of material on the output side.
func (r *RecipeNode) BaseOutput(material string) (float64, bool) {
	i := indexOf(r.BaseOutputs, material)
	if i < 0 {
		return 0, false
	}
	return r.BaseOutputs[i].Rate, true
}

// BaseInput returns the one-machine rate of material on the input side.
func (r *RecipeNode) BaseInput(material string) (float64, bool) {
	i := indexOf(r.BaseInputs, material)
	if i < 0 {
		return 0, false
	}
	return r.BaseInputs[i].Rate, true
}

// BalancerNode is a passive router. It has no recipe; Material stays empty until
// the first edge touches it and is immutable afterwards.
//
// Throughput is the single rate mirrored on both sides.
// ConnectedInputs/ConnectedOutputs are parallel to InputPorts/OutputPorts.
type BalancerNode struct {
	Material   string
	Throughput float64

	InputPorts       int
	OutputPorts      int
	ConnectedInputs  []bool
	ConnectedOutputs []bool
}

// NewBalancerNode returns a balancer with one unconnected port per side and no material.
func NewBalancerNode() *BalancerNode {
	return &BalancerNode{
		InputPorts:       1,
		OutputPorts:      1,
		ConnectedInputs:  []bool{false},
		ConnectedOutputs: []bool{false},
	}
}

// Kind implements Data.
func (b *BalancerNode) Kind() Kind { return KindBalancer }

func (b *BalancerNode) cloneData() Data { return b.Clone() }

// Clone returns a deep copy of b.
func (b *BalancerNode) Clone() *BalancerNode {
	if b == nil {
		return nil
	}
	c := *b
	c.ConnectedInputs = append([]bool(nil), b.ConnectedInputs...)
	c.ConnectedOutputs = append([]bool(nil), b.ConnectedOutputs...)

	return &c
}

// HasMaterial reports whether the balancer's material is locked.
func (b *BalancerNode) HasMaterial() bool { return b.Material != "" }

// Inputs mirrors the throughput as the balancer's single input record.
// It is empty until the material is locked.
func (b *BalancerNode) Inputs() []Stream { return b.mirror() }

// Outputs mirrors the throughput as the balancer's single output record.
func (b *BalancerNode) Outputs() []Stream { return b.mirror() }

func (b *BalancerNode) mirror() []Stream {
	if !b.HasMaterial() {
		return nil
	}
	return []Stream{{Material: b.Material, Rate: b.Throughput}}
}

func cloneStreams(in []Stream) []Stream {
	if in == nil {
		return nil
	}
	out := make([]Stream, len(in))
	copy(out, in)

	return out
}

func indexOf(list []Stream, material string) int {
	for i := range list {
		if list[i].Material == material {
			return i
		}
	}
	return -1
}
