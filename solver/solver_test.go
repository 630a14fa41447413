package solver_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/prodflow/core"
	"github.com/katalvlaran/prodflow/recipe"
	"github.com/katalvlaran/prodflow/solver"
)

func s(material string, rate float64) core.Stream { return core.Stream{Material: material, Rate: rate} }

func streams(ss ...core.Stream) []core.Stream { return ss }

func rubberMaker() *core.RecipeNode {
	return core.NewRecipeNode("Rubber Maker",
		streams(s("Diesel", 8), s("Coal", 2)),
		streams(s("Rubber", 16), s("WasteWater", 4)))
}

func assemblyI() *core.RecipeNode {
	return core.NewRecipeNode("Assembly I",
		streams(s("Rubber", 1), s("Copper", 4)),
		streams(s("Electronics1", 4)))
}

// scaled returns r scaled so that material is produced at rate.
func scaled(t *testing.T, r *core.RecipeNode, material string, rate float64) *core.RecipeNode {
	t.Helper()
	sc, ok := recipe.Scale(r, material, rate)
	require.True(t, ok)
	return recipe.Apply(r, sc)
}

func addNodes(t *testing.T, g *core.Graph, nodes map[string]core.Data, order ...string) {
	t.Helper()
	for _, id := range order {
		require.NoError(t, g.AddNode(id, nodes[id]))
	}
}

func connect(t *testing.T, g *core.Graph, src, dst, material string) {
	t.Helper()
	_, err := g.AddEdge(core.Edge{Source: src, Target: dst, Material: material})
	require.NoError(t, err)
}

func recipeOf(t *testing.T, g *core.Graph, id string) *core.RecipeNode {
	t.Helper()
	n, err := g.Node(id)
	require.NoError(t, err)
	r, ok := n.Recipe()
	require.True(t, ok, "node %s is not a recipe", id)
	return r
}

func rate(list []core.Stream, material string) float64 {
	for _, st := range list {
		if st.Material == material {
			return st.Rate
		}
	}
	return -1
}

// state flattens a graph into comparable values.
func state(g *core.Graph) ([]core.Node, []core.Edge) {
	var nodes []core.Node
	for _, n := range g.Nodes() {
		nodes = append(nodes, *n)
	}
	return nodes, g.Edges()
}

// chain builds A → B → C with 1:1 recipes: A yields Ore, B turns Ore into
// Plate, C turns Plate into Gear. C is scaled to consume Plate at r.
func chain(t *testing.T, r float64) *core.Graph {
	t.Helper()
	g := core.NewGraph()
	c := scaled(t, core.NewRecipeNode("Gear Press", streams(s("Plate", 1)), streams(s("Gear", 1))), "Gear", r)
	addNodes(t, g, map[string]core.Data{
		"A": core.NewRecipeNode("Miner", nil, streams(s("Ore", 1))),
		"B": core.NewRecipeNode("Smelter", streams(s("Ore", 1)), streams(s("Plate", 1))),
		"C": c,
	}, "A", "B", "C")
	connect(t, g, "A", "B", "Ore")
	connect(t, g, "B", "C", "Plate")
	return g
}

func TestSolve_Errors(t *testing.T) {
	_, err := solver.Solve(nil)
	assert.ErrorIs(t, err, solver.ErrGraphNil)

	g := chain(t, 5)
	_, err = solver.Solve(g, solver.WithMode(solver.ModeUpstreamOnly))
	assert.ErrorIs(t, err, solver.ErrChangedNodeRequired)

	_, err = solver.Solve(g, solver.WithChangedNode("ghost"))
	assert.ErrorIs(t, err, core.ErrNodeNotFound)

	_, err = solver.Solve(g, solver.WithEpsilon(0))
	assert.ErrorIs(t, err, solver.ErrOptionViolation)
	_, err = solver.Solve(g, solver.WithIterationFactor(0))
	assert.ErrorIs(t, err, solver.ErrOptionViolation)
	_, err = solver.Solve(g, solver.WithMode(solver.Mode(42)))
	assert.ErrorIs(t, err, solver.ErrOptionViolation)

	_, err = solver.ParseMode("sideways")
	assert.ErrorIs(t, err, solver.ErrOptionViolation)
	m, err := solver.ParseMode("upstream-only")
	require.NoError(t, err)
	assert.Equal(t, solver.ModeUpstreamOnly, m)
}

func TestSolve_EmptyGraph(t *testing.T) {
	res, err := solver.Solve(core.NewGraph())
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 0, res.Passes)
	assert.Equal(t, solver.ModeFull, res.Mode)
}

// TestSolve_LinearChain checks that every edge of A → B → C carries C's demand.
func TestSolve_LinearChain(t *testing.T) {
	const r = 7.5
	g := chain(t, r)

	res, err := solver.Solve(g, solver.WithMode(solver.ModeFull))
	require.NoError(t, err)
	require.True(t, res.Converged)
	assert.LessOrEqual(t, res.Passes, 3*g.NodeCount())

	a, b, c := recipeOf(t, res.Graph, "A"), recipeOf(t, res.Graph, "B"), recipeOf(t, res.Graph, "C")
	assert.InDelta(t, r, rate(c.Inputs, "Plate"), core.Epsilon)
	assert.InDelta(t, r, rate(b.Outputs, "Plate"), core.Epsilon)
	assert.InDelta(t, r, rate(b.Inputs, "Ore"), core.Epsilon)
	assert.InDelta(t, r, rate(a.Outputs, "Ore"), core.Epsilon)
	assert.InDelta(t, r, a.Machines, core.Epsilon)
	assert.InDelta(t, r, b.Machines, core.Epsilon)
}

// TestSolve_DoesNotMutateInput verifies the copy-then-return discipline.
func TestSolve_DoesNotMutateInput(t *testing.T) {
	g := chain(t, 4)
	beforeNodes, beforeEdges := state(g.Clone())

	_, err := solver.Solve(g)
	require.NoError(t, err)

	afterNodes, afterEdges := state(g)
	assert.Empty(t, cmp.Diff(beforeNodes, afterNodes))
	assert.Empty(t, cmp.Diff(beforeEdges, afterEdges))
}

// TestSolve_Idempotent re-solves an equilibrium and expects a fixed point.
func TestSolve_Idempotent(t *testing.T) {
	first, err := solver.Solve(chain(t, 3.33))
	require.NoError(t, err)
	require.True(t, first.Converged)

	second, err := solver.Solve(first.Graph, solver.WithMode(solver.ModeFull))
	require.NoError(t, err)
	assert.True(t, second.Converged)
	assert.Equal(t, 1, second.Passes)
	assert.Equal(t, 0, second.Updates)

	n1, e1 := state(first.Graph)
	n2, e2 := state(second.Graph)
	assert.Empty(t, cmp.Diff(n1, n2))
	assert.Empty(t, cmp.Diff(e1, e2))
}

// TestSolve_RubberMakerScenario: a consumer demanding Rubber 24 drives a
// Rubber Maker to 1.5 machines.
func TestSolve_RubberMakerScenario(t *testing.T) {
	g := core.NewGraph()
	addNodes(t, g, map[string]core.Data{
		"rubber":   rubberMaker(),
		"assembly": scaled(t, assemblyI(), "Electronics1", 96), // 24 machines → Rubber 24
	}, "rubber", "assembly")
	connect(t, g, "rubber", "assembly", "Rubber")

	res, err := solver.Solve(g)
	require.NoError(t, err)
	require.True(t, res.Converged)

	r := recipeOf(t, res.Graph, "rubber")
	assert.Equal(t, 1.5, r.Machines)
	assert.Equal(t, 12.0, rate(r.Inputs, "Diesel"))
	assert.Equal(t, 3.0, rate(r.Inputs, "Coal"))
	assert.Equal(t, 24.0, rate(r.Outputs, "Rubber"))
	assert.Equal(t, 6.0, rate(r.Outputs, "WasteWater"))
	assert.False(t, r.HasManualOverride)
}

// TestSolve_MachineRoundingTolerance pins the rounding trade-off: machines
// are kept to two decimals while rates follow the exact demand, so an output
// may sit up to |base|*0.005 away from base*machines. Such a node is not an
// override; a larger gap is.
func TestSolve_MachineRoundingTolerance(t *testing.T) {
	g := core.NewGraph()
	addNodes(t, g, map[string]core.Data{
		"rubber":   rubberMaker(),
		"assembly": scaled(t, assemblyI(), "Electronics1", 96.2), // Rubber 24.05
	}, "rubber", "assembly")
	connect(t, g, "rubber", "assembly", "Rubber")

	res, err := solver.Solve(g)
	require.NoError(t, err)
	require.True(t, res.Converged)

	r := recipeOf(t, res.Graph, "rubber")
	assert.Equal(t, 24.05, rate(r.Outputs, "Rubber"), "the consumer gets exactly what it asks for")
	assert.Equal(t, 1.5, r.Machines, "1.503125 rounded")
	assert.InDelta(t, 12.025, rate(r.Inputs, "Diesel"), core.Epsilon)
	tolerance := 16 * 0.005
	assert.InDelta(t, 16*r.Machines, rate(r.Outputs, "Rubber"), tolerance)
	assert.NotEqual(t, 16*r.Machines, rate(r.Outputs, "Rubber"))
	assert.False(t, r.HasManualOverride)

	again, err := solver.Solve(res.Graph)
	require.NoError(t, err)
	wantNodes, wantEdges := state(res.Graph)
	gotNodes, gotEdges := state(again.Graph)
	assert.Equal(t, wantNodes, gotNodes, "a rounded result is stable")
	assert.Equal(t, wantEdges, gotEdges)

	// beyond Epsilon + the rounding slack the same node reads as an override
	edited := res.Graph.Clone()
	recipeOf(t, edited, "rubber").Outputs[0].Rate = 24.25
	res, err = solver.Solve(edited)
	require.NoError(t, err)
	r = recipeOf(t, res.Graph, "rubber")
	assert.True(t, r.HasManualOverride)
	assert.Equal(t, 24.25, rate(r.Outputs, "Rubber"))
}

// TestSolve_PendingBalancerLinkIsInert: a link between two unset balancers
// carries nothing and leaves the rest of the graph alone.
func TestSolve_PendingBalancerLinkIsInert(t *testing.T) {
	g := core.NewGraph()
	addNodes(t, g, map[string]core.Data{
		"b1":       core.NewBalancerNode(),
		"b2":       core.NewBalancerNode(),
		"rubber":   rubberMaker(),
		"assembly": scaled(t, assemblyI(), "Electronics1", 96),
	}, "b1", "b2", "rubber", "assembly")
	_, err := g.AddEdge(core.Edge{Source: "b1", Target: "b2"})
	require.NoError(t, err)
	connect(t, g, "rubber", "assembly", "Rubber")

	res, err := solver.Solve(g)
	require.NoError(t, err)
	require.True(t, res.Converged)
	assert.Equal(t, 1.5, recipeOf(t, res.Graph, "rubber").Machines)
	for _, id := range []string{"b1", "b2"} {
		n, err := res.Graph.Node(id)
		require.NoError(t, err)
		b, _ := n.Balancer()
		assert.False(t, b.HasMaterial(), id)
		assert.Zero(t, b.Throughput, id)
	}
}

// TestSolve_MaxDemandTieBreak documents that a multi-output recipe runs at
// the scale of its largest consumer and over-produces the others. There is
// no partial-fulfillment signal for the under-served side.
func TestSolve_MaxDemandTieBreak(t *testing.T) {
	g := core.NewGraph()
	twin := core.NewRecipeNode("Splitter", nil, streams(s("Left", 1), s("Right", 1)))
	left := scaled(t, core.NewRecipeNode("L", streams(s("Left", 1)), streams(s("X", 1))), "X", 10)
	right := scaled(t, core.NewRecipeNode("R", streams(s("Right", 1)), streams(s("Y", 1))), "Y", 15)
	addNodes(t, g, map[string]core.Data{"twin": twin, "left": left, "right": right}, "twin", "left", "right")
	connect(t, g, "twin", "left", "Left")
	connect(t, g, "twin", "right", "Right")

	res, err := solver.Solve(g)
	require.NoError(t, err)
	require.True(t, res.Converged)

	tw := recipeOf(t, res.Graph, "twin")
	assert.Equal(t, 15.0, tw.Machines, "scale follows the largest demand, not 25 and not 12.5")
	assert.Equal(t, 15.0, rate(tw.Outputs, "Right"))
	assert.Equal(t, 15.0, rate(tw.Outputs, "Left"), "the smaller consumer is over-supplied")
}

// TestSolve_SharedOutputSumsConsumers: one output feeding two consumers must
// equal the sum of their inputs.
func TestSolve_SharedOutputSumsConsumers(t *testing.T) {
	g := core.NewGraph()
	addNodes(t, g, map[string]core.Data{
		"rubber": rubberMaker(),
		"a1":     scaled(t, assemblyI(), "Electronics1", 40), // Rubber 10
		"a2":     scaled(t, assemblyI(), "Electronics1", 60), // Rubber 15
	}, "rubber", "a1", "a2")
	connect(t, g, "rubber", "a1", "Rubber")
	connect(t, g, "rubber", "a2", "Rubber")

	res, err := solver.Solve(g)
	require.NoError(t, err)
	r := recipeOf(t, res.Graph, "rubber")
	assert.Equal(t, 25.0, rate(r.Outputs, "Rubber"))
	assert.InDelta(t, 1.56, r.Machines, core.Epsilon)
}

// TestSolve_FanInSplitsEvenly: two producers feeding one input share it.
func TestSolve_FanInSplitsEvenly(t *testing.T) {
	g := core.NewGraph()
	addNodes(t, g, map[string]core.Data{
		"r1":       rubberMaker(),
		"r2":       rubberMaker(),
		"assembly": scaled(t, assemblyI(), "Electronics1", 40), // Rubber 10
	}, "r1", "r2", "assembly")
	connect(t, g, "r1", "assembly", "Rubber")
	connect(t, g, "r2", "assembly", "Rubber")

	res, err := solver.Solve(g)
	require.NoError(t, err)
	for _, id := range []string{"r1", "r2"} {
		assert.Equal(t, 5.0, rate(recipeOf(t, res.Graph, id).Outputs, "Rubber"), id)
	}
}

// TestSolve_ManualOverrideIsKept: an inconsistent node is neither updated
// from demand nor rescaled, but its own inputs still drive its producers.
func TestSolve_ManualOverrideIsKept(t *testing.T) {
	g := core.NewGraph()
	mid := core.NewRecipeNode("Smelter", streams(s("Ore", 1)), streams(s("Plate", 1)))
	mid.Outputs[0].Rate = 9 // machines still 1
	mid.Inputs[0].Rate = 2
	addNodes(t, g, map[string]core.Data{
		"A": core.NewRecipeNode("Miner", nil, streams(s("Ore", 1))),
		"B": mid,
		"C": scaled(t, core.NewRecipeNode("Press", streams(s("Plate", 1)), streams(s("Gear", 1))), "Gear", 4),
	}, "A", "B", "C")
	connect(t, g, "A", "B", "Ore")
	connect(t, g, "B", "C", "Plate")

	res, err := solver.Solve(g)
	require.NoError(t, err)

	b := recipeOf(t, res.Graph, "B")
	assert.True(t, b.HasManualOverride)
	assert.Equal(t, 9.0, rate(b.Outputs, "Plate"))
	assert.Equal(t, 1.0, b.Machines)
	assert.Equal(t, 2.0, rate(recipeOf(t, res.Graph, "A").Outputs, "Ore"))
}

// TestSolve_BalancerPassThrough: a balancer mirrors downstream demand and
// hands it to its producer.
func TestSolve_BalancerPassThrough(t *testing.T) {
	g := core.NewGraph()
	bal := core.NewBalancerNode()
	bal.Material = "Rubber"
	addNodes(t, g, map[string]core.Data{
		"rubber":   rubberMaker(),
		"bal":      bal,
		"assembly": scaled(t, assemblyI(), "Electronics1", 48), // Rubber 12
	}, "rubber", "bal", "assembly")
	connect(t, g, "rubber", "bal", "Rubber")
	connect(t, g, "bal", "assembly", "Rubber")

	res, err := solver.Solve(g)
	require.NoError(t, err)
	require.True(t, res.Converged)

	n, err := res.Graph.Node("bal")
	require.NoError(t, err)
	b, ok := n.Balancer()
	require.True(t, ok)
	assert.Equal(t, 12.0, b.Throughput)
	assert.Equal(t, 12.0, rate(recipeOf(t, res.Graph, "rubber").Outputs, "Rubber"))
	assert.Equal(t, 0.75, recipeOf(t, res.Graph, "rubber").Machines)
}

// TestSolve_IterationBound: an amplifying self-loop keeps halving and runs
// into the 3N ceiling; the best-effort graph is still returned.
func TestSolve_IterationBound(t *testing.T) {
	g := core.NewGraph()
	addNodes(t, g, map[string]core.Data{
		"loop": core.NewRecipeNode("Doubler", streams(s("Ore", 1)), streams(s("Ore", 2))),
	}, "loop")
	connect(t, g, "loop", "loop", "Ore")

	var passes []int
	res, err := solver.Solve(g, solver.WithOnPass(func(p int, _ bool) { passes = append(passes, p) }))
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 3, res.Bound)
	assert.Equal(t, 3, res.Passes)
	assert.Equal(t, []int{1, 2, 3}, passes)
	assert.Less(t, recipeOf(t, res.Graph, "loop").Machines, 1.0)
	assert.Equal(t, [][]string{{"loop", "loop"}}, res.Loops)
}

// TestSolve_UpstreamOnlyIsolation edits an unlocked node in A → B → C → D and
// expects D untouched while B and A follow C's inputs.
func TestSolve_UpstreamOnlyIsolation(t *testing.T) {
	g := core.NewGraph()
	c := scaled(t, core.NewRecipeNode("Press", streams(s("Plate", 2)), streams(s("Gear", 1))), "Gear", 6)
	c.Unlocked = true
	c.HasManualOverride = true
	addNodes(t, g, map[string]core.Data{
		"A": core.NewRecipeNode("Miner", nil, streams(s("Ore", 1))),
		"B": core.NewRecipeNode("Smelter", streams(s("Ore", 1)), streams(s("Plate", 1))),
		"C": c,
		"D": core.NewRecipeNode("Boxer", streams(s("Gear", 1)), streams(s("Box", 1))),
	}, "A", "B", "C", "D")
	connect(t, g, "A", "B", "Ore")
	connect(t, g, "B", "C", "Plate")
	connect(t, g, "C", "D", "Gear")

	before, err := g.Node("D")
	require.NoError(t, err)
	dBefore := *before
	dBefore.Data = before.Data.(*core.RecipeNode).Clone()

	res, err := solver.Solve(g, solver.WithChangedNode("C"))
	require.NoError(t, err)
	assert.Equal(t, solver.ModeUpstreamOnly, res.Mode)
	assert.True(t, res.Converged)
	assert.Equal(t, []string{"C", "B", "A"}, res.Visited)

	dAfter, err := res.Graph.Node("D")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(dBefore, *dAfter), "downstream node must be byte-for-byte unchanged")

	assert.Equal(t, 12.0, rate(recipeOf(t, res.Graph, "B").Outputs, "Plate"))
	assert.Equal(t, 12.0, recipeOf(t, res.Graph, "B").Machines)
	assert.Equal(t, 12.0, rate(recipeOf(t, res.Graph, "A").Outputs, "Ore"))
	assert.Equal(t, 6.0, recipeOf(t, res.Graph, "C").Machines)
}

// TestSolve_AutoModeFallsBackToFull: a locked edit runs the full solver.
func TestSolve_AutoModeFallsBackToFull(t *testing.T) {
	g := chain(t, 2)
	res, err := solver.Solve(g, solver.WithChangedNode("C"))
	require.NoError(t, err)
	assert.Equal(t, solver.ModeFull, res.Mode)
	assert.Nil(t, res.Visited)
}

// TestSolve_AfterNodeDeletion: the removed ID never appears in the next result.
func TestSolve_AfterNodeDeletion(t *testing.T) {
	g := chain(t, 5)
	require.NoError(t, g.RemoveNode("B"))

	var touched []string
	res, err := solver.Solve(g, solver.WithOnUpdate(func(u solver.Update) { touched = append(touched, u.Node) }))
	require.NoError(t, err)
	assert.False(t, res.Graph.HasNode("B"))
	assert.Equal(t, []string{"A", "C"}, res.Graph.NodeIDs())
	assert.Empty(t, res.Graph.Edges())
	assert.NotContains(t, touched, "B")
}

// TestSolve_UpdateHook reports every rewritten value.
func TestSolve_UpdateHook(t *testing.T) {
	var updates []solver.Update
	res, err := solver.Solve(chain(t, 2), solver.WithOnUpdate(func(u solver.Update) { updates = append(updates, u) }))
	require.NoError(t, err)
	assert.Len(t, updates, res.Updates)
	assert.Contains(t, updates, solver.Update{Node: "B", Field: solver.FieldOutput, Material: "Plate", Old: 1, New: 2})
}
