package editor_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/prodflow/balancer"
	"github.com/katalvlaran/prodflow/catalog"
	"github.com/katalvlaran/prodflow/core"
	"github.com/katalvlaran/prodflow/editor"
	"github.com/katalvlaran/prodflow/solver"
)

// SessionSuite drives a Session built on the default catalog with stable IDs.
type SessionSuite struct {
	suite.Suite
	s     *editor.Session
	edits map[editor.Op]int
	fails map[editor.Op]int
	modes []solver.Mode
}

func (t *SessionSuite) SetupTest() {
	t.edits = map[editor.Op]int{}
	t.fails = map[editor.Op]int{}
	t.modes = nil
	s, err := editor.New(catalog.Default(),
		editor.WithIDGenerator(editor.SequentialIDs()),
		editor.WithOnEdit(func(op editor.Op, err error) {
			if err != nil {
				t.fails[op]++
				return
			}
			t.edits[op]++
		}),
		editor.WithOnSolve(func(_ editor.Op, res *solver.Result, _ time.Duration) {
			t.modes = append(t.modes, res.Mode)
		}),
	)
	t.Require().NoError(err)
	t.s = s
}

func (t *SessionSuite) add(machine string) string {
	id, err := t.s.AddRecipe(machine)
	t.Require().NoError(err)
	return id
}

func (t *SessionSuite) connect(src string, srcPort int, dst string, dstPort int) string {
	id, err := t.s.Connect(editor.Port{Node: src, Index: srcPort}, editor.Port{Node: dst, Index: dstPort})
	t.Require().NoError(err)
	return id
}

func (t *SessionSuite) recipe(id string) *core.RecipeNode {
	n, err := t.s.Snapshot().Node(id)
	t.Require().NoError(err)
	r, ok := n.Recipe()
	t.Require().True(ok)
	return r
}

func (t *SessionSuite) balancerNode(id string) *core.BalancerNode {
	n, err := t.s.Snapshot().Node(id)
	t.Require().NoError(err)
	b, ok := n.Balancer()
	t.Require().True(ok)
	return b
}

func (t *SessionSuite) TestStableIDs() {
	t.Equal("recipe-1", t.add("Rubber Maker"))
	t.Equal("recipe-2", t.add("Assembly I"))
	id, err := t.s.AddBalancer()
	t.Require().NoError(err)
	t.Equal("balancer-1", id)
	t.Equal(uint64(3), t.s.Revision())
}

// TestRubberMakerScenario: Assembly I demanding Rubber 24 drives the Rubber Maker to 1.5 machines.
func (t *SessionSuite) TestRubberMakerScenario() {
	rubber := t.add("Rubber Maker")
	asm := t.add("Assembly I")
	edge := t.connect(rubber, 0, asm, 0)
	t.Equal("e1", edge)

	res, err := t.s.SetOutputRate(asm, "Electronics1", 96, false)
	t.Require().NoError(err)
	t.Equal(solver.ModeFull, res.Mode)
	t.True(res.Converged)

	r := t.recipe(rubber)
	t.Equal(1.5, r.Machines)
	t.Equal([]core.Stream{{Material: "Diesel", Rate: 12}, {Material: "Coal", Rate: 3}}, r.Inputs)
	t.Equal([]core.Stream{{Material: "Rubber", Rate: 24}, {Material: "WasteWater", Rate: 4 * 1.5}}, r.Outputs)

	a := t.recipe(asm)
	t.Equal(24.0, a.Machines)
	t.False(a.Unlocked)
	t.Same(res, t.s.LastResult())
}

// TestRejectedConnectionKeepsGraph: a material mismatch is refused and nothing changes.
func (t *SessionSuite) TestRejectedConnectionKeepsGraph() {
	rubber := t.add("Rubber Maker")
	asm := t.add("Assembly I")
	before := t.s.Revision()

	_, err := t.s.Connect(editor.Port{Node: rubber, Index: 0}, editor.Port{Node: asm, Index: 1})
	t.ErrorIs(err, editor.ErrInvalidConnection)
	_, err = t.s.Connect(editor.Port{Node: rubber, Index: 5}, editor.Port{Node: asm, Index: 0})
	t.ErrorIs(err, editor.ErrInvalidConnection)
	_, err = t.s.Connect(editor.Port{Node: "ghost", Index: 0}, editor.Port{Node: asm, Index: 0})
	t.ErrorIs(err, core.ErrNodeNotFound)

	t.Equal(before, t.s.Revision())
	t.Zero(t.s.Snapshot().EdgeCount())
	t.Equal(3, t.fails[editor.OpConnect])
}

// TestBalancerMaterialLock: the first edge locks the balancer to Rubber.
func (t *SessionSuite) TestBalancerMaterialLock() {
	rubber := t.add("Rubber Maker")
	copper := t.add("Copper Electrolysis")
	asm := t.add("Assembly I")
	bal, err := t.s.AddBalancer()
	t.Require().NoError(err)

	t.connect(rubber, 0, bal, 0)
	b := t.balancerNode(bal)
	t.Equal("Rubber", b.Material)
	t.Equal(2, b.InputPorts)
	t.Equal([]bool{true, false}, b.ConnectedInputs)

	_, err = t.s.Connect(editor.Port{Node: copper, Index: 0}, editor.Port{Node: bal, Index: 1})
	t.ErrorIs(err, editor.ErrInvalidConnection)
	t.ErrorIs(err, balancer.ErrMaterialMismatch)

	_, err = t.s.Connect(editor.Port{Node: rubber, Index: 0}, editor.Port{Node: bal, Index: 0})
	t.ErrorIs(err, balancer.ErrPortConnected)

	// balancer → Assembly I Rubber input; edge material comes from the balancer
	eid := t.connect(bal, 0, asm, 0)
	e, err := t.s.Snapshot().Edge(eid)
	t.Require().NoError(err)
	t.Equal("Rubber", e.Material)

	// balancer → Copper input of the assembly is refused
	_, err = t.s.Connect(editor.Port{Node: bal, Index: 1}, editor.Port{Node: asm, Index: 1})
	t.ErrorIs(err, balancer.ErrMaterialMismatch)

	_, err = t.s.SetOutputRate(asm, "Electronics1", 32, false)
	t.Require().NoError(err)
	t.Equal(8.0, t.balancerNode(bal).Throughput)
	t.Equal(0.5, t.recipe(rubber).Machines)
}

// TestBalancerToBalancer links two unset balancers; the first lock on the
// chain reaches both and the pending edge takes the material.
func (t *SessionSuite) TestBalancerToBalancer() {
	b1, err := t.s.AddBalancer()
	t.Require().NoError(err)
	b2, err := t.s.AddBalancer()
	t.Require().NoError(err)

	link := t.connect(b1, 0, b2, 0)
	e, err := t.s.Snapshot().Edge(link)
	t.Require().NoError(err)
	t.Empty(e.Material)
	t.False(t.balancerNode(b1).HasMaterial())
	t.False(t.balancerNode(b2).HasMaterial())
	t.Equal([]bool{true, false}, t.balancerNode(b2).ConnectedInputs)

	asm := t.add("Assembly I")
	t.connect(b2, 0, asm, 0)
	t.Equal("Rubber", t.balancerNode(b2).Material)
	t.Equal("Rubber", t.balancerNode(b1).Material)
	e, err = t.s.Snapshot().Edge(link)
	t.Require().NoError(err)
	t.Equal("Rubber", e.Material)

	rubber := t.add("Rubber Maker")
	t.connect(rubber, 0, b1, 0)
	copper := t.add("Copper Electrolysis")
	_, err = t.s.Connect(editor.Port{Node: copper, Index: 0}, editor.Port{Node: b1, Index: 1})
	t.ErrorIs(err, balancer.ErrMaterialMismatch)
}

// TestRemovedEdgeKeepsPortUsed: the port of a removed edge is refused and the
// next free port takes the new edge.
func (t *SessionSuite) TestRemovedEdgeKeepsPortUsed() {
	rubber := t.add("Rubber Maker")
	bal, err := t.s.AddBalancer()
	t.Require().NoError(err)
	eid := t.connect(rubber, 0, bal, 0)

	t.Require().NoError(t.s.RemoveEdge(eid))
	b := t.balancerNode(bal)
	t.Equal([]bool{true, false}, b.ConnectedInputs)
	t.Equal(2, b.InputPorts)
	t.Equal("Rubber", b.Material)

	_, err = t.s.Connect(editor.Port{Node: rubber, Index: 0}, editor.Port{Node: bal, Index: 0})
	t.ErrorIs(err, balancer.ErrPortConnected)
	t.Equal(1, balancer.FreePort(b, balancer.Input))
	t.connect(rubber, 0, bal, 1)
	b = t.balancerNode(bal)
	t.Equal([]bool{true, true, false}, b.ConnectedInputs)
	t.Equal(3, b.InputPorts)

	t.ErrorIs(t.s.RemoveEdge("e99"), core.ErrEdgeNotFound)
}

// TestRemoveNode drops the node with its edges; the next solve never sees it.
func (t *SessionSuite) TestRemoveNode() {
	var touched []string
	s, err := editor.New(catalog.Default(), editor.WithIDGenerator(editor.SequentialIDs()),
		editor.WithSolverOptions(solver.WithOnUpdate(func(u solver.Update) { touched = append(touched, u.Node) })))
	t.Require().NoError(err)
	t.s = s
	rubber := t.add("Rubber Maker")
	bal, err := t.s.AddBalancer()
	t.Require().NoError(err)
	asm := t.add("Assembly I")
	t.connect(rubber, 0, bal, 0)
	t.connect(bal, 0, asm, 0)

	touched = nil
	t.Require().NoError(t.s.RemoveNode(asm))
	g := t.s.Snapshot()
	t.False(g.HasNode(asm))
	t.Equal([]string{rubber, bal}, g.NodeIDs())
	t.Equal(1, g.EdgeCount())
	t.NotContains(touched, asm)
	for _, e := range g.Edges() {
		t.NotEqual(asm, e.Source)
		t.NotEqual(asm, e.Target)
	}
	t.Equal([]bool{true, false}, t.balancerNode(bal).ConnectedOutputs)
	_, err = t.s.Connect(editor.Port{Node: bal, Index: 0}, editor.Port{Node: asm, Index: 0})
	t.ErrorIs(err, core.ErrNodeNotFound)
	_, err = t.s.Connect(editor.Port{Node: bal, Index: 0}, editor.Port{Node: rubber, Index: 0})
	t.ErrorIs(err, balancer.ErrPortConnected)

	t.ErrorIs(t.s.RemoveNode(asm), core.ErrNodeNotFound)
}

// TestUnlockedEditIsUpstreamOnly: an unlocked edit never touches downstream nodes.
func (t *SessionSuite) TestUnlockedEditIsUpstreamOnly() {
	dist := t.add("Basic Distiller")
	rubber := t.add("Rubber Maker")
	asm := t.add("Assembly I")
	t.connect(dist, 0, rubber, 0)
	t.connect(rubber, 0, asm, 0)

	beforeAsm := t.recipe(asm)

	res, err := t.s.SetOutputRate(rubber, "Rubber", 32, true)
	t.Require().NoError(err)
	t.Equal(solver.ModeUpstreamOnly, res.Mode)
	t.Equal([]string{rubber, dist}, res.Visited)

	t.Empty(cmp.Diff(beforeAsm, t.recipe(asm)), "downstream node must be unchanged")

	r := t.recipe(rubber)
	t.Equal(2.0, r.Machines)
	t.True(r.Unlocked)
	t.True(r.HasManualOverride)

	d := t.recipe(dist)
	t.Equal(16.0, d.Outputs[0].Rate)
	t.Equal(0.59, d.Machines)
	t.Equal(35.56, d.Inputs[0].Rate)
}

// TestUnlockGate refuses to unlock a node next to an unlocked node.
func (t *SessionSuite) TestUnlockGate() {
	rubber := t.add("Rubber Maker")
	asm := t.add("Assembly I")
	other := t.add("Copper Electrolysis")
	t.connect(rubber, 0, asm, 0)

	t.Require().NoError(t.s.SetUnlocked(asm, true))
	t.False(t.s.CanUnlock(rubber))
	t.ErrorIs(t.s.SetUnlocked(rubber, true), editor.ErrAdjacentUnlocked)
	_, err := t.s.SetOutputRate(rubber, "Rubber", 8, true)
	t.ErrorIs(err, editor.ErrAdjacentUnlocked)

	// unrelated nodes are free, and relocking the neighbor lifts the gate
	t.True(t.s.CanUnlock(other))
	t.Require().NoError(t.s.SetUnlocked(asm, false))
	t.True(t.s.CanUnlock(rubber))
	t.Require().NoError(t.s.SetUnlocked(rubber, true))
}

// TestLockedNodeRefusesEdits keeps manual edits off locked nodes.
func (t *SessionSuite) TestLockedNodeRefusesEdits() {
	rubber := t.add("Rubber Maker")
	t.Require().NoError(t.s.SetLocked(rubber, true))
	t.True(t.recipe(rubber).Locked)

	_, err := t.s.SetOutputRate(rubber, "Rubber", 8, false)
	t.ErrorIs(err, editor.ErrNodeLocked)
	t.Equal(1.0, t.recipe(rubber).Machines)

	t.Require().NoError(t.s.SetLocked(rubber, false))
	_, err = t.s.SetOutputRate(rubber, "Rubber", 8, false)
	t.NoError(err)
}

// TestRateEditErrors covers the remaining validation paths.
func (t *SessionSuite) TestRateEditErrors() {
	rubber := t.add("Rubber Maker")
	bal, err := t.s.AddBalancer()
	t.Require().NoError(err)

	_, err = t.s.SetOutputRate(rubber, "Rubber", -1, false)
	t.ErrorIs(err, editor.ErrNegativeRate)
	_, err = t.s.SetOutputRate(rubber, "Diesel", 5, false)
	t.ErrorIs(err, editor.ErrUnknownMaterial)
	_, err = t.s.SetOutputRate(bal, "Rubber", 5, false)
	t.ErrorIs(err, editor.ErrNotRecipe)
	_, err = t.s.SetOutputRate("ghost", "Rubber", 5, false)
	t.ErrorIs(err, core.ErrNodeNotFound)
	t.ErrorIs(t.s.SetLocked(bal, true), editor.ErrNotRecipe)

	_, err = t.s.AddRecipe("Assembly II")
	t.ErrorIs(err, catalog.ErrRecipeNotFound)

	t.Equal(5, t.fails[editor.OpSetRate]+t.fails[editor.OpSetLocked])
}

// TestCustomRecipeAndReset covers AddRecipeNode, Solve and Reset.
func (t *SessionSuite) TestCustomRecipeAndReset() {
	custom := core.NewRecipeNode("Smelter",
		[]core.Stream{{Material: "Ore", Rate: 2}}, []core.Stream{{Material: "Plate", Rate: 1}})
	id, err := t.s.AddRecipeNode(custom)
	t.Require().NoError(err)
	custom.Machines = 42
	t.Equal(1.0, t.recipe(id).Machines, "the session keeps its own copy")

	_, err = t.s.AddRecipeNode(nil)
	t.ErrorIs(err, core.ErrNilData)

	res, err := t.s.Solve()
	t.Require().NoError(err)
	t.True(res.Converged)

	t.s.Reset()
	t.Zero(t.s.Snapshot().NodeCount())
	t.Nil(t.s.LastResult())
	t.Equal(1, t.edits[editor.OpReset])
}

// TestEveryCommitSolves records one solve per committed structural edit.
func (t *SessionSuite) TestEveryCommitSolves() {
	rubber := t.add("Rubber Maker")
	asm := t.add("Assembly I")
	t.connect(rubber, 0, asm, 0)
	_, err := t.s.SetOutputRate(asm, "Electronics1", 8, true)
	t.Require().NoError(err)
	t.Equal([]solver.Mode{solver.ModeFull, solver.ModeFull, solver.ModeFull, solver.ModeUpstreamOnly}, t.modes)
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func TestNew_Errors(t *testing.T) {
	_, err := editor.New(nil)
	assert.ErrorIs(t, err, editor.ErrCatalogNil)
	_, err = editor.New(catalog.Default(), editor.WithIDGenerator(nil))
	assert.ErrorIs(t, err, editor.ErrOptionViolation)
}

// TestSession_ConcurrentEdits serializes parallel placements.
func TestSession_ConcurrentEdits(t *testing.T) {
	s, err := editor.New(catalog.Default())
	require.NoError(t, err)

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.AddRecipe("Rubber Maker"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	g := s.Snapshot()
	assert.Equal(t, n, g.NodeCount())
	assert.Equal(t, uint64(n), s.Revision())
	for _, id := range g.NodeIDs() {
		assert.Regexp(t, `^recipe-[0-9a-f-]{36}$`, id)
	}
}
