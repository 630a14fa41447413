// File: cycle.go
// Role: Feedback-loop detection with three-color marking.
// Determinism:
//   - Roots are tried in node insertion order, successors in edge insertion
//     order; loops are returned sorted by signature.

package dfs

import (
	"slices"

	"github.com/katalvlaran/prodflow/core"
)

// DetectCycles reports the loops closed by back edges in g. Each loop is
// returned closed ([a, b, a]) and rotated so that its smallest ID comes
// first. A nil or acyclic graph yields (false, nil, nil).
func DetectCycles(g *core.Graph) (bool, [][]string, error) {
	if g == nil {
		return false, nil, nil
	}

	ids := g.NodeIDs()
	c := &cycleFinder{
		g:     g,
		state: make(map[string]int, len(ids)),
		path:  make([]string, 0, len(ids)),
		seen:  make(map[string]struct{}),
	}
	for _, id := range ids {
		if c.state[id] == White {
			c.visit(id)
		}
	}
	if len(c.cycles) == 0 {
		return false, nil, nil
	}
	slices.SortFunc(c.cycles, func(a, b []string) int { return slices.Compare(a, b) })

	return true, c.cycles, nil
}

type cycleFinder struct {
	g      *core.Graph
	state  map[string]int
	path   []string
	seen   map[string]struct{}
	cycles [][]string
}

func (c *cycleFinder) visit(id string) {
	c.state[id] = Gray
	c.path = append(c.path, id)

	for _, next := range successors(c.g, id) {
		switch c.state[next] {
		case White:
			c.visit(next)
		case Gray:
			c.record(next)
		}
	}

	c.path = c.path[:len(c.path)-1]
	c.state[id] = Black
}

// record stores the loop running from start to the top of the path.
func (c *cycleFinder) record(start string) {
	loop := MinimalRotation(c.path[slices.Index(c.path, start):])
	loop = append(loop, loop[0])
	sig := signature(loop)
	if _, dup := c.seen[sig]; dup {
		return
	}
	c.seen[sig] = struct{}{}
	c.cycles = append(c.cycles, loop)
}

// successors returns the unique targets of id's out-edges in edge order.
func successors(g *core.Graph, id string) []string {
	var out []string
	for _, e := range g.OutEdges(id) {
		if !slices.Contains(out, e.Target) {
			out = append(out, e.Target)
		}
	}
	return out
}
