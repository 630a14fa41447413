// File: topological.go
// Role: Producer-first ordering of an acyclic production graph.

package dfs

import (
	"fmt"
	"slices"

	"github.com/katalvlaran/prodflow/core"
)

type topoSorter struct {
	g     *core.Graph
	opts  topoOptions
	state map[string]int
	order []string
}

// TopologicalSort orders the nodes of g so that for every edge u→v, u comes
// before v. Among unrelated nodes insertion order is kept as far as the
// reverse post-order allows. A loop yields ErrCycleDetected.
func TopologicalSort(g *core.Graph, options ...TopoOption) ([]string, error) {
	if g == nil {
		return nil, ErrGraphNil
	}
	opts := defaultTopoOptions()
	for _, opt := range options {
		opt(&opts)
	}

	ids := g.NodeIDs()
	t := &topoSorter{
		g:     g,
		opts:  opts,
		state: make(map[string]int, len(ids)),
		order: make([]string, 0, len(ids)),
	}
	// visiting roots back to front keeps earlier nodes earlier after the reversal
	for i := len(ids) - 1; i >= 0; i-- {
		if t.state[ids[i]] == White {
			if err := t.visit(ids[i]); err != nil {
				return nil, err
			}
		}
	}

	slices.Reverse(t.order)

	return t.order, nil
}

func (t *topoSorter) visit(id string) error {
	select {
	case <-t.opts.ctx.Done():
		return t.opts.ctx.Err()
	default:
	}
	switch t.state[id] {
	case Gray:
		return fmt.Errorf("%w: at %q", ErrCycleDetected, id)
	case Black:
		return nil
	}
	t.state[id] = Gray

	succ := successors(t.g, id)
	for i := len(succ) - 1; i >= 0; i-- {
		if err := t.visit(succ[i]); err != nil {
			return err
		}
	}

	t.state[id] = Black
	t.order = append(t.order, id)

	return nil
}
