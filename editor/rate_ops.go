// File: rate_ops.go
// Role: Manual rate edits and the lock / unlock flags that steer them.

package editor

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/katalvlaran/prodflow/core"
	"github.com/katalvlaran/prodflow/recipe"
	"github.com/katalvlaran/prodflow/solver"
)

// SetOutputRate is the manual edit: scale node id so that it produces material
// at rate, mark it as a manual override, record unlocked, and solve.
//
// An unlocked edit runs upstream-only: producers follow the node's new inputs
// and everything downstream keeps its rates. A locked edit runs full mode.
//
// Errors: ErrNegativeRate, ErrNotRecipe, ErrNodeLocked, ErrUnknownMaterial,
// ErrAdjacentUnlocked (when unlocked would sit next to another unlocked node),
// or a wrapped core.ErrNodeNotFound. On error the graph is unchanged.
func (s *Session) SetOutputRate(id, material string, rate float64, unlocked bool) (res *solver.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.done(OpSetRate, &err)

	if rate < 0 {
		return nil, fmt.Errorf("%w: %g", ErrNegativeRate, rate)
	}
	w := s.g.Clone()
	r, err := recipeNode(w, id)
	if err != nil {
		return nil, err
	}
	if r.Locked {
		return nil, fmt.Errorf("%w: %q", ErrNodeLocked, id)
	}
	if unlocked && !r.Unlocked {
		if err = checkUnlock(w, id); err != nil {
			return nil, err
		}
	}
	sc, ok := recipe.Scale(r, material, rate)
	if !ok {
		return nil, fmt.Errorf("%w: %q has no output %q", ErrUnknownMaterial, r.Machine, material)
	}

	*r = *recipe.Apply(r, sc)
	r.HasManualOverride = true
	r.Unlocked = unlocked

	mode := solver.ModeFull
	if unlocked {
		mode = solver.ModeUpstreamOnly
	}
	s.log.V(1).Info("manual rate edit",
		"node", id, "material", material, "rate", rate, "machines", sc.Machines, "mode", mode.String())

	return s.commit(OpSetRate, w, solver.WithChangedNode(id), solver.WithMode(mode))
}

// SetLocked sets the manual lock flag of a recipe node. Locked nodes refuse
// SetOutputRate; the solver still scales them from demand.
func (s *Session) SetLocked(id string, locked bool) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.done(OpSetLocked, &err)

	w := s.g.Clone()
	r, err := recipeNode(w, id)
	if err != nil {
		return err
	}
	r.Locked = locked
	s.swap(w)

	return nil
}

// SetUnlocked toggles upstream-only editing for a recipe node. Unlocking is
// refused while a neighbor (either direction) is already unlocked.
func (s *Session) SetUnlocked(id string, unlocked bool) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.done(OpSetUnlocked, &err)

	w := s.g.Clone()
	r, err := recipeNode(w, id)
	if err != nil {
		return err
	}
	if unlocked && !r.Unlocked {
		if err = checkUnlock(w, id); err != nil {
			return err
		}
	}
	r.Unlocked = unlocked
	s.swap(w)

	return nil
}

// CanUnlock reports whether id may be unlocked right now.
func (s *Session) CanUnlock(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := recipeNode(s.g, id); err != nil {
		return false
	}
	return checkUnlock(s.g, id) == nil
}

// checkUnlock returns ErrAdjacentUnlocked when a neighbor of id is an unlocked recipe.
func checkUnlock(g *core.Graph, id string) error {
	nbrs, err := g.Neighbors(id)
	if err != nil {
		return err
	}
	blocker, found := lo.Find(nbrs, func(nid string) bool {
		n, err := g.Node(nid)
		if err != nil || nid == id {
			return false
		}
		r, ok := n.Recipe()
		return ok && r.Unlocked
	})
	if found {
		return fmt.Errorf("%w: %q next to %q", ErrAdjacentUnlocked, id, blocker)
	}
	return nil
}
