// File: session.go
// Role: Session lifecycle, snapshots, and the copy-then-swap commit path.
// Concurrency:
//   - Every operation holds mu for its whole duration, so edits are
//     serialized and each solve sees the snapshot left by the previous one.
// Failure model:
//   - Operations build a private working copy. Any error discards it and
//     the live graph keeps its pre-edit state.

package editor

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/katalvlaran/prodflow/catalog"
	"github.com/katalvlaran/prodflow/core"
	"github.com/katalvlaran/prodflow/solver"
)

// Session is the editable production graph behind a UI or a scenario run.
type Session struct {
	mu       sync.Mutex
	g        *core.Graph
	cat      *catalog.Catalog
	opts     Options
	log      logr.Logger
	revision uint64
	last     *solver.Result
}

// New returns an empty Session placing recipes from cat.
func New(cat *catalog.Catalog, opts ...Option) (*Session, error) {
	if cat == nil {
		return nil, ErrCatalogNil
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	return &Session{
		g:    core.NewGraph(),
		cat:  cat,
		opts: o,
		log:  o.Logger.WithName("editor"),
	}, nil
}

// Catalog returns the catalog the session places recipes from.
func (s *Session) Catalog() *catalog.Catalog { return s.cat }

// Snapshot returns a deep copy of the current graph.
func (s *Session) Snapshot() *core.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.g.Clone()
}

// Revision counts committed changes.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.revision
}

// LastResult returns the most recent committed solve, or nil.
func (s *Session) LastResult() *solver.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last
}

// Solve re-runs a full solve on the current graph and commits it.
func (s *Session) Solve() (res *solver.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.done(OpSolve, &err)

	return s.commit(OpSolve, s.g.Clone(), solver.WithMode(solver.ModeFull))
}

// Reset drops every node and edge.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	defer s.done(OpReset, &err)

	s.g.Clear()
	s.last = nil
	s.revision++
}

// commit solves w and, on success, swaps it in as the live graph.
// Caller holds mu.
func (s *Session) commit(op Op, w *core.Graph, extra ...solver.Option) (*solver.Result, error) {
	opts := slices.Clone(s.opts.SolverOptions)
	opts = append(opts, solver.WithLogger(s.log.WithName("solver")))
	opts = append(opts, extra...)

	start := time.Now()
	res, err := solver.Solve(w, opts...)
	if err != nil {
		return nil, fmt.Errorf("editor: %s: %w", op, err)
	}
	elapsed := time.Since(start)

	s.g.Replace(res.Graph)
	s.last = res
	s.revision++
	s.opts.OnSolve(op, res, elapsed)
	if !res.Converged {
		s.log.Info("solve did not converge; committed best effort",
			"op", string(op), "passes", res.Passes, "bound", res.Bound)
	}

	return res, nil
}

// swap commits w without solving. Caller holds mu.
func (s *Session) swap(w *core.Graph) {
	s.g.Replace(w)
	s.revision++
}

// done reports an operation outcome to the hook and the log.
func (s *Session) done(op Op, errp *error) {
	err := *errp
	s.opts.OnEdit(op, err)
	if err != nil {
		s.log.V(1).Info("operation rejected", "op", string(op), "error", err.Error())
		return
	}
	s.log.V(1).Info("operation applied", "op", string(op), "revision", s.revision)
}

// recipeNode returns the recipe payload of id in g.
func recipeNode(g *core.Graph, id string) (*core.RecipeNode, error) {
	n, err := g.Node(id)
	if err != nil {
		return nil, err
	}
	r, ok := n.Recipe()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRecipe, id)
	}
	return r, nil
}
