package solver

import (
	"fmt"
	"time"

	"github.com/katalvlaran/prodflow/core"
)

// Solve propagates rates through a copy of g and returns the solved copy.
// g itself is never modified, so a caller can commit the result atomically
// (core.Graph.Replace) or discard it.
//
// Mode selection:
//   - ModeFull and ModeUpstreamOnly run as requested.
//   - ModeAuto runs upstream-only iff ChangedNode is set and names a recipe
//     with Unlocked; otherwise it runs full.
//
// Returns ErrGraphNil, ErrOptionViolation, ErrChangedNodeRequired, or a
// wrapped core.ErrNodeNotFound when ChangedNode is absent from g.
func Solve(g *core.Graph, opts ...Option) (*Result, error) {
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

	work := g.Clone()
	mode, err := resolveMode(work, o)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	s := newState(work, o)
	res := &Result{Graph: work, Mode: mode}
	switch mode {
	case ModeUpstreamOnly:
		if err = s.upstream(o.ChangedNode, res); err != nil {
			return nil, err
		}
	default:
		s.full(res)
	}
	res.Updates = s.updates

	o.Logger.V(1).Info("solve finished",
		"mode", mode.String(),
		"passes", res.Passes,
		"converged", res.Converged,
		"updates", res.Updates,
		"elapsed", time.Since(start),
	)

	return res, nil
}

// resolveMode turns ModeAuto into a concrete mode and validates ChangedNode.
func resolveMode(g *core.Graph, o Options) (Mode, error) {
	if o.ChangedNode == "" {
		if o.Mode == ModeUpstreamOnly {
			return 0, ErrChangedNodeRequired
		}
		return ModeFull, nil
	}
	n, err := g.Node(o.ChangedNode)
	if err != nil {
		return 0, fmt.Errorf("solver: changed node: %w", err)
	}
	switch o.Mode {
	case ModeFull, ModeUpstreamOnly:
		return o.Mode, nil
	}
	if r, ok := n.Recipe(); ok && r.Unlocked {
		return ModeUpstreamOnly, nil
	}

	return ModeFull, nil
}
