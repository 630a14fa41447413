package scenario

import (
	"github.com/katalvlaran/prodflow/core"
	"github.com/katalvlaran/prodflow/demand"
	"github.com/katalvlaran/prodflow/editor"
)

// Replay applies sc's steps to s in order. On failure the returned Run
// describes the steps applied so far and the error wraps ErrStepFailed.
func (sc *Scenario) Replay(s *editor.Session, opts ...Option) (*Run, error) {
	if s == nil {
		return nil, ErrSessionNil
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.Logger.WithName("scenario").WithValues("scenario", sc.Name)

	run := &Run{Aliases: make(map[string]string)}
	defer func() { run.Last = s.LastResult() }()

	for i, st := range sc.Steps {
		created, err := run.apply(s, st)
		if err != nil {
			return run, stepError(i, st, err)
		}
		if st.As != "" && created != "" {
			run.Aliases[st.As] = created
		}
		run.Applied++
		log.V(1).Info("step applied", "step", i+1, "op", string(st.Op), "id", created)
	}

	return run, nil
}

// apply runs one step and returns the ID it created, if any.
func (r *Run) apply(s *editor.Session, st Step) (string, error) {
	switch st.Op {
	case editor.OpAddRecipe:
		return s.AddRecipe(st.Machine)
	case editor.OpAddBalancer:
		return s.AddBalancer()
	case editor.OpConnect:
		return s.Connect(
			editor.Port{Node: r.Resolve(st.From), Index: st.FromPort},
			editor.Port{Node: r.Resolve(st.To), Index: st.ToPort},
		)
	case editor.OpSetRate:
		_, err := s.SetOutputRate(r.Resolve(st.Node), st.Material, st.Rate, st.Unlocked)
		return "", err
	case editor.OpSetLocked:
		return "", s.SetLocked(r.Resolve(st.Node), st.Value)
	case editor.OpSetUnlocked:
		return "", s.SetUnlocked(r.Resolve(st.Node), st.Value)
	case editor.OpRemoveNode:
		return "", s.RemoveNode(r.Resolve(st.Node))
	case editor.OpRemoveEdge:
		return "", s.RemoveEdge(r.Resolve(st.Edge))
	case editor.OpSolve:
		_, err := s.Solve()
		return "", err
	case editor.OpReset:
		s.Reset()
		clear(r.Aliases)
		return "", nil
	}
	return "", st.validate()
}

// Resolve maps an alias to its ID; other names are returned unchanged.
func (r *Run) Resolve(name string) string {
	if id, ok := r.Aliases[name]; ok {
		return id
	}
	return name
}

// Demands resolves the aliases in sc's demand list, seeds them and checks
// every seed against g.
func (r *Run) Demands(sc *Scenario, g *core.Graph) ([]demand.Demand, error) {
	resolved := make([]demand.Demand, len(sc.Demands))
	for i, d := range sc.Demands {
		d.NodeID = r.Resolve(d.NodeID)
		resolved[i] = d
	}
	seeds, err := demand.Seed(resolved...)
	if err != nil {
		return nil, err
	}
	if err = demand.Validate(g, seeds); err != nil {
		return nil, err
	}
	return seeds, nil
}
