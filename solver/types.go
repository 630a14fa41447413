package solver

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/katalvlaran/prodflow/core"
)

// Sentinel errors for Solve.
var (
	// ErrGraphNil is returned if a nil graph pointer is passed.
	ErrGraphNil = errors.New("solver: graph is nil")

	// ErrChangedNodeRequired is returned when ModeUpstreamOnly is requested without a changed node.
	ErrChangedNodeRequired = errors.New("solver: upstream-only mode requires a changed node")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("solver: invalid option supplied")
)

// DefaultIterationFactor is the designed relaxation ceiling: factor × node count passes.
const DefaultIterationFactor = 3

// Mode selects the propagation strategy.
type Mode uint8

const (
	// ModeAuto runs upstream-only when the changed node is an unlocked recipe, full otherwise.
	ModeAuto Mode = iota
	// ModeFull relaxes the whole graph in both directions until equilibrium.
	ModeFull
	// ModeUpstreamOnly pushes the changed node's input demand back through its producers only.
	ModeUpstreamOnly
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeFull:
		return "full"
	case ModeUpstreamOnly:
		return "upstream-only"
	default:
		return "unknown"
	}
}

// ParseMode maps "auto", "full" and "upstream-only" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "auto":
		return ModeAuto, nil
	case "full":
		return ModeFull, nil
	case "upstream-only", "upstream":
		return ModeUpstreamOnly, nil
	default:
		return ModeAuto, fmt.Errorf("%w: unknown mode %q", ErrOptionViolation, s)
	}
}

// Option configures Solve via functional arguments.
type Option func(*Options)

// Options holds the solver configuration.
type Options struct {
	// Mode selects the strategy; ModeAuto by default.
	Mode Mode

	// ChangedNode is the edit origin, if any.
	ChangedNode string

	// Epsilon is the "changed" tolerance; core.Epsilon by default.
	Epsilon float64

	// IterationFactor bounds full mode to IterationFactor × node count passes.
	IterationFactor int

	// Logger receives pass-level (V(1)) and update-level (V(2)) messages.
	Logger logr.Logger

	// OnPass is called after every full-mode relaxation pass.
	OnPass func(pass int, changed bool)

	// OnUpdate is called for every individual value the solver rewrites.
	OnUpdate func(u Update)

	err error
}

// DefaultOptions returns the production defaults: ModeAuto, core.Epsilon,
// DefaultIterationFactor, a discarding logger and no-op hooks.
func DefaultOptions() Options {
	return Options{
		Mode:            ModeAuto,
		Epsilon:         core.Epsilon,
		IterationFactor: DefaultIterationFactor,
		Logger:          logr.Discard(),
		OnPass:          func(int, bool) {},
		OnUpdate:        func(Update) {},
	}
}

// WithMode selects the propagation mode.
func WithMode(m Mode) Option {
	return func(o *Options) {
		switch m {
		case ModeAuto, ModeFull, ModeUpstreamOnly:
			o.Mode = m
		default:
			o.err = fmt.Errorf("%w: unknown mode %d", ErrOptionViolation, m)
		}
	}
}

// WithChangedNode records the edit origin.
func WithChangedNode(id string) Option {
	return func(o *Options) { o.ChangedNode = id }
}

// WithEpsilon overrides the change tolerance; eps must be positive.
func WithEpsilon(eps float64) Option {
	return func(o *Options) {
		if eps <= 0 {
			o.err = fmt.Errorf("%w: epsilon must be positive (%g)", ErrOptionViolation, eps)
			return
		}
		o.Epsilon = eps
	}
}

// WithIterationFactor overrides the pass ceiling factor; f must be at least 1.
func WithIterationFactor(f int) Option {
	return func(o *Options) {
		if f < 1 {
			o.err = fmt.Errorf("%w: iteration factor must be >= 1 (%d)", ErrOptionViolation, f)
			return
		}
		o.IterationFactor = f
	}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithOnPass registers a callback run after each full-mode pass.
func WithOnPass(fn func(pass int, changed bool)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnPass = fn
		}
	}
}

// WithOnUpdate registers a callback run for each rewritten value.
func WithOnUpdate(fn func(u Update)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnUpdate = fn
		}
	}
}

// Field names the value an Update rewrote.
type Field string

const (
	FieldMachines   Field = "machines"
	FieldInput      Field = "input"
	FieldOutput     Field = "output"
	FieldThroughput Field = "throughput"
)

// Update describes one value rewritten by the solver.
type Update struct {
	Node     string
	Field    Field
	Material string
	Old, New float64
}

// Result is the outcome of one Solve call.
type Result struct {
	// Graph is the solved snapshot; the input graph is never modified.
	Graph *core.Graph

	// Mode is the strategy that actually ran (never ModeAuto).
	Mode Mode

	// Passes is the number of full-mode relaxation passes run.
	Passes int

	// Bound is the pass ceiling used (IterationFactor × node count).
	Bound int

	// Converged is false when full mode hit Bound while still changing.
	// Upstream-only always converges.
	Converged bool

	// Loops lists the feedback loops found when full mode hit Bound, each
	// closed and starting at its smallest node ID. Empty otherwise.
	Loops [][]string

	// Visited is the upstream-only visit order.
	Visited []string

	// Updates counts the values rewritten.
	Updates int
}
