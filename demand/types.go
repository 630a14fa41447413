package demand

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/katalvlaran/prodflow/core"
)

// Sentinel errors for Seed, Validate and Propagate.
var (
	// ErrGraphNil is returned if a nil graph pointer is passed.
	ErrGraphNil = errors.New("demand: graph is nil")

	// ErrNegativeRate is returned for a seed with a negative rate.
	ErrNegativeRate = errors.New("demand: negative rate")

	// ErrEmptyNode is returned for a seed without a node ID.
	ErrEmptyNode = errors.New("demand: empty node id")

	// ErrEmptyMaterial is returned for a seed without a material.
	ErrEmptyMaterial = errors.New("demand: empty material")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("demand: invalid option supplied")
)

// Demand asks node NodeID to consume Material at Rate.
type Demand struct {
	NodeID   string  `json:"nodeId" yaml:"node"`
	Material string  `json:"material" yaml:"material"`
	Rate     float64 `json:"rate" yaml:"rate"`
}

// key identifies one (node, material) demand slot.
type key struct {
	node     string
	material string
}

// DefaultIterationFactor bounds Propagate to 3 × node count passes.
const DefaultIterationFactor = 3

// Option configures Propagate.
type Option func(*Options)

// Options holds the Propagate configuration.
type Options struct {
	// IterationFactor bounds the run to IterationFactor × node count passes.
	IterationFactor int

	// Logger receives V(1) pass messages.
	Logger logr.Logger

	err error
}

// DefaultOptions returns IterationFactor 3 and a discarding logger.
func DefaultOptions() Options {
	return Options{
		IterationFactor: DefaultIterationFactor,
		Logger:          logr.Discard(),
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

// Result is the outcome of Propagate.
type Result struct {
	// Graph is the scaled copy; the input graph is never modified.
	Graph *core.Graph

	// Demands lists every (node, material) demand known at the end, in node order.
	Demands []Demand

	Passes    int
	Bound     int
	Converged bool
}
