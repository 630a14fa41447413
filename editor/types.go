package editor

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/katalvlaran/prodflow/core"
	"github.com/katalvlaran/prodflow/solver"
)

// Sentinel errors for Session operations.
var (
	// ErrInvalidConnection is returned when an edge would break a port or material rule.
	ErrInvalidConnection = errors.New("editor: invalid connection")

	// ErrNotRecipe is returned when a recipe-only operation targets a balancer.
	ErrNotRecipe = errors.New("editor: node is not a recipe")

	// ErrUnknownMaterial is returned when a node has no output of the requested material.
	ErrUnknownMaterial = errors.New("editor: unknown output material")

	// ErrNegativeRate is returned for a negative target rate.
	ErrNegativeRate = errors.New("editor: negative rate")

	// ErrAdjacentUnlocked is returned when unlocking a node next to an unlocked node.
	ErrAdjacentUnlocked = errors.New("editor: adjacent node is already unlocked")

	// ErrNodeLocked is returned when a manual rate edit targets a locked node.
	ErrNodeLocked = errors.New("editor: node is locked")

	// ErrCatalogNil is returned by New without a catalog.
	ErrCatalogNil = errors.New("editor: catalog is nil")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("editor: invalid option supplied")
)

// Op names a Session operation in hooks and logs.
type Op string

const (
	OpAddRecipe   Op = "add_recipe"
	OpAddBalancer Op = "add_balancer"
	OpConnect     Op = "connect"
	OpRemoveNode  Op = "remove_node"
	OpRemoveEdge  Op = "remove_edge"
	OpSetRate     Op = "set_rate"
	OpSetLocked   Op = "set_locked"
	OpSetUnlocked Op = "set_unlocked"
	OpSolve       Op = "solve"
	OpReset       Op = "reset"
)

// Option configures a Session.
type Option func(*Options)

// Options holds the Session configuration.
type Options struct {
	// Logger receives one V(1) line per operation; solver logs go through it too.
	Logger logr.Logger

	// NewID generates node IDs. The default is "<kind>-<uuid>".
	NewID func(kind core.Kind) string

	// SolverOptions are appended to every solve the session runs.
	SolverOptions []solver.Option

	// OnSolve runs after every committed solve.
	OnSolve func(op Op, res *solver.Result, elapsed time.Duration)

	// OnEdit runs after every operation with its outcome (nil on success).
	OnEdit func(op Op, err error)

	err error
}

// DefaultOptions returns a discarding logger, uuid IDs and no-op hooks.
func DefaultOptions() Options {
	return Options{
		Logger:  logr.Discard(),
		NewID:   func(kind core.Kind) string { return fmt.Sprintf("%s-%s", kind, uuid.NewString()) },
		OnSolve: func(Op, *solver.Result, time.Duration) {},
		OnEdit:  func(Op, error) {},
	}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithIDGenerator replaces the node ID generator.
func WithIDGenerator(fn func(kind core.Kind) string) Option {
	return func(o *Options) {
		if fn == nil {
			o.err = fmt.Errorf("%w: nil ID generator", ErrOptionViolation)
			return
		}
		o.NewID = fn
	}
}

// WithSolverOptions appends solver options to every solve.
func WithSolverOptions(opts ...solver.Option) Option {
	return func(o *Options) { o.SolverOptions = append(o.SolverOptions, opts...) }
}

// WithOnSolve registers a callback for committed solves.
func WithOnSolve(fn func(op Op, res *solver.Result, elapsed time.Duration)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnSolve = fn
		}
	}
}

// WithOnEdit registers a callback for operation outcomes.
func WithOnEdit(fn func(op Op, err error)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnEdit = fn
		}
	}
}

// SequentialIDs returns a generator yielding "<kind>-1", "<kind>-2", ...
// per kind. Handy for scenarios and tests that need stable IDs.
func SequentialIDs() func(kind core.Kind) string {
	next := map[core.Kind]int{}
	return func(kind core.Kind) string {
		next[kind]++
		return fmt.Sprintf("%s-%d", kind, next[kind])
	}
}
