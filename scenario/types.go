package scenario

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/katalvlaran/prodflow/demand"
	"github.com/katalvlaran/prodflow/editor"
	"github.com/katalvlaran/prodflow/solver"
)

// Sentinel errors for scenario parsing and replay.
var (
	// ErrInvalidScenario is returned when a document fails decoding or validation.
	ErrInvalidScenario = errors.New("scenario: invalid scenario")

	// ErrStepFailed wraps the session error of the step that stopped a replay.
	ErrStepFailed = errors.New("scenario: step failed")

	// ErrSessionNil is returned by Replay without a session.
	ErrSessionNil = errors.New("scenario: session is nil")
)

// Scenario is one decoded document.
type Scenario struct {
	Name    string          `yaml:"name"`
	Steps   []Step          `yaml:"steps"`
	Demands []demand.Demand `yaml:"demands,omitempty"`
}

// Step is one editor operation. Only the fields its Op uses are read.
type Step struct {
	Op editor.Op `yaml:"op"`

	// As names the node (add_*) or edge (connect) the step creates.
	As string `yaml:"as,omitempty"`

	Machine string `yaml:"machine,omitempty"`
	Node    string `yaml:"node,omitempty"`
	Edge    string `yaml:"edge,omitempty"`

	From     string `yaml:"from,omitempty"`
	FromPort int    `yaml:"from_port,omitempty"`
	To       string `yaml:"to,omitempty"`
	ToPort   int    `yaml:"to_port,omitempty"`

	Material string  `yaml:"material,omitempty"`
	Rate     float64 `yaml:"rate,omitempty"`
	Unlocked bool    `yaml:"unlocked,omitempty"`

	// Value is the flag set_locked and set_unlocked write.
	Value bool `yaml:"value,omitempty"`
}

// Run is the outcome of a replay.
type Run struct {
	// Aliases maps every `as` name to the ID the session assigned.
	Aliases map[string]string

	// Applied counts the steps that succeeded.
	Applied int

	// Last is the session's most recent solve after the replay.
	Last *solver.Result
}

// Option configures Replay.
type Option func(*Options)

// Options holds the replay configuration.
type Options struct {
	// Logger receives one V(1) line per applied step.
	Logger logr.Logger
}

// DefaultOptions returns a discarding logger.
func DefaultOptions() Options {
	return Options{Logger: logr.Discard()}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func stepError(i int, st Step, err error) error {
	return fmt.Errorf("%w: step %d (%s): %w", ErrStepFailed, i+1, st.Op, err)
}
