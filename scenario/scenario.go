package scenario

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/prodflow/editor"
)

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	return Load(bytes.NewReader(data))
}

// LoadFile parses the scenario stored at path.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes and validates a YAML scenario. Unknown fields are rejected.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	return &sc, nil
}

// Validate checks that every step carries the fields its op needs and that
// aliases are unique.
func (sc *Scenario) Validate() error {
	aliases := make(map[string]int)
	for i, st := range sc.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("%w: step %d (%s): %v", ErrInvalidScenario, i+1, st.Op, err)
		}
		if st.As == "" {
			continue
		}
		if prev, ok := aliases[st.As]; ok {
			return fmt.Errorf("%w: step %d: alias %q already used by step %d", ErrInvalidScenario, i+1, st.As, prev)
		}
		aliases[st.As] = i + 1
	}

	return nil
}

func (st Step) validate() error {
	switch st.Op {
	case editor.OpAddRecipe:
		return need("machine", st.Machine)
	case editor.OpAddBalancer, editor.OpSolve, editor.OpReset:
		return nil
	case editor.OpConnect:
		if err := need("from", st.From); err != nil {
			return err
		}
		if st.FromPort < 0 || st.ToPort < 0 {
			return fmt.Errorf("negative port")
		}
		return need("to", st.To)
	case editor.OpSetRate:
		if err := need("node", st.Node); err != nil {
			return err
		}
		if st.Rate < 0 {
			return fmt.Errorf("negative rate %g", st.Rate)
		}
		return need("material", st.Material)
	case editor.OpSetLocked, editor.OpSetUnlocked, editor.OpRemoveNode:
		return need("node", st.Node)
	case editor.OpRemoveEdge:
		return need("edge", st.Edge)
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
}

func need(field, v string) error {
	if v == "" {
		return fmt.Errorf("missing %q", field)
	}
	return nil
}
