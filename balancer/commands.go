package balancer

import (
	"fmt"

	"github.com/katalvlaran/prodflow/core"
)

// Command is one explicit change to a balancer's state, produced by Plan.
// Commands are plain values; the editor applies them to its own node table.
type Command interface {
	// NodeID is the balancer the command targets.
	NodeID() string
	// ApplyTo performs the change on b.
	ApplyTo(b *core.BalancerNode)
	fmt.Stringer
}

// LockMaterial sets the balancer's material. It is a no-op once a material is set.
type LockMaterial struct {
	Node     string
	Material string
}

// NodeID returns the balancer LockMaterial targets.
func (c LockMaterial) NodeID() string { return c.Node }

// ApplyTo sets b.Material unless b already has one.
func (c LockMaterial) ApplyTo(b *core.BalancerNode) {
	if !b.HasMaterial() {
		b.Material = c.Material
	}
}

// String renders the command for logs, e.g. "lock balancer-1 material=Rubber".
func (c LockMaterial) String() string {
	return fmt.Sprintf("lock %s material=%s", c.Node, c.Material)
}

// MarkConnected flags one port as connected. The flag is never cleared: a
// port whose edge is removed stays used.
type MarkConnected struct {
	Node string
	Side Side
	Port int
}

// NodeID returns the balancer MarkConnected targets.
func (c MarkConnected) NodeID() string { return c.Node }

// ApplyTo sets the port's connected flag, extending the flag slice if needed.
func (c MarkConnected) ApplyTo(b *core.BalancerNode) {
	connected := sideSlice(b, c.Side)
	for len(*connected) <= c.Port {
		*connected = append(*connected, false)
	}
	(*connected)[c.Port] = true
}

// String renders the command for logs, e.g. "connect balancer-1 input[0]".
func (c MarkConnected) String() string {
	return fmt.Sprintf("connect %s %s[%d]", c.Node, c.Side, c.Port)
}

// GrowPort adds one unconnected port on a side, never beyond core.MaxBalancerPorts.
type GrowPort struct {
	Node string
	Side Side
}

// NodeID returns the balancer GrowPort targets.
func (c GrowPort) NodeID() string { return c.Node }

// ApplyTo adds one unconnected port on the side; it is a no-op at the cap.
func (c GrowPort) ApplyTo(b *core.BalancerNode) {
	ports := &b.InputPorts
	if c.Side == Output {
		ports = &b.OutputPorts
	}
	if *ports >= core.MaxBalancerPorts {
		return
	}
	*ports++
	connected := sideSlice(b, c.Side)
	for len(*connected) < *ports {
		*connected = append(*connected, false)
	}
}

// String renders the command for logs, e.g. "grow balancer-1 output".
func (c GrowPort) String() string {
	return fmt.Sprintf("grow %s %s", c.Node, c.Side)
}

// Apply runs cmds against b in order. Commands addressed to another node are skipped.
func Apply(nodeID string, b *core.BalancerNode, cmds ...Command) {
	for _, cmd := range cmds {
		if cmd.NodeID() == nodeID {
			cmd.ApplyTo(b)
		}
	}
}

func sideSlice(b *core.BalancerNode, side Side) *[]bool {
	if side == Output {
		return &b.ConnectedOutputs
	}
	return &b.ConnectedInputs
}
