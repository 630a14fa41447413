package balancer

import "github.com/katalvlaran/prodflow/core"

// Check validates c against the balancer state b.
//
// Rules, in order:
//  1. The port must exist on that side (ErrPortOutOfRange).
//  2. The port must not have been connected before (ErrPortConnected).
//  3. With a locked material, c.Material must match it (ErrMaterialMismatch).
//  4. Without a locked material any candidate is accepted. A non-empty
//     c.Material becomes the balancer's material; an empty one (an unset
//     peer balancer) leaves both sides unset.
func Check(c Candidate, b *core.BalancerNode) error {
	if b == nil {
		return ErrNilBalancer
	}
	ports, connected := portsOf(b, c.Side)
	if c.Port < 0 || c.Port >= ports {
		return &PortError{Side: c.Side, Port: c.Port, Err: ErrPortOutOfRange}
	}
	if c.Port < len(connected) && connected[c.Port] {
		return &PortError{Side: c.Side, Port: c.Port, Err: ErrPortConnected}
	}
	if b.HasMaterial() {
		if c.Material != b.Material {
			return &PortError{Side: c.Side, Port: c.Port, Err: ErrMaterialMismatch}
		}
	}

	return nil
}

// IsValidConnection is the predicate the editor consults before accepting an edge.
func IsValidConnection(c Candidate, b *core.BalancerNode) bool {
	return Check(c, b) == nil
}

// Plan validates c and returns the commands that record the accepted connection
// on node nodeID: lock the material (first known material only), mark the port
// connected and, when the port was the last one on its side and the side is
// below the cap, grow one unconnected port.
func Plan(nodeID string, b *core.BalancerNode, c Candidate) ([]Command, error) {
	if err := Check(c, b); err != nil {
		return nil, err
	}
	var cmds []Command
	if !b.HasMaterial() && c.Material != "" {
		cmds = append(cmds, LockMaterial{Node: nodeID, Material: c.Material})
	}
	cmds = append(cmds, MarkConnected{Node: nodeID, Side: c.Side, Port: c.Port})
	ports, _ := portsOf(b, c.Side)
	if c.Port == ports-1 && ports < core.MaxBalancerPorts {
		cmds = append(cmds, GrowPort{Node: nodeID, Side: c.Side})
	}

	return cmds, nil
}

// Release returns the commands to run on node nodeID after an edge on side
// was removed. The port it used stays connected and is never offered again;
// when no unconnected port is left and the side is below the cap, a fresh
// port is grown in its place.
func Release(nodeID string, b *core.BalancerNode, side Side) []Command {
	if b == nil {
		return nil
	}
	ports, _ := portsOf(b, side)
	if FreePort(b, side) >= 0 || ports >= core.MaxBalancerPorts {
		return nil
	}
	return []Command{GrowPort{Node: nodeID, Side: side}}
}

// FreePort returns the lowest unconnected port on side, or -1 when every port is taken.
func FreePort(b *core.BalancerNode, side Side) int {
	ports, connected := portsOf(b, side)
	for i := 0; i < ports; i++ {
		if i >= len(connected) || !connected[i] {
			return i
		}
	}
	return -1
}

func portsOf(b *core.BalancerNode, side Side) (int, []bool) {
	if side == Output {
		return b.OutputPorts, b.ConnectedOutputs
	}
	return b.InputPorts, b.ConnectedInputs
}
