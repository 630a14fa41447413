// Package balancer enforces the invariants of passive routing nodes:
// a dynamically sized port set per side (capped at core.MaxBalancerPorts),
// one material locked by the first connection that knows it, and one edge
// per port for the balancer's lifetime.
//
// The package never mutates anything on its own. Check / IsValidConnection
// answer whether a proposed edge end is acceptable; Plan turns an accepted
// connection into explicit Command values; Apply runs those commands against
// a balancer the caller owns.
package balancer

import (
	"errors"
	"fmt"
)

// Sentinel errors for balancer connection checks.
var (
	// ErrNilBalancer is returned when no balancer state is supplied.
	ErrNilBalancer = errors.New("balancer: balancer is nil")

	// ErrPortOutOfRange is returned when the port index does not exist on that side.
	ErrPortOutOfRange = errors.New("balancer: port out of range")

	// ErrPortConnected is returned when the port already carries an edge.
	ErrPortConnected = errors.New("balancer: port already connected")

	// ErrMaterialMismatch is returned when the candidate material differs from the locked one.
	ErrMaterialMismatch = errors.New("balancer: material mismatch")
)

// Side selects the input or output port array of a balancer.
type Side uint8

const (
	// Input is the side edges arrive on.
	Input Side = iota + 1
	// Output is the side edges leave from.
	Output
)

// String implements fmt.Stringer.
func (s Side) String() string {
	switch s {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return "unknown"
	}
}

// Candidate is one proposed edge end on a balancer.
//
// Material is the peer's material: the peer recipe's output (for Input) or
// input (for Output) material at the connected port, or the peer balancer's
// locked material. It is empty when the peer is a balancer without material;
// such a link is accepted and stays pending until either side is locked.
type Candidate struct {
	Side     Side
	Port     int
	Material string
}

// PortError reports a rejected candidate with its side and port.
type PortError struct {
	Side Side
	Port int
	Err  error
}

// Error formats the sentinel with the side and port.
func (e *PortError) Error() string {
	return fmt.Sprintf("%v (%s port %d)", e.Err, e.Side, e.Port)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *PortError) Unwrap() error { return e.Err }
