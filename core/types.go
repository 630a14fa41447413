// Package core defines the production Graph snapshot, its Node and Edge types,
// and the RecipeNode / BalancerNode payload variants handed to the solver.
//
// All Graph APIs use a single sync.RWMutex internally, so a caller can keep a
// live Graph in an editor and hand Clone() copies to the solver.
//
// This file declares Stream, Node, Edge, Graph, sentinel errors, and the
// NewGraph constructor.
//
// Errors:
//
//	ErrEmptyNodeID    - node ID is the empty string.
//	ErrNilData        - node payload is nil.
//	ErrDuplicateNode  - a node with the same ID already exists.
//	ErrNodeNotFound   - requested node does not exist.
//	ErrEdgeNotFound   - requested edge does not exist.
//	ErrEmptyMaterial  - edge material is empty outside a pending balancer link.
//	ErrMaterialSet    - edge already carries another material.
package core

import (
	"errors"
	"sync"
)

// Sentinel errors for core graph operations.
var (
	// ErrEmptyNodeID indicates that the provided node ID is empty.
	ErrEmptyNodeID = errors.New("core: node ID is empty")

	// ErrNilData indicates a node was added without a RecipeNode or BalancerNode payload.
	ErrNilData = errors.New("core: node data is nil")

	// ErrDuplicateNode indicates AddNode was called with an ID already present.
	ErrDuplicateNode = errors.New("core: duplicate node ID")

	// ErrNodeNotFound indicates an operation referenced a non-existent node.
	ErrNodeNotFound = errors.New("core: node not found")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("core: edge not found")

	// ErrEmptyMaterial indicates an edge without a material name.
	ErrEmptyMaterial = errors.New("core: edge material is empty")

	// ErrMaterialSet indicates SetEdgeMaterial on an edge that carries another material.
	ErrMaterialSet = errors.New("core: edge material already set")
)

// Stream is one (material, rate) record on a node side.
// In base lists Rate is the one-machine rate; in current lists it is the scaled rate.
type Stream struct {
	Material string  `json:"material"`
	Rate     float64 `json:"rate"`
}

// Kind discriminates the two Node payload variants.
type Kind uint8

const (
	// KindRecipe marks a scalable production unit.
	KindRecipe Kind = iota + 1
	// KindBalancer marks a passive router with growable ports.
	KindBalancer
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindRecipe:
		return "recipe"
	case KindBalancer:
		return "balancer"
	default:
		return "unknown"
	}
}

// Data is the closed set of node payloads: *RecipeNode or *BalancerNode.
// Dispatch with a type switch or Node.Recipe / Node.Balancer.
type Data interface {
	Kind() Kind
	cloneData() Data
}

// Node is one production unit or balancer in the Graph.
type Node struct {
	// ID is stable for the node's lifetime.
	ID string

	// Data is the variant payload.
	Data Data
}

// Recipe returns the RecipeNode payload when n is a recipe node.
func (n *Node) Recipe() (*RecipeNode, bool) {
	r, ok := n.Data.(*RecipeNode)
	return r, ok
}

// Balancer returns the BalancerNode payload when n is a balancer.
func (n *Node) Balancer() (*BalancerNode, bool) {
	b, ok := n.Data.(*BalancerNode)
	return b, ok
}

// Edge connects an output port of Source to an input port of Target.
// Edges carry no rate of their own; rates are read from the endpoints.
type Edge struct {
	// ID uniquely identifies this edge in the Graph ("e1", "e2", ...).
	ID string

	Source     string
	SourcePort int
	Target     string
	TargetPort int

	// Material is the material carried between the two ports.
	Material string
}

// Graph is the in-memory production network snapshot.
//
// nodes is the arena addressed by node ID; order keeps insertion order so
// every enumeration (and therefore every solve) is deterministic.
// edges keeps insertion order as well; nextEdgeID generates Edge.ID values.
type Graph struct {
	mu sync.RWMutex

	nextEdgeID uint64
	order      []string
	nodes      map[string]*Node
	edges      []*Edge
}

// NewGraph creates an empty Graph.
// Complexity: O(1)
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
	}
}
