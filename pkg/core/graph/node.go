// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gomlx/symgrad/pkg/core/coords"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/gomlx/symgrad/pkg/support/xslices"
	"k8s.io/klog/v2"
)

// NodeID is the unique identity of a node, within the process.
type NodeID uint64

var nextNodeID atomic.Uint64

func newNodeID() NodeID {
	return NodeID(nextNodeID.Add(1))
}

// constantKind marks the symbolic constants leaves.
type constantKind int

const (
	notConstant constantKind = iota
	constantOne
	constantZero
)

// Edge connects an operation to one of its children. Map describes how the child's coordinate space
// relates to the operation's output coordinate space.
type Edge struct {
	Map  *coords.Map
	Node *Node
}

// Node is either a leaf or an operation of the graph. Nodes are immutable once created.
//
// Leaves are created with NewLeaf (or the symbolic constants One and Zero), operations with NewOperation
// or with one of the builders (Add, Mul, MatMul, ...).
type Node struct {
	id    NodeID
	shape shapes.Shape

	// Leaves only.
	label    string
	constant constantKind

	// Operations only.
	op     Opcode
	params Params
	edges  []Edge
}

// NewLeaf creates a new leaf: a source of values with the given shape. The label is used for printing.
func NewLeaf(shape shapes.Shape, label string) *Node {
	return &Node{id: newNodeID(), shape: shape, label: label}
}

// ID is the unique identity of the node.
func (n *Node) ID() NodeID { return n.id }

// Shape of the node's output.
func (n *Node) Shape() shapes.Shape {
	if n == nil {
		return shapes.Shape{}
	}
	return n.shape
}

// IsLeaf returns whether the node is a leaf, as opposed to an operation.
func (n *Node) IsLeaf() bool { return n.op == BadOp }

// Opcode of an operation node. Leaves return BadOp.
func (n *Node) Opcode() Opcode { return n.op }

// Params returns the extra arguments of an operation node, or nil if there are none.
func (n *Node) Params() Params { return n.params }

// Edges returns the ordered (coordinate map, child) pairs of an operation. Leaves return nil.
// The returned slice must not be modified.
func (n *Node) Edges() []Edge { return n.edges }

// NumChildren returns the number of children, 0 for leaves.
func (n *Node) NumChildren() int { return len(n.edges) }

// Child returns the i-th child of an operation.
func (n *Node) Child(i int) *Node { return n.edges[i].Node }

// Children returns a new slice with the children of the node, empty for leaves.
func (n *Node) Children() []*Node {
	return xslices.Map(n.edges, func(edge Edge) *Node { return edge.Node })
}

// UpdateChild is not supported: nodes are immutable once created. It only logs a warning.
func (n *Node) UpdateChild(idx int, child *Node) {
	klog.Warningf("Node.UpdateChild(%d, %s) ignored for node %s: nodes are immutable", idx, child, n)
}

// Label is the one-line description of the node, used for printing: the leaf label, "1" or "0" for the
// symbolic constants, and the opcode name (plus arguments) for operations.
func (n *Node) Label() string {
	if n == nil {
		return "Node(nil)"
	}
	if !n.IsLeaf() {
		if n.params != nil {
			return fmt.Sprintf("%s{%s}", n.op, n.params)
		}
		return n.op.String()
	}
	switch n.constant {
	case constantOne:
		return "1"
	case constantZero:
		return "0"
	}
	return n.label
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	if n == nil {
		return "Node(nil)"
	}
	return fmt.Sprintf("%s -> %s", n.Label(), n.shape)
}

// Expression renders the whole sub-graph as a nested expression, e.g. `MUL(x, COS(x))`.
// Shared nodes are printed once per reference, so it is only meant for small graphs (tests and debugging).
func (n *Node) Expression() string {
	var sb strings.Builder
	n.writeExpression(&sb)
	return sb.String()
}

func (n *Node) writeExpression(sb *strings.Builder) {
	sb.WriteString(n.Label())
	if n.IsLeaf() {
		return
	}
	sb.WriteByte('(')
	for ii, edge := range n.edges {
		if ii > 0 {
			sb.WriteString(", ")
		}
		edge.Node.writeExpression(sb)
	}
	sb.WriteByte(')')
}

// Accept dispatches the node to the traveler: VisitLeaf for leaves and VisitOperation for operations.
func (n *Node) Accept(t Traveler) {
	if n.IsLeaf() {
		t.VisitLeaf(n)
	} else {
		t.VisitOperation(n)
	}
}
