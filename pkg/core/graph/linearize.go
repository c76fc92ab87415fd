// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"cmp"
	"slices"

	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/pkg/errors"
)

// Sentinel argument indices of a Program, referring to the symbolic constants. The shape of the constant
// is given by ProgramArg.Dims.
const (
	OneIndex  = -1
	ZeroIndex = -2
)

// Program is the linearized form of a graph: leaves come first, and each operation only refers to
// earlier entries (by index), so it can be rebuilt in one pass. The symbolic constants One and Zero
// are not listed as nodes, see OneIndex and ZeroIndex.
//
// It carries YAML tags, and it's the format read by the symgrad debugging tool.
type Program struct {
	Nodes []ProgramNode `yaml:"nodes"`
	Roots []ProgramArg  `yaml:"roots"`
}

// ProgramNode is either a leaf (Op is empty) or an operation.
type ProgramNode struct {
	Label string       `yaml:"label,omitempty"`
	Dims  []int        `yaml:"dims,flow"`
	Op    string       `yaml:"op,omitempty"`
	Args  []ProgramArg `yaml:"args,omitempty"`

	// Extra arguments, set according to the Opcode.ArgKind.
	Axis   *int  `yaml:"axis,omitempty"`
	Order  []int `yaml:"order,flow,omitempty"`
	Shape  []int `yaml:"shape,flow,omitempty"`
	Groups []int `yaml:"groups,flow,omitempty"`
}

// ProgramArg refers to a ProgramNode by index, or to a symbolic constant (OneIndex or ZeroIndex) of
// shape Dims.
type ProgramArg struct {
	Index int   `yaml:"index"`
	Dims  []int `yaml:"dims,flow,omitempty"`
}

// Linearize the sub-graphs of the roots into a Program.
//
// Nodes are ordered by ascending subtree size (so leaves first), with ties broken by node id (creation order).
func Linearize(roots ...*Node) (*Program, error) {
	if len(roots) == 0 {
		return nil, errors.Wrap(ErrEmptyArguments, "Linearize()")
	}
	owners := RecoverOwners(roots...)
	stat := SubtreeSizes(roots...)
	nodes := make([]*Node, 0, len(owners))
	for _, node := range owners {
		if !IsConstant(node) {
			nodes = append(nodes, node)
		}
	}
	slices.SortFunc(nodes, func(a, b *Node) int {
		if c := cmp.Compare(stat.Sizes[a.id], stat.Sizes[b.id]); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	indices := make(map[NodeID]int, len(nodes))
	argOf := func(node *Node) ProgramArg {
		switch {
		case IsOne(node):
			return ProgramArg{Index: OneIndex, Dims: node.shape.Dimensions()}
		case IsZero(node):
			return ProgramArg{Index: ZeroIndex, Dims: node.shape.Dimensions()}
		}
		return ProgramArg{Index: indices[node.id]}
	}
	program := &Program{Nodes: make([]ProgramNode, len(nodes))}
	for ii, node := range nodes {
		indices[node.id] = ii
		pn := &program.Nodes[ii]
		pn.Dims = node.shape.Dimensions()
		if node.IsLeaf() {
			pn.Label = node.label
			continue
		}
		pn.Op = node.op.String()
		for _, edge := range node.edges {
			pn.Args = append(pn.Args, argOf(edge.Node))
		}
		switch params := node.params.(type) {
		case nil:
		case AxisParams:
			axis := params.Axis
			pn.Axis = &axis
		case OrderParams:
			pn.Order = slices.Clone(params.Order)
		case ShapeParams:
			pn.Shape = params.Shape.Dimensions()
		case MatMulParams:
			pn.Groups = []int{params.GroupA, params.GroupB}
		default:
			return nil, errors.Wrapf(ErrInvalidArgument, "Linearize(): node %s has unknown params type %T", node, params)
		}
	}
	for _, root := range roots {
		program.Roots = append(program.Roots, argOf(root))
	}
	return program, nil
}

// Rebuild reconstructs the graph of the program and returns its roots.
func (p *Program) Rebuild() ([]*Node, error) {
	_, roots, err := p.RebuildAll()
	return roots, err
}

// RebuildAll reconstructs the graph of the program, and returns all of its nodes (in program order) and
// its roots. It verifies that the shapes of the rebuilt operations match the recorded dimensions.
func (p *Program) RebuildAll() (nodes, roots []*Node, err error) {
	nodes = make([]*Node, 0, len(p.Nodes))
	resolve := func(arg ProgramArg) (*Node, error) {
		switch arg.Index {
		case OneIndex, ZeroIndex:
			shape, err := shapes.Make(arg.Dims...)
			if err != nil {
				return nil, err
			}
			if arg.Index == OneIndex {
				return One(shape), nil
			}
			return Zero(shape), nil
		}
		if arg.Index < 0 || arg.Index >= len(nodes) {
			return nil, errors.Wrapf(ErrInvalidArgument, "program argument index %d must refer to one of the %d previous nodes",
				arg.Index, len(nodes))
		}
		return nodes[arg.Index], nil
	}

	for ii, pn := range p.Nodes {
		shape, err := shapes.Make(pn.Dims...)
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "program node #%d", ii)
		}
		if pn.Op == "" {
			nodes = append(nodes, NewLeaf(shape, pn.Label))
			continue
		}
		op := ParseOpcode(pn.Op)
		if op == BadOp {
			return nil, nil, errors.Wrapf(ErrUnsupportedOperation, "program node #%d: unknown opcode %q", ii, pn.Op)
		}
		params, err := pn.params(op)
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "program node #%d", ii)
		}
		children := make([]*Node, 0, len(pn.Args))
		for _, arg := range pn.Args {
			child, err := resolve(arg)
			if err != nil {
				return nil, nil, errors.WithMessagef(err, "program node #%d", ii)
			}
			children = append(children, child)
		}
		node, err := NewOperation(op, params, children...)
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "program node #%d", ii)
		}
		if err := shapes.CheckEqual(pn.Op, node.shape, shape); err != nil {
			return nil, nil, errors.WithMessagef(err, "program node #%d: recorded shape doesn't match", ii)
		}
		nodes = append(nodes, node)
	}

	for _, arg := range p.Roots {
		root, err := resolve(arg)
		if err != nil {
			return nil, nil, errors.WithMessage(err, "program roots")
		}
		roots = append(roots, root)
	}
	return nodes, roots, nil
}

func (pn *ProgramNode) params(op Opcode) (Params, error) {
	switch op.ArgKind() {
	case ArgAxis:
		if pn.Axis == nil {
			return nil, errors.Wrapf(ErrInvalidArgument, "%s requires an axis", op)
		}
		return AxisParams{Axis: *pn.Axis}, nil
	case ArgOrder:
		return OrderParams{Order: slices.Clone(pn.Order)}, nil
	case ArgShape:
		shape, err := shapes.Make(pn.Shape...)
		if err != nil {
			return nil, err
		}
		return ShapeParams{Shape: shape}, nil
	case ArgGroups:
		if len(pn.Groups) != 2 {
			return nil, errors.Wrapf(ErrInvalidArgument, "%s requires 2 groups, got %v", op, pn.Groups)
		}
		return MatMulParams{GroupA: pn.Groups[0], GroupB: pn.Groups[1]}, nil
	}
	return nil, nil
}
