// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"github.com/gomlx/symgrad/pkg/core/coords"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/gomlx/symgrad/pkg/support/xslices"
	"github.com/pkg/errors"
)

// NewOperation creates an operation node applying `op` to the `children`, with the extra arguments `params`
// (nil for opcodes that take none, see Opcode.ArgKind).
//
// The output shape and the coordinate map of each edge are resolved here. It returns an error wrapping:
//
//   - ErrEmptyArguments if there are no children.
//   - ErrUnsupportedOperation if `op` is not registered (including BadOp).
//   - ErrIncompatibleShapes if the number of children is wrong for `op`, or if their shapes don't
//     satisfy the shape rule of `op`.
//   - ErrInvalidArgument if `params` are missing, of the wrong kind, or invalid (e.g. an out-of-range axis).
func NewOperation(op Opcode, params Params, children ...*Node) (*Node, error) {
	if len(children) == 0 {
		return nil, errors.Wrapf(ErrEmptyArguments, "NewOperation(%s)", op)
	}
	if !op.IsRegistered() {
		return nil, errors.Wrapf(ErrUnsupportedOperation, "NewOperation(%s)", op)
	}
	for ii, child := range children {
		if child == nil {
			return nil, errors.Wrapf(ErrInvalidArgument, "NewOperation(%s): child #%d is nil", op, ii)
		}
	}
	if numOperands := op.NumOperands(); numOperands > 0 && len(children) != numOperands {
		return nil, errors.Wrapf(ErrIncompatibleShapes, "NewOperation(%s): takes %d operands, %d given",
			op, numOperands, len(children))
	}
	if err := checkParams(op, params); err != nil {
		return nil, err
	}

	node := &Node{op: op, params: params, edges: make([]Edge, len(children))}
	for ii, child := range children {
		node.edges[ii] = Edge{Map: coords.Identity(), Node: child}
	}
	var err error
	switch {
	case op.IsElementwise():
		node.shape, err = inferElementwise(op, children)
	case op == OpNElems || op == OpNDims:
		node.shape = shapes.Scalar()
		childShape := children[0].Shape()
		if childShape.Rank() > 0 {
			node.edges[0].Map, err = coords.Reduce(0, childShape.Dimensions())
		}
	case op == OpMatMul:
		node.shape, err = inferMatMul(children[0].Shape(), children[1].Shape(), params.(MatMulParams))
	default:
		node.shape, node.edges[0].Map, err = inferUnaryWithArgs(op, params, children[0].Shape())
	}
	if err != nil {
		return nil, err
	}
	node.id = newNodeID()
	return node, nil
}

func checkParams(op Opcode, params Params) error {
	want := op.ArgKind()
	if want == ArgNone {
		if params != nil {
			return errors.Wrapf(ErrInvalidArgument, "NewOperation(%s): takes no extra arguments, got %s", op, params)
		}
		return nil
	}
	if params == nil {
		return errors.Wrapf(ErrInvalidArgument, "NewOperation(%s): missing extra arguments", op)
	}
	if params.Kind() != want {
		return errors.Wrapf(ErrInvalidArgument, "NewOperation(%s): invalid extra arguments %s (%T)", op, params, params)
	}
	return nil
}

// inferElementwise requires all operands to have the same shape (up to implicit trailing 1s).
func inferElementwise(op Opcode, children []*Node) (shapes.Shape, error) {
	shape := children[0].Shape()
	for _, child := range children[1:] {
		if err := shapes.CheckEqual(op.String(), shape, child.Shape()); err != nil {
			return shapes.Shape{}, err
		}
	}
	return shape, nil
}

func checkAxis(op Opcode, axis int) error {
	if axis < 0 || axis >= shapes.RankCap {
		return errors.Wrapf(ErrInvalidArgument, "%s: axis %d out of range [0, %d)", op, axis, shapes.RankCap)
	}
	return nil
}

// inferUnaryWithArgs handles the single operand operations with extra arguments: reductions, Flip, Permute,
// Extend and Reshape. It returns the output shape and the edge coordinate map.
func inferUnaryWithArgs(op Opcode, params Params, child shapes.Shape) (shapes.Shape, *coords.Map, error) {
	switch op {
	case OpReduceSum, OpReduceMax, OpReduceMin, OpArgMax:
		axis := params.(AxisParams).Axis
		if err := checkAxis(op, axis); err != nil {
			return shapes.Shape{}, nil, err
		}
		if axis >= child.Rank() {
			// Reducing an implicit axis of dimension 1.
			return child, coords.Identity(), nil
		}
		output, err := child.WithDim(axis, 1)
		if err != nil {
			return shapes.Shape{}, nil, err
		}
		edgeMap, err := coords.Reduce(axis, []int{child.Dim(axis)})
		return output, edgeMap, err

	case OpFlip:
		axis := params.(AxisParams).Axis
		if err := checkAxis(op, axis); err != nil {
			return shapes.Shape{}, nil, err
		}
		return child, coords.Flip(axis), nil

	case OpPermute:
		order := params.(OrderParams).Order
		if len(order) > shapes.RankCap || !xslices.IsPermutation(order) {
			return shapes.Shape{}, nil, errors.Wrapf(ErrInvalidArgument,
				"%s: order %v is not a permutation of the axes [0, %d)", op, order, len(order))
		}
		dims := make([]int, max(len(order), child.Rank()))
		for axis := range dims {
			if axis < len(order) {
				dims[axis] = child.Dim(order[axis])
			} else {
				dims[axis] = child.Dim(axis)
			}
		}
		output, err := shapes.Make(dims...)
		if err != nil {
			return shapes.Shape{}, nil, err
		}
		if len(order) == 0 {
			return output, coords.Identity(), nil
		}
		edgeMap, err := coords.Permute(order)
		return output, edgeMap, err

	case OpExtend:
		target := params.(ShapeParams).Shape
		if !child.BroadcastCompatible(target) {
			return shapes.Shape{}, nil, errors.Wrapf(ErrIncompatibleShapes,
				"%s: shape %s cannot be broadcast to %s", op, child, target)
		}
		edgeMap := coords.Identity()
		for axis := range shapes.RankCap {
			if child.Dim(axis) == target.Dim(axis) {
				continue
			}
			axisMap, err := coords.Extend(axis, []int{target.Dim(axis)})
			if err != nil {
				return shapes.Shape{}, nil, err
			}
			edgeMap = coords.Connect(edgeMap, axisMap)
		}
		return target, edgeMap, nil

	case OpReshape:
		target := params.(ShapeParams).Shape
		if target.Size() != child.Size() {
			return shapes.Shape{}, nil, errors.Wrapf(ErrIncompatibleShapes,
				"%s: cannot reshape %s (%d elements) to %s (%d elements)", op, child, child.Size(), target, target.Size())
		}
		return target, coords.Identity(), nil
	}
	return shapes.Shape{}, nil, errors.Wrapf(ErrUnsupportedOperation, "no shape rule for %s", op)
}

// inferMatMul returns the output shape `b[:GroupB] ++ a[GroupA:]`, see MatMulParams.
func inferMatMul(a, b shapes.Shape, params MatMulParams) (shapes.Shape, error) {
	groupA, groupB := params.GroupA, params.GroupB
	if groupA < 0 || groupB < 0 || groupA+groupB > shapes.RankCap {
		return shapes.Shape{}, errors.Wrapf(ErrInvalidArgument, "%s: invalid %s for maximum rank %d",
			OpMatMul, params, shapes.RankCap)
	}
	for k := range groupA {
		if a.Dim(k) != b.Dim(groupB+k) {
			return shapes.Shape{}, errors.Wrapf(ErrIncompatibleShapes,
				"%s(%s, %s) with %s: contracted axis %d of a (dim %d) doesn't match axis %d of b (dim %d)",
				OpMatMul, a, b, params, k, a.Dim(k), groupB+k, b.Dim(groupB+k))
		}
	}
	for k := groupA + groupB; k < shapes.RankCap; k++ {
		if b.Dim(k) != 1 {
			return shapes.Shape{}, errors.Wrapf(ErrIncompatibleShapes,
				"%s(%s, %s) with %s: b has more than GroupA+GroupB=%d axes", OpMatMul, a, b, params, groupA+groupB)
		}
	}
	aRank := max(a.Rank(), groupA)
	if groupB+aRank-groupA > shapes.RankCap {
		return shapes.Shape{}, errors.Wrapf(ErrIncompatibleShapes,
			"%s(%s, %s) with %s: output rank %d exceeds the maximum rank %d",
			OpMatMul, a, b, params, groupB+aRank-groupA, shapes.RankCap)
	}
	dims := make([]int, 0, groupB+aRank-groupA)
	for k := range groupB {
		dims = append(dims, b.Dim(k))
	}
	for k := groupA; k < aRank; k++ {
		dims = append(dims, a.Dim(k))
	}
	return shapes.Make(dims...)
}
