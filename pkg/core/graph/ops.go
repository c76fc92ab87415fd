// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"slices"

	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/gomlx/symgrad/pkg/support/xslices"
)

// This file holds the panicking builders: they call NewOperation and panic with its error, if any.
// Use Try to convert the panic back to an error.

func build(op Opcode, params Params, children ...*Node) *Node {
	node, err := NewOperation(op, params, children...)
	if err != nil {
		panic(err)
	}
	return node
}

// Copy returns a node with the same value as x.
func Copy(x *Node) *Node { return build(OpCopy, nil, x) }

// Abs returns the absolute value of x, elementwise.
func Abs(x *Node) *Node { return build(OpAbs, nil, x) }

// Neg returns -x, elementwise.
func Neg(x *Node) *Node { return build(OpNeg, nil, x) }

// Sin returns the sine of x (in radians), elementwise.
func Sin(x *Node) *Node { return build(OpSin, nil, x) }

// Cos returns the cosine of x (in radians), elementwise.
func Cos(x *Node) *Node { return build(OpCos, nil, x) }

// Tan returns the tangent of x (in radians), elementwise.
func Tan(x *Node) *Node { return build(OpTan, nil, x) }

// Exp returns e^x, elementwise.
func Exp(x *Node) *Node { return build(OpExp, nil, x) }

// Log returns the natural logarithm of x, elementwise.
func Log(x *Node) *Node { return build(OpLog, nil, x) }

// Sqrt returns the square root of x, elementwise.
func Sqrt(x *Node) *Node { return build(OpSqrt, nil, x) }

// Round returns x rounded to the nearest integer, elementwise.
func Round(x *Node) *Node { return build(OpRound, nil, x) }

// Add returns the elementwise sum of all operands, which must have the same shape.
// With a single operand it returns an ADD node of one argument.
func Add(x *Node, more ...*Node) *Node {
	return build(OpAdd, nil, append([]*Node{x}, more...)...)
}

// Mul returns the elementwise product of all operands, which must have the same shape.
func Mul(x *Node, more ...*Node) *Node {
	return build(OpMul, nil, append([]*Node{x}, more...)...)
}

// Min returns the elementwise minimum of all operands.
func Min(x *Node, more ...*Node) *Node {
	return build(OpMin, nil, append([]*Node{x}, more...)...)
}

// Max returns the elementwise maximum of all operands.
func Max(x *Node, more ...*Node) *Node {
	return build(OpMax, nil, append([]*Node{x}, more...)...)
}

// Sub returns x - y, elementwise.
func Sub(x, y *Node) *Node { return build(OpSub, nil, x, y) }

// Div returns x / y, elementwise.
func Div(x, y *Node) *Node { return build(OpDiv, nil, x, y) }

// Pow returns x^y, elementwise.
func Pow(x, y *Node) *Node { return build(OpPow, nil, x, y) }

// Equal returns 1 where x == y, and 0 elsewhere.
func Equal(x, y *Node) *Node { return build(OpEqual, nil, x, y) }

// NotEqual returns 1 where x != y, and 0 elsewhere.
func NotEqual(x, y *Node) *Node { return build(OpNotEqual, nil, x, y) }

// LessThan returns 1 where x < y, and 0 elsewhere.
func LessThan(x, y *Node) *Node { return build(OpLessThan, nil, x, y) }

// GreaterThan returns 1 where x > y, and 0 elsewhere.
func GreaterThan(x, y *Node) *Node { return build(OpGreaterThan, nil, x, y) }

// RandUniform samples uniformly from [low, high), elementwise.
func RandUniform(low, high *Node) *Node { return build(OpRandUniform, nil, low, high) }

// RandNormal samples from a normal distribution with the given mean and standard deviation, elementwise.
func RandNormal(mean, stddev *Node) *Node { return build(OpRandNormal, nil, mean, stddev) }

// RandBinomial samples from a binomial distribution with the given number of trials and probability, elementwise.
func RandBinomial(trials, prob *Node) *Node { return build(OpRandBinomial, nil, trials, prob) }

// NElems returns a scalar with the number of elements of x.
func NElems(x *Node) *Node { return build(OpNElems, nil, x) }

// NDims returns a scalar with the rank of x.
func NDims(x *Node) *Node { return build(OpNDims, nil, x) }

// ArgMax returns the index of the maximum value along the axis. The axis is kept with dimension 1.
func ArgMax(x *Node, axis int) *Node { return build(OpArgMax, AxisParams{Axis: axis}, x) }

// ReduceMax reduces x along the axis, keeping it with dimension 1.
func ReduceMax(x *Node, axis int) *Node { return build(OpReduceMax, AxisParams{Axis: axis}, x) }

// ReduceMin reduces x along the axis, keeping it with dimension 1.
func ReduceMin(x *Node, axis int) *Node { return build(OpReduceMin, AxisParams{Axis: axis}, x) }

// ReduceSum sums x over the given axes, one REDUCE_SUM node per axis. The reduced axes are kept with
// dimension 1, so the rank is preserved.
//
// If no axes are given, it reduces over all the axes of x, returning a node with every dimension 1.
func ReduceSum(x *Node, axes ...int) *Node {
	if len(axes) == 0 {
		axes = xslices.Iota(0, x.Shape().Rank())
		if len(axes) == 0 {
			return x
		}
	}
	axes = slices.Clone(axes)
	slices.Sort(axes)
	for _, axis := range slices.Compact(axes) {
		x = build(OpReduceSum, AxisParams{Axis: axis}, x)
	}
	return x
}

// Flip reverses x along the axis.
func Flip(x *Node, axis int) *Node { return build(OpFlip, AxisParams{Axis: axis}, x) }

// Permute transposes the axes of x: output axis i takes the input axis order[i].
// Axes beyond len(order) stay in place.
func Permute(x *Node, order ...int) *Node {
	return build(OpPermute, OrderParams{Order: slices.Clone(order)}, x)
}

// Extend broadcasts x to the given shape: every axis of x must either match the target dimension or be 1.
func Extend(x *Node, shape shapes.Shape) *Node { return build(OpExtend, ShapeParams{Shape: shape}, x) }

// Reshape returns x with a new shape of the same size.
func Reshape(x *Node, shape shapes.Shape) *Node {
	return build(OpReshape, ShapeParams{Shape: shape}, x)
}

// MatMul multiplies a by b, contracting the first axis of a with the last meaningful axis of b.
// With a of shape `[k, m]` and b of shape `[n, k]` the output has shape `[n, m]`. The remaining
// axes of b (all but the last) and of a (all but the first) are kept: see MatMulParams for the
// general form, and MatMulGroups to select the groups.
func MatMul(a, b *Node) *Node {
	return MatMulGroups(a, b, 1, max(b.Shape().Rank()-1, 0))
}

// MatMulGroups multiplies a by b, contracting the first groupA axes of a with the axes
// `[groupB, groupB+groupA)` of b. See MatMulParams.
func MatMulGroups(a, b *Node, groupA, groupB int) *Node {
	return build(OpMatMul, MatMulParams{GroupA: groupA, GroupB: groupB}, a, b)
}
