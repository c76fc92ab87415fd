// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"

	"github.com/gomlx/symgrad/pkg/core/shapes"
)

// Params are the extra (non-tensor) arguments of an operation, e.g. the axis of a reduction.
// The concrete type is given by the Opcode.ArgKind of the operation.
type Params interface {
	// Kind of the arguments, it must match the Opcode.ArgKind of the operation.
	Kind() ArgKind

	// String prints the arguments for diagnostics, e.g. "axis=1".
	String() string
}

// AxisParams holds the axis of reductions (ReduceSum, ReduceMax, ReduceMin, ArgMax) and Flip.
type AxisParams struct {
	Axis int
}

// Kind implements Params.
func (p AxisParams) Kind() ArgKind { return ArgAxis }

func (p AxisParams) String() string { return fmt.Sprintf("axis=%d", p.Axis) }

// ShapeParams holds the target shape of Extend and Reshape.
type ShapeParams struct {
	Shape shapes.Shape
}

// Kind implements Params.
func (p ShapeParams) Kind() ArgKind { return ArgShape }

func (p ShapeParams) String() string { return fmt.Sprintf("shape=%s", p.Shape) }

// OrderParams holds the order of Permute: output axis i takes the source axis Order[i].
type OrderParams struct {
	Order []int
}

// Kind implements Params.
func (p OrderParams) Kind() ArgKind { return ArgOrder }

func (p OrderParams) String() string { return fmt.Sprintf("order=%v", p.Order) }

// MatMulParams holds the group sizes of MatMul.
//
// The operand `a` is split into `[A0 | A1]`, where A0 are its first GroupA axes, and `b` is split into
// `[B0 | B1]`, where B0 are its first GroupB axes. A0 (the contracted axes) must match B1, and the output
// is `[B0 | A1]`:
//
//	out[b0, a1] = Σ_k a[k, a1] · b[b0, k]
//
// With GroupA = GroupB = 1 this is the usual matrix multiplication of a `[k, m]` matrix by an `[n, k]` one,
// with axis 0 indexing columns. A1 and B0 can have more than one axis, which works as batch axes.
type MatMulParams struct {
	GroupA, GroupB int
}

// Kind implements Params.
func (p MatMulParams) Kind() ArgKind { return ArgGroups }

func (p MatMulParams) String() string { return fmt.Sprintf("groups=(%d,%d)", p.GroupA, p.GroupB) }
