// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"sync"
	"testing"

	"github.com/gomlx/symgrad/pkg/core/coords"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpcodeNames(t *testing.T) {
	for _, op := range OpcodeValues() {
		name := op.String()
		require.Equal(t, op, ParseOpcode(name), "opcode %s", name)
		if op != BadOp {
			require.True(t, op.IsRegistered(), "opcode %s", name)
		}
	}
	assert.Equal(t, "MAT_MUL", OpMatMul.String())
	assert.Equal(t, "REDUCE_SUM", OpReduceSum.String())
	assert.Equal(t, OpAdd, ParseOpcode("add"))
	assert.Equal(t, BadOp, ParseOpcode("CONVOLVE"))
	assert.False(t, BadOp.IsRegistered())

	assert.Equal(t, Unary, OpSin.Arity())
	assert.Equal(t, Binary, OpDiv.Arity())
	assert.Equal(t, NAry, OpAdd.Arity())
	assert.Equal(t, NAryWithArgs, OpMatMul.Arity())
	assert.Equal(t, ArgGroups, OpMatMul.ArgKind())
	assert.Equal(t, ArgAxis, OpReduceSum.ArgKind())
	assert.Equal(t, ArgNone, OpMul.ArgKind())
}

func TestNewLeaf(t *testing.T) {
	x := NewLeaf(shapes.MustMake(2, 3), "x")
	y := NewLeaf(shapes.MustMake(2, 3), "x")
	assert.True(t, x.IsLeaf())
	assert.Equal(t, BadOp, x.Opcode())
	assert.Nil(t, x.Params())
	assert.Empty(t, x.Children())
	assert.NotEqual(t, x.ID(), y.ID())
	assert.Equal(t, "x -> [2 3]", x.String())

	// Nodes are immutable: UpdateChild does nothing.
	sum := Add(x, y)
	sum.UpdateChild(0, y)
	assert.Same(t, x, sum.Child(0))
}

func TestConstants(t *testing.T) {
	s := shapes.MustMake(2, 3)
	one := One(s)
	assert.Same(t, one, One(shapes.MustMake(2, 3)))
	assert.NotSame(t, one, One(shapes.MustMake(3, 2)))
	assert.NotSame(t, one, Zero(s))
	assert.True(t, IsOne(one))
	assert.False(t, IsZero(one))
	assert.True(t, IsZero(Zero(s)))
	assert.True(t, one.IsLeaf())
	assert.Equal(t, "1 -> [2 3]", one.String())
	assert.Equal(t, "0", Zero(s).Label())
	assert.False(t, IsConstant(NewLeaf(s, "x")))
}

func TestConcurrentConstruction(t *testing.T) {
	const numGoroutines = 64
	s := shapes.MustMake(3, 5)
	ones := make([]*Node, numGoroutines)
	zeros := make([]*Node, numGoroutines)
	sums := make([]*Node, numGoroutines)
	var wg sync.WaitGroup
	for ii := range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ones[ii] = One(s)
			zeros[ii] = Zero(s)
			sums[ii] = Add(NewLeaf(s, "x"), One(s))
		}()
	}
	wg.Wait()

	ids := make(map[NodeID]bool, 2*numGoroutines)
	for ii := range numGoroutines {
		assert.Same(t, ones[0], ones[ii])
		assert.Same(t, zeros[0], zeros[ii])
		assert.Same(t, ones[0], sums[ii].Child(1))
		for _, node := range []*Node{sums[ii], sums[ii].Child(0)} {
			require.False(t, ids[node.ID()], "duplicate node id %d", node.ID())
			ids[node.ID()] = true
		}
	}
	assert.NotContains(t, ids, ones[0].ID())
}

func TestNewOperation(t *testing.T) {
	s := shapes.MustMake(2, 3)
	x, y := NewLeaf(s, "x"), NewLeaf(s, "y")

	node, err := NewOperation(OpAdd, nil, x, y, x)
	require.NoError(t, err)
	assert.Equal(t, OpAdd, node.Opcode())
	assert.Equal(t, []*Node{x, y, x}, node.Children())
	assert.True(t, node.Shape().Equal(s))
	for _, edge := range node.Edges() {
		assert.True(t, edge.Map.IsIdentity())
	}
	assert.Equal(t, "ADD(x, y, x)", node.Expression())
	assert.Equal(t, "MUL(x, COS(x))", Mul(x, Cos(x)).Expression())

	_, err = NewOperation(OpAdd, nil)
	require.ErrorIs(t, err, ErrEmptyArguments)

	_, err = NewOperation(BadOp, nil, x)
	require.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = NewOperation(Opcode(1000), nil, x)
	require.ErrorIs(t, err, ErrUnsupportedOperation)

	_, err = NewOperation(OpSub, nil, x)
	require.ErrorIs(t, err, ErrIncompatibleShapes)

	z := NewLeaf(shapes.MustMake(3, 2), "z")
	_, err = NewOperation(OpMul, nil, x, z)
	require.ErrorIs(t, err, ErrIncompatibleShapes)
	assert.Contains(t, err.Error(), "[2 3]")
	assert.Contains(t, err.Error(), "[3 2]")

	_, err = NewOperation(OpReduceSum, nil, x)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewOperation(OpReduceSum, OrderParams{Order: []int{0}}, x)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewOperation(OpReduceSum, AxisParams{Axis: shapes.RankCap}, x)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewOperation(OpNeg, AxisParams{Axis: 0}, x)
	require.ErrorIs(t, err, ErrInvalidArgument)

	// Trailing 1s are compatible.
	_, err = NewOperation(OpAdd, nil, x, NewLeaf(shapes.MustMake(2, 3, 1), "w"))
	require.NoError(t, err)
}

func TestBuildersPanic(t *testing.T) {
	x := NewLeaf(shapes.MustMake(2, 3), "x")
	z := NewLeaf(shapes.MustMake(3), "z")
	require.Panics(t, func() { Add(x, z) })
	err := Try(func() { Add(x, z) })
	require.ErrorIs(t, err, ErrIncompatibleShapes)
	require.NoError(t, Try(func() { Add(x, x) }))
	other := Try(func() { panic(errors.New("other")) })
	require.Error(t, other)
	require.NotErrorIs(t, other, ErrIncompatibleShapes)
	require.Panics(t, func() { _ = Try(func() { panic("not an error") }) })
}

func TestReductions(t *testing.T) {
	x := NewLeaf(shapes.MustMake(2, 3, 4), "x")
	for _, op := range []func(*Node, int) *Node{ReduceMax, ReduceMin, ArgMax} {
		node := op(x, 1)
		assert.Equal(t, []int{2, 1, 4}, node.Shape().Dimensions())
		edgeMap := node.Edges()[0].Map
		assert.Equal(t, coords.Coord{0, 1}, edgeMap.Forward(coords.Coord{0, 3}))
	}
	sum := ReduceSum(x, 2, 0)
	assert.Equal(t, []int{1, 3, 1}, sum.Shape().Dimensions())
	assert.Equal(t, OpReduceSum, sum.Opcode())
	assert.Equal(t, AxisParams{Axis: 2}, sum.Params())
	assert.Equal(t, AxisParams{Axis: 0}, sum.Child(0).Params())
	assert.Equal(t, []int{1, 1, 1}, ReduceSum(x).Shape().Dimensions())

	// Reducing an implicit axis is the identity on shapes.
	assert.True(t, x.Shape().Equal(ReduceSum(x, 5).Shape()))

	assert.True(t, NElems(x).Shape().IsScalar())
	assert.True(t, NDims(x).Shape().IsScalar())
}

func TestPermuteExtendReshapeFlip(t *testing.T) {
	x := NewLeaf(shapes.MustMake(2, 3, 4), "x")

	p := Permute(x, 2, 0, 1)
	assert.Equal(t, []int{4, 2, 3}, p.Shape().Dimensions())
	assert.Equal(t, OrderParams{Order: []int{2, 0, 1}}, p.Params())
	assert.Equal(t, []int{3, 2, 4}, Permute(x, 1, 0).Shape().Dimensions())
	require.ErrorIs(t, Try(func() { Permute(x, 0, 0) }), ErrInvalidArgument)
	require.ErrorIs(t, Try(func() { Permute(x, 1, 2) }), ErrInvalidArgument)

	// Permuting axes beyond the rank.
	v := NewLeaf(shapes.MustMake(5), "v")
	assert.Equal(t, []int{1, 5}, Permute(v, 1, 0).Shape().Dimensions())

	target := shapes.MustMake(2, 3, 4)
	e := Extend(NewLeaf(shapes.MustMake(2, 1, 4), "y"), target)
	assert.True(t, e.Shape().Equal(target))
	edgeMap := e.Edges()[0].Map
	assert.False(t, edgeMap.IsIdentity())
	assert.Equal(t, coords.Coord{1, 3, 2}, edgeMap.Forward(coords.Coord{1, 1, 2}))
	assert.True(t, Extend(x, target).Edges()[0].Map.IsIdentity())
	assert.True(t, Extend(NewLeaf(shapes.Scalar(), "s"), target).Shape().Equal(target))
	require.ErrorIs(t, Try(func() { Extend(NewLeaf(shapes.MustMake(3), "w"), target) }), ErrIncompatibleShapes)

	r := Reshape(x, shapes.MustMake(6, 4))
	assert.Equal(t, []int{6, 4}, r.Shape().Dimensions())
	require.ErrorIs(t, Try(func() { Reshape(x, shapes.MustMake(5, 5)) }), ErrIncompatibleShapes)

	f := Flip(x, 1)
	assert.True(t, f.Shape().Equal(x.Shape()))
	assert.Equal(t, -3.0, f.Edges()[0].Map.Forward(coords.Coord{0, 2})[1])
}

func TestMatMulShapes(t *testing.T) {
	a := NewLeaf(shapes.MustMake(3, 2), "a")
	b := NewLeaf(shapes.MustMake(4, 3), "b")
	c := MatMul(a, b)
	assert.Equal(t, []int{4, 2}, c.Shape().Dimensions())
	assert.Equal(t, MatMulParams{GroupA: 1, GroupB: 1}, c.Params())

	// A single operand is an arity error.
	_, err := NewOperation(OpMatMul, MatMulParams{GroupA: 1, GroupB: 1}, a)
	require.ErrorIs(t, err, ErrIncompatibleShapes)

	// Contracted axes must match.
	require.ErrorIs(t, Try(func() { MatMul(b, b) }), ErrIncompatibleShapes)

	// Batched: a=[k=3, m=2, batch=5], b=[n=4, k=3] -> [4, 2, 5]
	batched := MatMul(NewLeaf(shapes.MustMake(3, 2, 5), "a"), b)
	assert.Equal(t, []int{4, 2, 5}, batched.Shape().Dimensions())

	// Two contracted axes: a=[3, 2, 6], b=[4, 3, 2] -> [4, 6]
	c2 := MatMulGroups(NewLeaf(shapes.MustMake(3, 2, 6), "a"), NewLeaf(shapes.MustMake(4, 3, 2), "b"), 2, 1)
	assert.Equal(t, []int{4, 6}, c2.Shape().Dimensions())

	// Outer product, no contracted axes: a=[2], b=[4] -> [4, 2]
	outer := MatMulGroups(NewLeaf(shapes.MustMake(2), "a"), NewLeaf(shapes.MustMake(4), "b"), 0, 1)
	assert.Equal(t, []int{4, 2}, outer.Shape().Dimensions())

	// b with more axes than GroupA+GroupB.
	require.ErrorIs(t, Try(func() { MatMulGroups(a, b, 1, 0) }), ErrIncompatibleShapes)
	require.ErrorIs(t, Try(func() { MatMulGroups(a, b, -1, 1) }), ErrInvalidArgument)
}
