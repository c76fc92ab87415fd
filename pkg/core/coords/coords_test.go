// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package coords

import (
	"testing"

	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/gomlx/symgrad/pkg/support/xslices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-12

func coord(values ...float64) (c Coord) {
	copy(c[:], values)
	return
}

func TestIdentity(t *testing.T) {
	id := Identity()
	require.Same(t, id, Identity())
	assert.True(t, id.IsIdentity())
	c := coord(1, 2, 3, 4, 5, 6, 7, 8)
	assert.Equal(t, c, id.Forward(c))
	assert.Equal(t, c, id.Backward(c))
	assert.Equal(t, "identity", id.String())
}

func TestReduceExtend(t *testing.T) {
	reduce, err := Reduce(1, []int{4, 2})
	require.NoError(t, err)
	got := reduce.Forward(coord(3, 2, 1))
	assert.InDeltaSlice(t, []float64{3, 0.5, 0.5, 0, 0, 0, 0, 0}, got[:], tolerance)
	back := reduce.Backward(got)
	assert.InDeltaSlice(t, []float64{3, 2, 1, 0, 0, 0, 0, 0}, back[:], tolerance)

	extend, err := Extend(1, []int{4, 2})
	require.NoError(t, err)
	got = extend.Forward(coord(3, 2, 1))
	assert.InDeltaSlice(t, []float64{3, 8, 2, 0, 0, 0, 0, 0}, got[:], tolerance)

	// Extend is the inverse of Reduce.
	assert.True(t, Connect(reduce, extend).Equal(Identity(), tolerance))
	assert.True(t, Connect(extend, reduce).Equal(Identity(), tolerance))
	assert.Equal(t, reduce.Backward(coord(1, 1, 1)), extend.Forward(coord(1, 1, 1)))
}

func TestReduceExtendFailures(t *testing.T) {
	for _, fn := range []func(int, []int) (*Map, error){Reduce, Extend} {
		_, err := fn(7, []int{2, 2})
		require.ErrorIs(t, err, shapes.ErrInvalidShape)
		_, err = fn(0, []int{2, 0})
		require.ErrorIs(t, err, shapes.ErrInvalidShape)
		_, err = fn(-1, []int{2})
		require.ErrorIs(t, err, shapes.ErrInvalidShape)

		// Vacuous transforms degrade to the identity.
		m, err := fn(3, nil)
		require.NoError(t, err)
		assert.Same(t, Identity(), m)
	}
}

func TestPermute(t *testing.T) {
	m, err := Permute([]int{2, 0, 1})
	require.NoError(t, err)
	got := m.Forward(coord(10, 11, 12, 13))
	assert.InDeltaSlice(t, []float64{12, 10, 11, 13, 0, 0, 0, 0}, got[:], tolerance)
	back := m.Backward(got)
	assert.InDeltaSlice(t, []float64{10, 11, 12, 13, 0, 0, 0, 0}, back[:], tolerance)

	// Unreferenced axes are appended in their original order.
	m, err = Permute([]int{3})
	require.NoError(t, err)
	got = m.Forward(coord(0, 1, 2, 3))
	assert.InDeltaSlice(t, []float64{3, 0, 1, 2, 0, 0, 0, 0}, got[:], tolerance)

	m, err = Permute(nil)
	require.NoError(t, err)
	assert.Same(t, Identity(), m)

	_, err = Permute([]int{0, 0})
	require.ErrorIs(t, err, shapes.ErrInvalidShape)
	_, err = Permute([]int{shapes.RankCap})
	require.ErrorIs(t, err, shapes.ErrInvalidShape)
}

func TestPermuteRoundTrip(t *testing.T) {
	for _, order := range [][]int{
		{1, 0},
		{2, 0, 1},
		{3, 1, 0, 2},
		{7, 6, 5, 4, 3, 2, 1, 0},
	} {
		m, err := Permute(order)
		require.NoError(t, err)
		inverse, err := Permute(xslices.InversePermutation(order))
		require.NoError(t, err)
		assert.True(t, Connect(m, inverse).Equal(Identity(), tolerance), "order=%v", order)
		assert.True(t, Connect(inverse, m).Equal(Identity(), tolerance), "order=%v", order)
	}
}

func TestFlip(t *testing.T) {
	m := Flip(1)
	shape := shapes.MustMake(3, 5)
	got := m.Forward(coord(2, 1))
	assert.InDelta(t, 2.0, got[0], tolerance)
	assert.InDelta(t, -2.0, got[1], tolerance)
	assert.InDelta(t, 3.0, shape.Wrap(1, got[1]), tolerance) // limit-1-c = 5-1-1
	back := m.Backward(got)
	assert.InDeltaSlice(t, []float64{2, 1, 0, 0, 0, 0, 0, 0}, back[:], tolerance)
	assert.Contains(t, m.String(), "(1,1)=-1")

	assert.Same(t, Identity(), Flip(shapes.RankCap))
	assert.Same(t, Identity(), Flip(-1))
}

func TestConnect(t *testing.T) {
	permute, err := Permute([]int{1, 0})
	require.NoError(t, err)
	extend, err := Extend(1, []int{3})
	require.NoError(t, err)
	assert.Same(t, permute, Connect(Identity(), permute))
	assert.Same(t, permute, Connect(permute, Identity()))

	// First swap the axes, then scale the new axis 1.
	composed := Connect(permute, extend)
	got := composed.Forward(coord(2, 5))
	assert.InDeltaSlice(t, []float64{5, 6, 0, 0, 0, 0, 0, 0}, got[:], tolerance)
	back := composed.Backward(got)
	assert.InDeltaSlice(t, []float64{2, 5, 0, 0, 0, 0, 0, 0}, back[:], tolerance)
	assert.False(t, composed.IsIdentity())
}
