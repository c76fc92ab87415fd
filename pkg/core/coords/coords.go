// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package coords implements coordinate maps: affine transforms over homogeneous coordinates that describe
// how a child node's coordinate space relates to its parent's, without materializing any data.
//
// A Map holds a forward matrix and its inverse (backward). Both are (RankCap+1)x(RankCap+1) and act on
// row vectors: `out[j] = Σ_i in[i]·M[i][j]`, where `in[RankCap]` is the homogeneous component (1 for
// plain coordinates). After the product the result is divided by the homogeneous component.
//
// Maps are immutable and shared by pointer. Identity() is a singleton.
//
// Vacuous transforms (e.g. extending by an empty list of dimensions) are not errors: they log a warning
// and return the identity.
package coords

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// MatDim is the dimension of the square matrices in a Map: one row/column per axis plus the homogeneous one.
const MatDim = shapes.RankCap + 1

// Matrix is a homogeneous transform.
type Matrix [MatDim][MatDim]float64

// Coord is a coordinate over all RankCap axes.
type Coord [shapes.RankCap]float64

// Map is an affine coordinate transform and its inverse.
type Map struct {
	fwd, bwd Matrix
}

func identityMatrix() (m Matrix) {
	for ii := range MatDim {
		m[ii][ii] = 1
	}
	return
}

var identity = &Map{fwd: identityMatrix(), bwd: identityMatrix()}

// Identity returns the identity map, a singleton.
func Identity() *Map { return identity }

// IsIdentity returns whether the map leaves every coordinate unchanged.
func (m *Map) IsIdentity() bool {
	return m == identity || m.fwd == identity.fwd
}

// checkRange validates the axes [rank, rank+len(dims)) and the dimensions for Reduce and Extend.
func checkRange(what string, rank int, dims []int) error {
	if rank < 0 || rank+len(dims) > shapes.RankCap {
		return errors.Wrapf(shapes.ErrInvalidShape, "coords.%s(%d, %v): axes exceed the maximum rank %d",
			what, rank, dims, shapes.RankCap)
	}
	for ii, dim := range dims {
		if dim <= 0 {
			return errors.Wrapf(shapes.ErrInvalidShape, "coords.%s(%d, %v): dimension #%d is %d, it must be > 0",
				what, rank, dims, ii, dim)
		}
	}
	return nil
}

// scale builds a diagonal map scaling axes `[rank, rank+len(dims))`: forward by `factor(dim)` and
// backward by its inverse.
func scale(rank int, dims []int, factor func(dim int) float64) *Map {
	m := &Map{fwd: identityMatrix(), bwd: identityMatrix()}
	for ii, dim := range dims {
		axis := rank + ii
		m.fwd[axis][axis] = factor(dim)
		m.bwd[axis][axis] = 1 / factor(dim)
	}
	return m
}

// Reduce returns the map of a reduction over axes `[rank, rank+len(dims))`: each of those coordinates is
// scaled by `1/dims[i]`, meaning the child data is shared across the reduced axis.
//
// An empty `dims` returns Identity() and logs a warning.
func Reduce(rank int, dims []int) (*Map, error) {
	if len(dims) == 0 {
		klog.Warningf("coords.Reduce(%d, []): no dimensions to reduce, using identity", rank)
		return Identity(), nil
	}
	if err := checkRange("Reduce", rank, dims); err != nil {
		return nil, err
	}
	return scale(rank, dims, func(dim int) float64 { return 1 / float64(dim) }), nil
}

// Extend returns the inverse of Reduce: axes `[rank, rank+len(dims))` are scaled up by `dims[i]`.
//
// An empty `dims` returns Identity() and logs a warning.
func Extend(rank int, dims []int) (*Map, error) {
	if len(dims) == 0 {
		klog.Warningf("coords.Extend(%d, []): no dimensions to extend, using identity", rank)
		return Identity(), nil
	}
	if err := checkRange("Extend", rank, dims); err != nil {
		return nil, err
	}
	return scale(rank, dims, func(dim int) float64 { return float64(dim) }), nil
}

// Permute returns the map that places source axis `order[i]` at output position `i`.
// Source axes not referenced in `order` are appended after it, in their original order, so the map is total.
//
// An empty `order` returns Identity() and logs a warning. Repeated or out-of-range axes are an error.
func Permute(order []int) (*Map, error) {
	if len(order) == 0 {
		klog.Warningf("coords.Permute([]): empty order, using identity")
		return Identity(), nil
	}
	if len(order) > shapes.RankCap {
		return nil, errors.Wrapf(shapes.ErrInvalidShape, "coords.Permute(%v): more than %d axes", order, shapes.RankCap)
	}
	var referenced [shapes.RankCap]bool
	fullOrder := make([]int, 0, shapes.RankCap)
	for _, axis := range order {
		if axis < 0 || axis >= shapes.RankCap || referenced[axis] {
			return nil, errors.Wrapf(shapes.ErrInvalidShape, "coords.Permute(%v): axis %d invalid or repeated", order, axis)
		}
		referenced[axis] = true
		fullOrder = append(fullOrder, axis)
	}
	for axis, used := range referenced {
		if !used {
			fullOrder = append(fullOrder, axis)
		}
	}
	m := &Map{}
	for to, from := range fullOrder {
		m.fwd[from][to] = 1
		m.bwd[to][from] = 1
	}
	m.fwd[shapes.RankCap][shapes.RankCap] = 1
	m.bwd[shapes.RankCap][shapes.RankCap] = 1
	return m, nil
}

// Flip returns the map that reverses axis `dim`: coordinate `c` maps to `-1-c`, which shapes.Shape.Wrap folds
// into `limit-1-c`. The map is its own inverse.
//
// An out-of-range `dim` returns Identity() and logs a warning.
func Flip(dim int) *Map {
	if dim < 0 || dim >= shapes.RankCap {
		klog.Warningf("coords.Flip(%d): axis out of range [0, %d), using identity", dim, shapes.RankCap)
		return Identity()
	}
	m := &Map{fwd: identityMatrix()}
	m.fwd[dim][dim] = -1
	m.fwd[shapes.RankCap][dim] = -1
	m.bwd = m.fwd
	return m
}

// Connect returns the composition "apply lhs, then rhs".
func Connect(lhs, rhs *Map) *Map {
	if lhs.IsIdentity() {
		return rhs
	}
	if rhs.IsIdentity() {
		return lhs
	}
	return &Map{
		fwd: matMul(&lhs.fwd, &rhs.fwd),
		bwd: matMul(&rhs.bwd, &lhs.bwd),
	}
}

func matMul(a, b *Matrix) (out Matrix) {
	for row := range MatDim {
		for col := range MatDim {
			var sum float64
			for k := range MatDim {
				sum += a[row][k] * b[k][col]
			}
			out[row][col] = sum
		}
	}
	return
}

func apply(m *Matrix, coord Coord) (out Coord) {
	var homogeneous float64
	for col := range MatDim {
		var sum float64
		for row := range shapes.RankCap {
			sum += coord[row] * m[row][col]
		}
		sum += m[shapes.RankCap][col]
		if col == shapes.RankCap {
			homogeneous = sum
		} else {
			out[col] = sum
		}
	}
	for ii := range out {
		out[ii] /= homogeneous
	}
	return
}

// Forward maps a child coordinate into the parent's coordinate space.
func (m *Map) Forward(coord Coord) Coord { return apply(&m.fwd, coord) }

// Backward maps a parent coordinate back into the child's coordinate space.
func (m *Map) Backward(coord Coord) Coord { return apply(&m.bwd, coord) }

// Equal compares the forward and backward matrices within the given tolerance.
func (m *Map) Equal(other *Map, tolerance float64) bool {
	if m == other {
		return true
	}
	for row := range MatDim {
		for col := range MatDim {
			if math.Abs(m.fwd[row][col]-other.fwd[row][col]) > tolerance ||
				math.Abs(m.bwd[row][col]-other.bwd[row][col]) > tolerance {
				return false
			}
		}
	}
	return true
}

// String lists the entries of the forward matrix that differ from the identity, for diagnostics.
func (m *Map) String() string {
	if m.IsIdentity() {
		return "identity"
	}
	var parts []string
	for row := range MatDim {
		for col := range MatDim {
			want := 0.0
			if row == col {
				want = 1
			}
			if v := m.fwd[row][col]; v != want {
				parts = append(parts, fmt.Sprintf("(%d,%d)=%g", row, col, v))
			}
		}
	}
	return "coords{" + strings.Join(parts, " ") + "}"
}
