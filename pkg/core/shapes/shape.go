// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape, the fixed-capacity dimension vector of every node in a symgrad graph.
//
// A Shape holds up to RankCap dimensions. Only the first Rank() are "meaningful", and all axes
// beyond the rank are implicitly 1. So `[2 3]` and `[2 3 1]` describe the same layout, and
// they compare as compatible, even though their ranks differ.
//
// ## Glossary
//
//   - Rank: number of leading axes considered meaningful.
//   - Axis: the index of a dimension. Axes in `[Rank(), RankCap)` exist but have dimension 1.
//   - Dimension: the size of the shape in one of its axes. It is always positive.
//   - Scalar: a shape of rank 0, with a single element.
//
// Example: `shapes.Make(2, 3)` has rank 2, `Dim(0) == 2`, `Dim(1) == 3`, `Dim(5) == 1` and
// `Size() == 6`.
package shapes

import (
	"fmt"
	"math"
	"slices"

	"github.com/gomlx/symgrad/pkg/support/xslices"
	"github.com/pkg/errors"
)

// RankCap is the maximum number of axes of a Shape.
const RankCap = 8

// MaxSize is the largest number of elements of a Shape. It fits an int64, so sizes can be
// handed to APIs taking signed integers.
const MaxSize = math.MaxInt64

var (
	// ErrInvalidShape is returned (wrapped) for zero or negative dimensions, ranks beyond RankCap,
	// or axes out of range.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrIncompatibleShapes is returned (wrapped) when operands' shapes don't satisfy an operation's shape rule.
	ErrIncompatibleShapes = errors.New("incompatible shapes")
)

// Shape is an immutable vector of dimensions. The zero value is the scalar shape.
//
// Use Make to create a new shape.
type Shape struct {
	dims [RankCap]int
	rank int
}

// Make returns a Shape with the given dimensions.
//
// It fails with ErrInvalidShape if any dimension is <= 0, if more than RankCap dimensions are given,
// or if the number of elements exceeds MaxSize.
func Make(dimensions ...int) (Shape, error) {
	if len(dimensions) > RankCap {
		return Shape{}, errors.Wrapf(ErrInvalidShape, "shapes.Make(%v): rank %d exceeds the maximum rank %d",
			dimensions, len(dimensions), RankCap)
	}
	s := Shape{rank: len(dimensions)}
	var size uint64 = 1
	for axis, dim := range dimensions {
		if dim <= 0 {
			return Shape{}, errors.Wrapf(ErrInvalidShape, "shapes.Make(%v): axis %d has dimension %d, it must be > 0",
				dimensions, axis, dim)
		}
		if size > MaxSize/uint64(dim) {
			return Shape{}, errors.Wrapf(ErrInvalidShape, "shapes.Make(%v): number of elements exceeds %d",
				dimensions, uint64(MaxSize))
		}
		size *= uint64(dim)
		s.dims[axis] = dim
	}
	return s, nil
}

// MustMake is like Make, but panics with the error if the shape is invalid.
// Convenient for tests and for graph builders that panic anyway.
func MustMake(dimensions ...int) Shape {
	s, err := Make(dimensions...)
	if err != nil {
		panic(err)
	}
	return s
}

// Scalar returns the shape of rank 0.
func Scalar() Shape {
	return MustMake()
}

// Rank of the shape: the number of meaningful leading axes.
func (s Shape) Rank() int { return s.rank }

// IsScalar returns whether the shape has rank 0.
func (s Shape) IsScalar() bool { return s.rank == 0 }

// Dim returns the dimension of the given axis. Axes in `[Rank(), RankCap)` have dimension 1.
// It panics (with ErrInvalidShape) for an axis outside of `[0, RankCap)`.
func (s Shape) Dim(axis int) int {
	if axis < 0 || axis >= RankCap {
		panic(errors.Wrapf(ErrInvalidShape, "Shape.Dim(%d) out-of-bounds for capacity %d (shape=%s)", axis, RankCap, s))
	}
	if axis >= s.rank {
		return 1
	}
	return s.dims[axis]
}

// Dimensions returns a copy of the meaningful dimensions, `Rank()` of them.
func (s Shape) Dimensions() []int {
	return slices.Clone(s.dims[:s.rank])
}

// Size returns the number of elements: the product of the meaningful dimensions.
// It is never larger than MaxSize, see Make.
func (s Shape) Size() uint64 {
	return xslices.Product[uint64](s.dims[:s.rank])
}

// CompatiblePrefix returns whether the first `min(idx, RankCap)` axes of `s` and `other` have
// the same dimensions.
func (s Shape) CompatiblePrefix(other Shape, idx int) bool {
	idx = min(idx, RankCap)
	for axis := 0; axis < idx; axis++ {
		if s.Dim(axis) != other.Dim(axis) {
			return false
		}
	}
	return true
}

// CompatibleSuffix returns whether the axes `[idx, RankCap)` of `s` and `other` have the same dimensions.
// Implicit trailing 1s are taken into account, so `CompatibleSuffix(other, 0)` is the
// elementwise compatibility check.
func (s Shape) CompatibleSuffix(other Shape, idx int) bool {
	for axis := max(idx, 0); axis < RankCap; axis++ {
		if s.Dim(axis) != other.Dim(axis) {
			return false
		}
	}
	return true
}

// Equal returns whether both shapes describe the same layout, ignoring differences of rank due to trailing 1s.
func (s Shape) Equal(other Shape) bool {
	return s.CompatibleSuffix(other, 0)
}

// BroadcastCompatible returns whether `s` can be broadcast to `target`: every axis of `s` either matches
// the `target` dimension or is 1.
func (s Shape) BroadcastCompatible(target Shape) bool {
	for axis := 0; axis < RankCap; axis++ {
		dim := s.Dim(axis)
		if dim != 1 && dim != target.Dim(axis) {
			return false
		}
	}
	return true
}

// WithDim returns a copy of the shape with the dimension of `axis` replaced by `dim`.
// If `axis` is beyond the current rank, the rank is increased to include it.
func (s Shape) WithDim(axis, dim int) (Shape, error) {
	if axis < 0 || axis >= RankCap {
		return Shape{}, errors.Wrapf(ErrInvalidShape, "Shape.WithDim(%d, %d): axis out of range for shape %s", axis, dim, s)
	}
	if dim <= 0 {
		return Shape{}, errors.Wrapf(ErrInvalidShape, "Shape.WithDim(%d, %d): dimension must be > 0", axis, dim)
	}
	dims := make([]int, max(s.rank, axis+1))
	for ii := range dims {
		dims[ii] = s.Dim(ii)
	}
	dims[axis] = dim
	return Make(dims...)
}

// Wrap folds a coordinate along `axis` into `[0, Dim(axis))`, so that negative coordinates count from the end.
// It's used with coordinate maps that flip an axis, which map `c` to `-1-c`.
func (s Shape) Wrap(axis int, coord float64) float64 {
	limit := float64(s.Dim(axis))
	coord = math.Mod(coord, limit)
	if coord < 0 {
		coord += limit
		if coord >= limit {
			// Tiny negative coordinates round up to limit.
			coord = 0
		}
	}
	return coord
}

// String implements fmt.Stringer. Scalars print as `[]`.
func (s Shape) String() string {
	return fmt.Sprintf("%v", s.dims[:s.rank])
}

// AssertEqual panics with ErrIncompatibleShapes if the shapes are not equal.
// It is meant for internal invariants; user facing code returns errors.
func AssertEqual(s, other Shape) {
	if err := CheckEqual("AssertEqual", s, other); err != nil {
		panic(err)
	}
}

// CheckEqual returns an error wrapping ErrIncompatibleShapes, annotated with `what`, if the shapes are different.
func CheckEqual(what string, s, other Shape) error {
	if s.Equal(other) {
		return nil
	}
	return errors.Wrapf(ErrIncompatibleShapes, "%s: shapes %s and %s differ", what, s, other)
}
