// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"testing"

	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond returns x, y and MUL(SIN(x), COS(x), y).
func diamond() (x, y, root *Node) {
	s := shapes.MustMake(2, 3)
	x, y = NewLeaf(s, "x"), NewLeaf(s, "y")
	root = Mul(Sin(x), Cos(x), y)
	return
}

func TestSubtreeSizeStat(t *testing.T) {
	x, y, root := diamond()
	stat := SubtreeSizes(root)
	assert.Equal(t, 0, stat.Size(x))
	assert.Equal(t, 0, stat.Size(y))
	assert.Equal(t, 1, stat.Size(root.Child(0)))
	assert.Equal(t, 2, stat.Size(root))
	assert.Len(t, stat.Sizes, 5)
	assert.Equal(t, -1, stat.Size(NewLeaf(shapes.Scalar(), "z")))

	deeper := Exp(Neg(root))
	stat = SubtreeSizes(deeper, x)
	assert.Equal(t, 4, stat.Size(deeper))
}

func TestPathFinder(t *testing.T) {
	x, y, root := diamond()
	finder := FindPaths(root, x)
	assert.True(t, finder.Reaches(root))
	assert.Equal(t, []int{0, 1}, finder.Indices(root.ID()))
	assert.Equal(t, []int{0}, finder.Indices(root.Child(0).ID()))
	assert.Equal(t, []int{0}, finder.Indices(root.Child(1).ID()))
	assert.Empty(t, finder.Indices(y.ID()))
	assert.Len(t, finder.Paths, 3)

	finder = FindPaths(root, y)
	assert.Equal(t, []int{2}, finder.Indices(root.ID()))
	assert.Len(t, finder.Paths, 1)

	// Unreachable target.
	z := NewLeaf(shapes.MustMake(2, 3), "z")
	finder = FindPaths(root, z)
	assert.False(t, finder.Reaches(root))
	assert.Empty(t, finder.Paths)

	// The target is the root itself.
	finder = FindPaths(root, root)
	assert.True(t, finder.Reaches(root))
	assert.Empty(t, finder.Paths)

	// Repeated argument.
	sq := Mul(x, x)
	assert.Equal(t, []int{0, 1}, FindPaths(sq, x).Indices(sq.ID()))
}

func TestOwnerRecovery(t *testing.T) {
	x, y, root := diamond()
	owners := RecoverOwners(root)
	require.Len(t, owners, 5)
	assert.Same(t, x, owners[x.ID()])
	assert.Same(t, y, owners[y.ID()])
	assert.Same(t, root, owners[root.ID()])
	for id, node := range owners {
		assert.Equal(t, id, node.ID())
	}

	leafOnly := RecoverOwners(x)
	require.Len(t, leafOnly, 1)
	assert.Same(t, x, leafOnly[x.ID()])
}
