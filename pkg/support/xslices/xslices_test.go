// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xslices

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIotaMapProduct(t *testing.T) {
	assert.Equal(t, []int{3, 4, 5}, Iota(3, 3))
	assert.Equal(t, []string{"a1", "a2"}, Map([]int{1, 2}, func(e int) string { return "a" + string(rune('0'+e)) }))
	assert.Equal(t, uint64(24), Product[uint64]([]int{2, 3, 4}))
	assert.Equal(t, uint64(1), Product[uint64]([]int{}))
	// 8 axes of 256 would overflow 32 bits.
	dims := []int{256, 256, 256, 256, 256, 256, 256, 255}
	assert.Equal(t, uint64(1)<<56*255, Product[uint64](dims))
}

func TestPermutations(t *testing.T) {
	assert.True(t, IsPermutation([]int{2, 0, 1}))
	assert.True(t, IsPermutation(nil))
	assert.False(t, IsPermutation([]int{0, 0}))
	assert.False(t, IsPermutation([]int{0, 2}))
	assert.False(t, IsPermutation([]int{-1, 0}))
	order := []int{2, 0, 3, 1}
	inverse := InversePermutation(order)
	assert.Equal(t, []int{1, 3, 0, 2}, inverse)
	for to, from := range order {
		assert.Equal(t, to, inverse[from])
	}
}

func TestMax(t *testing.T) {
	assert.Equal(t, 7, Max([]int{3, 7, 1}))
	assert.Equal(t, 0, Max([]int{}))
	assert.Equal(t, -1, Max([]int{-3, -1}))
}
