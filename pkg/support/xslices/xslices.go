// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xslices provide missing functionality to the slices package.
package xslices

import (
	"cmp"
	"slices"

	"golang.org/x/exp/constraints"
)

// Iota returns a slice of incremental int values, starting with start and of length len.
// Eg: Iota(3, 2) -> []int{3, 4}
func Iota[T constraints.Integer](start T, len int) (slice []T) {
	slice = make([]T, len)
	for ii := range slice {
		slice[ii] = start + T(ii)
	}
	return
}

// Map executes the given function sequentially for every element on in, and returns a mapped slice.
func Map[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}

// Product returns the product of all the elements, or 1 for an empty slice.
// The accumulation happens in the type Acc, so callers can choose a wider type than the elements.
func Product[Acc, T constraints.Integer](slice []T) Acc {
	var prod Acc = 1
	for _, e := range slice {
		prod *= Acc(e)
	}
	return prod
}

// Max scans the slice and returns the largest value, or the zero value for an empty slice.
func Max[T cmp.Ordered](slice []T) (max T) {
	if len(slice) == 0 {
		return
	}
	return slices.Max(slice)
}

// IsPermutation returns whether `order` is a permutation of `[0, len(order))`.
func IsPermutation(order []int) bool {
	seen := make([]bool, len(order))
	for _, axis := range order {
		if axis < 0 || axis >= len(order) || seen[axis] {
			return false
		}
		seen[axis] = true
	}
	return true
}

// InversePermutation returns the permutation that undoes `order`: if `order[to] = from`, then
// `inverse[from] = to`. It assumes `order` is a valid permutation, see IsPermutation.
func InversePermutation(order []int) []int {
	inverse := make([]int, len(order))
	for to, from := range order {
		inverse[from] = to
	}
	return inverse
}
