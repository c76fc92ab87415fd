// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/support/xslices"
)

// MatMul gradients.
//
// With a = [A0 | A1] and b = [B0 | B1] (see graph.MatMulParams), where A0 (the first GroupA axes of a) is
// contracted with B1, the output is [B0 | A1] and:
//
//	out[b0, a1] = Σ_k a[k, a1] · b[b0, k]
//
// Given the upstream gradient U, shaped [B0 | A1]:
//
//	dA[k, a1] = Σ_b0 U[b0, a1] · b[b0, k]   => MatMul of U by b permuted to [B1 | B0], contracting B0.
//	dB[b0, k] = Σ_a1 a[k, a1] · U[b0, a1]   => MatMul of a permuted to [A1 | A0] by U, contracting A1.
//
// The local derivative is the permuted other operand, and the chain rule is the MatMul with the upstream gradient.
// Batch axes are part of A1 and B0, so they are handled by the same algebra.

// rotateAxes returns x with its first `first` axes moved after the following `rest` axes.
// It returns x itself if there is nothing to move.
func rotateAxes(x *graph.Node, first, rest int) *graph.Node {
	if first == 0 || rest == 0 {
		return x
	}
	order := append(xslices.Iota(first, rest), xslices.Iota(0, first)...)
	return graph.Permute(x, order...)
}

// matMulEffectiveRankA is the number of axes of `a` that take part in the MatMul: at least GroupA.
func matMulEffectiveRankA(node *graph.Node) int {
	params := node.Params().(graph.MatMulParams)
	return max(node.Child(0).Shape().Rank(), params.GroupA)
}

func matMulLocal(node *graph.Node, argIdx int) *graph.Node {
	params := node.Params().(graph.MatMulParams)
	if argIdx == 0 {
		// b: [B0 | B1] -> [B1 | B0]
		return rotateAxes(node.Child(1), params.GroupB, params.GroupA)
	}
	// a: [A0 | A1] -> [A1 | A0]
	return rotateAxes(node.Child(0), params.GroupA, matMulEffectiveRankA(node)-params.GroupA)
}

func matMulChain(node, local, upstream *graph.Node, argIdx int) *graph.Node {
	params := node.Params().(graph.MatMulParams)
	if argIdx == 0 {
		// U: [B0 | A1] contracted over B0 with local: [B1 | B0] => [B1 | A1] = [A0 | A1].
		return graph.MatMulGroups(upstream, local, params.GroupB, params.GroupA)
	}
	// local: [A1 | A0] contracted over A1 with U: [B0 | A1] => [B0 | A0] = [B0 | B1].
	return graph.MatMulGroups(local, upstream, matMulEffectiveRankA(node)-params.GroupA, params.GroupB)
}
