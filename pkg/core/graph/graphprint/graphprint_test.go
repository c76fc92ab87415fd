// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graphprint

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	x := graph.NewLeaf(shapes.MustMake(1000, 3), "x")
	assert.Equal(t, "x [1000 3] (3,000 elements)", Describe(x))
	assert.Equal(t, "N_ELEMS []", Describe(graph.NElems(x)))
}

func TestTree(t *testing.T) {
	s := shapes.MustMake(2, 3)
	x := graph.NewLeaf(s, "x")
	shared := graph.Sin(x)
	root := graph.Add(graph.Mul(shared, graph.One(s)), graph.Exp(shared))
	got := Tree(root)
	fmt.Println(got)

	lines := strings.Split(strings.TrimSpace(got), "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "ADD [2 3]")
	for _, want := range []string{"MUL [2 3]", "EXP [2 3]", "x [2 3]", "1 [2 3]"} {
		assert.Contains(t, got, want)
	}
	// SIN is expanded once, and marked as shared the second time.
	assert.Equal(t, 2, strings.Count(got, "SIN [2 3]"))
	assert.Equal(t, 1, strings.Count(got, SharedMarker))

	// Leaves print as a single line.
	assert.Equal(t, Describe(x), strings.TrimSpace(Tree(x)))
}

func TestTable(t *testing.T) {
	s := shapes.MustMake(2, 3)
	x := graph.NewLeaf(s, "x")
	root := graph.Mul(graph.ReduceSum(graph.Sin(x), 1), graph.Zero(shapes.MustMake(2, 1)))
	program := must.M1(graph.Linearize(root))
	got := Table(program)
	fmt.Println(got)

	for _, want := range []string{"Equation", "Arguments", "x", "SIN", "REDUCE_SUM{axis=1}", "MUL", "0[2 1]", "#1"} {
		assert.Contains(t, got, want)
	}
}

func TestFormatArg(t *testing.T) {
	assert.Equal(t, "#3", FormatArg(graph.ProgramArg{Index: 3}))
	assert.Equal(t, "1[2 3]", FormatArg(graph.ProgramArg{Index: graph.OneIndex, Dims: []int{2, 3}}))
	assert.Equal(t, "0[]", FormatArg(graph.ProgramArg{Index: graph.ZeroIndex}))
}
