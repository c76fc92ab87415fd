// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

const testProgram = "testdata/sin_mul.yaml"

func TestRunTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(&buf, config{programPath: testProgram, wrt: "0"}))
	got := buf.String()
	// The run id printed in the header is a valid UUID.
	match := regexp.MustCompile(`Program sin_mul\.yaml \(run ([0-9a-f-]+)\)`).FindStringSubmatch(got)
	require.Len(t, match, 2, got)
	_, err := uuid.Parse(match[1])
	require.NoError(t, err)
	for _, want := range []string{"REDUCE_SUM{axis=1}", "d(MUL)/d(x)", "ADD [2 3]", "COS [2 3]"} {
		assert.Contains(t, got, want)
	}
}

func TestRunTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(&buf, config{programPath: testProgram, root: 1, asTable: true}))
	got := buf.String()
	assert.Contains(t, got, "d(REDUCE_SUM{axis=1})/d(x)")
	// The seed gradient of the reduction is the constant one, so no EXTEND is needed.
	assert.NotContains(t, got, "EXTEND")
	assert.Contains(t, got, "COS")
}

func TestRunErrors(t *testing.T) {
	var buf bytes.Buffer
	require.ErrorIs(t, run(&buf, config{programPath: testProgram, root: 2}), graph.ErrInvalidArgument)
	require.ErrorIs(t, run(&buf, config{programPath: testProgram, wrt: "7"}), graph.ErrInvalidArgument)
	require.Error(t, run(&buf, config{programPath: testProgram, wrt: "x"}))
	require.Error(t, run(&buf, config{programPath: filepath.Join(t.TempDir(), "missing.yaml")}))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("nodes:\n  - op: FOO\n    dims: [2]\n"), 0o644))
	require.ErrorIs(t, run(&buf, config{programPath: bad}), graph.ErrUnsupportedOperation)
}

func TestSelectTargets(t *testing.T) {
	x := graph.NewLeaf(shapes.MustMake(3), "x")
	y := graph.NewLeaf(shapes.MustMake(3), "y")
	nodes := []*graph.Node{x, y, graph.Add(x, y)}

	targets, err := selectTargets(nodes, "")
	require.NoError(t, err)
	assert.Equal(t, []*graph.Node{x, y}, targets)

	targets, err = selectTargets(nodes, " 2, 0")
	require.NoError(t, err)
	assert.Equal(t, []*graph.Node{nodes[2], x}, targets)

	_, err = selectTargets(nodes, "9,a,1")
	require.ErrorIs(t, err, graph.ErrInvalidArgument)
	assert.Len(t, multierr.Errors(err), 2)
}
