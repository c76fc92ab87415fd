// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graphtest

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// DefaultEpsilon is the step used by NumericGradient.
const DefaultEpsilon = 1e-6

// Sum evaluates node and returns the sum of all its elements.
func Sum(node *graph.Node, feeds Feeds) (float64, error) {
	t, err := Eval(node, feeds)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, v := range t.Data {
		sum += v
	}
	return sum, nil
}

// NumericGradient estimates the gradient of the sum of all elements of root with respect to the leaf target,
// using central differences with the given epsilon.
//
// The value of target is taken from feeds, which are not modified.
func NumericGradient(root, target *graph.Node, feeds Feeds, epsilon float64) (*Tensor, error) {
	value, found := feeds[target]
	if !found {
		return nil, errors.Errorf("NumericGradient(): target %s was not fed", target)
	}
	perturbed := make(Feeds, len(feeds))
	for leaf, t := range feeds {
		perturbed[leaf] = t
	}
	probe := value.Clone()
	perturbed[target] = probe
	gradient := Full(target.Shape(), 0)
	for ii, original := range value.Data {
		probe.Data[ii] = original + epsilon
		plus, err := Sum(root, perturbed)
		if err != nil {
			return nil, err
		}
		probe.Data[ii] = original - epsilon
		minus, err := Sum(root, perturbed)
		if err != nil {
			return nil, err
		}
		probe.Data[ii] = original
		gradient.Data[ii] = (plus - minus) / (2 * epsilon)
	}
	return gradient, nil
}

// RandomTensor returns a tensor with values uniformly sampled from [low, high).
func RandomTensor(rng *rand.Rand, shape shapes.Shape, low, high float64) *Tensor {
	t := Full(shape, 0)
	for ii := range t.Data {
		t.Data[ii] = low + (high-low)*rng.Float64()
	}
	return t
}

// RequireGradient evaluates the symbolic gradient and checks it against NumericGradient(root, target),
// within the relative/absolute tolerance delta.
func RequireGradient(t *testing.T, root, target, gradient *graph.Node, feeds Feeds, delta float64) {
	t.Helper()
	require.True(t, gradient.Shape().Equal(target.Shape()),
		"gradient shape %s doesn't match target shape %s", gradient.Shape(), target.Shape())
	got, err := Eval(gradient, feeds)
	require.NoErrorf(t, err, "evaluating gradient %s", gradient.Expression())
	want, err := NumericGradient(root, target, feeds, DefaultEpsilon)
	require.NoError(t, err)
	for ii := range want.Data {
		tolerance := delta * max(1, math.Abs(want.Data[ii]))
		require.InDeltaf(t, want.Data[ii], got.Data[ii], tolerance,
			"d(%s)/d(%s) element #%d: numeric %g, symbolic %g", root.Label(), target.Label(), ii, want.Data[ii], got.Data[ii])
	}
}
