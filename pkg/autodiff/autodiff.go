// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package autodiff implements symbolic reverse-mode differentiation over graph.Node DAGs.
//
// Derive(root, target, rules) returns a new graph node representing d(root)/d(target): the gradient of
// the sum of all elements of root with respect to target, with the shape of target. The gradient is itself
// a graph, built with the opcode rules of a RuleSet, so it can be printed, linearized, evaluated or
// differentiated again.
//
// Conventions used in this package:
//
//   - upstream: the accumulated gradient of root with respect to the output of the operation being processed.
//     Its shape is the shape of the operation.
//   - local derivative: the derivative of an operation with respect to one of its arguments, as a new
//     sub-expression (e.g. COS(x) for SIN(x)).
//   - chain rule: combines the local derivative with upstream into the contribution that flows to the argument.
//     For elementwise operations it's a multiplication, shape-changing operations (reductions, PERMUTE,
//     EXTEND, MATMUL, ...) need to map the upstream gradient back to the argument's shape.
package autodiff

import (
	"cmp"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrNoGradient is returned when differentiating through an operation without a derivative, like ARG_MAX.
var ErrNoGradient = errors.New("operation has no gradient")

// RuleSet provides the per-opcode rules used by Derive, and the symbolic constants and accumulator it needs.
//
// See DefaultRules for the default implementation.
type RuleSet interface {
	// LocalDerivative returns the derivative of the operation node with respect to its argument argIdx.
	LocalDerivative(node *graph.Node, argIdx int) (*graph.Node, error)

	// ChainRule combines the local derivative of node with respect to argIdx with the upstream gradient
	// (shaped as node), and returns the contribution to the gradient of the argument (shaped as the argument).
	ChainRule(node, local, upstream *graph.Node, argIdx int) (*graph.Node, error)

	// One returns the symbolic constant 1 with the given shape.
	One(shape shapes.Shape) *graph.Node

	// Zero returns the symbolic constant 0 with the given shape.
	Zero(shape shapes.Shape) *graph.Node

	// Add accumulates two gradient contributions.
	Add(a, b *graph.Node) (*graph.Node, error)
}

// Derive returns the gradient of root with respect to target, built with the given rules.
//
// If target is root, it returns rules.One(target.Shape()); if target is not reachable from root, it returns
// rules.Zero(target.Shape()). Errors from the rules (e.g. ErrNoGradient, graph.ErrUnsupportedOperation)
// abort the derivation.
func Derive(root, target *graph.Node, rules RuleSet) (*graph.Node, error) {
	if root == nil || target == nil {
		return nil, errors.Wrapf(graph.ErrInvalidArgument, "autodiff.Derive(%s, %s): nil node", root, target)
	}
	if root == target {
		return rules.One(target.Shape()), nil
	}
	paths := graph.FindPaths(root, target)
	if len(paths.Paths) == 0 {
		klog.V(2).Infof("autodiff.Derive: %s is not reachable from %s", target, root)
		return rules.Zero(target.Shape()), nil
	}
	sizes := graph.SubtreeSizes(root)
	owners := graph.RecoverOwners(root)

	// Operations on a path to target, root-most first. An operation always has a larger subtree size than any of
	// its descendants, so all the contributions to its gradient are known by the time it is processed.
	order := make([]graph.NodeID, 0, len(paths.Paths))
	for id := range paths.Paths {
		order = append(order, id)
	}
	slices.SortFunc(order, func(a, b graph.NodeID) int {
		if c := cmp.Compare(sizes.Sizes[b], sizes.Sizes[a]); c != 0 {
			return c
		}
		return cmp.Compare(b, a)
	})
	klog.V(2).Infof("autodiff.Derive: d(%s)/d(%s) through %d operations", root, target, len(order))

	grads := map[graph.NodeID][]*graph.Node{root.ID(): {rules.One(root.Shape())}}
	for _, id := range order {
		node := owners[id]
		upstream, err := accumulate(rules, grads[id])
		if err != nil {
			return nil, errors.WithMessagef(err, "accumulating gradient of %s", node)
		}
		if upstream == nil {
			exceptions.Panicf("autodiff.Derive: operation %s on the path to %s received no gradient", node, target)
		}
		delete(grads, id)
		for _, argIdx := range paths.Indices(id) {
			child := owners[node.Child(argIdx).ID()]
			local, err := rules.LocalDerivative(node, argIdx)
			if err != nil {
				return nil, errors.WithMessagef(err, "local derivative of %s with respect to argument #%d", node, argIdx)
			}
			step, err := rules.ChainRule(node, local, upstream, argIdx)
			if err != nil {
				return nil, errors.WithMessagef(err, "chain rule of %s with respect to argument #%d", node, argIdx)
			}
			if !step.Shape().Equal(child.Shape()) {
				return nil, errors.Wrapf(graph.ErrIncompatibleShapes,
					"chain rule of %s with respect to argument #%d returned shape %s, wanted %s",
					node, argIdx, step.Shape(), child.Shape())
			}
			grads[child.ID()] = append(grads[child.ID()], step)
		}
	}

	contributions, found := grads[target.ID()]
	if !found {
		exceptions.Panicf("autodiff.Derive: target %s is reachable from %s, but no gradient reached it", target, root)
	}
	gradient, err := accumulate(rules, contributions)
	if err != nil {
		return nil, errors.WithMessagef(err, "accumulating gradient of target %s", target)
	}
	return gradient, nil
}

// accumulate sums the contributions with rules.Add. It returns nil if there are none.
func accumulate(rules RuleSet, contributions []*graph.Node) (*graph.Node, error) {
	if len(contributions) == 0 {
		return nil, nil
	}
	sum := contributions[0]
	for _, contribution := range contributions[1:] {
		var err error
		sum, err = rules.Add(sum, contribution)
		if err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// DeriveAll returns the gradients of root with respect to each of the targets, using the given rules.
// Each gradient is derived independently.
func DeriveAll(root *graph.Node, rules RuleSet, targets ...*graph.Node) ([]*graph.Node, error) {
	gradients := make([]*graph.Node, len(targets))
	for ii, target := range targets {
		var err error
		gradients[ii], err = Derive(root, target, rules)
		if err != nil {
			return nil, errors.WithMessagef(err, "gradient #%d with respect to %s", ii, target)
		}
	}
	return gradients, nil
}

// Gradient returns the gradient of root with respect to target, using DefaultRules.
func Gradient(root, target *graph.Node) (*graph.Node, error) {
	return Derive(root, target, DefaultRules())
}
