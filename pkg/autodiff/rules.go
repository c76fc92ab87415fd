// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/gomlx/symgrad/pkg/support/xslices"
	"github.com/pkg/errors"
)

// LocalFn returns the local derivative of node with respect to its argument argIdx.
// It may panic with an error, using the graph builders.
type LocalFn func(node *graph.Node, argIdx int) *graph.Node

// ChainFn combines the local derivative and the upstream gradient of node into the gradient of argument argIdx.
// It may panic with an error, using the graph builders.
type ChainFn func(node, local, upstream *graph.Node, argIdx int) *graph.Node

// Rule of one opcode. If Chain is nil, the elementwise chain rule (local·upstream) is used.
type Rule struct {
	Local LocalFn
	Chain ChainFn
}

// RuleRegistration maps each opcode to its differentiation Rule. It's used by DefaultRules, and can be
// changed for experimentation.
var RuleRegistration = map[graph.Opcode]Rule{
	graph.OpCopy:  {Local: oneLocal},
	graph.OpRound: {Local: oneLocal},
	graph.OpAdd:   {Local: oneLocal},
	graph.OpNeg:   {Local: negLocal},
	graph.OpSub:   {Local: subLocal},
	graph.OpMul:   {Local: mulLocal},
	graph.OpDiv:   {Local: divLocal},
	graph.OpPow:   {Local: powLocal},
	graph.OpAbs:   {Local: absLocal},
	graph.OpSin:   {Local: sinLocal},
	graph.OpCos:   {Local: cosLocal},
	graph.OpTan:   {Local: tanLocal},
	graph.OpExp:   {Local: expLocal},
	graph.OpLog:   {Local: logLocal},
	graph.OpSqrt:  {Local: sqrtLocal},
	graph.OpMin:   {Local: minMaxLocal},
	graph.OpMax:   {Local: minMaxLocal},

	// No gradient flows through comparisons, random sampling and shape introspection.
	graph.OpEqual:        {Local: zeroLocal},
	graph.OpNotEqual:     {Local: zeroLocal},
	graph.OpLessThan:     {Local: zeroLocal},
	graph.OpGreaterThan:  {Local: zeroLocal},
	graph.OpRandUniform:  {Local: zeroLocal},
	graph.OpRandNormal:   {Local: zeroLocal},
	graph.OpRandBinomial: {Local: zeroLocal},
	graph.OpNElems:       {Local: zeroLocal},
	graph.OpNDims:        {Local: zeroLocal},

	graph.OpArgMax:    {Local: noGradientLocal},
	graph.OpReduceSum: {Local: oneLocal, Chain: broadcastBackChain},
	graph.OpReduceMax: {Local: reduceMinMaxLocal, Chain: broadcastBackChain},
	graph.OpReduceMin: {Local: reduceMinMaxLocal, Chain: broadcastBackChain},
	graph.OpPermute:   {Local: oneLocal, Chain: permuteChain},
	graph.OpExtend:    {Local: extendLocal, Chain: extendChain},
	graph.OpReshape:   {Local: oneLocal, Chain: reshapeChain},
	graph.OpFlip:      {Local: oneLocal, Chain: flipChain},
	graph.OpMatMul:    {Local: matMulLocal, Chain: matMulChain},
}

// TableRules implements RuleSet with a table of rules per opcode, and the graph symbolic constants.
//
// The accumulator and the elementwise chain rule fold the symbolic constants (x·1 = x, x+0 = x, x·0 = 0),
// which keeps the gradients readable.
type TableRules struct {
	Table map[graph.Opcode]Rule
}

var _ RuleSet = (*TableRules)(nil)

// DefaultRules returns the RuleSet built from RuleRegistration.
func DefaultRules() *TableRules {
	return &TableRules{Table: RuleRegistration}
}

func (r *TableRules) rule(node *graph.Node) (Rule, error) {
	rule, found := r.Table[node.Opcode()]
	if !found || rule.Local == nil {
		return Rule{}, errors.Wrapf(graph.ErrUnsupportedOperation, "no differentiation rule for %s", node.Opcode())
	}
	return rule, nil
}

// LocalDerivative implements RuleSet.
func (r *TableRules) LocalDerivative(node *graph.Node, argIdx int) (local *graph.Node, err error) {
	rule, err := r.rule(node)
	if err != nil {
		return nil, err
	}
	err = exceptions.TryCatch[error](func() { local = rule.Local(node, argIdx) })
	return
}

// ChainRule implements RuleSet.
func (r *TableRules) ChainRule(node, local, upstream *graph.Node, argIdx int) (step *graph.Node, err error) {
	rule, err := r.rule(node)
	if err != nil {
		return nil, err
	}
	childShape := node.Child(argIdx).Shape()
	if graph.IsZero(upstream) {
		return graph.Zero(childShape), nil
	}
	chain := rule.Chain
	if chain == nil {
		chain = elementwiseChain
	}
	err = exceptions.TryCatch[error](func() { step = chain(node, local, upstream, argIdx) })
	return
}

// One implements RuleSet.
func (r *TableRules) One(shape shapes.Shape) *graph.Node { return graph.One(shape) }

// Zero implements RuleSet.
func (r *TableRules) Zero(shape shapes.Shape) *graph.Node { return graph.Zero(shape) }

// Add implements RuleSet. Zeros are folded.
func (r *TableRules) Add(a, b *graph.Node) (sum *graph.Node, err error) {
	switch {
	case graph.IsZero(a):
		return b, nil
	case graph.IsZero(b):
		return a, nil
	}
	err = exceptions.TryCatch[error](func() { sum = graph.Add(a, b) })
	return
}

// mulFolding multiplies a by b, folding the symbolic constants.
func mulFolding(a, b *graph.Node) *graph.Node {
	switch {
	case graph.IsZero(a):
		return a
	case graph.IsZero(b):
		return b
	case graph.IsOne(a):
		return b
	case graph.IsOne(b):
		return a
	}
	return graph.Mul(a, b)
}

// elementwiseChain is the chain rule for operations whose arguments have the shape of the output.
func elementwiseChain(node, local, upstream *graph.Node, argIdx int) *graph.Node {
	if graph.IsZero(local) {
		return graph.Zero(node.Child(argIdx).Shape())
	}
	return mulFolding(local, upstream)
}

func oneLocal(node *graph.Node, argIdx int) *graph.Node {
	return graph.One(node.Child(argIdx).Shape())
}

func zeroLocal(node *graph.Node, argIdx int) *graph.Node {
	return graph.Zero(node.Child(argIdx).Shape())
}

func noGradientLocal(node *graph.Node, argIdx int) *graph.Node {
	panic(errors.Wrapf(ErrNoGradient, "%s (argument #%d)", node, argIdx))
}

func negLocal(node *graph.Node, argIdx int) *graph.Node {
	return graph.Neg(oneLocal(node, argIdx))
}

func subLocal(node *graph.Node, argIdx int) *graph.Node {
	if argIdx == 0 {
		return oneLocal(node, argIdx)
	}
	return negLocal(node, argIdx)
}

// mulLocal is the product of all the other arguments.
func mulLocal(node *graph.Node, argIdx int) *graph.Node {
	others := make([]*graph.Node, 0, node.NumChildren()-1)
	for ii, child := range node.Children() {
		if ii != argIdx {
			others = append(others, child)
		}
	}
	switch len(others) {
	case 0:
		return oneLocal(node, argIdx)
	case 1:
		return others[0]
	}
	return graph.Mul(others[0], others[1:]...)
}

func divLocal(node *graph.Node, argIdx int) *graph.Node {
	f, g := node.Child(0), node.Child(1)
	one := graph.One(g.Shape())
	if argIdx == 0 {
		return graph.Div(one, g)
	}
	return graph.Neg(graph.Div(f, graph.Mul(g, g)))
}

func powLocal(node *graph.Node, argIdx int) *graph.Node {
	f, g := node.Child(0), node.Child(1)
	if argIdx == 0 {
		return graph.Mul(g, graph.Pow(f, graph.Sub(g, graph.One(g.Shape()))))
	}
	return graph.Mul(node, graph.Log(f))
}

func absLocal(node *graph.Node, _ int) *graph.Node {
	return graph.Div(node.Child(0), node)
}

func sinLocal(node *graph.Node, _ int) *graph.Node { return graph.Cos(node.Child(0)) }

func cosLocal(node *graph.Node, _ int) *graph.Node { return graph.Neg(graph.Sin(node.Child(0))) }

func tanLocal(node *graph.Node, _ int) *graph.Node {
	f := node.Child(0)
	cos := graph.Cos(f)
	return graph.Div(graph.One(f.Shape()), graph.Mul(cos, cos))
}

// expLocal: the derivative of EXP is the node itself.
func expLocal(node *graph.Node, _ int) *graph.Node { return node }

func logLocal(node *graph.Node, _ int) *graph.Node {
	f := node.Child(0)
	return graph.Div(graph.One(f.Shape()), f)
}

func sqrtLocal(node *graph.Node, _ int) *graph.Node {
	one := graph.One(node.Child(0).Shape())
	return graph.Div(one, graph.Mul(graph.Add(one, one), node))
}

// minMaxLocal is the indicator of the elements where the selected argument is the minimum (or maximum).
func minMaxLocal(node *graph.Node, argIdx int) *graph.Node {
	return graph.Equal(node, node.Child(argIdx))
}

// extendTo broadcasts x to shape, if needed.
func extendTo(x *graph.Node, shape shapes.Shape) *graph.Node {
	if x.Shape().Equal(shape) {
		return x
	}
	if graph.IsOne(x) {
		return graph.One(shape)
	}
	if graph.IsZero(x) {
		return graph.Zero(shape)
	}
	return graph.Extend(x, shape)
}

// reduceMinMaxLocal is the indicator of the elements equal to the reduced value, normalized by the number
// of ties, so the gradient is split among them.
func reduceMinMaxLocal(node *graph.Node, _ int) *graph.Node {
	f := node.Child(0)
	axis := node.Params().(graph.AxisParams).Axis
	indicator := graph.Equal(f, extendTo(node, f.Shape()))
	count := graph.ReduceSum(indicator, axis)
	return graph.Div(indicator, extendTo(count, f.Shape()))
}

// broadcastBackChain is the chain rule of reductions: upstream is broadcast back over the reduced axis.
func broadcastBackChain(node, local, upstream *graph.Node, _ int) *graph.Node {
	return mulFolding(local, extendTo(upstream, node.Child(0).Shape()))
}

func permuteChain(node, local, upstream *graph.Node, _ int) *graph.Node {
	order := node.Params().(graph.OrderParams).Order
	return mulFolding(local, graph.Permute(upstream, xslices.InversePermutation(order)...))
}

// extendLocal re-extends the constant 1 by the same shape argument, which is the constant 1 of the output shape.
func extendLocal(node *graph.Node, _ int) *graph.Node {
	return graph.One(node.Params().(graph.ShapeParams).Shape)
}

// extendChain sums the gradient over the broadcast axes.
func extendChain(node, local, upstream *graph.Node, _ int) *graph.Node {
	childShape := node.Child(0).Shape()
	var axes []int
	for axis := range shapes.RankCap {
		if childShape.Dim(axis) != node.Shape().Dim(axis) {
			axes = append(axes, axis)
		}
	}
	step := mulFolding(local, upstream)
	if len(axes) == 0 {
		return step
	}
	return graph.ReduceSum(step, axes...)
}

func reshapeChain(node, local, upstream *graph.Node, _ int) *graph.Node {
	childShape := node.Child(0).Shape()
	step := mulFolding(local, upstream)
	if step.Shape().Equal(childShape) {
		return step
	}
	return graph.Reshape(step, childShape)
}

func flipChain(node, local, upstream *graph.Node, _ int) *graph.Node {
	return mulFolding(local, graph.Flip(upstream, node.Params().(graph.AxisParams).Axis))
}
