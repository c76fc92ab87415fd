// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package graphtest holds test utilities for packages that depend on the graph package.
//
// It includes a small reference evaluator of graphs over float64 values, used to numerically verify
// the shape rules and the gradients built by package autodiff. It is not meant as an execution backend:
// it's slow, and it doesn't support the random operations.
package graphtest

import (
	"math"
	"slices"

	"github.com/gomlx/symgrad/pkg/core/coords"
	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Tensor is a dense float64 value for the reference evaluator.
//
// Data is laid out with axis 0 varying fastest: the flat index of coordinate c is
// `c[0] + Dim(0)·(c[1] + Dim(1)·(c[2] + ...))`.
type Tensor struct {
	Shape shapes.Shape
	Data  []float64
}

// NewTensor creates a tensor with the given data, which must have shape.Size() elements.
func NewTensor(shape shapes.Shape, data ...float64) (*Tensor, error) {
	if uint64(len(data)) != shape.Size() {
		return nil, errors.Wrapf(shapes.ErrIncompatibleShapes, "NewTensor(%s): %d values given, want %d",
			shape, len(data), shape.Size())
	}
	return &Tensor{Shape: shape, Data: data}, nil
}

// Full creates a tensor of the given shape filled with value.
func Full(shape shapes.Shape, value float64) *Tensor {
	t := &Tensor{Shape: shape, Data: make([]float64, shape.Size())}
	for ii := range t.Data {
		t.Data[ii] = value
	}
	return t
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{Shape: t.Shape, Data: slices.Clone(t.Data)}
}

// Index is a coordinate over all shapes.RankCap axes.
type Index [shapes.RankCap]int

// Offset returns the flat position of the index in Data.
func (t *Tensor) Offset(index Index) int {
	offset, stride := 0, 1
	for axis := range t.Shape.Rank() {
		offset += index[axis] * stride
		stride *= t.Shape.Dim(axis)
	}
	return offset
}

// At returns the value at the given coordinates. Missing trailing coordinates are 0.
func (t *Tensor) At(coordinates ...int) float64 {
	var index Index
	copy(index[:], coordinates)
	return t.Data[t.Offset(index)]
}

// forEach calls fn for every index of the shape, in flat order.
func forEach(shape shapes.Shape, fn func(flat int, index Index)) {
	var index Index
	size := int(shape.Size())
	for flat := range size {
		fn(flat, index)
		for axis := range shape.Rank() {
			index[axis]++
			if index[axis] < shape.Dim(axis) {
				break
			}
			index[axis] = 0
		}
	}
}

// Feeds are the values of the leaves of a graph.
type Feeds map[*graph.Node]*Tensor

// Eval evaluates node, given the values of the leaves it depends on. The symbolic constants One and Zero
// don't need to be fed.
func Eval(node *graph.Node, feeds Feeds) (*Tensor, error) {
	e := &evaluator{feeds: feeds, cache: make(map[graph.NodeID]*Tensor)}
	return e.eval(node)
}

type evaluator struct {
	feeds Feeds
	cache map[graph.NodeID]*Tensor
}

func (e *evaluator) eval(node *graph.Node) (*Tensor, error) {
	if t, found := e.cache[node.ID()]; found {
		return t, nil
	}
	var t *Tensor
	var err error
	switch {
	case graph.IsOne(node):
		t = Full(node.Shape(), 1)
	case graph.IsZero(node):
		t = Full(node.Shape(), 0)
	case node.IsLeaf():
		fed, found := e.feeds[node]
		if !found {
			return nil, errors.Errorf("Eval(): leaf %s was not fed", node)
		}
		if err = shapes.CheckEqual("Eval() fed value of "+node.Label(), node.Shape(), fed.Shape); err != nil {
			return nil, err
		}
		t = fed
	default:
		operands := make([]*Tensor, node.NumChildren())
		for ii, child := range node.Children() {
			operands[ii], err = e.eval(child)
			if err != nil {
				return nil, err
			}
		}
		t, err = e.evalOperation(node, operands)
		if err != nil {
			return nil, errors.WithMessagef(err, "Eval(%s)", node)
		}
	}
	if klog.V(3).Enabled() {
		klog.Infof("Eval: %s = %v", node, t.Data)
	}
	e.cache[node.ID()] = t
	return t, nil
}

var unaryFns = map[graph.Opcode]func(x float64) float64{
	graph.OpCopy:  func(x float64) float64 { return x },
	graph.OpAbs:   math.Abs,
	graph.OpNeg:   func(x float64) float64 { return -x },
	graph.OpSin:   math.Sin,
	graph.OpCos:   math.Cos,
	graph.OpTan:   math.Tan,
	graph.OpExp:   math.Exp,
	graph.OpLog:   math.Log,
	graph.OpSqrt:  math.Sqrt,
	graph.OpRound: math.Round,
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var binaryFns = map[graph.Opcode]func(x, y float64) float64{
	graph.OpPow:         math.Pow,
	graph.OpSub:         func(x, y float64) float64 { return x - y },
	graph.OpDiv:         func(x, y float64) float64 { return x / y },
	graph.OpAdd:         func(x, y float64) float64 { return x + y },
	graph.OpMul:         func(x, y float64) float64 { return x * y },
	graph.OpMin:         math.Min,
	graph.OpMax:         math.Max,
	graph.OpEqual:       func(x, y float64) float64 { return boolToFloat(x == y) },
	graph.OpNotEqual:    func(x, y float64) float64 { return boolToFloat(x != y) },
	graph.OpLessThan:    func(x, y float64) float64 { return boolToFloat(x < y) },
	graph.OpGreaterThan: func(x, y float64) float64 { return boolToFloat(x > y) },
}

func (e *evaluator) evalOperation(node *graph.Node, operands []*Tensor) (*Tensor, error) {
	op := node.Opcode()
	output := Full(node.Shape(), 0)
	if fn, found := unaryFns[op]; found {
		for ii, x := range operands[0].Data {
			output.Data[ii] = fn(x)
		}
		return output, nil
	}
	if fn, found := binaryFns[op]; found {
		copy(output.Data, operands[0].Data)
		for _, operand := range operands[1:] {
			for ii, y := range operand.Data {
				output.Data[ii] = fn(output.Data[ii], y)
			}
		}
		return output, nil
	}

	switch op {
	case graph.OpNElems:
		output.Data[0] = float64(operands[0].Shape.Size())
	case graph.OpNDims:
		output.Data[0] = float64(operands[0].Shape.Rank())
	case graph.OpReduceSum, graph.OpReduceMax, graph.OpReduceMin, graph.OpArgMax:
		reduce(op, node.Params().(graph.AxisParams).Axis, operands[0], output)
	case graph.OpReshape:
		copy(output.Data, operands[0].Data)
	case graph.OpPermute, graph.OpFlip, graph.OpExtend:
		gatherThroughMap(node.Edges()[0].Map, operands[0], output)
	case graph.OpMatMul:
		matMul(node.Params().(graph.MatMulParams), operands[0], operands[1], output)
	default:
		return nil, errors.Wrapf(graph.ErrUnsupportedOperation, "reference evaluator can't evaluate %s", op)
	}
	return output, nil
}

func reduce(op graph.Opcode, axis int, input, output *Tensor) {
	if axis >= input.Shape.Rank() {
		// Implicit axis of dimension 1: the arg-max is always 0.
		if op != graph.OpArgMax {
			copy(output.Data, input.Data)
		}
		return
	}
	switch op {
	case graph.OpReduceMax:
		for ii := range output.Data {
			output.Data[ii] = math.Inf(-1)
		}
	case graph.OpReduceMin:
		for ii := range output.Data {
			output.Data[ii] = math.Inf(1)
		}
	case graph.OpArgMax:
		best := Full(output.Shape, math.Inf(-1))
		forEach(input.Shape, func(flat int, index Index) {
			pos := index[axis]
			index[axis] = 0
			outFlat := output.Offset(index)
			if value := input.Data[flat]; value > best.Data[outFlat] {
				best.Data[outFlat] = value
				output.Data[outFlat] = float64(pos)
			}
		})
		return
	}
	forEach(input.Shape, func(flat int, index Index) {
		index[axis] = 0
		outFlat := output.Offset(index)
		value := input.Data[flat]
		switch op {
		case graph.OpReduceSum:
			output.Data[outFlat] += value
		case graph.OpReduceMax:
			output.Data[outFlat] = max(output.Data[outFlat], value)
		case graph.OpReduceMin:
			output.Data[outFlat] = min(output.Data[outFlat], value)
		}
	})
}

// gatherThroughMap fills output by mapping each of its coordinates back to the input coordinate space
// with the backward transform of the edge map.
func gatherThroughMap(edgeMap *coords.Map, input, output *Tensor) {
	forEach(output.Shape, func(flat int, index Index) {
		var c coords.Coord
		for axis := range c {
			c[axis] = float64(index[axis])
		}
		c = edgeMap.Backward(c)
		var inIndex Index
		for axis := range inIndex {
			v := math.Floor(input.Shape.Wrap(axis, c[axis]) + 1e-9)
			inIndex[axis] = min(int(v), input.Shape.Dim(axis)-1)
		}
		output.Data[flat] = input.Data[input.Offset(inIndex)]
	})
}

// matMul computes `out[b0, a1] = Σ_k a[k, a1] · b[b0, k]`, see graph.MatMulParams.
func matMul(params graph.MatMulParams, a, b, output *Tensor) {
	groupA, groupB := params.GroupA, params.GroupB
	contracted := make([]int, groupA)
	for axis := range contracted {
		contracted[axis] = a.Shape.Dim(axis)
	}
	kShape := shapes.MustMake(contracted...)
	forEach(output.Shape, func(flat int, index Index) {
		var sum float64
		forEach(kShape, func(_ int, k Index) {
			var aIndex, bIndex Index
			for axis := range groupA {
				aIndex[axis] = k[axis]
				bIndex[groupB+axis] = k[axis]
			}
			for axis := range groupB {
				bIndex[axis] = index[axis]
			}
			for axis := groupA; axis < shapes.RankCap && groupB+axis-groupA < shapes.RankCap; axis++ {
				aIndex[axis] = index[groupB+axis-groupA]
			}
			sum += a.Data[a.Offset(aIndex)] * b.Data[b.Offset(bIndex)]
		})
		output.Data[flat] = sum
	})
}
