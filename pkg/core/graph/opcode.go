// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

// Opcode identifies the operation performed by an operation node.
//
// The names (see Opcode.String and OpcodeString) are stable and used by the serialization layer.
type Opcode int

//go:generate go tool enumer -type=Opcode -trimprefix=Op -transform=snake-upper -output=gen_opcode_enumer.go opcode.go

const (
	// BadOp is the sentinel for unknown opcodes. Leaves also report BadOp as their Opcode.
	BadOp Opcode = iota

	OpCopy
	OpAbs
	OpNeg
	OpSin
	OpCos
	OpTan
	OpExp
	OpLog
	OpSqrt
	OpRound

	OpPow
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMin
	OpMax

	OpEqual
	OpNotEqual
	OpLessThan
	OpGreaterThan

	OpRandBinomial
	OpRandUniform
	OpRandNormal

	OpNElems
	OpNDims
	OpArgMax
	OpReduceMax
	OpReduceMin
	OpReduceSum

	OpMatMul
	OpPermute
	OpExtend
	OpReshape
	OpFlip
)

// ArityClass describes how many operands an opcode takes.
type ArityClass int

const (
	// Unary ops take exactly one operand and no extra arguments.
	Unary ArityClass = iota

	// Binary ops take exactly two operands and no extra arguments.
	Binary

	// NAry ops take one or more operands of the same shape.
	NAry

	// NAryWithArgs ops take a fixed number of operands (see Opcode.NumOperands) plus extra
	// non-tensor arguments (see Opcode.ArgKind).
	NAryWithArgs
)

// ArgKind is the kind of extra (non-tensor) argument an opcode accepts.
type ArgKind int

const (
	// ArgNone means the opcode takes no extra arguments.
	ArgNone ArgKind = iota

	// ArgAxis is a single integer axis, see AxisParams.
	ArgAxis

	// ArgShape is a target shape, see ShapeParams.
	ArgShape

	// ArgOrder is a permutation of axes, see OrderParams.
	ArgOrder

	// ArgGroups are the two group sizes of a MatMul, see MatMulParams.
	ArgGroups
)

type opcodeInfo struct {
	arity       ArityClass
	numOperands int // 0 for variadic.
	args        ArgKind
	elementwise bool
}

var opcodeRegistry = map[Opcode]opcodeInfo{
	OpCopy:  {arity: Unary, numOperands: 1, elementwise: true},
	OpAbs:   {arity: Unary, numOperands: 1, elementwise: true},
	OpNeg:   {arity: Unary, numOperands: 1, elementwise: true},
	OpSin:   {arity: Unary, numOperands: 1, elementwise: true},
	OpCos:   {arity: Unary, numOperands: 1, elementwise: true},
	OpTan:   {arity: Unary, numOperands: 1, elementwise: true},
	OpExp:   {arity: Unary, numOperands: 1, elementwise: true},
	OpLog:   {arity: Unary, numOperands: 1, elementwise: true},
	OpSqrt:  {arity: Unary, numOperands: 1, elementwise: true},
	OpRound: {arity: Unary, numOperands: 1, elementwise: true},

	OpPow: {arity: Binary, numOperands: 2, elementwise: true},
	OpSub: {arity: Binary, numOperands: 2, elementwise: true},
	OpDiv: {arity: Binary, numOperands: 2, elementwise: true},
	OpAdd: {arity: NAry, elementwise: true},
	OpMul: {arity: NAry, elementwise: true},
	OpMin: {arity: NAry, elementwise: true},
	OpMax: {arity: NAry, elementwise: true},

	OpEqual:       {arity: Binary, numOperands: 2, elementwise: true},
	OpNotEqual:    {arity: Binary, numOperands: 2, elementwise: true},
	OpLessThan:    {arity: Binary, numOperands: 2, elementwise: true},
	OpGreaterThan: {arity: Binary, numOperands: 2, elementwise: true},

	OpRandBinomial: {arity: Binary, numOperands: 2, elementwise: true},
	OpRandUniform:  {arity: Binary, numOperands: 2, elementwise: true},
	OpRandNormal:   {arity: Binary, numOperands: 2, elementwise: true},

	OpNElems: {arity: Unary, numOperands: 1},
	OpNDims:  {arity: Unary, numOperands: 1},

	OpArgMax:    {arity: NAryWithArgs, numOperands: 1, args: ArgAxis},
	OpReduceMax: {arity: NAryWithArgs, numOperands: 1, args: ArgAxis},
	OpReduceMin: {arity: NAryWithArgs, numOperands: 1, args: ArgAxis},
	OpReduceSum: {arity: NAryWithArgs, numOperands: 1, args: ArgAxis},

	OpMatMul:  {arity: NAryWithArgs, numOperands: 2, args: ArgGroups},
	OpPermute: {arity: NAryWithArgs, numOperands: 1, args: ArgOrder},
	OpExtend:  {arity: NAryWithArgs, numOperands: 1, args: ArgShape},
	OpReshape: {arity: NAryWithArgs, numOperands: 1, args: ArgShape},
	OpFlip:    {arity: NAryWithArgs, numOperands: 1, args: ArgAxis},
}

// IsRegistered returns whether the opcode can be used to build operation nodes.
func (op Opcode) IsRegistered() bool {
	_, found := opcodeRegistry[op]
	return found
}

// Arity returns the arity class of the opcode. Unregistered opcodes report Unary.
func (op Opcode) Arity() ArityClass { return opcodeRegistry[op].arity }

// NumOperands returns the exact number of operands the opcode takes, or 0 if it is variadic (NAry).
func (op Opcode) NumOperands() int { return opcodeRegistry[op].numOperands }

// ArgKind returns the kind of extra arguments the opcode takes.
func (op Opcode) ArgKind() ArgKind { return opcodeRegistry[op].args }

// IsElementwise returns whether the opcode operates element by element over operands of the same shape.
func (op Opcode) IsElementwise() bool { return opcodeRegistry[op].elementwise }

// ParseOpcode returns the opcode for the given name (see Opcode.String), or BadOp if the name is unknown.
// Unlike OpcodeString it never fails.
func ParseOpcode(name string) Opcode {
	op, err := OpcodeString(name)
	if err != nil {
		return BadOp
	}
	return op
}
