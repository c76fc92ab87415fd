// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package graph is the core package of symgrad: it builds immutable directed acyclic graphs (DAGs) of
// symbolic tensor operations, whose shapes are resolved when each node is created.
//
// The main elements in the package are:
//
//   - Node: either a leaf (a source of values, e.g. a parameter, or the symbolic constants One and Zero),
//     or an operation (an Opcode applied to an ordered list of children). Every operation edge
//     carries a coords.Map describing how the child's coordinate space relates to the parent's.
//
//   - Opcode: the registry of supported operations, with their arity and extra arguments.
//
//   - Traveler: a visitor over the graph. SubtreeSizeStat, PathFinder and OwnerRecovery are the
//     travelers used by the reverse-mode differentiation in package autodiff.
//
//   - Program: a linearized form of a graph (leaves first, operations referring to earlier entries by
//     index) used by serialization and debugging tools.
//
// ## Error handling
//
// NewOperation returns errors. The convenience builders (Add, Mul, MatMul, ...) instead panic with the
// same error, which keeps the writing of math expressions readable. Use Try to convert such panics
// back to an error at the boundary of the code building the graph. All errors wrap one of the sentinel
// errors (ErrEmptyArguments, ErrInvalidArgument, ErrUnsupportedOperation, shapes.ErrIncompatibleShapes,
// shapes.ErrInvalidShape), so they can be checked with errors.Is.
//
// ## Concurrency
//
// Nodes are immutable after construction and can be read concurrently. Node ids are allocated atomically
// and the One/Zero constants cache is protected by a mutex, so graphs can be built from different
// goroutines, as long as each graph under construction is owned by a single goroutine.
package graph

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/pkg/errors"
)

var (
	// ErrEmptyArguments is returned when an operation is created without any children.
	ErrEmptyArguments = errors.New("operation without arguments")

	// ErrInvalidArgument is returned for invalid extra (non-tensor) arguments, like an out-of-range axis.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedOperation is returned for opcodes that are not registered.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrIncompatibleShapes is an alias to shapes.ErrIncompatibleShapes, for convenience.
	ErrIncompatibleShapes = shapes.ErrIncompatibleShapes

	// ErrInvalidShape is an alias to shapes.ErrInvalidShape, for convenience.
	ErrInvalidShape = shapes.ErrInvalidShape
)

// Try calls fn and returns the error it panicked with, if any. Panics with values that are not an
// error are re-thrown.
//
// It's the boundary between code using the panicking builders (Add, Mul, ...) and code that expects errors.
func Try(fn func()) error {
	return exceptions.TryCatch[error](fn)
}
