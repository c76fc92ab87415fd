// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"sync"

	"github.com/gomlx/symgrad/pkg/core/shapes"
)

// constantsCache holds the symbolic One and Zero leaves, built lazily, one per shape.
type constantsCache struct {
	mu    sync.Mutex
	nodes map[constantKey]*Node
}

type constantKey struct {
	kind  constantKind
	shape shapes.Shape
}

var constants = constantsCache{nodes: make(map[constantKey]*Node)}

func (c *constantsCache) get(kind constantKind, shape shapes.Shape) *Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := constantKey{kind: kind, shape: shape}
	if node, found := c.nodes[key]; found {
		return node
	}
	node := &Node{id: newNodeID(), shape: shape, constant: kind}
	c.nodes[key] = node
	return node
}

// One returns the symbolic constant 1 broadcast to the given shape.
// It always returns the same leaf for the same shape.
func One(shape shapes.Shape) *Node {
	return constants.get(constantOne, shape)
}

// Zero returns the symbolic constant 0 broadcast to the given shape.
// It always returns the same leaf for the same shape.
func Zero(shape shapes.Shape) *Node {
	return constants.get(constantZero, shape)
}

// IsOne returns whether the node is the symbolic constant One (of any shape).
func IsOne(n *Node) bool { return n != nil && n.constant == constantOne }

// IsZero returns whether the node is the symbolic constant Zero (of any shape).
func IsZero(n *Node) bool { return n != nil && n.constant == constantZero }

// IsConstant returns whether the node is one of the symbolic constants One or Zero.
func IsConstant(n *Node) bool { return IsOne(n) || IsZero(n) }
