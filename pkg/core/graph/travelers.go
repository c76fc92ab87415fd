// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"github.com/gomlx/symgrad/pkg/support/sets"
	"github.com/gomlx/symgrad/pkg/support/xslices"
)

// Traveler visits nodes of a graph, see Node.Accept. Implementations decide whether and how to recurse
// into the children of operations.
type Traveler interface {
	VisitLeaf(node *Node)
	VisitOperation(node *Node)
}

// SubtreeSizeStat computes the height of the sub-graph under each visited node: leaves have size 0 and
// operations have 1 + the maximum size of their children. Results are memoized in Sizes, so shared
// sub-graphs are visited once.
type SubtreeSizeStat struct {
	Sizes map[NodeID]int
}

var _ Traveler = (*SubtreeSizeStat)(nil)

// SubtreeSizes returns the SubtreeSizeStat after visiting all the roots.
func SubtreeSizes(roots ...*Node) *SubtreeSizeStat {
	stat := &SubtreeSizeStat{}
	for _, root := range roots {
		root.Accept(stat)
	}
	return stat
}

func (s *SubtreeSizeStat) init() {
	if s.Sizes == nil {
		s.Sizes = make(map[NodeID]int)
	}
}

// VisitLeaf implements Traveler.
func (s *SubtreeSizeStat) VisitLeaf(node *Node) {
	s.init()
	s.Sizes[node.id] = 0
}

// VisitOperation implements Traveler.
func (s *SubtreeSizeStat) VisitOperation(node *Node) {
	s.init()
	if _, found := s.Sizes[node.id]; found {
		return
	}
	childSizes := xslices.Map(node.edges, func(edge Edge) int {
		if _, found := s.Sizes[edge.Node.id]; !found {
			edge.Node.Accept(s)
		}
		return s.Sizes[edge.Node.id]
	})
	s.Sizes[node.id] = xslices.Max(childSizes) + 1
}

// Size returns the memoized size of the node, or -1 if it was not visited.
func (s *SubtreeSizeStat) Size(node *Node) int {
	size, found := s.Sizes[node.id]
	if !found {
		return -1
	}
	return size
}

// PathFinder marks, for each visited operation, the indices of its arguments that lead to Target.
type PathFinder struct {
	Target *Node

	// Paths maps operations from which Target is reachable to the indices of the arguments leading to it.
	Paths map[NodeID]sets.Set[int]

	// reaches memoizes whether Target is reachable from a node (including the node being Target).
	reaches map[NodeID]bool
}

var _ Traveler = (*PathFinder)(nil)

// FindPaths returns the PathFinder after visiting the sub-graph of root.
func FindPaths(root, target *Node) *PathFinder {
	finder := &PathFinder{Target: target}
	root.Accept(finder)
	return finder
}

func (p *PathFinder) init() {
	if p.Paths == nil {
		p.Paths = make(map[NodeID]sets.Set[int])
	}
	if p.reaches == nil {
		p.reaches = make(map[NodeID]bool)
	}
}

// VisitLeaf implements Traveler.
func (p *PathFinder) VisitLeaf(node *Node) {
	p.init()
	p.reaches[node.id] = node == p.Target
}

// VisitOperation implements Traveler.
func (p *PathFinder) VisitOperation(node *Node) {
	p.init()
	if _, found := p.reaches[node.id]; found {
		return
	}
	if node == p.Target {
		p.reaches[node.id] = true
		return
	}
	for ii, edge := range node.edges {
		if _, found := p.reaches[edge.Node.id]; !found {
			edge.Node.Accept(p)
		}
		if p.reaches[edge.Node.id] {
			indices, found := p.Paths[node.id]
			if !found {
				indices = sets.Make[int]()
				p.Paths[node.id] = indices
			}
			indices.Insert(ii)
		}
	}
	_, p.reaches[node.id] = p.Paths[node.id]
}

// Reaches returns whether Target was found from the visited node (or is the node itself).
func (p *PathFinder) Reaches(node *Node) bool { return p.reaches[node.id] }

// Indices returns the argument indices of the operation that lead to Target, in ascending order.
func (p *PathFinder) Indices(id NodeID) []int {
	return sets.Sorted(p.Paths[id])
}

// OwnerRecovery maps the identity of every node reachable from the visited nodes back to its handle.
// Children are recorded after being visited.
type OwnerRecovery struct {
	Owners map[NodeID]*Node
}

var _ Traveler = (*OwnerRecovery)(nil)

// RecoverOwners returns the handles of all nodes reachable from the roots, including the roots.
func RecoverOwners(roots ...*Node) map[NodeID]*Node {
	recovery := &OwnerRecovery{}
	for _, root := range roots {
		recovery.Record(root)
	}
	return recovery.Owners
}

// Record visits root and records it too.
func (o *OwnerRecovery) Record(root *Node) {
	root.Accept(o)
	o.Owners[root.id] = root
}

func (o *OwnerRecovery) init() {
	if o.Owners == nil {
		o.Owners = make(map[NodeID]*Node)
	}
}

// VisitLeaf implements Traveler.
func (o *OwnerRecovery) VisitLeaf(*Node) { o.init() }

// VisitOperation implements Traveler.
func (o *OwnerRecovery) VisitOperation(node *Node) {
	o.init()
	for _, edge := range node.edges {
		if _, found := o.Owners[edge.Node.id]; found {
			continue
		}
		edge.Node.Accept(o)
		o.Owners[edge.Node.id] = edge.Node
	}
}
