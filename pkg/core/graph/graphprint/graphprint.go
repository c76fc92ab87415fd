// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package graphprint renders graphs and linearized programs for terminals: Tree prints a sub-graph
// as an indented tree, Table prints a graph.Program as one equation per row.
//
// Both only rely on graph.Node.Label, graph.Node.Children and graph.Node.Shape, so they work for any
// graph, including the gradients built by the autodiff package.
package graphprint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/shapes"
	"github.com/gomlx/symgrad/pkg/support/sets"
	"github.com/gomlx/symgrad/pkg/support/xslices"
)

// SharedMarker is appended to an operation already printed elsewhere in the tree: its sub-tree is not
// repeated.
const SharedMarker = "^"

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
	rootRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "9", Dark: "9"}).
			Bold(true).
			PaddingLeft(1).PaddingRight(1)

	enumeratorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).MarginRight(1)
	constantStyle   = lipgloss.NewStyle().Faint(true)
)

// Describe returns the one-line description of a node used by Tree: label, shape and, for non-scalar
// shapes, the number of elements.
func Describe(node *graph.Node) string {
	desc := fmt.Sprintf("%s %s", node.Label(), node.Shape())
	if !node.Shape().IsScalar() {
		desc = fmt.Sprintf("%s (%s elements)", desc, humanize.Comma(int64(node.Shape().Size())))
	}
	return desc
}

// Tree renders the sub-graph of root as a tree.
//
// Graphs are DAGs: an operation reachable through more than one parent is expanded only the first time,
// later occurrences are suffixed with SharedMarker.
func Tree(root *graph.Node) string {
	return buildTree(root, sets.Make[graph.NodeID]()).String()
}

func buildTree(node *graph.Node, printed sets.Set[graph.NodeID]) *tree.Tree {
	t := tree.Root(Describe(node)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumeratorStyle)
	if node.IsLeaf() {
		return t
	}
	printed.Insert(node.ID())
	for _, child := range node.Children() {
		switch {
		case graph.IsConstant(child):
			t.Child(constantStyle.Render(Describe(child)))
		case child.IsLeaf():
			t.Child(Describe(child))
		case printed.Has(child.ID()):
			t.Child(Describe(child) + " " + SharedMarker)
		default:
			t.Child(buildTree(child, printed))
		}
	}
	return t
}

// Table renders the program as a table with one row per program node, the roots highlighted.
func Table(program *graph.Program) string {
	isRoot := make(map[int]bool, len(program.Roots))
	for _, root := range program.Roots {
		isRoot[root.Index] = true
	}
	alignments := []lipgloss.Position{lipgloss.Right, lipgloss.Left, lipgloss.Left, lipgloss.Left, lipgloss.Right}
	table := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if row < 0 {
				return headerRowStyle
			}
			switch {
			case isRoot[row]:
				s = rootRowStyle
			case row%2 == 0:
				s = oddRowStyle
			default:
				s = evenRowStyle
			}
			if col < len(alignments) {
				s = s.Align(alignments[col])
			}
			return
		}).
		Headers("#", "Equation", "Arguments", "Shape", "Elements")
	for ii, pn := range program.Nodes {
		shape, err := shapes.Make(pn.Dims...)
		elements := "?"
		if err == nil {
			elements = humanize.Comma(int64(shape.Size()))
		}
		table.Row(strconv.Itoa(ii), equation(pn), formatArgs(pn.Args), fmt.Sprintf("%v", pn.Dims), elements)
	}
	return table.String()
}

// equation describes the program node: its label for leaves, the opcode and its extra arguments otherwise.
func equation(pn graph.ProgramNode) string {
	if pn.Op == "" {
		return pn.Label
	}
	var extra []string
	if pn.Axis != nil {
		extra = append(extra, fmt.Sprintf("axis=%d", *pn.Axis))
	}
	if len(pn.Order) > 0 {
		extra = append(extra, fmt.Sprintf("order=%v", pn.Order))
	}
	if pn.Shape != nil {
		extra = append(extra, fmt.Sprintf("shape=%v", pn.Shape))
	}
	if len(pn.Groups) > 0 {
		extra = append(extra, fmt.Sprintf("groups=%v", pn.Groups))
	}
	if len(extra) == 0 {
		return pn.Op
	}
	return fmt.Sprintf("%s{%s}", pn.Op, strings.Join(extra, ", "))
}

func formatArgs(args []graph.ProgramArg) string {
	return strings.Join(xslices.Map(args, FormatArg), ", ")
}

// FormatArg formats a program argument: "#index" for program nodes, and "1[dims]"/"0[dims]" for the
// symbolic constants.
func FormatArg(arg graph.ProgramArg) string {
	switch arg.Index {
	case graph.OneIndex:
		return fmt.Sprintf("1%v", arg.Dims)
	case graph.ZeroIndex:
		return fmt.Sprintf("0%v", arg.Dims)
	}
	return "#" + strconv.Itoa(arg.Index)
}
