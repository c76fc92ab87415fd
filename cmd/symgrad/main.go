// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// symgrad loads a linearized graph program (YAML, see graph.Program), prints its equations and the
// symbolic gradients of one of its roots with respect to selected nodes.
//
// Example:
//
//	symgrad -program=testdata/sin_mul.yaml -wrt=0 -v=1
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/symgrad/pkg/autodiff"
	"github.com/gomlx/symgrad/pkg/core/graph"
	"github.com/gomlx/symgrad/pkg/core/graph/graphprint"
	"github.com/gomlx/symgrad/pkg/support/fsutil"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

var (
	flagProgram = flag.String("program", "", "YAML file with the linearized graph program to differentiate.")
	flagRoot    = flag.Int("root", 0, "Index of the program root to differentiate.")
	flagWrt     = flag.String("wrt", "",
		"Comma-separated list of program node indices to differentiate with respect to. "+
			"If empty, all the leaves of the program are used.")
	flagTable = flag.Bool("table", false, "Print the gradients as linearized programs (tables) instead of trees.")
)

var titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 0, 0, 0)

// config holds the flag values of one run.
type config struct {
	programPath string
	root        int
	wrt         string
	asTable     bool
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagProgram == "" {
		klog.Errorf("Missing -program. See 'symgrad -help'.")
		os.Exit(1)
	}
	cfg := config{programPath: *flagProgram, root: *flagRoot, wrt: *flagWrt, asTable: *flagTable}
	if err := run(os.Stdout, cfg); err != nil {
		klog.Errorf("symgrad failed: %+v", err)
		os.Exit(1)
	}
}

func run(w io.Writer, cfg config) error {
	runID := uuid.NewString()
	klog.V(1).Infof("symgrad run %s: program %q, root #%d", runID, cfg.programPath, cfg.root)

	program, err := loadProgram(cfg.programPath)
	if err != nil {
		return err
	}
	nodes, roots, err := program.RebuildAll()
	if err != nil {
		return errors.WithMessagef(err, "rebuilding program %q", cfg.programPath)
	}
	if cfg.root < 0 || cfg.root >= len(roots) {
		return errors.Wrapf(graph.ErrInvalidArgument, "-root=%d, but program has %d roots", cfg.root, len(roots))
	}
	root := roots[cfg.root]
	targets, err := selectTargets(nodes, cfg.wrt)
	if err != nil {
		return err
	}
	klog.V(1).Infof("symgrad run %s: %d nodes, differentiating %s with respect to %d targets",
		runID, len(nodes), root, len(targets))

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Program %s (run %s)", filepath.Base(cfg.programPath), runID)))
	fmt.Fprintln(w, graphprint.Table(program))

	gradients, err := autodiff.DeriveAll(root, autodiff.DefaultRules(), targets...)
	if err != nil {
		return err
	}
	for ii, gradient := range gradients {
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("d(%s)/d(%s)", root.Label(), targets[ii].Label())))
		if !cfg.asTable {
			fmt.Fprintln(w, graphprint.Tree(gradient))
			continue
		}
		gradProgram, err := graph.Linearize(gradient)
		if err != nil {
			return errors.WithMessagef(err, "linearizing gradient #%d", ii)
		}
		fmt.Fprintln(w, graphprint.Table(gradProgram))
	}
	klog.V(1).Infof("symgrad run %s: done", runID)
	return nil
}

func loadProgram(path string) (*graph.Program, error) {
	path, err := fsutil.ResolveFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "-program")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading program %q", path)
	}
	program := &graph.Program{}
	if err := yaml.Unmarshal(data, program); err != nil {
		return nil, errors.Wrapf(err, "parsing program %q", path)
	}
	return program, nil
}

// selectTargets parses the comma-separated node indices in wrt. If wrt is empty, all leaves are returned.
// All invalid indices are reported together.
func selectTargets(nodes []*graph.Node, wrt string) ([]*graph.Node, error) {
	wrt = strings.TrimSpace(wrt)
	var targets []*graph.Node
	if wrt == "" {
		for _, node := range nodes {
			if node.IsLeaf() {
				targets = append(targets, node)
			}
		}
		return targets, nil
	}
	var errs error
	for _, part := range strings.Split(wrt, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "invalid -wrt index %q", part))
			continue
		}
		if idx < 0 || idx >= len(nodes) {
			errs = multierr.Append(errs, errors.Wrapf(graph.ErrInvalidArgument,
				"-wrt index %d out of range, program has %d nodes", idx, len(nodes)))
			continue
		}
		targets = append(targets, nodes[idx])
	}
	if errs != nil {
		return nil, errs
	}
	return targets, nil
}
