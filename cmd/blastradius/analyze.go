// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/petar-djukic/blastradius/internal/analysis"
	"github.com/petar-djukic/blastradius/internal/testrun"
	"github.com/petar-djukic/blastradius/pkg/blast"
	"github.com/petar-djukic/blastradius/pkg/types"
)

var (
	errNoFiles     = errors.New("no files to analyze")
	errTestsFailed = errors.New("tests failed")
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// loadSnapshot opens the engine and reads the saved graph.
func loadSnapshot() (*blast.Engine, *blast.Snapshot, error) {
	e, err := newEngine()
	if err != nil {
		return nil, nil, err
	}
	s, err := e.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("no graph at %s; run 'blastradius scan' first: %w", e.Config().GraphPath(), err)
		}
		return nil, nil, err
	}
	return e, s, nil
}

// fileID turns a path argument into a graph id: slash-separated and
// relative to workdir. Arguments already in that form pass through.
func fileID(e *blast.Engine, arg string) string {
	p := arg
	if filepath.IsAbs(p) {
		root, err := filepath.Abs(e.Config().WorkDir)
		if err == nil {
			if rel, err := filepath.Rel(root, p); err == nil {
				p = rel
			}
		}
	}
	return filepath.ToSlash(filepath.Clean(p))
}

func warnUnknown(s *blast.Snapshot, id string) {
	if !s.Has(id) {
		slog.Warn("file not in graph", "file", id)
	}
}

// newScanCmd creates the "scan" command.
func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan the repository and save its dependency graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			s, err := e.Rescan(ctx)
			if err != nil {
				return err
			}
			slog.Info("graph saved", "path", e.Config().GraphPath())
			return output(cmd, s.Graph())
		},
	}
}

// newImpactCmd creates the "impact" command.
func newImpactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "impact <file>",
		Short: "Show what breaks when a file changes",
		Long:  "Impact walks importers of the file (or, with --backward, everything the file depends on).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, s, err := loadSnapshot()
			if err != nil {
				return err
			}
			id := fileID(e, args[0])
			warnUnknown(s, id)

			backward, _ := cmd.Flags().GetBool("backward")
			if backward {
				return output(cmd, s.BackwardImpact(id))
			}
			return output(cmd, s.ForwardImpact(id))
		},
	}
	cmd.Flags().BoolP("backward", "b", false, "Walk dependencies instead of importers")
	return cmd
}

// newFailingCmd creates the "failing" command.
func newFailingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "failing <test>",
		Short: "Rank likely root causes of a failing test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, types.ModeFailing, args[0])
		},
	}
}

// newAnalyzeCmd creates the "analyze" command.
func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <failing|refactor> <file>",
		Short: "Run a per-file analysis by mode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := analysis.ParseMode(args[0])
			if err != nil {
				return err
			}
			return runAnalysis(cmd, mode, args[1])
		},
	}
}

func runAnalysis(cmd *cobra.Command, mode types.Mode, arg string) error {
	e, s, err := loadSnapshot()
	if err != nil {
		return err
	}
	id := fileID(e, arg)
	warnUnknown(s, id)

	res, err := s.Analyze(mode, id)
	if err != nil {
		return err
	}
	return output(cmd, res)
}

// newRefactorCmd creates the "refactor" command.
func newRefactorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refactor [file...]",
		Short: "Show the blast radius of changing files",
		Long: "Refactor reports importers, affected tests and a suggested test command for each file. " +
			"Files come from arguments, --changed (uncommitted changes) or --since (changes after a revision).",
		RunE: runRefactor,
	}
	cmd.Flags().Bool("changed", false, "Analyze files with uncommitted changes")
	cmd.Flags().String("since", "", "Analyze files changed between this revision and HEAD")
	cmd.Flags().Bool("run", false, "Run the suggested test command")
	return cmd
}

func runRefactor(cmd *cobra.Command, args []string) error {
	e, s, err := loadSnapshot()
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(args))
	for _, a := range args {
		id := fileID(e, a)
		warnUnknown(s, id)
		ids = append(ids, id)
	}

	changed, _ := cmd.Flags().GetBool("changed")
	since, _ := cmd.Flags().GetString("since")
	var fromGit []string
	if changed {
		files, err := e.ChangedFiles()
		if err != nil {
			return fmt.Errorf("listing changed files: %w", err)
		}
		fromGit = append(fromGit, files...)
	}
	if since != "" {
		files, err := e.ChangedSince(since)
		if err != nil {
			return fmt.Errorf("listing files changed since %s: %w", since, err)
		}
		fromGit = append(fromGit, files...)
	}
	// Changed files outside the graph (docs, deleted files) are skipped.
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for _, f := range fromGit {
		if seen[f] || !s.Has(f) {
			continue
		}
		seen[f] = true
		ids = append(ids, f)
	}

	if len(ids) == 0 {
		return errNoFiles
	}

	results := make([]*types.RefactorResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, s.Refactor(id))
	}
	if len(results) == 1 {
		err = output(cmd, results[0])
	} else {
		err = output(cmd, results)
	}
	if err != nil {
		return err
	}

	run, _ := cmd.Flags().GetBool("run")
	if !run {
		return nil
	}
	return runSuggested(cmd, e, results)
}

// runSuggested runs each distinct suggested command in order and fails if
// any run does not pass.
func runSuggested(cmd *cobra.Command, e *blast.Engine, results []*types.RefactorResult) error {
	ctx, cancel := signalContext()
	defer cancel()

	ran := make(map[string]bool)
	failed := false
	for _, r := range results {
		command := r.SuggestedTestCommand
		if command == "" || ran[command] {
			continue
		}
		ran[command] = true

		res := e.RunTests(ctx, command)
		if err := output(cmd, res); err != nil {
			return err
		}
		if !res.Passed {
			failed = true
		}
	}
	if len(ran) == 0 {
		return output(cmd, &testrun.Result{Skipped: true, Passed: true})
	}
	if failed {
		return errTestsFailed
	}
	return nil
}

// newHealthCmd creates the "health" command.
func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Report hotspots, fragile test chains and import cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := loadSnapshot()
			if err != nil {
				return err
			}
			return output(cmd, s.Health())
		},
	}
}

// newClusterCmd creates the "cluster" command.
func newClusterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cluster",
		Short: "Group files into modules by import coupling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := loadSnapshot()
			if err != nil {
				return err
			}
			return output(cmd, s.Groups())
		},
	}
}
