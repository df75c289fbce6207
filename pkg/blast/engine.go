// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package blast

import (
	"context"
	"fmt"

	"github.com/petar-djukic/blastradius/internal/git"
	"github.com/petar-djukic/blastradius/internal/graph"
	"github.com/petar-djukic/blastradius/internal/scanner"
	"github.com/petar-djukic/blastradius/internal/testrun"
)

// Engine ties a validated Config to the scanner, the graph store, git and
// the test runner. Analyses run on the Snapshots it produces.
type Engine struct {
	cfg Config
}

// New validates the config and applies defaults. It does not touch the
// graph file; call Load or Scan for a Snapshot.
func New(cfg Config) (*Engine, error) {
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the effective configuration, defaults applied.
func (e *Engine) Config() Config { return e.cfg }

// Scan builds a fresh graph from WorkDir.
func (e *Engine) Scan(ctx context.Context) (*Snapshot, error) {
	g, err := scanner.Scan(ctx, scanner.Options{
		Root:        e.cfg.WorkDir,
		Concurrency: e.cfg.Concurrency,
		Groups:      e.cfg.Groups,
		Logger:      e.cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", e.cfg.WorkDir, err)
	}
	return NewSnapshot(g, e.cfg.refactorOptions()), nil
}

// Rescan scans WorkDir and saves the result to the graph file.
func (e *Engine) Rescan(ctx context.Context) (*Snapshot, error) {
	s, err := e.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.Save(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the saved graph file. Derived node fields are recomputed, so
// stale values on disk are never trusted.
func (e *Engine) Load() (*Snapshot, error) {
	g, err := graph.Load(e.cfg.GraphPath())
	if err != nil {
		return nil, err
	}
	e.cfg.Logger.Debug("graph loaded", "path", e.cfg.GraphPath(), "nodes", len(g.Nodes), "edges", len(g.Edges))
	return NewSnapshot(g, e.cfg.refactorOptions()), nil
}

// Save writes the snapshot's graph to the graph file.
func (e *Engine) Save(s *Snapshot) error {
	if err := graph.Save(e.cfg.GraphPath(), s.Graph()); err != nil {
		return err
	}
	e.cfg.Logger.Debug("graph saved", "path", e.cfg.GraphPath())
	return nil
}

// ChangedFiles lists uncommitted changes in WorkDir, relative to it.
func (e *Engine) ChangedFiles() ([]string, error) {
	repo, err := git.Open(git.Config{WorkDir: e.cfg.WorkDir})
	if err != nil {
		return nil, err
	}
	return repo.ChangedFiles()
}

// ChangedSince lists files that differ between rev and HEAD, relative to
// WorkDir.
func (e *Engine) ChangedSince(rev string) ([]string, error) {
	repo, err := git.Open(git.Config{WorkDir: e.cfg.WorkDir})
	if err != nil {
		return nil, err
	}
	return repo.ChangedSince(rev)
}

// RunTests executes command in WorkDir with the configured timeout.
func (e *Engine) RunTests(ctx context.Context, command string) *testrun.Result {
	e.cfg.Logger.Info("running tests", "command", command)
	r := testrun.Run(ctx, testrun.Config{
		WorkDir: e.cfg.WorkDir,
		Command: command,
		Timeout: e.cfg.TestTimeout,
	})
	e.cfg.Logger.Info("tests finished", "passed", r.Passed, "exit", r.ExitCode, "duration", r.Duration)
	return r
}
