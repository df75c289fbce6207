// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package blast

import (
	"sync"

	"github.com/petar-djukic/blastradius/internal/analysis"
	"github.com/petar-djukic/blastradius/internal/cluster"
	"github.com/petar-djukic/blastradius/internal/graph"
	"github.com/petar-djukic/blastradius/pkg/types"
)

// Snapshot is an indexed graph with metrics applied. It is never mutated
// after construction, so every method is safe for concurrent use; a reload
// builds a new Snapshot instead.
type Snapshot struct {
	graph *types.Graph
	index *graph.Index
	opts  analysis.RefactorOptions

	groupsOnce sync.Once
	groups     []types.FileGroup
}

// NewSnapshot indexes g and recomputes its derived node fields in place.
// The caller must not modify g afterwards.
func NewSnapshot(g *types.Graph, opts analysis.RefactorOptions) *Snapshot {
	idx := graph.NewIndex(g)
	graph.ComputeMetrics(idx)
	return &Snapshot{graph: g, index: idx, opts: opts}
}

// Graph returns the underlying graph. Treat it as read-only.
func (s *Snapshot) Graph() *types.Graph { return s.graph }

// Has reports whether id names a file in the graph.
func (s *Snapshot) Has(id string) bool { return s.index.Has(id) }

func (s *Snapshot) ForwardImpact(id string) *types.ImpactResult {
	return analysis.ForwardImpact(s.index, id)
}

func (s *Snapshot) BackwardImpact(id string) *types.ImpactResult {
	return analysis.BackwardImpact(s.index, id)
}

func (s *Snapshot) FailingTest(id string) *types.FailingResult {
	return analysis.FailingTest(s.index, id)
}

func (s *Snapshot) Refactor(id string) *types.RefactorResult {
	return analysis.Refactor(s.index, id, s.opts)
}

// Analyze dispatches a per-file analysis by mode.
func (s *Snapshot) Analyze(mode types.Mode, id string) (types.Analysis, error) {
	return analysis.Analyze(s.index, mode, id, s.opts)
}

func (s *Snapshot) Health() *types.HealthReport {
	return analysis.Health(s.index)
}

// Groups returns the graph's file groups: those saved with it when present,
// otherwise clusters computed on first use.
func (s *Snapshot) Groups() []types.FileGroup {
	s.groupsOnce.Do(func() {
		if len(s.graph.Groups) > 0 {
			s.groups = s.graph.Groups
			return
		}
		s.groups = cluster.Build(s.index)
	})
	return s.groups
}
