// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package analysis

import (
	"github.com/petar-djukic/blastradius/internal/graph"
	"github.com/petar-djukic/blastradius/pkg/types"
)

// ForwardImpact reports every file that breaks when fileID changes: a BFS
// over importers starting at fileID (depth 0). AffectedTests collects the
// tests covering the start node, every visited test, and the tests
// covering each visited node.
func ForwardImpact(idx *graph.Index, fileID string) *types.ImpactResult {
	if !idx.Has(fileID) {
		return emptyImpact()
	}

	tests := newOrderedSet()
	tests.add(idx.TestsCovering(fileID)...)

	visits := bfs(fileID, idx.Importers)
	nodes := make([]types.ImpactNode, 0, len(visits))
	for _, v := range visits {
		nodes = append(nodes, types.ImpactNode{NodeID: v.id, Depth: v.depth})
		if idx.IsTest(v.id) {
			tests.add(v.id)
		}
		tests.add(idx.TestsCovering(v.id)...)
	}

	return &types.ImpactResult{Nodes: nodes, AffectedTests: tests.list()}
}

// BackwardImpact reports everything fileID depends on: a BFS over imports
// starting at fileID (depth 0). AffectedTests holds fileID itself when it
// is a test, followed by every test reached along the way.
func BackwardImpact(idx *graph.Index, fileID string) *types.ImpactResult {
	if !idx.Has(fileID) {
		return emptyImpact()
	}

	tests := newOrderedSet()
	if idx.IsTest(fileID) {
		tests.add(fileID)
	}

	visits := bfs(fileID, idx.Imports)
	nodes := make([]types.ImpactNode, 0, len(visits))
	for _, v := range visits {
		nodes = append(nodes, types.ImpactNode{NodeID: v.id, Depth: v.depth})
		if idx.IsTest(v.id) {
			tests.add(v.id)
		}
	}

	return &types.ImpactResult{Nodes: nodes, AffectedTests: tests.list()}
}

func emptyImpact() *types.ImpactResult {
	return &types.ImpactResult{Nodes: []types.ImpactNode{}, AffectedTests: []string{}}
}
