// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package analysis

import (
	"sort"

	"github.com/petar-djukic/blastradius/internal/graph"
	"github.com/petar-djukic/blastradius/pkg/types"
)

// FailingTest ranks the likely root causes of a failing test.
//
// The test's imports are walked breadth-first. Files at depth 1 are what
// the test exercises directly. All dependencies are then ordered deepest
// first: the file most transitively depended upon is the most likely
// shared root cause. Same-depth files keep BFS discovery order.
func FailingTest(idx *graph.Index, testID string) *types.FailingResult {
	result := &types.FailingResult{
		Test:               testID,
		Mode:               types.ModeFailing,
		Chain:              []types.ChainNode{},
		DirectlyTests:      []string{},
		DeepDependencies:   []string{},
		FilesToInvestigate: []string{},
		OtherTestsAtRisk:   []string{},
	}
	if !idx.Has(testID) {
		return result
	}

	visits := bfs(testID, idx.Imports)

	deps := make([]visit, 0, len(visits))
	depSet := newOrderedSet()
	for _, v := range visits {
		chain := types.ChainNode{NodeID: v.id, Depth: v.depth}
		if n := idx.Node(v.id); n != nil {
			chain.Layer = n.Layer
		}
		result.Chain = append(result.Chain, chain)

		if v.depth == 0 {
			continue
		}
		if v.depth == 1 {
			result.DirectlyTests = append(result.DirectlyTests, v.id)
		}
		deps = append(deps, v)
		depSet.add(v.id)
	}

	sort.SliceStable(deps, func(i, j int) bool {
		return deps[i].depth > deps[j].depth
	})
	for _, d := range deps {
		result.DeepDependencies = append(result.DeepDependencies, d.id)
	}
	result.FilesToInvestigate = append(result.FilesToInvestigate, result.DeepDependencies...)

	result.OtherTestsAtRisk = otherTestsAtRisk(idx, testID, depSet)
	return result
}

// otherTestsAtRisk gathers tests other than testID that share any of its
// dependencies, in three passes: covering tests, test importers, and tests
// whose own direct imports intersect the dependency set.
func otherTestsAtRisk(idx *graph.Index, testID string, deps *orderedSet) []string {
	risk := newOrderedSet()

	for _, dep := range deps.list() {
		for _, t := range idx.TestsCovering(dep) {
			if t != testID {
				risk.add(t)
			}
		}
	}

	for _, dep := range deps.list() {
		for _, imp := range idx.Importers(dep) {
			if imp != testID && idx.IsTest(imp) {
				risk.add(imp)
			}
		}
	}

	for _, t := range idx.TestNodes() {
		if t.ID == testID || risk.has(t.ID) {
			continue
		}
		for _, imp := range idx.Imports(t.ID) {
			if deps.has(imp) {
				risk.add(t.ID)
				break
			}
		}
	}

	return risk.list()
}
