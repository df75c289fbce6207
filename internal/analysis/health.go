// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/petar-djukic/blastradius/internal/graph"
	"github.com/petar-djukic/blastradius/pkg/types"
)

const (
	highlyFragileDepth     = 5
	moderatelyFragileDepth = 3
)

// Health builds the codebase health report: hotspots, fragile test chains
// and circular dependencies, alongside node and edge counts.
func Health(idx *graph.Index) *types.HealthReport {
	g := idx.Graph()
	return &types.HealthReport{
		SourceFiles:   len(idx.SourceNodes()),
		TestFiles:     len(idx.TestNodes()),
		Edges:         len(g.Edges),
		Hotspots:      Hotspots(idx),
		FragileChains: FragileChains(idx),
		CircularDeps:  CircularDeps(idx),
	}
}

// Hotspots lists every source file that something imports, highest
// fan-in first.
func Hotspots(idx *graph.Index) []types.HotspotFile {
	out := make([]types.HotspotFile, 0)
	for _, n := range idx.SourceNodes() {
		fanIn := len(idx.Importers(n.ID))
		if fanIn == 0 {
			continue
		}
		out = append(out, types.HotspotFile{
			File:        n.ID,
			FanIn:       fanIn,
			TestsAtRisk: len(idx.TestsCovering(n.ID)),
			RiskLevel:   riskFor(fanIn),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FanIn > out[j].FanIn
	})
	return out
}

// FragileChains finds, for every test, the deepest file reachable through
// its imports. Tests that import nothing are skipped.
func FragileChains(idx *graph.Index) []types.FragileChain {
	out := make([]types.FragileChain, 0)
	for _, t := range idx.TestNodes() {
		maxDepth := 0
		deepest := ""
		for _, v := range bfs(t.ID, idx.Imports) {
			if v.depth > maxDepth {
				maxDepth = v.depth
				deepest = v.id
			}
		}
		if maxDepth <= 0 {
			continue
		}
		out = append(out, types.FragileChain{
			Test:       t.ID,
			Depth:      maxDepth,
			DeepestDep: deepest,
			Reason:     fragileReason(maxDepth),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Depth > out[j].Depth
	})
	return out
}

func fragileReason(depth int) string {
	switch {
	case depth >= highlyFragileDepth:
		return fmt.Sprintf("Import chain is %d levels deep: highly fragile", depth)
	case depth >= moderatelyFragileDepth:
		return fmt.Sprintf("Import chain is %d levels deep: moderately fragile", depth)
	default:
		return fmt.Sprintf("Import chain is %d levels deep", depth)
	}
}

// CircularDeps finds import cycles with a three-color DFS over every node.
// Each back edge to a gray node yields one cycle, rebuilt from parent
// pointers and closed by repeating its first id. Rotations of the same
// cycle are reported once.
func CircularDeps(idx *graph.Index) []types.CircularDep {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	parent := make(map[string]string)
	seen := make(map[string]bool)
	out := make([]types.CircularDep, 0)

	var dfs func(u string)
	dfs = func(u string) {
		color[u] = gray
		for _, v := range idx.Imports(u) {
			switch color[v] {
			case white:
				parent[v] = u
				dfs(v)
			case gray:
				cycle := []string{u}
				for cur := u; cur != v; {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				reverse(cycle)

				key := cycleKey(cycle)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, types.CircularDep{
					Cycle:  append(cycle, cycle[0]),
					Length: len(cycle),
				})
			}
		}
		color[u] = black
	}

	for _, id := range idx.NodeIDs() {
		if color[id] == white {
			dfs(id)
		}
	}
	return out
}

// cycleKey rotates an open cycle so its smallest id comes first and joins
// it, giving every rotation of the same cycle one key.
func cycleKey(cycle []string) string {
	start := 0
	for i, id := range cycle {
		if id < cycle[start] {
			start = i
		}
	}
	rotated := make([]string, 0, len(cycle))
	rotated = append(rotated, cycle[start:]...)
	rotated = append(rotated, cycle[:start]...)
	return strings.Join(rotated, "\x00")
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
