// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package analysis

import (
	"strings"

	"github.com/petar-djukic/blastradius/internal/graph"
	"github.com/petar-djukic/blastradius/pkg/types"
)

// fixture builds an index from "from>to" import specs. Ids containing
// "test" are test nodes; an import from a test into a non-test file also
// produces a test-covers edge, as the scanner would.
func fixture(specs ...string) *graph.Index {
	g := &types.Graph{}
	seen := make(map[string]bool)
	isTest := func(id string) bool { return strings.Contains(id, "test") }

	addNode := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		typ, layer := types.Source, types.LayerService
		if isTest(id) {
			typ, layer = types.Test, types.LayerTest
		}
		g.Nodes = append(g.Nodes, types.GraphNode{ID: id, Label: id, Type: typ, Layer: layer})
	}

	for _, s := range specs {
		from, to, ok := strings.Cut(s, ">")
		if !ok {
			addNode(s)
			continue
		}
		addNode(from)
		addNode(to)
		g.Edges = append(g.Edges, types.GraphEdge{Source: from, Target: to, Type: types.Import})
		if isTest(from) && !isTest(to) {
			g.Edges = append(g.Edges, types.GraphEdge{Source: from, Target: to, Type: types.TestCovers})
		}
	}

	idx := graph.NewIndex(g)
	graph.ComputeMetrics(idx)
	return idx
}

func impactIDs(r *types.ImpactResult) []string {
	ids := make([]string, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		ids = append(ids, n.NodeID)
	}
	return ids
}
