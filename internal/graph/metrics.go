// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package graph

import (
	"math"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/petar-djukic/blastradius/pkg/types"
)

const (
	visualLayers = 4
	baseSize     = 30
	sizeScale    = 12
)

// ComputeMetrics annotates every node of the indexed graph with FanIn,
// Depth, LayerIndex and Size. It must run before the index is shared.
func ComputeMetrics(idx *Index) {
	g := idx.graph

	for i := range g.Nodes {
		n := &g.Nodes[i]
		n.FanIn = len(idx.importedBy[n.ID])
		n.Size = NodeSize(n.FanIn)
	}

	depths := sourceDepths(idx)

	maxDepth := 0
	for i := range g.Nodes {
		n := &g.Nodes[i]
		n.Depth = 0
		if !n.IsTest() {
			n.Depth = depths[n.ID]
		}
		if n.Depth > maxDepth {
			maxDepth = n.Depth
		}
	}

	bucket := max(1, int(math.Ceil(float64(maxDepth)/visualLayers)))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.IsTest() {
			n.LayerIndex = -1
			continue
		}
		n.LayerIndex = min(visualLayers-1, n.Depth/bucket)
	}
}

// NodeSize is the visual weight of a node with the given fan-in.
func NodeSize(fanIn int) int {
	return int(math.Round(baseSize + math.Log2(float64(fanIn+1))*sizeScale))
}

// sourceDepths returns the longest-dependency-path length of every source
// node. Cycles are collapsed with Tarjan's SCC algorithm first, so every
// member of a cycle shares its component's depth.
func sourceDepths(idx *Index) map[string]int {
	g := idx.graph

	// Step 1: map source ids to gonum node ids.
	ids := make(map[string]int64)
	names := make([]string, 0)
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Type != types.Source {
			continue
		}
		if _, dup := ids[n.ID]; dup {
			continue
		}
		ids[n.ID] = int64(len(names))
		names = append(names, n.ID)
	}

	dg := simple.NewDirectedGraph()
	for i := range names {
		dg.AddNode(simple.Node(int64(i)))
	}
	for _, from := range names {
		for _, to := range idx.imports[from] {
			toID, ok := ids[to]
			// simple graphs reject self edges; a self import never changes depth.
			if !ok || toID == ids[from] {
				continue
			}
			dg.SetEdge(simple.Edge{F: simple.Node(ids[from]), T: simple.Node(toID)})
		}
	}

	// Step 2: collapse cycles.
	sccs := topo.TarjanSCC(dg)
	component := make([]int, len(names))
	for c, members := range sccs {
		for _, m := range members {
			component[m.ID()] = c
		}
	}

	// Step 3: condensed DAG, dropping edges inside a component.
	children := make([][]int, len(sccs))
	seen := make(map[[2]int]bool)
	for i, from := range names {
		for _, to := range idx.imports[from] {
			toID, ok := ids[to]
			if !ok {
				continue
			}
			a, b := component[i], component[toID]
			if a == b || seen[[2]int{a, b}] {
				continue
			}
			seen[[2]int{a, b}] = true
			children[a] = append(children[a], b)
		}
	}

	// Step 4: longest path per component.
	sccDepth := condensedDepths(children)

	depths := make(map[string]int, len(names))
	for i, id := range names {
		depths[id] = sccDepth[component[i]]
	}
	return depths
}

// condensedDepths computes depth(c) = 1 + max(depth(child)), or 0 for a
// component with no children. It walks an explicit stack instead of
// recursing so very deep graphs cannot exhaust the goroutine stack. The
// memo is seeded with 0 when a component is entered; a component seen
// again while still in progress reads that sentinel.
func condensedDepths(children [][]int) []int {
	const (
		unvisited = iota
		inProgress
		done
	)

	memo := make([]int, len(children))
	state := make([]uint8, len(children))

	type frame struct {
		c    int
		next int
	}

	for root := range children {
		if state[root] != unvisited {
			continue
		}
		state[root] = inProgress
		memo[root] = 0
		stack := []frame{{c: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(children[top.c]) {
				child := children[top.c][top.next]
				top.next++
				if state[child] == unvisited {
					state[child] = inProgress
					memo[child] = 0
					stack = append(stack, frame{c: child})
				}
				continue
			}

			d := 0
			for _, child := range children[top.c] {
				d = max(d, 1+memo[child])
			}
			memo[top.c] = d
			state[top.c] = done
			stack = stack[:len(stack)-1]
		}
	}

	return memo
}
