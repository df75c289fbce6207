// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package graph indexes a dependency graph for constant-time neighbor
// lookups, computes structural metrics, and loads and saves graph files.
//
// An Index is a read-only view built once per loaded Graph. After
// ComputeMetrics has run, every method is safe for concurrent use because
// nothing mutates the underlying maps.
package graph

import (
	"github.com/petar-djukic/blastradius/pkg/types"
)

// Index holds four adjacency maps over a Graph.
type Index struct {
	graph      *types.Graph
	nodes      map[string]*types.GraphNode
	imports    map[string][]string // source -> targets (import edges)
	importedBy map[string][]string // target -> sources (import edges)
	testCovers map[string][]string // test -> files (test-covers edges)
	coveredBy  map[string][]string // file -> tests (test-covers edges)
}

// NewIndex builds the adjacency maps in O(V+E). Node pointers refer into
// g.Nodes, so the metrics pass annotates the graph in place. A nil graph
// panics.
func NewIndex(g *types.Graph) *Index {
	idx := &Index{
		graph:      g,
		nodes:      make(map[string]*types.GraphNode, len(g.Nodes)),
		imports:    make(map[string][]string),
		importedBy: make(map[string][]string),
		testCovers: make(map[string][]string),
		coveredBy:  make(map[string][]string),
	}

	for i := range g.Nodes {
		idx.nodes[g.Nodes[i].ID] = &g.Nodes[i]
	}

	for _, e := range g.Edges {
		switch e.Type {
		case types.Import:
			idx.imports[e.Source] = append(idx.imports[e.Source], e.Target)
			idx.importedBy[e.Target] = append(idx.importedBy[e.Target], e.Source)
		case types.TestCovers:
			idx.testCovers[e.Source] = append(idx.testCovers[e.Source], e.Target)
			idx.coveredBy[e.Target] = append(idx.coveredBy[e.Target], e.Source)
		}
	}

	return idx
}

// Graph returns the indexed graph.
func (idx *Index) Graph() *types.Graph {
	return idx.graph
}

// Node returns the node with the given id, or nil.
func (idx *Index) Node(id string) *types.GraphNode {
	return idx.nodes[id]
}

// Has reports whether id names a node in the graph.
func (idx *Index) Has(id string) bool {
	_, ok := idx.nodes[id]
	return ok
}

// IsTest reports whether id names a test node.
func (idx *Index) IsTest(id string) bool {
	n := idx.nodes[id]
	return n != nil && n.IsTest()
}

// Imports returns the files id imports.
func (idx *Index) Imports(id string) []string {
	return orEmpty(idx.imports[id])
}

// Importers returns the files that import id.
func (idx *Index) Importers(id string) []string {
	return orEmpty(idx.importedBy[id])
}

// TestsCovering returns the tests that directly import id.
func (idx *Index) TestsCovering(id string) []string {
	return orEmpty(idx.coveredBy[id])
}

// FilesCoveredBy returns the non-test files test id directly imports.
func (idx *Index) FilesCoveredBy(id string) []string {
	return orEmpty(idx.testCovers[id])
}

// TestNodes returns every test node in graph order.
func (idx *Index) TestNodes() []*types.GraphNode {
	return idx.filter(func(n *types.GraphNode) bool { return n.IsTest() })
}

// SourceNodes returns every source node in graph order.
func (idx *Index) SourceNodes() []*types.GraphNode {
	return idx.filter(func(n *types.GraphNode) bool { return n.Type == types.Source })
}

// NodeIDs returns every node id in graph order.
func (idx *Index) NodeIDs() []string {
	ids := make([]string, 0, len(idx.graph.Nodes))
	for i := range idx.graph.Nodes {
		ids = append(ids, idx.graph.Nodes[i].ID)
	}
	return ids
}

func (idx *Index) filter(keep func(*types.GraphNode) bool) []*types.GraphNode {
	out := make([]*types.GraphNode, 0)
	for i := range idx.graph.Nodes {
		if n := &idx.graph.Nodes[i]; keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// orEmpty never hands out nil so callers can range and serialize freely.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
