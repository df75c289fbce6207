// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package analysis answers blast-radius questions over an indexed
// dependency graph: forward and backward impact, failing-test root causes,
// refactor blast radius, and the codebase health report.
//
// Every function is a pure read of the index. Queues, visited sets and
// color maps are local, so all analyses may run concurrently against the
// same index. Unknown ids produce empty results, never errors.
package analysis

import (
	"github.com/petar-djukic/blastradius/pkg/types"
)

// visit is a node reached by bfs and the depth of its first discovery.
type visit struct {
	id    string
	depth int
}

// bfs walks next() breadth-first from start, visiting every node exactly
// once. The first discovery fixes a node's depth, which keeps traversal
// finite on cyclic graphs. The start node is returned first at depth 0.
func bfs(start string, next func(string) []string) []visit {
	visited := map[string]bool{start: true}
	order := []visit{{id: start}}

	for head := 0; head < len(order); head++ {
		cur := order[head]
		for _, n := range next(cur.id) {
			if visited[n] {
				continue
			}
			visited[n] = true
			order = append(order, visit{id: n, depth: cur.depth + 1})
		}
	}
	return order
}

// orderedSet is a string set that remembers insertion order.
type orderedSet struct {
	seen  map[string]bool
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool), items: []string{}}
}

func (s *orderedSet) add(ids ...string) {
	for _, id := range ids {
		if s.seen[id] {
			continue
		}
		s.seen[id] = true
		s.items = append(s.items, id)
	}
}

func (s *orderedSet) has(id string) bool {
	return s.seen[id]
}

func (s *orderedSet) list() []string {
	return s.items
}

// riskFor maps a count onto the shared low/medium/high thresholds.
func riskFor(n int) types.RiskLevel {
	switch {
	case n >= highRiskThreshold:
		return types.RiskHigh
	case n >= mediumRiskThreshold:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

const (
	highRiskThreshold   = 20
	mediumRiskThreshold = 5
)
