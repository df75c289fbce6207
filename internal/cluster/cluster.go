// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cluster groups source files into named modules by import coupling.
package cluster

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/petar-djukic/blastradius/internal/graph"
	"github.com/petar-djukic/blastradius/pkg/types"
)

const (
	// MinSourceFiles is the smallest graph worth clustering.
	MinSourceFiles = 8
	// MergeThreshold is the lowest coupling score that still merges.
	MergeThreshold = 0.4
	// FlatShare is the share of source files one directory must hold before
	// it is split into per-file seeds.
	FlatShare = 0.5
)

// groups is an insertion-ordered map from seed key to member ids. Iterating
// keys in order makes every tie-break first-seen.
type groups struct {
	keys    []string
	members map[string][]string
}

func (g *groups) add(key, id string) {
	if _, ok := g.members[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.members[key] = append(g.members[key], id)
}

// absorb moves every member of src into dst and removes src.
func (g *groups) absorb(dst, src string) {
	g.members[dst] = append(g.members[dst], g.members[src]...)
	delete(g.members, src)
	for i, k := range g.keys {
		if k == src {
			g.keys = append(g.keys[:i], g.keys[i+1:]...)
			break
		}
	}
}

// Build clusters the source files of idx. It returns an empty slice when the
// graph has fewer than MinSourceFiles source files or when clustering yields
// nothing more useful than one group spanning every file.
func Build(idx *graph.Index) []types.FileGroup {
	sources := idx.SourceNodes()
	out := make([]types.FileGroup, 0)
	if len(sources) < MinSourceFiles {
		return out
	}

	gs := seed(sources)
	merge(idx, gs)

	kept := make([]string, 0, len(gs.keys))
	for _, k := range gs.keys {
		if len(gs.members[k]) >= 2 {
			kept = append(kept, k)
		}
	}
	if len(kept) == 1 && len(gs.members[kept[0]]) == len(sources) {
		return out
	}

	usedIDs := make(map[string]int)
	for _, k := range kept {
		members := gs.members[k]
		central := centralMember(idx, members)
		label := groupLabel(members, central)

		id := groupID(label)
		usedIDs[id]++
		if n := usedIDs[id]; n > 1 {
			id = fmt.Sprintf("%s-%d", id, n)
		}

		out = append(out, types.FileGroup{
			ID:            id,
			Label:         label,
			NodeIDs:       members,
			CentralNodeID: central,
		})
	}
	return out
}

// seed makes one group per directory, except that a directory holding at
// least FlatShare of all source files is split into one group per file.
func seed(sources []*types.GraphNode) *groups {
	perDir := make(map[string]int)
	for _, n := range sources {
		perDir[path.Dir(n.ID)]++
	}

	flat := ""
	for _, n := range sources {
		if dir := path.Dir(n.ID); float64(perDir[dir]) >= FlatShare*float64(len(sources)) {
			flat = dir
			break
		}
	}

	gs := &groups{members: make(map[string][]string)}
	for _, n := range sources {
		dir := path.Dir(n.ID)
		if dir == flat {
			gs.add("file:"+n.ID, n.ID)
			continue
		}
		gs.add("dir:"+dir, n.ID)
	}
	return gs
}

// merge repeatedly joins the most strongly coupled pair of groups until no
// pair scores at least MergeThreshold.
func merge(idx *graph.Index, gs *groups) {
	for {
		owner := make(map[string]string)
		for _, k := range gs.keys {
			for _, id := range gs.members[k] {
				owner[id] = k
			}
		}

		// Import edges between groups, counted in both directions.
		between := make(map[[2]string]int)
		for _, from := range gs.keys {
			for _, id := range gs.members[from] {
				for _, target := range idx.Imports(id) {
					to, ok := owner[target]
					if !ok || to == from {
						continue
					}
					between[[2]string{from, to}]++
				}
			}
		}

		bestScore := 0.0
		var bestA, bestB string
		for i, a := range gs.keys {
			for _, b := range gs.keys[i+1:] {
				edges := between[[2]string{a, b}] + between[[2]string{b, a}]
				if edges == 0 {
					continue
				}
				score := float64(edges) / float64(len(gs.members[a])+len(gs.members[b]))
				if score > bestScore {
					bestScore, bestA, bestB = score, a, b
				}
			}
		}

		if bestScore < MergeThreshold {
			return
		}
		gs.absorb(bestA, bestB)
	}
}

func centralMember(idx *graph.Index, members []string) string {
	central, best := members[0], -1
	for _, id := range members {
		if fanIn := len(idx.Importers(id)); fanIn > best {
			central, best = id, fanIn
		}
	}
	return central
}

var layerSuffix = regexp.MustCompile(`(?i)[._-]?(controller|ctrl|service|svc|model|repository|repo|handler)$`)

// stem strips the extension and any trailing layer suffix from a file's
// base name: "src/user.controller.ts" and "src/UserService.ts" both give
// "user" modulo case.
func stem(id string) string {
	base := path.Base(id)
	base = strings.TrimSuffix(base, path.Ext(base))
	return layerSuffix.ReplaceAllString(base, "")
}

// groupLabel names a group after its most common stem. Stems are counted
// case-insensitively and the label keeps the case of the first one seen.
func groupLabel(members []string, central string) string {
	counts := make(map[string]int)
	spelled := make(map[string]string)
	var order []string
	for _, id := range members {
		st := stem(id)
		s := strings.ToLower(st)
		if s == "" {
			continue
		}
		if counts[s] == 0 {
			order = append(order, s)
			spelled[s] = st
		}
		counts[s]++
	}

	top := ""
	for _, s := range order {
		if counts[s] > counts[top] {
			top = s
		}
	}
	if len(top) >= 2 {
		return capitalize(spelled[top])
	}

	if dir := path.Base(path.Dir(central)); dir != "." && dir != "/" && dir != "src" {
		return capitalize(dir)
	}
	return path.Base(central)
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func groupID(label string) string {
	return "group-" + nonAlnum.ReplaceAllString(strings.ToLower(label), "-")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
