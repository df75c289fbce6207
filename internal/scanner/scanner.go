// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scanner builds a dependency graph from a source tree. Go, Python
// and JavaScript/TypeScript files are parsed with tree-sitter; their import
// specifiers are resolved to repository files and become graph edges.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/petar-djukic/blastradius/internal/cluster"
	"github.com/petar-djukic/blastradius/internal/graph"
	"github.com/petar-djukic/blastradius/pkg/types"
)

// ErrNotDirectory is returned when Options.Root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Options configures a scan.
type Options struct {
	Root        string       // Directory to scan
	Concurrency int          // Parallel parsers; <= 0 means runtime.NumCPU()
	Groups      bool         // Cluster files into groups after the metrics pass
	Logger      *slog.Logger // Defaults to slog.Default()
}

// Scan walks opts.Root and returns the dependency graph with metrics
// applied. Files that cannot be read or parsed still become nodes, without
// imports or functions. Output is deterministic: nodes are sorted by id and
// edges follow node order.
func Scan(ctx context.Context, opts Options) (*types.Graph, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving directory: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	start := time.Now()
	files, err := collect(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}
	logger.Debug("files collected", "root", root, "files", len(files))

	results := make([]*parsed, len(files))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, rel := range files {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			p, err := parseFile(egCtx, root, rel)
			if err != nil {
				if ctxErr := egCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Debug("skipping unparsable file", "file", rel, "error", err)
				p = &parsed{functions: []string{}}
			}
			results[i] = p
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	g := assemble(root, files, results)

	idx := graph.NewIndex(g)
	graph.ComputeMetrics(idx)
	if opts.Groups {
		g.Groups = cluster.Build(idx)
	}

	logger.Info("scan complete",
		"files", len(g.Nodes),
		"edges", len(g.Edges),
		"groups", len(g.Groups),
		"duration", time.Since(start).Round(time.Millisecond))
	return g, nil
}

func parseFile(ctx context.Context, root, rel string) (*parsed, error) {
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	return extract(ctx, content, languageFor(rel))
}

// assemble turns per-file extraction results into a graph. files is sorted,
// so node order is id order.
func assemble(root string, files []string, results []*parsed) *types.Graph {
	r := newResolver(root, files)

	g := &types.Graph{
		Nodes: make([]types.GraphNode, 0, len(files)),
		Edges: make([]types.GraphEdge, 0),
	}

	for i, id := range files {
		isTest := IsTestFile(id)
		node := types.GraphNode{
			ID:        id,
			Label:     path.Base(id),
			Layer:     LayerOf(id),
			Type:      types.Source,
			Functions: results[i].functions,
		}
		if isTest {
			node.Type = types.Test
		}
		g.Nodes = append(g.Nodes, node)

		spec := languageFor(id)
		targets := make(map[string]bool)
		for _, imp := range results[i].imports {
			for _, t := range r.resolve(id, spec, imp) {
				targets[t] = true
			}
		}
		for _, t := range r.implicit(id) {
			targets[t] = true
		}
		delete(targets, id)

		sorted := make([]string, 0, len(targets))
		for t := range targets {
			sorted = append(sorted, t)
		}
		sort.Strings(sorted)

		for _, t := range sorted {
			g.Edges = append(g.Edges, types.GraphEdge{Source: id, Target: t, Type: types.Import})
		}
		if !isTest {
			continue
		}
		for _, t := range sorted {
			if !IsTestFile(t) {
				g.Edges = append(g.Edges, types.GraphEdge{Source: id, Target: t, Type: types.TestCovers})
			}
		}
	}

	return g
}
