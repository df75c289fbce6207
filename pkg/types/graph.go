// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines the dependency graph model and the analysis result
// types shared across blastradius packages. Everything here is plain data;
// the JSON tags are the wire contract for saved graphs and CLI/server output.
package types

// NodeType distinguishes production files from test files.
type NodeType string

const (
	Source NodeType = "source"
	Test   NodeType = "test"
)

// EdgeType identifies the relationship an edge represents.
type EdgeType string

const (
	// Import means Source imports Target.
	Import EdgeType = "import"
	// TestCovers means test Source directly imports non-test Target. It is a
	// derived subset of Import edges, materialized for fast lookup.
	TestCovers EdgeType = "test-covers"
)

// Layer is the informational architectural layer assigned by the scanner.
type Layer string

const (
	LayerUI      Layer = "ui"
	LayerAPI     Layer = "api"
	LayerService Layer = "service"
	LayerData    Layer = "data"
	LayerUtil    Layer = "util"
	LayerConfig  Layer = "config"
	LayerTest    Layer = "test"
	LayerUnknown Layer = "unknown"
)

// Layers lists every Layer value in display order.
var Layers = []Layer{LayerUI, LayerAPI, LayerService, LayerData, LayerUtil, LayerConfig, LayerTest, LayerUnknown}

// GraphNode is a single file in the dependency graph. Depth, LayerIndex,
// FanIn and Size are derived by the metrics pass and are recomputed every
// time it runs; values loaded from disk are never authoritative.
type GraphNode struct {
	ID         string   `json:"id" yaml:"id"`
	Label      string   `json:"label" yaml:"label"`
	Layer      Layer    `json:"layer" yaml:"layer"`
	Type       NodeType `json:"type" yaml:"type"`
	Functions  []string `json:"functions" yaml:"functions"`
	Depth      int      `json:"depth" yaml:"depth"`
	LayerIndex int      `json:"layerIndex" yaml:"layerIndex"`
	FanIn      int      `json:"fanIn" yaml:"fanIn"`
	Size       int      `json:"size" yaml:"size"`
}

// IsTest reports whether the node is a test file.
func (n *GraphNode) IsTest() bool {
	return n.Type == Test
}

// GraphEdge is a directed relationship between two node ids.
type GraphEdge struct {
	Source string   `json:"source" yaml:"source"`
	Target string   `json:"target" yaml:"target"`
	Type   EdgeType `json:"type" yaml:"type"`
}

// FileGroup is a cohesive cluster of files. ParentGroupID and Level are
// only set by hierarchical grouping.
type FileGroup struct {
	ID            string   `json:"id" yaml:"id"`
	Label         string   `json:"label" yaml:"label"`
	NodeIDs       []string `json:"nodeIds" yaml:"nodeIds"`
	CentralNodeID string   `json:"centralNodeId" yaml:"centralNodeId"`
	ParentGroupID string   `json:"parentGroupId,omitempty" yaml:"parentGroupId,omitempty"`
	Level         int      `json:"level,omitempty" yaml:"level,omitempty"`
}

// Graph is a complete snapshot produced by the scanner. Callers guarantee
// that every edge references an existing node id; nothing downstream
// validates it.
type Graph struct {
	Nodes  []GraphNode `json:"nodes" yaml:"nodes"`
	Edges  []GraphEdge `json:"edges" yaml:"edges"`
	Groups []FileGroup `json:"groups,omitempty" yaml:"groups,omitempty"`
}
