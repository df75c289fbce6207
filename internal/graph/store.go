// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/petar-djukic/blastradius/pkg/types"
)

// ErrEmptyGraphFile is returned when a graph file has no content.
var ErrEmptyGraphFile = errors.New("empty graph file")

// ErrInvalidGraph is returned when graph data cannot be decoded.
var ErrInvalidGraph = errors.New("invalid graph data")

// Decode parses graph JSON. Unknown fields are rejected so that a save
// after a load never silently drops data. Zero-valued optional fields are
// omitted on save: a group's "level": 0 and an empty "groups" list do not
// survive a load and save, so only files written by Encode round-trip
// byte for byte.
func Decode(data []byte) (*types.Graph, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyGraphFile
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var g types.Graph
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGraph, err)
	}
	return &g, nil
}

// Encode renders a graph as indented JSON with a trailing newline. Decode
// followed by Encode reproduces a previously encoded graph byte for byte.
func Encode(g *types.Graph) ([]byte, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding graph: %w", err)
	}
	return append(data, '\n'), nil
}

// Load reads and decodes the graph file at path.
func Load(path string) (*types.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph file: %w", err)
	}
	g, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Save writes the graph to path, creating parent directories. The file is
// written to a temporary sibling first and renamed into place.
func Save(path string, g *types.Graph) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating graph directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing graph file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing graph file: %w", err)
	}
	return nil
}
