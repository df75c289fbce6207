// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/petar-djukic/blastradius/internal/testrun"
	"github.com/petar-djukic/blastradius/pkg/types"
)

func sampleRefactor() *types.RefactorResult {
	return &types.RefactorResult{
		File:                 "src/db.ts",
		Mode:                 types.ModeRefactor,
		AffectedFiles:        4,
		AffectedTests:        1,
		DirectImporters:      []string{"src/svc.ts"},
		TransitiveAffected:   []string{"src/svc.ts", "src/a.ts", "src/b.ts", "src/c.ts"},
		TestsToRun:           []string{"test/db.test.ts"},
		SuggestedTestCommand: "npx vitest run db",
		RiskLevel:            types.RiskLow,
		RiskReason:           "src/db.ts is depended on by 4 files; changes are well contained",
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "json", "yaml"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(s), f)
	}
	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRefactor(), Options{Format: FormatJSON}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "refactor", got["mode"])
	assert.Equal(t, "npx vitest run db", got["suggested_test_command"])
	assert.Contains(t, buf.String(), "\n  \"file\": \"src/db.ts\"")
}

func TestWrite_YAMLUsesWireNames(t *testing.T) {
	var buf bytes.Buffer
	report := &types.HealthReport{
		SourceFiles:   2,
		Hotspots:      []types.HotspotFile{{File: "a.ts", FanIn: 6, RiskLevel: types.RiskMedium}},
		FragileChains: []types.FragileChain{},
		CircularDeps:  []types.CircularDep{},
	}
	require.NoError(t, Write(&buf, report, Options{Format: FormatYAML}))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 2, got["sourceFiles"])
	assert.Contains(t, buf.String(), "fanIn: 6")
	assert.Contains(t, buf.String(), "riskLevel: medium")
}

func TestWrite_TextRefactorTruncates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRefactor(), Options{Format: FormatText, MaxItems: 2}))

	out := buf.String()
	assert.Contains(t, out, "Refactor: src/db.ts")
	assert.Contains(t, out, "Risk: LOW")
	assert.Contains(t, out, "Transitively affected (4)")
	assert.Contains(t, out, "  - src/a.ts")
	assert.NotContains(t, out, "  - src/b.ts")
	assert.Contains(t, out, "... and 2 more")
	assert.Contains(t, out, "Suggested: npx vitest run db")
}

func TestWrite_TextDefaultsToText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []types.FileGroup{}, Options{}))
	assert.Contains(t, buf.String(), "Groups: 0")
}

func TestWrite_TextEveryResultType(t *testing.T) {
	values := map[string]any{
		"Graph: 2 files (1 source, 1 test), 2 edges": &types.Graph{
			Nodes: []types.GraphNode{{ID: "a", Type: types.Source}, {ID: "t", Type: types.Test}},
			Edges: []types.GraphEdge{{Source: "t", Target: "a", Type: types.Import}, {Source: "t", Target: "a", Type: types.TestCovers}},
		},
		"Impact of a: 1 files, 1 tests": &types.ImpactResult{
			Nodes:         []types.ImpactNode{{NodeID: "a"}, {NodeID: "t", Depth: 1}},
			AffectedTests: []string{"t"},
		},
		"Failing test: t": &types.FailingResult{
			Test:               "t",
			Chain:              []types.ChainNode{{NodeID: "t"}, {NodeID: "a", Depth: 1}},
			DirectlyTests:      []string{"a"},
			FilesToInvestigate: []string{"a"},
			OtherTestsAtRisk:   []string{},
		},
		"Health: 1 source files, 1 test files, 2 edges": &types.HealthReport{
			SourceFiles:  1,
			TestFiles:    1,
			Edges:        2,
			CircularDeps: []types.CircularDep{{Cycle: []string{"a", "b", "a"}, Length: 2}},
		},
		"central a.ts": []types.FileGroup{{ID: "group-x", Label: "X", NodeIDs: []string{"a.ts", "b.ts"}, CentralNodeID: "a.ts"}},
		"Tests: failed with exit code 1": &testrun.Result{Command: "false", ExitCode: 1, Failures: []string{}},
	}

	for want, v := range values {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, v, Options{Format: FormatText}), want)
		assert.Contains(t, buf.String(), want)
	}
}

func TestWrite_TextHealthCycles(t *testing.T) {
	var buf bytes.Buffer
	r := &types.HealthReport{CircularDeps: []types.CircularDep{{Cycle: []string{"a", "b", "a"}, Length: 2}}}
	require.NoError(t, Write(&buf, r, Options{}))

	assert.Contains(t, buf.String(), "a -> b -> a")
	assert.Contains(t, buf.String(), "Hotspots (0)")
}

func TestWrite_TextMultipleRefactors(t *testing.T) {
	second := sampleRefactor()
	second.File = "src/svc.ts"

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []*types.RefactorResult{sampleRefactor(), second}, Options{}))

	assert.Contains(t, buf.String(), "Refactor: src/db.ts")
	assert.Contains(t, buf.String(), "Refactor: src/svc.ts")
}

func TestWrite_TextUnsupported(t *testing.T) {
	err := Write(&bytes.Buffer{}, 42, Options{Format: FormatText})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, sampleRefactor(), Options{Format: "xml"})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
