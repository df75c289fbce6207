// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package analysis

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/petar-djukic/blastradius/internal/graph"
	"github.com/petar-djukic/blastradius/pkg/types"
)

const (
	DefaultUnitTestCommand = "npx vitest run"
	DefaultE2ETestCommand  = "npx playwright test"
	DefaultE2EMarker       = "e2e"
)

// RefactorOptions selects the runner used for the suggested test command.
// Zero values fall back to the defaults above.
type RefactorOptions struct {
	UnitTestCommand string // Runner for unit and integration tests
	E2ETestCommand  string // Runner used when any test id contains E2EMarker
	E2EMarker       string // Substring marking end-to-end tests
}

func (o RefactorOptions) withDefaults() RefactorOptions {
	if o.UnitTestCommand == "" {
		o.UnitTestCommand = DefaultUnitTestCommand
	}
	if o.E2ETestCommand == "" {
		o.E2ETestCommand = DefaultE2ETestCommand
	}
	if o.E2EMarker == "" {
		o.E2EMarker = DefaultE2EMarker
	}
	return o
}

// Refactor computes the blast radius of changing fileID.
//
// Importers are walked breadth-first, excluding fileID itself.
// DirectImporters holds the depth-1 files; TransitiveAffected holds every
// visited file, depth-1 files included, so the two lists overlap.
func Refactor(idx *graph.Index, fileID string, opts RefactorOptions) *types.RefactorResult {
	opts = opts.withDefaults()

	result := &types.RefactorResult{
		File:               fileID,
		Mode:               types.ModeRefactor,
		DirectImporters:    []string{},
		TransitiveAffected: []string{},
		TestsToRun:         []string{},
		RiskLevel:          types.RiskLow,
	}
	if !idx.Has(fileID) {
		result.RiskReason = fmt.Sprintf("File not found in graph: %s", fileID)
		return result
	}

	tests := newOrderedSet()
	tests.add(idx.TestsCovering(fileID)...)
	if idx.IsTest(fileID) {
		tests.add(fileID)
	}

	for _, v := range bfs(fileID, idx.Importers)[1:] {
		if v.depth == 1 {
			result.DirectImporters = append(result.DirectImporters, v.id)
		}
		result.TransitiveAffected = append(result.TransitiveAffected, v.id)

		if idx.IsTest(v.id) {
			tests.add(v.id)
		}
		tests.add(idx.TestsCovering(v.id)...)
	}

	result.AffectedFiles = len(result.TransitiveAffected)
	result.TestsToRun = tests.list()
	result.AffectedTests = len(result.TestsToRun)
	result.SuggestedTestCommand = suggestTestCommand(result.TestsToRun, opts)
	result.RiskLevel = riskFor(result.AffectedFiles)
	result.RiskReason = refactorReason(fileID, result.AffectedFiles, result.RiskLevel)

	return result
}

// testSuffix matches a trailing test marker plus extension, e.g.
// ".test.ts", ".spec.tsx", "_test.go", ".py".
var testSuffix = regexp.MustCompile(`(?i)([._-](test|spec|e2e))*\.[a-z0-9]+$`)

// testName reduces a test id to the name a runner filter expects.
func testName(id string) string {
	base := path.Base(id)
	name := testSuffix.ReplaceAllString(base, "")
	if name == "" {
		return base
	}
	return name
}

// suggestTestCommand builds a runner invocation for the given tests. Names
// are deduplicated so two tests with the same basename appear once.
func suggestTestCommand(tests []string, opts RefactorOptions) string {
	if len(tests) == 0 {
		return ""
	}

	runner := opts.UnitTestCommand
	for _, t := range tests {
		if strings.Contains(t, opts.E2EMarker) {
			runner = opts.E2ETestCommand
			break
		}
	}

	names := newOrderedSet()
	for _, t := range tests {
		names.add(testName(t))
	}
	return runner + " " + strings.Join(names.list(), " ")
}

func refactorReason(file string, affected int, level types.RiskLevel) string {
	switch level {
	case types.RiskHigh:
		return fmt.Sprintf("%s is depended on by %d files; changes here have a wide blast radius", file, affected)
	case types.RiskMedium:
		return fmt.Sprintf("%s is depended on by %d files; review dependents before changing its API", file, affected)
	default:
		return fmt.Sprintf("%s is depended on by %d files; changes are well contained", file, affected)
	}
}
