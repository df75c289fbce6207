// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/blastradius/pkg/types"
)

func TestHotspots(t *testing.T) {
	specs := []string{"B>C", "test_b>B"}
	for i := 0; i < 5; i++ {
		specs = append(specs, fmt.Sprintf("f%d>B", i))
	}
	idx := fixture(specs...)

	hs := Hotspots(idx)

	require.Len(t, hs, 2)
	assert.Equal(t, types.HotspotFile{File: "B", FanIn: 6, TestsAtRisk: 1, RiskLevel: types.RiskMedium}, hs[0])
	assert.Equal(t, types.HotspotFile{File: "C", FanIn: 1, TestsAtRisk: 0, RiskLevel: types.RiskLow}, hs[1])
}

func TestHotspots_SkipsTestsAndLeaves(t *testing.T) {
	idx := fixture("test_a>test_helper", "lonely")

	assert.Empty(t, Hotspots(idx))
	assert.NotNil(t, Hotspots(idx))
}

func TestFragileChains(t *testing.T) {
	idx := fixture(
		"test_c>P",
		"test_b>X", "X>Y", "Y>Z",
		"test_a>A", "A>B", "B>C", "C>D", "D>E",
		"test_d",
	)

	fc := FragileChains(idx)

	require.Len(t, fc, 3)
	assert.Equal(t, types.FragileChain{
		Test: "test_a", Depth: 5, DeepestDep: "E",
		Reason: "Import chain is 5 levels deep: highly fragile",
	}, fc[0])
	assert.Equal(t, types.FragileChain{
		Test: "test_b", Depth: 3, DeepestDep: "Z",
		Reason: "Import chain is 3 levels deep: moderately fragile",
	}, fc[1])
	assert.Equal(t, "test_c", fc[2].Test)
	assert.Equal(t, "Import chain is 1 levels deep", fc[2].Reason)
}

func TestCircularDeps(t *testing.T) {
	idx := fixture("a>b", "b>c", "c>a", "c>a", "x>y", "y>x", "c>d")

	cycles := CircularDeps(idx)

	require.Len(t, cycles, 2)
	assert.Equal(t, types.CircularDep{Cycle: []string{"a", "b", "c", "a"}, Length: 3}, cycles[0])
	assert.Equal(t, types.CircularDep{Cycle: []string{"x", "y", "x"}, Length: 2}, cycles[1])
}

func TestCircularDeps_Acyclic(t *testing.T) {
	idx := fixture("a>b", "b>c", "a>c")

	assert.Empty(t, CircularDeps(idx))
}

func TestCycleKey_RotationsMatch(t *testing.T) {
	want := cycleKey([]string{"a", "b", "c"})
	assert.Equal(t, want, cycleKey([]string{"b", "c", "a"}))
	assert.Equal(t, want, cycleKey([]string{"c", "a", "b"}))
	assert.NotEqual(t, want, cycleKey([]string{"a", "c", "b"}))
}

func TestHealth_Counts(t *testing.T) {
	idx := fixture("app>svc", "svc>db", "test_app>app")

	h := Health(idx)

	assert.Equal(t, 3, h.SourceFiles)
	assert.Equal(t, 1, h.TestFiles)
	// three imports plus one test-covers edge
	assert.Equal(t, 4, h.Edges)
	assert.Len(t, h.Hotspots, 3)
	assert.Len(t, h.FragileChains, 1)
	assert.Empty(t, h.CircularDeps)
}
