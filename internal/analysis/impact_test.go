// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/blastradius/pkg/types"
)

func TestForwardImpact_StartAtDepthZeroAndVisitedOnce(t *testing.T) {
	idx := fixture("app>svc", "api>svc", "svc>db", "app>db", "api>app", "test_app>app", "test_db>db")

	for _, id := range idx.NodeIDs() {
		r := ForwardImpact(idx, id)
		require.NotEmpty(t, r.Nodes, id)
		assert.Equal(t, types.ImpactNode{NodeID: id, Depth: 0}, r.Nodes[0], id)

		seen := make(map[string]bool)
		for _, n := range r.Nodes {
			assert.False(t, seen[n.NodeID], "%s visited twice from %s", n.NodeID, id)
			seen[n.NodeID] = true
		}
	}
}

func TestForwardImpact_CollectsTests(t *testing.T) {
	idx := fixture("svc>db", "app>svc", "test_app>app", "test_db>db")

	r := ForwardImpact(idx, "db")

	assert.Equal(t, []types.ImpactNode{
		{NodeID: "db", Depth: 0},
		{NodeID: "svc", Depth: 1},
		{NodeID: "test_db", Depth: 1},
		{NodeID: "app", Depth: 2},
		{NodeID: "test_app", Depth: 3},
	}, r.Nodes)
	assert.Equal(t, []string{"test_db", "test_app"}, r.AffectedTests)
}

func TestForwardImpact_FirstDiscoveryDepthWins(t *testing.T) {
	// top reaches leaf both directly and through mid.
	idx := fixture("top>mid", "mid>leaf", "top>leaf")

	r := ForwardImpact(idx, "leaf")

	depths := make(map[string]int)
	for _, n := range r.Nodes {
		depths[n.NodeID] = n.Depth
	}
	assert.Equal(t, 1, depths["top"])
	assert.Equal(t, 1, depths["mid"])
}

func TestBackwardImpact_WalksImports(t *testing.T) {
	idx := fixture("test_app>app", "app>svc", "svc>db", "app>util")

	r := BackwardImpact(idx, "test_app")

	assert.Equal(t, []string{"test_app", "app", "svc", "util", "db"}, impactIDs(r))
	assert.Equal(t, []string{"test_app"}, r.AffectedTests)
}

func TestBackwardImpact_NonTestStartHasNoTests(t *testing.T) {
	idx := fixture("app>svc", "test_app>app")

	r := BackwardImpact(idx, "app")

	assert.Equal(t, []string{"app", "svc"}, impactIDs(r))
	assert.Empty(t, r.AffectedTests)
	assert.NotNil(t, r.AffectedTests)
}

func TestImpact_CycleSafety(t *testing.T) {
	idx := fixture("a>b", "b>c", "c>a")

	for _, id := range []string{"a", "b", "c"} {
		fwd := ForwardImpact(idx, id)
		bwd := BackwardImpact(idx, id)
		assert.ElementsMatch(t, []string{"a", "b", "c"}, impactIDs(fwd), id)
		assert.ElementsMatch(t, []string{"a", "b", "c"}, impactIDs(bwd), id)
	}
}

func TestImpact_UnknownFile(t *testing.T) {
	idx := fixture("a>b")

	for _, r := range []*types.ImpactResult{ForwardImpact(idx, "nope"), BackwardImpact(idx, "nope")} {
		assert.NotNil(t, r.Nodes)
		assert.Empty(t, r.Nodes)
		assert.NotNil(t, r.AffectedTests)
		assert.Empty(t, r.AffectedTests)
	}
}
