// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/petar-djukic/blastradius/internal/testrun"
	"github.com/petar-djukic/blastradius/pkg/types"
)

var (
	colorLow    = lipgloss.Color("#2CD7C7")
	colorMedium = lipgloss.Color("#F4D03F")
	colorHigh   = lipgloss.Color("#E74C3C")
	colorMuted  = lipgloss.Color("#6C7A89")
)

// styles are bound to the output's renderer, so writers that are not
// terminals get plain text.
type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	muted  lipgloss.Style
	risk   map[types.RiskLevel]lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:  r.NewStyle().Bold(true),
		header: r.NewStyle().Bold(true).Underline(true),
		muted:  r.NewStyle().Foreground(colorMuted),
		risk: map[types.RiskLevel]lipgloss.Style{
			types.RiskLow:    r.NewStyle().Foreground(colorLow),
			types.RiskMedium: r.NewStyle().Foreground(colorMedium).Bold(true),
			types.RiskHigh:   r.NewStyle().Foreground(colorHigh).Bold(true),
		},
	}
}

// textWriter accumulates a report and remembers the first write error.
type textWriter struct {
	w   io.Writer
	s   styles
	max int
	err error
}

func (t *textWriter) line(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format+"\n", args...)
}

func (t *textWriter) title(format string, args ...any) {
	t.line("%s", t.s.title.Render(fmt.Sprintf(format, args...)))
}

func (t *textWriter) riskLevel(level types.RiskLevel) string {
	return t.s.risk[level].Render(strings.ToUpper(string(level)))
}

// list writes a section header and up to max items, followed by a
// "... and N more" line when truncated.
func (t *textWriter) list(header string, items []string) {
	t.line("")
	t.line("%s", t.s.header.Render(fmt.Sprintf("%s (%d)", header, len(items))))
	if len(items) == 0 {
		t.line("  %s", t.s.muted.Render("none"))
		return
	}
	shown := items
	if t.max > 0 && len(items) > t.max {
		shown = items[:t.max]
	}
	for _, item := range shown {
		t.line("  - %s", item)
	}
	if rest := len(items) - len(shown); rest > 0 {
		t.line("  %s", t.s.muted.Render(fmt.Sprintf("... and %d more", rest)))
	}
}

func writeText(w io.Writer, v any, maxItems int) error {
	t := &textWriter{w: w, s: newStyles(w), max: maxItems}

	switch r := v.(type) {
	case *types.Graph:
		writeGraph(t, r)
	case *types.ImpactResult:
		writeImpact(t, r)
	case *types.FailingResult:
		writeFailing(t, r)
	case *types.RefactorResult:
		writeRefactor(t, r)
	case []*types.RefactorResult:
		for i, res := range r {
			if i > 0 {
				t.line("")
			}
			writeRefactor(t, res)
		}
	case *types.HealthReport:
		writeHealth(t, r)
	case []types.FileGroup:
		writeGroups(t, r)
	case *testrun.Result:
		writeTestRun(t, r)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
	return t.err
}

func writeGraph(t *textWriter, g *types.Graph) {
	tests := 0
	for i := range g.Nodes {
		if g.Nodes[i].IsTest() {
			tests++
		}
	}
	t.title("Graph: %d files (%d source, %d test), %d edges, %d groups",
		len(g.Nodes), len(g.Nodes)-tests, tests, len(g.Edges), len(g.Groups))
}

func writeImpact(t *textWriter, r *types.ImpactResult) {
	if len(r.Nodes) == 0 {
		t.title("Impact: file not found in graph")
		return
	}
	t.title("Impact of %s: %d files, %d tests", r.Nodes[0].NodeID, len(r.Nodes)-1, len(r.AffectedTests))

	files := make([]string, 0, len(r.Nodes)-1)
	for _, n := range r.Nodes[1:] {
		files = append(files, fmt.Sprintf("%s %s", n.NodeID, t.s.muted.Render(fmt.Sprintf("(depth %d)", n.Depth))))
	}
	t.list("Files", files)
	t.list("Affected tests", r.AffectedTests)
}

func writeFailing(t *textWriter, r *types.FailingResult) {
	t.title("Failing test: %s", r.Test)
	if len(r.Chain) == 0 {
		t.line("%s", t.s.muted.Render("test not found in graph"))
		return
	}

	depth := make(map[string]int, len(r.Chain))
	for _, c := range r.Chain {
		depth[c.NodeID] = c.Depth
	}
	investigate := make([]string, 0, len(r.FilesToInvestigate))
	for _, id := range r.FilesToInvestigate {
		investigate = append(investigate, fmt.Sprintf("%s %s", id, t.s.muted.Render(fmt.Sprintf("(depth %d)", depth[id]))))
	}

	t.list("Files to investigate, deepest first", investigate)
	t.list("Directly tests", r.DirectlyTests)
	t.list("Other tests at risk", r.OtherTestsAtRisk)
}

func writeRefactor(t *textWriter, r *types.RefactorResult) {
	t.title("Refactor: %s", r.File)
	t.line("Risk: %s  %s", t.riskLevel(r.RiskLevel), r.RiskReason)
	t.line("Affected: %d files, %d tests", r.AffectedFiles, r.AffectedTests)
	t.list("Direct importers", r.DirectImporters)
	t.list("Transitively affected", r.TransitiveAffected)
	t.list("Tests to run", r.TestsToRun)
	if r.SuggestedTestCommand != "" {
		t.line("")
		t.line("Suggested: %s", r.SuggestedTestCommand)
	}
}

func writeHealth(t *textWriter, r *types.HealthReport) {
	t.title("Health: %d source files, %d test files, %d edges", r.SourceFiles, r.TestFiles, r.Edges)

	hotspots := make([]string, 0, len(r.Hotspots))
	for _, h := range r.Hotspots {
		hotspots = append(hotspots, fmt.Sprintf("%s  fan-in %d, %d tests  %s", h.File, h.FanIn, h.TestsAtRisk, t.riskLevel(h.RiskLevel)))
	}
	t.list("Hotspots", hotspots)

	chains := make([]string, 0, len(r.FragileChains))
	for _, c := range r.FragileChains {
		chains = append(chains, fmt.Sprintf("%s -> %s  %s", c.Test, c.DeepestDep, t.s.muted.Render(c.Reason)))
	}
	t.list("Fragile chains", chains)

	cycles := make([]string, 0, len(r.CircularDeps))
	for _, c := range r.CircularDeps {
		cycles = append(cycles, strings.Join(c.Cycle, " -> "))
	}
	t.list("Circular dependencies", cycles)
}

func writeGroups(t *textWriter, groups []types.FileGroup) {
	t.title("Groups: %d", len(groups))
	if len(groups) == 0 {
		t.line("%s", t.s.muted.Render("no cohesive groups found"))
		return
	}
	for _, g := range groups {
		t.list(fmt.Sprintf("%s [%s] central %s", g.Label, g.ID, g.CentralNodeID), g.NodeIDs)
	}
}

func writeTestRun(t *textWriter, r *testrun.Result) {
	switch {
	case r.Skipped:
		t.title("Tests: skipped, nothing to run")
		return
	case r.Passed:
		t.title("Tests: %s in %s", t.s.risk[types.RiskLow].Render("passed"), r.Duration.Round(time.Millisecond))
	case r.TimedOut:
		t.title("Tests: timed out after %s", r.Duration.Round(time.Millisecond))
	default:
		t.title("Tests: failed with exit code %d in %s", r.ExitCode, r.Duration.Round(time.Millisecond))
	}
	t.line("Command: %s", r.Command)
	if r.Err != "" {
		t.line("Error: %s", r.Err)
	}
	if len(r.Failures) > 0 {
		t.list("Failures", r.Failures)
	}
}
