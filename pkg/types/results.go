// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// RiskLevel grades how far a change or a hotspot reaches.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ImpactNode is a node reached by an impact traversal and the BFS depth at
// which it was first discovered.
type ImpactNode struct {
	NodeID string `json:"nodeId" yaml:"nodeId"`
	Depth  int    `json:"depth" yaml:"depth"`
}

// ImpactResult is the output of forward and backward impact analysis.
type ImpactResult struct {
	Nodes         []ImpactNode `json:"nodes" yaml:"nodes"`
	AffectedTests []string     `json:"affectedTests" yaml:"affectedTests"`
}

// ChainNode is one entry of a failing test's dependency chain.
type ChainNode struct {
	NodeID string `json:"nodeId" yaml:"nodeId"`
	Depth  int    `json:"depth" yaml:"depth"`
	Layer  Layer  `json:"layer,omitempty" yaml:"layer,omitempty"`
}

// Mode discriminates the Analysis sum type.
type Mode string

const (
	ModeFailing  Mode = "failing"
	ModeRefactor Mode = "refactor"
)

// Analysis is a closed sum over FailingResult and RefactorResult. The
// unexported marker keeps other packages from adding variants, so a type
// switch over the two pointer types is exhaustive.
type Analysis interface {
	AnalysisMode() Mode
	isAnalysis()
}

// FailingResult ranks the likely root causes of one failing test.
type FailingResult struct {
	Test               string      `json:"test" yaml:"test"`
	Mode               Mode        `json:"mode" yaml:"mode"`
	Chain              []ChainNode `json:"chain" yaml:"chain"`
	DirectlyTests      []string    `json:"directlyTests" yaml:"directlyTests"`
	DeepDependencies   []string    `json:"deepDependencies" yaml:"deepDependencies"`
	FilesToInvestigate []string    `json:"filesToInvestigate" yaml:"filesToInvestigate"`
	OtherTestsAtRisk   []string    `json:"otherTestsAtRisk" yaml:"otherTestsAtRisk"`
}

func (*FailingResult) AnalysisMode() Mode { return ModeFailing }
func (*FailingResult) isAnalysis()        {}

// RefactorResult describes the blast radius of changing one file.
type RefactorResult struct {
	File                 string    `json:"file" yaml:"file"`
	Mode                 Mode      `json:"mode" yaml:"mode"`
	AffectedFiles        int       `json:"affected_files" yaml:"affected_files"`
	AffectedTests        int       `json:"affected_tests" yaml:"affected_tests"`
	DirectImporters      []string  `json:"direct_importers" yaml:"direct_importers"`
	TransitiveAffected   []string  `json:"transitive_affected" yaml:"transitive_affected"`
	TestsToRun           []string  `json:"tests_to_run" yaml:"tests_to_run"`
	SuggestedTestCommand string    `json:"suggested_test_command" yaml:"suggested_test_command"`
	RiskLevel            RiskLevel `json:"risk_level" yaml:"risk_level"`
	RiskReason           string    `json:"risk_reason" yaml:"risk_reason"`
}

func (*RefactorResult) AnalysisMode() Mode { return ModeRefactor }
func (*RefactorResult) isAnalysis()        {}

// HotspotFile is a source file with non-zero fan-in.
type HotspotFile struct {
	File        string    `json:"file" yaml:"file"`
	FanIn       int       `json:"fanIn" yaml:"fanIn"`
	TestsAtRisk int       `json:"testsAtRisk" yaml:"testsAtRisk"`
	RiskLevel   RiskLevel `json:"riskLevel" yaml:"riskLevel"`
}

// FragileChain is the deepest import chain reachable from a test.
type FragileChain struct {
	Test       string `json:"test" yaml:"test"`
	Depth      int    `json:"depth" yaml:"depth"`
	DeepestDep string `json:"deepestDep" yaml:"deepestDep"`
	Reason     string `json:"reason" yaml:"reason"`
}

// CircularDep is one import cycle. Cycle repeats its first id at the end.
type CircularDep struct {
	Cycle  []string `json:"cycle" yaml:"cycle"`
	Length int      `json:"length" yaml:"length"`
}

// HealthReport summarizes structural risk across the whole graph.
type HealthReport struct {
	SourceFiles   int            `json:"sourceFiles" yaml:"sourceFiles"`
	TestFiles     int            `json:"testFiles" yaml:"testFiles"`
	Edges         int            `json:"edges" yaml:"edges"`
	Hotspots      []HotspotFile  `json:"hotspots" yaml:"hotspots"`
	FragileChains []FragileChain `json:"fragileChains" yaml:"fragileChains"`
	CircularDeps  []CircularDep  `json:"circularDeps" yaml:"circularDeps"`
}
