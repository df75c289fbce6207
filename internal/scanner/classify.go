// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package scanner

import (
	"path"
	"regexp"
	"strings"

	"github.com/petar-djukic/blastradius/pkg/types"
)

var testDirs = map[string]bool{
	"test":      true,
	"tests":     true,
	"__tests__": true,
	"e2e":       true,
}

// IsTestFile reports whether a slash-separated relative path names a test.
func IsTestFile(rel string) bool {
	base := path.Base(rel)
	switch {
	case strings.HasSuffix(base, "_test.go"):
		return true
	case strings.HasSuffix(base, ".py") && (strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.py")):
		return true
	case strings.Contains(base, ".test.") || strings.Contains(base, ".spec."):
		return true
	}

	dirs := strings.Split(path.Dir(rel), "/")
	for _, d := range dirs {
		if testDirs[d] {
			return true
		}
	}
	return false
}

// layerRules are checked in order; the first rule with a matching keyword
// wins. Keywords of three letters or fewer must equal a path token (or its
// plural); longer keywords may appear anywhere inside a token.
var layerRules = []struct {
	layer    types.Layer
	keywords []string
}{
	{types.LayerConfig, []string{"config", "settings", "env"}},
	{types.LayerAPI, []string{"api", "route", "controller", "handler", "endpoint", "server", "middleware"}},
	{types.LayerData, []string{"model", "schema", "db", "database", "repository", "repo", "store", "entity", "migration", "dao"}},
	{types.LayerService, []string{"service", "svc", "usecase", "domain", "core"}},
	{types.LayerUI, []string{"ui", "component", "page", "view", "screen", "widget", "layout", "hook"}},
	{types.LayerUtil, []string{"util", "helper", "common", "shared", "lib", "pkg"}},
}

var tokenSplit = regexp.MustCompile(`[^a-z0-9]+`)

// LayerOf assigns an architectural layer from path keywords.
func LayerOf(rel string) types.Layer {
	if IsTestFile(rel) {
		return types.LayerTest
	}

	tokens := tokenSplit.Split(strings.ToLower(strings.TrimSuffix(rel, path.Ext(rel))), -1)
	for _, rule := range layerRules {
		for _, kw := range rule.keywords {
			for _, tok := range tokens {
				if tok == "" {
					continue
				}
				if len(kw) <= 3 {
					if tok == kw || tok == kw+"s" {
						return rule.layer
					}
				} else if strings.Contains(tok, kw) {
					return rule.layer
				}
			}
		}
	}

	switch path.Ext(rel) {
	case ".tsx", ".jsx":
		return types.LayerUI
	}
	return types.LayerUnknown
}
