// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package scanner

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// skipDirs contains directory names the walk never descends into.
var skipDirs = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"__pycache__":  true,
	".blastradius": true,
}

// SkipDir reports whether a directory with this name is never scanned.
func SkipDir(name string) bool {
	return skipDirs[name]
}

// collect walks root and returns the slash-separated relative paths of
// every supported source file, sorted.
func collect(ctx context.Context, root string) ([]string, error) {
	ignorer := loadGitignore(root)

	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if p == root {
				return nil
			}
			if skipDirs[d.Name()] || ignorer.isIgnored(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if languageFor(rel) == nil || ignorer.isIgnored(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// gitignorer provides simple .gitignore matching.
type gitignorer struct {
	patterns []string
}

// loadGitignore reads .gitignore from the root directory. A missing or
// unreadable file yields an ignorer that matches nothing.
func loadGitignore(root string) gitignorer {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return gitignorer{}
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		// Negations are not supported and are ignored.
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		patterns = append(patterns, line)
	}
	return gitignorer{patterns: patterns}
}

// isIgnored checks a slash-separated relative path against the patterns.
// This is a simplified subset of gitignore: a pattern matches any single
// path component, or the whole path when anchored with a leading slash or
// containing one.
func (g gitignorer) isIgnored(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, pattern := range g.patterns {
		pattern = strings.TrimSuffix(pattern, "/")
		anchored := strings.Contains(pattern, "/")
		pattern = strings.TrimPrefix(pattern, "/")

		if anchored {
			if matched, _ := path.Match(pattern, rel); matched {
				return true
			}
			continue
		}
		for _, part := range parts {
			if matched, _ := path.Match(pattern, part); matched {
				return true
			}
		}
	}
	return false
}
