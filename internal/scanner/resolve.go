// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package scanner

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// resolver maps raw import specifiers to repository-relative file ids.
// Specifiers that do not name a scanned file are third-party and resolve to
// nothing.
type resolver struct {
	files      map[string]bool
	goPackages map[string][]string // dir -> non-test .go files
	modulePath string
}

func newResolver(root string, files []string) *resolver {
	r := &resolver{
		files:      make(map[string]bool, len(files)),
		goPackages: make(map[string][]string),
		modulePath: readModulePath(root),
	}
	for _, f := range files {
		r.files[f] = true
		if strings.HasSuffix(f, ".go") && !strings.HasSuffix(f, "_test.go") {
			dir := path.Dir(f)
			r.goPackages[dir] = append(r.goPackages[dir], f)
		}
	}
	return r
}

// readModulePath returns the module path declared in root/go.mod, or "".
func readModulePath(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	f, err := modfile.Parse("go.mod", data, nil)
	if err != nil || f.Module == nil {
		return ""
	}
	return f.Module.Mod.Path
}

// resolve returns the files that from's import imp refers to.
func (r *resolver) resolve(from string, spec *langSpec, imp rawImport) []string {
	switch spec.kind {
	case kindGo:
		return r.resolveGo(imp.Path)
	case kindPython:
		return r.resolvePython(from, imp)
	default:
		if f := r.resolveJS(from, imp.Path); f != "" {
			return []string{f}
		}
		return nil
	}
}

// implicit returns imports a file has without naming them: a Go test file
// sees every non-test file of its own package directory.
func (r *resolver) implicit(from string) []string {
	if !strings.HasSuffix(from, "_test.go") {
		return nil
	}
	return r.goPackages[path.Dir(from)]
}

func (r *resolver) resolveGo(importPath string) []string {
	if r.modulePath == "" {
		return nil
	}
	var dir string
	switch {
	case importPath == r.modulePath:
		dir = "."
	case strings.HasPrefix(importPath, r.modulePath+"/"):
		dir = strings.TrimPrefix(importPath, r.modulePath+"/")
	default:
		return nil
	}
	return r.goPackages[dir]
}

func (r *resolver) resolveJS(from, spec string) string {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") && spec != "." && spec != ".." {
		return ""
	}
	base := path.Join(path.Dir(from), spec)

	candidates := []string{base}
	if ext := path.Ext(base); ext != "" {
		// ESM TypeScript imports "./x.js" for a source "./x.ts".
		stripped := strings.TrimSuffix(base, ext)
		for _, e := range jsExtensions {
			candidates = append(candidates, stripped+e)
		}
	}
	for _, e := range jsExtensions {
		candidates = append(candidates, base+e)
	}
	for _, e := range jsExtensions {
		candidates = append(candidates, base+"/index"+e)
	}
	return r.first(candidates)
}

// resolvePython resolves "a.b" or relative ".a.b" module paths. For
// from-imports the imported name is tried as a submodule first, so
// "from pkg import mod" links to pkg/mod.py when it exists.
func (r *resolver) resolvePython(from string, imp rawImport) []string {
	if imp.Name != "" {
		joined := imp.Path + "." + imp.Name
		if strings.HasSuffix(imp.Path, ".") {
			joined = imp.Path + imp.Name
		}
		if f := r.pythonModule(from, joined); f != "" {
			return []string{f}
		}
	}
	if f := r.pythonModule(from, imp.Path); f != "" {
		return []string{f}
	}
	return nil
}

func (r *resolver) pythonModule(from, module string) string {
	rest := strings.TrimLeft(module, ".")
	dots := len(module) - len(rest)

	var bases []string
	if dots > 0 {
		dir := path.Dir(from)
		for i := 1; i < dots; i++ {
			dir = path.Dir(dir)
		}
		bases = []string{dir}
	} else {
		bases = []string{".", "src"}
	}

	for _, b := range bases {
		p := b
		if rest != "" {
			p = path.Join(b, strings.ReplaceAll(rest, ".", "/"))
		}
		if f := r.first([]string{p + ".py", path.Join(p, "__init__.py")}); f != "" {
			return f
		}
	}
	return ""
}

func (r *resolver) first(candidates []string) string {
	for _, c := range candidates {
		c = path.Clean(c)
		if r.files[c] {
			return c
		}
	}
	return ""
}
