// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package scanner

import (
	"context"
	"path"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// kind selects the import resolution strategy for a file.
type kind int

const (
	kindGo kind = iota
	kindPython
	kindJS
)

// langSpec holds the tree-sitter language and query patterns for a file
// type. importQ captures @path (and, for Python from-imports, @from and
// @name); funcQ captures @name for exported functions.
type langSpec struct {
	kind    kind
	lang    *sitter.Language
	importQ string
	funcQ   string

	once     sync.Once
	imports  *sitter.Query
	funcs    *sitter.Query
	queryErr error
}

const jsImports = `
	(import_statement source: (string) @path)
	(export_statement source: (string) @path)
	(call_expression
		function: (identifier) @fn
		arguments: (arguments . (string) @path)
		(#eq? @fn "require"))
`

const jsFuncs = `
	(export_statement declaration: (function_declaration name: (identifier) @name))
	(export_statement declaration: (lexical_declaration
		(variable_declarator name: (identifier) @name value: (arrow_function))))
`

var (
	goSpec = &langSpec{
		kind: kindGo,
		lang: golang.GetLanguage(),
		importQ: `
			(import_spec path: (interpreted_string_literal) @path)
		`,
		funcQ: `
			(function_declaration name: (identifier) @name)
			(method_declaration name: (field_identifier) @name)
		`,
	}
	pySpec = &langSpec{
		kind: kindPython,
		lang: python.GetLanguage(),
		importQ: `
			(import_statement name: (dotted_name) @path)
			(import_statement name: (aliased_import name: (dotted_name) @path))
			(import_from_statement module_name: (_) @from name: (dotted_name) @name)
			(import_from_statement module_name: (_) @from name: (aliased_import name: (dotted_name) @name))
			(import_from_statement module_name: (_) @path (wildcard_import))
		`,
		funcQ: `
			(module (function_definition name: (identifier) @name))
			(module (decorated_definition definition: (function_definition name: (identifier) @name)))
		`,
	}
	jsSpec  = &langSpec{kind: kindJS, lang: javascript.GetLanguage(), importQ: jsImports, funcQ: jsFuncs}
	tsSpec  = &langSpec{kind: kindJS, lang: typescript.GetLanguage(), importQ: jsImports, funcQ: jsFuncs}
	tsxSpec = &langSpec{kind: kindJS, lang: tsx.GetLanguage(), importQ: jsImports, funcQ: jsFuncs}
)

// supportedLangs maps file extensions to their langSpec.
var supportedLangs = map[string]*langSpec{
	".go":  goSpec,
	".py":  pySpec,
	".js":  jsSpec,
	".jsx": jsSpec,
	".mjs": jsSpec,
	".cjs": jsSpec,
	".ts":  tsSpec,
	".tsx": tsxSpec,
}

// jsExtensions is the probe order for extensionless JS/TS specifiers.
var jsExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// Supported reports whether the scanner parses files with this name.
func Supported(name string) bool {
	return languageFor(name) != nil
}

func languageFor(rel string) *langSpec {
	return supportedLangs[path.Ext(rel)]
}

// compile builds the queries once per language. Queries are read-only after
// construction and shared across goroutines; cursors are per call.
func (s *langSpec) compile() error {
	s.once.Do(func() {
		s.imports, s.queryErr = sitter.NewQuery([]byte(s.importQ), s.lang)
		if s.queryErr != nil {
			return
		}
		s.funcs, s.queryErr = sitter.NewQuery([]byte(s.funcQ), s.lang)
	})
	return s.queryErr
}

// rawImport is an import specifier as written in the file. For Python
// from-imports, Name holds the imported member, which may itself be a module.
type rawImport struct {
	Path string
	Name string
}

// parsed is the per-file output of extraction.
type parsed struct {
	imports   []rawImport
	functions []string
}

// extract parses content and runs the import and function queries.
func extract(ctx context.Context, content []byte, spec *langSpec) (*parsed, error) {
	if err := spec.compile(); err != nil {
		return nil, err
	}
	root, err := sitter.ParseCtx(ctx, content, spec.lang)
	if err != nil {
		return nil, err
	}

	out := &parsed{functions: []string{}}

	for _, m := range runQuery(spec.imports, root, content) {
		imp := rawImport{Path: m["path"]}
		if from, ok := m["from"]; ok {
			imp = rawImport{Path: from, Name: m["name"]}
		}
		imp.Path = unquote(imp.Path)
		if imp.Path != "" {
			out.imports = append(out.imports, imp)
		}
	}

	seen := make(map[string]bool)
	for _, m := range runQuery(spec.funcs, root, content) {
		name := m["name"]
		if name == "" || seen[name] || !exported(name, spec.kind) {
			continue
		}
		seen[name] = true
		out.functions = append(out.functions, name)
	}

	return out, nil
}

// runQuery executes a query and returns one capture-name to text map per
// match, with text predicates applied.
func runQuery(q *sitter.Query, root *sitter.Node, content []byte) []map[string]string {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	var results []map[string]string
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, content)
		if len(m.Captures) == 0 {
			continue
		}
		caps := make(map[string]string, len(m.Captures))
		for _, c := range m.Captures {
			caps[q.CaptureNameForId(c.Index)] = c.Node.Content(content)
		}
		results = append(results, caps)
	}
	return results
}

func unquote(s string) string {
	return strings.Trim(s, "\"'`")
}

// exported reports whether a function name is part of a file's public
// surface: capitalized in Go, not underscore-prefixed in Python. JS/TS
// queries only match export statements.
func exported(name string, k kind) bool {
	switch k {
	case kindGo:
		r, _ := utf8.DecodeRuneInString(name)
		return unicode.IsUpper(r)
	case kindPython:
		return !strings.HasPrefix(name, "_")
	default:
		return true
	}
}
