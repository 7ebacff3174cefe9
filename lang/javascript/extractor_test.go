/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package javascript

import (
	"testing"

	"bennypowers.dev/chainsaw/graph"
)

func findSpecifier(t *testing.T, result []importLike, spec string) importLike {
	t.Helper()
	for _, imp := range result {
		if imp.Specifier == spec {
			return imp
		}
	}
	t.Fatalf("expected to find an import of %q, got %+v", spec, result)
	return importLike{}
}

// importLike mirrors lang.RawImport's shape to keep this file's helper
// self-contained without importing the lang package twice under a test
// build.
type importLike struct {
	Specifier string
	Kind      graph.EdgeKind
}

func extract(t *testing.T, path, src string) []importLike {
	t.Helper()
	e := NewExtractor()
	result, err := e.ExtractImports(path, []byte(src))
	if err != nil {
		t.Fatalf("ExtractImports(%s): %v", path, err)
	}
	out := make([]importLike, len(result.Imports))
	for i, imp := range result.Imports {
		out[i] = importLike{Specifier: imp.Specifier, Kind: imp.Kind}
	}
	return out
}

func TestExtractStaticImport(t *testing.T) {
	got := extract(t, "a.js", `import { foo } from "./foo.js";`)
	imp := findSpecifier(t, got, "./foo.js")
	if imp.Kind != graph.Static {
		t.Fatalf("expected a static import, got %v", imp.Kind)
	}
}

func TestExtractRequireCall(t *testing.T) {
	got := extract(t, "a.js", `const foo = require("./foo.js");`)
	imp := findSpecifier(t, got, "./foo.js")
	if imp.Kind != graph.Static {
		t.Fatalf("expected require() to classify as static, got %v", imp.Kind)
	}
}

func TestExtractDynamicImport(t *testing.T) {
	got := extract(t, "a.js", `async function f() { await import("./foo.js"); }`)
	imp := findSpecifier(t, got, "./foo.js")
	if imp.Kind != graph.Dynamic {
		t.Fatalf("expected a dynamic import, got %v", imp.Kind)
	}
}

func TestExtractDynamicImportUnresolvableArgumentCounted(t *testing.T) {
	e := NewExtractor()
	result, err := e.ExtractImports("a.js", []byte(`async function f(name) { await import(name); }`))
	if err != nil {
		t.Fatalf("ExtractImports: %v", err)
	}
	if result.UnresolvableDynamic != 1 {
		t.Fatalf("expected 1 unresolvable dynamic import, got %d", result.UnresolvableDynamic)
	}
	if len(result.Imports) != 0 {
		t.Fatalf("expected no edge for a non-literal dynamic import, got %+v", result.Imports)
	}
}

func TestExtractRequireUnresolvableArgumentCounted(t *testing.T) {
	e := NewExtractor()
	result, err := e.ExtractImports("a.js", []byte(`const m = require(pathVar);`))
	if err != nil {
		t.Fatalf("ExtractImports: %v", err)
	}
	if result.UnresolvableDynamic != 1 {
		t.Fatalf("expected 1 unresolvable require() call, got %d", result.UnresolvableDynamic)
	}
}

func TestExtractTypeOnlyImportDeclaration(t *testing.T) {
	got := extract(t, "a.ts", `import type { Foo } from "./types.js";`)
	imp := findSpecifier(t, got, "./types.js")
	if imp.Kind != graph.TypeOnly {
		t.Fatalf("expected a type-only import, got %v", imp.Kind)
	}
}

func TestExtractTypeOnlyWhenAllNamedSpecifiersAreTypeOnly(t *testing.T) {
	got := extract(t, "a.ts", `import { type Foo, type Bar } from "./types.js";`)
	imp := findSpecifier(t, got, "./types.js")
	if imp.Kind != graph.TypeOnly {
		t.Fatalf("expected all-type-only named specifiers to classify the import as type-only, got %v", imp.Kind)
	}
}

func TestExtractMixedSpecifiersNotTypeOnly(t *testing.T) {
	got := extract(t, "a.ts", `import { type Foo, bar } from "./mixed.js";`)
	imp := findSpecifier(t, got, "./mixed.js")
	if imp.Kind != graph.Static {
		t.Fatalf("expected a mix of type and value specifiers to classify as static, got %v", imp.Kind)
	}
}

func TestExtractExportFromIsTracked(t *testing.T) {
	got := extract(t, "a.js", `export { foo } from "./foo.js";`)
	imp := findSpecifier(t, got, "./foo.js")
	if imp.Kind != graph.Static {
		t.Fatalf("expected a re-export to classify as static, got %v", imp.Kind)
	}
}

func TestExtractTypeOnlyExportDeclaration(t *testing.T) {
	got := extract(t, "a.ts", `export type { Foo } from "./types.js";`)
	imp := findSpecifier(t, got, "./types.js")
	if imp.Kind != graph.TypeOnly {
		t.Fatalf("expected a type-only re-export, got %v", imp.Kind)
	}
}

func TestExtractTSXGrammarParsesJSX(t *testing.T) {
	src := `
		import { Component } from "./component.tsx";
		export function App() { return <Component />; }
	`
	got := extract(t, "a.tsx", src)
	findSpecifier(t, got, "./component.tsx")
}

func TestExtractPlainJSXGrammar(t *testing.T) {
	src := `
		import { Component } from "./component.jsx";
		export function App() { return <Component />; }
	`
	got := extract(t, "a.jsx", src)
	findSpecifier(t, got, "./component.jsx")
}

func TestParseableRecognizesJSTSExtensionsOnly(t *testing.T) {
	e := NewExtractor()
	for _, path := range []string{"a.js", "a.ts", "a.tsx", "a.jsx", "a.mjs", "a.cjs"} {
		if !e.Parseable(path) {
			t.Errorf("expected %q to be parseable", path)
		}
	}
	for _, path := range []string{"a.json", "a.css", "noext"} {
		if e.Parseable(path) {
			t.Errorf("expected %q not to be parseable", path)
		}
	}
}

func TestExtractSyntaxErrorReturnsParseError(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractImports("a.ts", []byte(`import { from "./broken`))
	if err == nil {
		t.Fatalf("expected a ParseError for malformed syntax")
	}
	var perr *ParseError
	if !asParseError(err, &perr) {
		t.Fatalf("expected error to be a *ParseError, got %T", err)
	}
}

func asParseError(err error, target **ParseError) bool {
	if pe, ok := err.(*ParseError); ok {
		*target = pe
		return true
	}
	return false
}
