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

// Package javascript is chainsaw's only lang.Support implementation: an
// import extractor, resolver and package-name lookup for JavaScript and
// TypeScript, built on tree-sitter.
package javascript

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	ts "github.com/tree-sitter/go-tree-sitter"

	"bennypowers.dev/chainsaw/graph"
	"bennypowers.dev/chainsaw/lang"
)

// ParseError wraps a tree-sitter parse failure or unreadable-syntax
// condition with the offending path.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extractor is the tree-sitter-backed lang.Extractor for JS/TS.
type Extractor struct{}

// NewExtractor returns a ready-to-use Extractor. Stateless: grammars and
// parser pools are package-level singletons.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Parseable reports whether path's extension selects one of the four
// syntax variants: TS, TSX, JSX or plain JS (.js, .mjs and .cjs). Any other
// extension, or none, is not parseable.
func (e *Extractor) Parseable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".jsx", ".js", ".mjs", ".cjs":
		return true
	default:
		return false
	}
}

// useTSX reports which grammar variant to parse path with:
// .tsx selects TS-with-JSX; .jsx selects JS-with-JSX (tree-sitter's
// TSX grammar parses both since it's JSX-aware TypeScript, a superset of
// plain JSX); everything else (.ts and the plain-JS extensions) parses with
// the non-JSX TypeScript grammar, which accepts plain JS syntax too.
func useTSX(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx", ".jsx":
		return true
	default:
		return false
	}
}

// ExtractImports parses content and returns every import specifier found,
// with its kind, plus the count of dynamic-import/require calls whose
// argument wasn't a string literal.
func (e *Extractor) ExtractImports(path string, content []byte) (lang.ParseResult, error) {
	tsx := useTSX(path)
	parser := getParser(tsx)
	defer putParser(parser, tsx)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return lang.ParseResult{}, &ParseError{Path: path, Err: fmt.Errorf("failed to parse")}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return lang.ParseResult{}, &ParseError{Path: path, Err: fmt.Errorf("syntax error")}
	}

	query, err := getImportsQuery(tsx)
	if err != nil {
		return lang.ParseResult{}, err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	var result lang.ParseResult
	captureNames := query.CaptureNames()
	matches := cursor.Matches(query, root, content)

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		for _, capture := range match.Captures {
			switch captureNames[capture.Index] {
			case "import.stmt":
				result.Imports = append(result.Imports, classifyImportStatement(&capture.Node, content))
			case "export.stmt":
				result.Imports = append(result.Imports, classifyExportStatement(&capture.Node, content))
			case "require.call":
				imp, unresolvable := classifyRequireCall(&capture.Node, content)
				if unresolvable {
					result.UnresolvableDynamic++
				} else if imp != nil {
					result.Imports = append(result.Imports, *imp)
				}
			case "dynamicImport.call":
				imp, unresolvable := classifyDynamicImportCall(&capture.Node, content)
				if unresolvable {
					result.UnresolvableDynamic++
				} else if imp != nil {
					result.Imports = append(result.Imports, *imp)
				}
			}
		}
	}

	return result, nil
}

// nodeText returns the exact source bytes of a node, lossily converted to
// UTF-8 (specifiers in practice are ASCII; invalid byte
// sequences are replaced").
func nodeText(n *ts.Node, content []byte) string {
	raw := content[n.StartByte():n.EndByte()]
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), "�")
}

// stripQuotes removes the surrounding quote characters from a tree-sitter
// "string" node's text.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}

// hasLeadingTypeKeyword scans node's direct children (named and anonymous)
// for a bare "type" keyword token appearing before the "from" clause or
// source string — i.e. the type-only marker on "import type …" / "export
// type …" declarations.
func hasLeadingTypeKeyword(n *ts.Node, content []byte) bool {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if !c.IsNamed() && nodeText(c, content) == "type" {
			return true
		}
		if c.Kind() == "string" || c.Kind() == "import_clause" || c.Kind() == "export_clause" {
			break
		}
	}
	return false
}

// findSpecifierNodes recursively collects import_specifier / export_specifier
// nodes under n, stopping at (not descending into) the source string itself.
func findSpecifierNodes(n *ts.Node, kind string, out *[]*ts.Node) {
	if n == nil {
		return
	}
	if n.Kind() == kind {
		*out = append(*out, n)
		return
	}
	if n.Kind() == "string" {
		return
	}
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		findSpecifierNodes(n.Child(i), kind, out)
	}
}

// allSpecifiersTypeOnly reports whether every import_specifier/export_specifier
// found under n carries its own leading "type" keyword, and whether any were
// found at all.
func allSpecifiersTypeOnly(n *ts.Node, kind string, content []byte) (all, any bool) {
	var specs []*ts.Node
	findSpecifierNodes(n, kind, &specs)
	if len(specs) == 0 {
		return false, false
	}
	for _, s := range specs {
		if !hasLeadingTypeKeyword(s, content) {
			return false, true
		}
	}
	return true, true
}

func classifyImportStatement(n *ts.Node, content []byte) lang.RawImport {
	source := n.ChildByFieldName("source")
	specifier := ""
	if source != nil {
		specifier = stripQuotes(nodeText(source, content))
	}

	kind := graph.Static
	if hasLeadingTypeKeyword(n, content) {
		kind = graph.TypeOnly
	} else if all, any := allSpecifiersTypeOnly(n, "import_specifier", content); any && all {
		kind = graph.TypeOnly
	}

	return lang.RawImport{
		Specifier: specifier,
		Kind:      kind,
		Line:      int(n.StartPosition().Row) + 1,
	}
}

func classifyExportStatement(n *ts.Node, content []byte) lang.RawImport {
	source := n.ChildByFieldName("source")
	specifier := ""
	if source != nil {
		specifier = stripQuotes(nodeText(source, content))
	}

	kind := graph.Static
	if hasLeadingTypeKeyword(n, content) {
		kind = graph.TypeOnly
	} else if all, any := allSpecifiersTypeOnly(n, "export_specifier", content); any && all {
		kind = graph.TypeOnly
	}

	return lang.RawImport{
		Specifier: specifier,
		Kind:      kind,
		Line:      int(n.StartPosition().Row) + 1,
	}
}

// classifyRequireCall inspects a captured require(...) call_expression. It
// returns (nil, false) if the callee wasn't actually the bare identifier
// "require" (the query matches any identifier-called call_expression, since
// tree-sitter query syntax has no literal-text predicate builtin here), a
// RawImport for a literal-argument call, or (nil, true) when the argument
// was present but not a string literal.
func classifyRequireCall(n *ts.Node, content []byte) (*lang.RawImport, bool) {
	fn := n.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "identifier" || nodeText(fn, content) != "require" {
		return nil, false
	}

	args := n.ChildByFieldName("arguments")
	arg := firstArgument(args)
	if arg == nil {
		return nil, false
	}
	if arg.Kind() != "string" {
		return nil, true
	}

	return &lang.RawImport{
		Specifier: stripQuotes(nodeText(arg, content)),
		Kind:      graph.Static,
		Line:      int(n.StartPosition().Row) + 1,
	}, false
}

// classifyDynamicImportCall inspects a captured import(...) call_expression.
func classifyDynamicImportCall(n *ts.Node, content []byte) (*lang.RawImport, bool) {
	args := n.ChildByFieldName("arguments")
	arg := firstArgument(args)
	if arg == nil {
		return nil, false
	}
	if arg.Kind() != "string" {
		return nil, true
	}

	return &lang.RawImport{
		Specifier: stripQuotes(nodeText(arg, content)),
		Kind:      graph.Dynamic,
		Line:      int(n.StartPosition().Row) + 1,
	}, false
}

// firstArgument returns the first named child of an "arguments" node — the
// sole argument to import()/require() in the call forms this package cares
// about.
func firstArgument(args *ts.Node) *ts.Node {
	if args == nil {
		return nil
	}
	count := args.NamedChildCount()
	if count == 0 {
		return nil
	}
	return args.NamedChild(0)
}
