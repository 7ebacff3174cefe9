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

// Package lang declares the capability object the graph builder is generic
// over: a language's import extractor, module resolver, and package-name
// lookup, bundled as one interface. This is polymorphism by interface, not
// inheritance — bennypowers.dev/chainsaw ships exactly one implementation,
// for JavaScript/TypeScript, in the javascript subpackage, but the builder
// never names that package directly.
package lang

import "bennypowers.dev/chainsaw/graph"

// RawImport is one import found by an extractor, before resolution.
type RawImport struct {
	Specifier string
	Kind      graph.EdgeKind
	Line      int
}

// ParseResult is everything an extractor learns from one source file.
type ParseResult struct {
	Imports []RawImport

	// UnresolvableDynamic counts dynamic-import or require arguments that
	// were not a string literal (identifiers, template strings with
	// interpolation, concatenations). These produce no edge but are
	// reported.
	UnresolvableDynamic int
}

// Extractor parses a source file and yields its import specifiers.
type Extractor interface {
	// ExtractImports parses the file at path (content already read) and
	// returns every import it can find. Fails on malformed syntax or
	// unreadable content.
	ExtractImports(path string, content []byte) (ParseResult, error)

	// Parseable reports whether path names a file this extractor knows how
	// to parse, purely from its extension.
	Parseable(path string) bool
}

// Resolver maps an import specifier to an absolute file path.
type Resolver interface {
	// Resolve maps specifier, as imported from a file in sourceDir, to an
	// absolute path. Returns ok=false if no candidate exists on disk.
	Resolve(sourceDir, specifier string) (path string, ok bool)
}

// PackageLookup determines which installed package, if any, a resolved
// module path belongs to.
type PackageLookup interface {
	// PackageName returns the package name attribution for a resolved
	// module path ("" for first-party source files).
	PackageName(path string) string
}

// Support bundles the three language-specific behaviors the builder needs.
type Support interface {
	Extractor
	Resolver
	PackageLookup
}
