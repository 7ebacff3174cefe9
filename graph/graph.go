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

// Package graph is the indexed module/edge store chainsaw builds its import
// graphs into. Modules and edges are append-only: once interned they keep
// their id for the lifetime of the graph.
package graph

import "fmt"

// EdgeKind classifies the syntactic form of an import relationship.
type EdgeKind int

const (
	// Static is a syntactic `import … from`, a `require(literal)`, or a re-export.
	Static EdgeKind = iota
	// Dynamic is a call expression on the `import` callee with a string-literal argument.
	Dynamic
	// TypeOnly is a type-annotated import, or an import whose every named
	// specifier is type-only. Carries no runtime weight.
	TypeOnly
)

// String returns a human-readable label for the edge kind.
func (k EdgeKind) String() string {
	switch k {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case TypeOnly:
		return "type-only"
	default:
		return "unknown"
	}
}

// Module is a source file or a package entry point.
type Module struct {
	ID   int    // stable integer id, dense, assigned in insertion order
	Path string // canonical absolute path

	// SizeBytes is the on-disk size of the file in bytes.
	SizeBytes int64

	// Package is the package name this module belongs to, or "" for
	// first-party source files.
	Package string
}

// Edge is a directed import relationship between two modules.
type Edge struct {
	ID   int
	From int // source module id
	To   int // target module id
	Kind EdgeKind

	// Specifier is the verbatim specifier string as written in the source.
	Specifier string
}

// ModuleGraph owns the modules vector, the edges vector, the per-module
// outgoing-edge-id list, a path-to-id index, and package info. Modules and
// edges are never deleted once added.
type ModuleGraph struct {
	modules []*Module
	edges   []*Edge

	// outgoing[i] lists the edge ids whose From == i, in insertion order.
	outgoing [][]int

	pathToID map[string]int

	// Packages maps a package name to its aggregated info. Populated by the
	// package aggregator after a build finishes; empty until then.
	Packages map[string]*PackageInfo
}

// NewModuleGraph returns an empty graph ready for use.
func NewModuleGraph() *ModuleGraph {
	return &ModuleGraph{
		pathToID: make(map[string]int),
		Packages: make(map[string]*PackageInfo),
	}
}

// AddModule interns a module by path, returning its id. If the path is
// already known the existing id is returned and no new module is created.
func (g *ModuleGraph) AddModule(path string, sizeBytes int64, pkg string) int {
	if id, ok := g.pathToID[path]; ok {
		return id
	}
	id := len(g.modules)
	g.modules = append(g.modules, &Module{
		ID:        id,
		Path:      path,
		SizeBytes: sizeBytes,
		Package:   pkg,
	})
	g.outgoing = append(g.outgoing, nil)
	g.pathToID[path] = id
	return id
}

// AddEdge interns an edge. Re-adding an edge with the same (from, to, kind)
// returns the existing edge id; the specifier of the first insertion wins.
//
// Edge dedup scans the source module's outgoing adjacency list directly
// rather than maintaining a separate set keyed by (from, to, kind): that list
// is typically tens of entries long, short enough that a linear scan beats
// the bookkeeping of a hash index.
func (g *ModuleGraph) AddEdge(from, to int, kind EdgeKind, specifier string) int {
	for _, eid := range g.outgoing[from] {
		e := g.edges[eid]
		if e.To == to && e.Kind == kind {
			return e.ID
		}
	}
	id := len(g.edges)
	g.edges = append(g.edges, &Edge{
		ID:        id,
		From:      from,
		To:        to,
		Kind:      kind,
		Specifier: specifier,
	})
	g.outgoing[from] = append(g.outgoing[from], id)
	return id
}

// Module returns the module with the given id.
func (g *ModuleGraph) Module(id int) *Module {
	if id < 0 || id >= len(g.modules) {
		return nil
	}
	return g.modules[id]
}

// Edge returns the edge with the given id.
func (g *ModuleGraph) Edge(id int) *Edge {
	if id < 0 || id >= len(g.edges) {
		return nil
	}
	return g.edges[id]
}

// OutgoingEdges returns the edge ids whose source is the given module, in
// insertion order.
func (g *ModuleGraph) OutgoingEdges(id int) []int {
	if id < 0 || id >= len(g.outgoing) {
		return nil
	}
	return g.outgoing[id]
}

// ModuleCount returns the number of modules interned so far.
func (g *ModuleGraph) ModuleCount() int {
	return len(g.modules)
}

// EdgeCount returns the number of edges interned so far.
func (g *ModuleGraph) EdgeCount() int {
	return len(g.edges)
}

// PathToID looks up the module id for a canonical path.
func (g *ModuleGraph) PathToID(path string) (int, bool) {
	id, ok := g.pathToID[path]
	return id, ok
}

// Modules returns all modules in insertion order. Callers must not mutate
// the returned slice.
func (g *ModuleGraph) Modules() []*Module {
	return g.modules
}

// Edges returns all edges in insertion order. Callers must not mutate the
// returned slice.
func (g *ModuleGraph) Edges() []*Edge {
	return g.edges
}

// ModuleNotFoundError is returned when an id does not reference a known module.
type ModuleNotFoundError struct {
	ID int
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("graph: no module with id %d", e.ID)
}
