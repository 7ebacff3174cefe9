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
package graph

// Snapshot returns the modules and edges of g as plain, gob-encodable
// values, in insertion order, so the persistent cache (cache's cachedGraphData)
// can serialize a whole graph without reaching into graph's unexported
// adjacency bookkeeping.
func (g *ModuleGraph) Snapshot() (modules []Module, edges []Edge) {
	modules = make([]Module, len(g.modules))
	for i, m := range g.modules {
		modules[i] = *m
	}
	edges = make([]Edge, len(g.edges))
	for i, e := range g.edges {
		edges[i] = *e
	}
	return modules, edges
}

// FromSnapshot rebuilds a ModuleGraph from the modules and edges a prior
// Snapshot produced. Modules must appear in the same order they were
// originally inserted so ids line up; edges are re-interned through AddEdge
// so the outgoing-adjacency list and dedup invariant are reconstructed
// rather than trusted blindly from serialized data.
func FromSnapshot(modules []Module, edges []Edge) *ModuleGraph {
	g := NewModuleGraph()
	for _, m := range modules {
		id := g.AddModule(m.Path, m.SizeBytes, m.Package)
		if id != m.ID {
			// Defensive: a cache file from an incompatible build could have
			// renumbered paths. Treat as unusable rather than corrupt the graph.
			return NewModuleGraph()
		}
	}
	for _, e := range edges {
		g.AddEdge(e.From, e.To, e.Kind, e.Specifier)
	}
	return g
}
