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

// PackageInfo aggregates the modules belonging to one distinct package name.
type PackageInfo struct {
	Name string

	// EntryModule is one representative module id for the package — the
	// first module of that package the builder encountered.
	EntryModule int

	// TotalReachableSize is the total byte size of all modules belonging to
	// the package that are reachable from any of its entry points following
	// only in-package Static edges.
	TotalReachableSize int64

	// ModuleCount is the count of such modules.
	ModuleCount int
}

// ComputePackageInfo performs the package aggregation pass: for each package
// name observed in the graph, BFS from all modules of that package following
// only Static edges whose target is in the same package, summing sizes and
// counting visited modules once each.
//
// Must run once, after traversal completes, in a single pass — concurrent
// traversal would race on PackageInfo's running totals.
func (g *ModuleGraph) ComputePackageInfo() {
	byPackage := make(map[string][]int)
	for _, m := range g.modules {
		if m.Package == "" {
			continue
		}
		byPackage[m.Package] = append(byPackage[m.Package], m.ID)
	}

	result := make(map[string]*PackageInfo, len(byPackage))
	for name, entries := range byPackage {
		info := &PackageInfo{
			Name:        name,
			EntryModule: entries[0],
		}

		visited := make(map[int]bool)
		queue := make([]int, 0, len(entries))
		for _, id := range entries {
			if !visited[id] {
				visited[id] = true
				queue = append(queue, id)
			}
		}

		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]

			m := g.modules[id]
			info.TotalReachableSize += m.SizeBytes
			info.ModuleCount++

			for _, eid := range g.outgoing[id] {
				e := g.edges[eid]
				if e.Kind != Static {
					continue
				}
				target := g.modules[e.To]
				if target.Package != name {
					continue
				}
				if !visited[e.To] {
					visited[e.To] = true
					queue = append(queue, e.To)
				}
			}
		}

		result[name] = info
	}

	g.Packages = result
}
