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

// Package query implements the downstream graph algorithms: transitive
// weight, the heavy-packages list, shortest-chain search, all-shortest-chains
// enumeration, and trace diff. All traversal here walks children in
// insertion order, so results are deterministic given a deterministic graph.
package query

import (
	"fmt"
	"sort"

	"bennypowers.dev/chainsaw/graph"
)

// Options controls which edge kinds a weight/chain query follows.
type Options struct {
	// IncludeDynamic, when true, follows Dynamic edges as part of the
	// reachable set in addition to Static edges. TypeOnly edges are never
	// followed, regardless of this flag.
	IncludeDynamic bool
}

func (o Options) follow(kind graph.EdgeKind) bool {
	switch kind {
	case graph.Static:
		return true
	case graph.Dynamic:
		return o.IncludeDynamic
	default:
		return false
	}
}

// WeightResult is the outcome of a transitive-weight query.
type WeightResult struct {
	StaticWeightBytes int64
	StaticModuleCount int

	// DynamicOnlyWeightBytes/Count cover modules reachable only via at
	// least one Dynamic edge (never reachable by a Static-only path) —
	// surfaced separately as "lazy-load weight" even when IncludeDynamic is
	// off.
	DynamicOnlyWeightBytes int64
	DynamicOnlyModuleCount int

	// Reachable lists every module id counted into StaticWeightBytes (or,
	// with IncludeDynamic, also those folded in via a Dynamic edge).
	Reachable []int
}

// Weight computes the transitive weight from entry.
func Weight(g *graph.ModuleGraph, entry int, opts Options) WeightResult {
	// staticReach: modules reachable from entry following only Static edges.
	staticReach := bfsReach(g, entry, func(k graph.EdgeKind) bool { return k == graph.Static })

	// fullReach: modules reachable following Static and (if requested)
	// Dynamic edges — this is the actual "reachable set" the weight sums
	// over when IncludeDynamic is set.
	fullReach := staticReach
	if opts.IncludeDynamic {
		fullReach = bfsReach(g, entry, opts.follow)
	}

	// dynamicOnlyReach: reachable via Static+Dynamic edges, but not already
	// counted in the main weight above — this is the "lazy-load weight"
	// bucket, computed regardless of opts.IncludeDynamic. With
	// IncludeDynamic on, fullReach already covers everything anyReach does,
	// so this bucket correctly comes out empty rather than double-counting
	// modules already charged at startup.
	anyReach := bfsReach(g, entry, func(k graph.EdgeKind) bool { return k == graph.Static || k == graph.Dynamic })

	var result WeightResult
	for _, id := range sortedIDs(fullReach) {
		result.StaticWeightBytes += g.Module(id).SizeBytes
		result.StaticModuleCount++
		result.Reachable = append(result.Reachable, id)
	}
	for _, id := range sortedIDs(anyReach) {
		if fullReach[id] {
			continue
		}
		result.DynamicOnlyWeightBytes += g.Module(id).SizeBytes
		result.DynamicOnlyModuleCount++
	}

	return result
}

// HeavyPackage is one entry in the heavy-packages list.
type HeavyPackage struct {
	Name       string
	SizeBytes  int64
	FileCount  int
	ChainPaths []string // shortest static chain from entry to a representative module, as module paths
}

// HeavyPackages returns the top-N packages reachable from entry by total
// package size, each annotated with the shortest static chain to one of its
// modules.
func HeavyPackages(g *graph.ModuleGraph, entry int, top int) []HeavyPackage {
	reach := bfsReach(g, entry, func(k graph.EdgeKind) bool { return k == graph.Static })

	type agg struct {
		size  int64
		count int
	}
	byPkg := make(map[string]*agg)
	for id := range reach {
		m := g.Module(id)
		if m.Package == "" {
			continue
		}
		a, ok := byPkg[m.Package]
		if !ok {
			a = &agg{}
			byPkg[m.Package] = a
		}
		a.size += m.SizeBytes
		a.count++
	}

	names := make([]string, 0, len(byPkg))
	for name := range byPkg {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if byPkg[names[i]].size != byPkg[names[j]].size {
			return byPkg[names[i]].size > byPkg[names[j]].size
		}
		return names[i] < names[j]
	})
	if top > 0 && len(names) > top {
		names = names[:top]
	}

	result := make([]HeavyPackage, 0, len(names))
	for _, name := range names {
		chain := Chain(g, entry, name)
		paths := make([]string, len(chain))
		for i, id := range chain {
			paths[i] = g.Module(id).Path
		}
		result = append(result, HeavyPackage{
			Name:       name,
			SizeBytes:  byPkg[name].size,
			FileCount:  byPkg[name].count,
			ChainPaths: paths,
		})
	}
	return result
}

// Chain returns the shortest sequence of module ids from entry to a module
// of the named package, following Static edges, or nil if unreachable.
// First module is entry; last module's Package equals pkg.
func Chain(g *graph.ModuleGraph, entry int, pkg string) []int {
	pred := make(map[int]int)
	visited := map[int]bool{entry: true}
	queue := []int{entry}

	var target int
	found := false

	for len(queue) > 0 && !found {
		id := queue[0]
		queue = queue[1:]

		if g.Module(id).Package == pkg {
			target = id
			found = true
			break
		}

		for _, eid := range g.OutgoingEdges(id) {
			e := g.Edge(eid)
			if e.Kind != graph.Static {
				continue
			}
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			pred[e.To] = id
			queue = append(queue, e.To)
		}
	}

	if !found {
		return nil
	}
	return reconstructChain(pred, entry, target)
}

// AllChainsResult is the outcome of an all-shortest-chains query.
type AllChainsResult struct {
	Package  string
	HopCount int
	Chains   [][]int // each a sequence of module ids, entry first
}

// AllChains enumerates every distinct simple path of minimum length from
// entry to any module of pkg.
func AllChains(g *graph.ModuleGraph, entry int, pkg string) AllChainsResult {
	dist := map[int]int{entry: 0}
	queue := []int{entry}
	minDist := -1

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if g.Module(id).Package == pkg {
			if minDist == -1 {
				minDist = dist[id]
			}
			continue
		}
		if minDist != -1 && dist[id] >= minDist {
			continue
		}

		for _, eid := range g.OutgoingEdges(id) {
			e := g.Edge(eid)
			if e.Kind != graph.Static {
				continue
			}
			if _, seen := dist[e.To]; seen {
				continue
			}
			dist[e.To] = dist[id] + 1
			queue = append(queue, e.To)
		}
	}

	if minDist == -1 {
		return AllChainsResult{Package: pkg}
	}

	var chains [][]int
	var path []int
	var dfs func(id int, depth int)
	dfs = func(id int, depth int) {
		path = append(path, id)
		defer func() { path = path[:len(path)-1] }()

		if g.Module(id).Package == pkg && depth == minDist {
			chains = append(chains, append([]int(nil), path...))
			return
		}
		if depth >= minDist {
			return
		}

		for _, eid := range g.OutgoingEdges(id) {
			e := g.Edge(eid)
			if e.Kind != graph.Static {
				continue
			}
			dfs(e.To, depth+1)
		}
	}
	dfs(entry, 0)

	return AllChainsResult{Package: pkg, HopCount: minDist, Chains: chains}
}

// DiffResult is the outcome of comparing two WeightResults.
type DiffResult struct {
	WeightA, WeightB int64
	DeltaBytes       int64
	OnlyInA          []string
	OnlyInB          []string
	InBoth           []string
}

// Diff compares two traces by their reachable-package sets (pkgsA/pkgsB)
// and total weights.
func Diff(weightA, weightB int64, pkgsA, pkgsB []string) DiffResult {
	setA := make(map[string]bool, len(pkgsA))
	for _, p := range pkgsA {
		setA[p] = true
	}
	setB := make(map[string]bool, len(pkgsB))
	for _, p := range pkgsB {
		setB[p] = true
	}

	var onlyA, onlyB, both []string
	for p := range setA {
		if setB[p] {
			both = append(both, p)
		} else {
			onlyA = append(onlyA, p)
		}
	}
	for p := range setB {
		if !setA[p] {
			onlyB = append(onlyB, p)
		}
	}
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	sort.Strings(both)

	return DiffResult{
		WeightA:    weightA,
		WeightB:    weightB,
		DeltaBytes: weightB - weightA,
		OnlyInA:    onlyA,
		OnlyInB:    onlyB,
		InBoth:     both,
	}
}

// ReachablePackages returns the sorted, distinct package names among the
// modules reachable from entry under opts — used by trace diff to compare
// the full package sets of two traces, independent of any
// --top truncation applied to the heavy-packages list.
func ReachablePackages(g *graph.ModuleGraph, entry int, opts Options) []string {
	reach := bfsReach(g, entry, opts.follow)
	seen := make(map[string]bool)
	for id := range reach {
		pkg := g.Module(id).Package
		if pkg == "" {
			continue
		}
		seen[pkg] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrEntryNotInGraph is returned when a query is asked to start from a
// module id the graph does not contain.
type ErrEntryNotInGraph struct {
	ID int
}

func (e *ErrEntryNotInGraph) Error() string {
	return fmt.Sprintf("query: entry module %d is not in the graph", e.ID)
}

// bfsReach returns the set of module ids reachable from entry (entry
// included) following only edges follow accepts, visiting children in
// insertion order.
func bfsReach(g *graph.ModuleGraph, entry int, follow func(graph.EdgeKind) bool) map[int]bool {
	visited := map[int]bool{entry: true}
	queue := []int{entry}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, eid := range g.OutgoingEdges(id) {
			e := g.Edge(eid)
			if !follow(e.Kind) {
				continue
			}
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			queue = append(queue, e.To)
		}
	}
	return visited
}

// sortedIDs returns the keys of a reach-set in ascending order, giving
// deterministic iteration for weight summation.
func sortedIDs(set map[int]bool) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func reconstructChain(pred map[int]int, entry, target int) []int {
	chain := []int{target}
	cur := target
	for cur != entry {
		cur = pred[cur]
		chain = append(chain, cur)
	}
	// reverse
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
