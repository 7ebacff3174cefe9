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

// Package builder is the incremental dependency-graph builder: given an
// entry file, it produces a fully resolved graph.ModuleGraph by BFS,
// parallelizing parse+resolve within a level and serializing graph and
// cache mutation between levels.
package builder

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"bennypowers.dev/chainsaw/cache"
	chainsawfs "bennypowers.dev/chainsaw/internal/fs"

	"bennypowers.dev/chainsaw/graph"
	"bennypowers.dev/chainsaw/lang"
)

// BuildResult is everything a build produces: the graph, and the
// unresolved-specifier / unresolvable-dynamic bookkeeping the cache and the
// report need.
type BuildResult struct {
	Graph                *graph.ModuleGraph
	UnresolvedSpecifiers []string
	UnresolvableDynamic  int
}

// Builder runs one traversal session over a filesystem, owning the parse
// cache for its lifetime.
type Builder struct {
	fsys    chainsawfs.FileSystem
	support lang.Support
	cache   *cache.Cache

	// Warnings receives degraded-but-recoverable diagnostics (parse
	// failures); defaults to io.Discard.
	Warnings io.Writer

	// ParseCounterHook, when set, is called once per file actually parsed
	// by the extractor (cache misses only).
	ParseCounterHook func(path string)
}

// New returns a Builder over fsys using support for language-specific
// extraction/resolution/package-attribution, backed by c for caching.
func New(fsys chainsawfs.FileSystem, support lang.Support, c *cache.Cache) *Builder {
	return &Builder{fsys: fsys, support: support, cache: c, Warnings: io.Discard}
}

// resolvedImport pairs a raw import with its resolution outcome.
type resolvedImport struct {
	raw  lang.RawImport
	path string
	ok   bool
}

// frontierTuple is one pending BFS-level work item: a module whose imports
// have been parsed and resolved, awaiting graph insertion.
type frontierTuple struct {
	sourceID            int
	unresolvableDynamic int
	resolved            []resolvedImport
}

// parseOutcome is one phase-C result.
type parseOutcome struct {
	path     string
	result   lang.ParseResult
	resolved []resolvedImport
	err      error
}

// Build runs the full traversal from entry (already canonicalized) and
// returns the resolved graph. If useTier1 is false, the tier-1 whole-graph
// cache is not consulted (the --no-cache flag), though tier-2 per-file
// caching and the final save still apply.
func (b *Builder) Build(entry string, useTier1 bool) (*BuildResult, error) {
	if useTier1 {
		if g, unresolvableDynamic, ok := b.cache.TryLoadGraph(entry, b.stillUnresolved); ok {
			return &BuildResult{Graph: g, UnresolvableDynamic: unresolvableDynamic}, nil
		}
	}

	g := graph.NewModuleGraph()
	failureSet := make(map[string]bool)
	unresolvedSeen := make(map[string]bool)
	var unresolvedSpecifiers []string
	totalUnresolvableDynamic := 0

	entrySize, err := b.statSize(entry)
	if err != nil {
		return nil, fmt.Errorf("reading entry file %s: %w", entry, err)
	}
	entryID := g.AddModule(entry, entrySize, b.support.PackageName(entry))

	var parsed lang.ParseResult
	if cached, ok := b.cache.Lookup(entry); ok {
		parsed = lang.ParseResult{Imports: cached.Imports, UnresolvableDynamic: cached.UnresolvableDynamic}
	} else {
		content, err := b.fsys.ReadFile(entry)
		if err != nil {
			return nil, fmt.Errorf("reading entry file %s: %w", entry, err)
		}
		parsed, err = b.support.ExtractImports(entry, content)
		if err != nil {
			return nil, fmt.Errorf("parsing entry file %s: %w", entry, err)
		}
		if b.ParseCounterHook != nil {
			b.ParseCounterHook(entry)
		}
		b.cache.Insert(entry, parsed.Imports, parsed.UnresolvableDynamic)
	}

	queue := []frontierTuple{{
		sourceID:            entryID,
		unresolvableDynamic: parsed.UnresolvableDynamic,
		resolved:            b.resolveAll(entry, parsed.Imports),
	}}

	for len(queue) > 0 {
		frontier := queue
		queue = nil

		// Phase A: serial graph mutation.
		var newlyDiscovered []string
		for _, ft := range frontier {
			totalUnresolvableDynamic += ft.unresolvableDynamic
			for _, ri := range ft.resolved {
				if !ri.ok {
					if !unresolvedSeen[ri.raw.Specifier] {
						unresolvedSeen[ri.raw.Specifier] = true
						unresolvedSpecifiers = append(unresolvedSpecifiers, ri.raw.Specifier)
					}
					continue
				}

				targetID, known := g.PathToID(ri.path)
				if !known {
					size, err := b.statSize(ri.path)
					if err != nil {
						continue
					}
					targetID = g.AddModule(ri.path, size, b.support.PackageName(ri.path))
					if b.support.Parseable(ri.path) && !failureSet[ri.path] {
						newlyDiscovered = append(newlyDiscovered, ri.path)
					}
				}
				g.AddEdge(ft.sourceID, targetID, ri.raw.Kind, ri.raw.Specifier)
			}
		}

		// Phase B: serial cache check.
		var toParse []string
		for _, path := range newlyDiscovered {
			if cached, ok := b.cache.Lookup(path); ok {
				sourceID, _ := g.PathToID(path)
				queue = append(queue, frontierTuple{
					sourceID:            sourceID,
					unresolvableDynamic: cached.UnresolvableDynamic,
					resolved:            b.resolveAll(path, cached.Imports),
				})
				continue
			}
			toParse = append(toParse, path)
		}

		// Phase C: parallel parse + resolve.
		outcomes := b.parseAll(toParse)

		// Phase D: serial cache write + enqueue.
		for _, out := range outcomes {
			if out.err != nil {
				fmt.Fprintf(b.Warnings, "Warning: %v\n", out.err)
				failureSet[out.path] = true
				continue
			}
			b.cache.Insert(out.path, out.result.Imports, out.result.UnresolvableDynamic)
			sourceID, _ := g.PathToID(out.path)
			queue = append(queue, frontierTuple{
				sourceID:            sourceID,
				unresolvableDynamic: out.result.UnresolvableDynamic,
				resolved:            out.resolved,
			})
		}
	}

	g.ComputePackageInfo()

	return &BuildResult{
		Graph:                g,
		UnresolvedSpecifiers: unresolvedSpecifiers,
		UnresolvableDynamic:  totalUnresolvableDynamic,
	}, nil
}

// stillUnresolved is the "resolves" predicate TryLoadGraph uses to decide
// whether a previously-unresolved specifier now resolves. The tier-1
// snapshot doesn't retain the source directory each unresolved specifier
// was imported from, so nothing is re-resolved: it always reports false
// ("does not resolve"). A tier-1 hit is therefore never invalidated by a
// specifier that has since become resolvable; only a different entry or a
// changed or missing module file makes tier 1 miss.
func (b *Builder) stillUnresolved(specifier string) bool {
	return false
}

// resolveAll resolves every raw import found in the file at path, against
// path's own directory.
func (b *Builder) resolveAll(path string, imports []lang.RawImport) []resolvedImport {
	dir := filepath.Dir(path)
	out := make([]resolvedImport, len(imports))
	for i, raw := range imports {
		resolved, ok := b.support.Resolve(dir, raw.Specifier)
		out[i] = resolvedImport{raw: raw, path: resolved, ok: ok}
	}
	return out
}

// parseAll runs the extractor over each path in paths, and resolves the
// imports it finds, concurrently via a bounded worker pool, then sorts the
// results by path so later serial phases are deterministic regardless of
// completion order.
func (b *Builder) parseAll(paths []string) []parseOutcome {
	if len(paths) == 0 {
		return nil
	}

	p := pool.NewWithResults[parseOutcome]()
	for _, path := range paths {
		path := path
		p.Go(func() parseOutcome {
			content, err := b.fsys.ReadFile(path)
			if err != nil {
				return parseOutcome{path: path, err: fmt.Errorf("reading %s: %w", path, err)}
			}
			result, err := b.support.ExtractImports(path, content)
			if err != nil {
				return parseOutcome{path: path, err: fmt.Errorf("parsing %s: %w", path, err)}
			}
			if b.ParseCounterHook != nil {
				b.ParseCounterHook(path)
			}
			return parseOutcome{path: path, result: result, resolved: b.resolveAll(path, result.Imports)}
		})
	}
	outcomes := p.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].path < outcomes[j].path })
	return outcomes
}

func (b *Builder) statSize(path string) (int64, error) {
	info, err := b.fsys.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
