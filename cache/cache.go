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

// Package cache is the persistent two-tier cache: a
// per-file parse cache (tier 2) and a whole-graph snapshot (tier 1), both
// living in one binary envelope at <project-root>/.chainsaw.cache.
//
// The envelope is encoded with encoding/gob rather than a library, the one
// stdlib-only choice in this package — gob handles the graph.Module/Edge/
// lang.RawImport value types directly with no struct-tag bookkeeping, and
// nothing in the retrieval pack imports a binary serialization library for
// an analogous on-disk snapshot (mappa persists nothing across runs).
package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	chainsawfs "bennypowers.dev/chainsaw/internal/fs"

	"bennypowers.dev/chainsaw/graph"
	"bennypowers.dev/chainsaw/lang"
)

// FileName is the fixed relative path of the persisted cache file, relative
// to the project root.
const FileName = ".chainsaw.cache"

// envelopeVersion is bumped whenever any cached-shape field changes.
// Loaders with a different version silently discard the file.
const envelopeVersion uint32 = 1

// FileStamp is the mtime+size tuple used to validate a cache entry is still
// fresh.
type FileStamp struct {
	ModTimeNanos int64
	Size         int64
}

func statStamp(info fs.FileInfo) FileStamp {
	return FileStamp{ModTimeNanos: info.ModTime().UnixNano(), Size: info.Size()}
}

// CachedParse is a per-file cache entry: the file's mtime+size at cache
// time, and its parse result.
type CachedParse struct {
	Stamp               FileStamp
	Imports             []lang.RawImport
	UnresolvableDynamic int
}

// cachedGraphData is the whole-graph snapshot, serialized as plain values
// (graph.ModuleGraph itself carries unexported adjacency bookkeeping that
// gob cannot reach, so graph.Snapshot/FromSnapshot bridge the two).
type cachedGraphData struct {
	Entry                string
	Modules              []graph.Module
	Edges                []graph.Edge
	FileStamps           map[string]FileStamp
	UnresolvedSpecifiers []string
	UnresolvableDynamic  int
}

// envelope is the on-disk, gob-encoded shape of the cache file.
type envelope struct {
	Version uint32
	Files   map[string]CachedParse
	Graph   *cachedGraphData
}

// Cache is the in-memory, mutable cache a single build session owns. Its
// mutating methods hold an internal mutex but callers should still confine
// all cache mutation to the coordinating goroutine between parallel phases.
type Cache struct {
	mu    sync.Mutex
	fsys  chainsawfs.FileSystem
	files map[string]CachedParse
	gdata *cachedGraphData
}

// Load reads the cache file at <root>/.chainsaw.cache. A missing file,
// version mismatch, or corrupt envelope all produce an empty, usable cache
// rather than an error — loading never fails.
func Load(fsys chainsawfs.FileSystem, root string) *Cache {
	c := &Cache{fsys: fsys, files: make(map[string]CachedParse)}

	data, err := fsys.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		return c
	}

	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return c
	}
	if env.Version != envelopeVersion {
		return c
	}

	if env.Files != nil {
		c.files = env.Files
	}
	c.gdata = env.Graph
	return c
}

// Lookup returns the cached parse for path iff its current mtime and size
// match the cached stamp exactly.
func (c *Cache) Lookup(path string) (CachedParse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.files[path]
	if !ok {
		return CachedParse{}, false
	}

	info, err := c.fsys.Stat(path)
	if err != nil {
		return CachedParse{}, false
	}
	if statStamp(info) != entry.Stamp {
		return CachedParse{}, false
	}
	return entry, true
}

// Insert records path's current mtime/size alongside its parse result.
// Drops silently if the file can no longer be stat'd.
func (c *Cache) Insert(path string, imports []lang.RawImport, unresolvableDynamic int) {
	info, err := c.fsys.Stat(path)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = CachedParse{
		Stamp:               statStamp(info),
		Imports:             imports,
		UnresolvableDynamic: unresolvableDynamic,
	}
}

// TryLoadGraph is the tier-1 fast path: it returns the cached graph iff the
// recorded entry matches, every cached file's mtime/size is unchanged, and
// no previously-unresolved specifier now resolves (resolves reports that).
func (c *Cache) TryLoadGraph(entry string, resolves func(specifier string) bool) (*graph.ModuleGraph, int, bool) {
	c.mu.Lock()
	gdata := c.gdata
	c.mu.Unlock()

	if gdata == nil || gdata.Entry != entry {
		return nil, 0, false
	}

	for path, stamp := range gdata.FileStamps {
		info, err := c.fsys.Stat(path)
		if err != nil {
			return nil, 0, false
		}
		if statStamp(info) != stamp {
			return nil, 0, false
		}
	}

	if resolves != nil {
		for _, spec := range gdata.UnresolvedSpecifiers {
			if resolves(spec) {
				return nil, 0, false
			}
		}
	}

	g := graph.FromSnapshot(gdata.Modules, gdata.Edges)
	g.ComputePackageInfo()
	return g, gdata.UnresolvableDynamic, true
}

// Save atomically rewrites the cache file with a fresh envelope built from
// g plus the per-file parse cache accumulated so far. Write failures are
// returned so the caller can warn rather than abort the run.
func (c *Cache) Save(root, entry string, g *graph.ModuleGraph, unresolvedSpecifiers []string, unresolvableDynamic int) error {
	modules, edges := g.Snapshot()

	fileStamps := make(map[string]FileStamp, len(modules))
	for _, m := range modules {
		info, err := c.fsys.Stat(m.Path)
		if err != nil {
			continue
		}
		fileStamps[m.Path] = statStamp(info)
	}

	c.mu.Lock()
	c.gdata = &cachedGraphData{
		Entry:                entry,
		Modules:              modules,
		Edges:                edges,
		FileStamps:           fileStamps,
		UnresolvedSpecifiers: append([]string(nil), unresolvedSpecifiers...),
		UnresolvableDynamic:  unresolvableDynamic,
	}
	env := envelope{Version: envelopeVersion, Files: c.files, Graph: c.gdata}
	c.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return fmt.Errorf("encoding cache envelope: %w", err)
	}

	path := filepath.Join(root, FileName)
	tmp := path + ".tmp"
	if err := c.fsys.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := c.fsys.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}
