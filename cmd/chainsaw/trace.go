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
package chainsaw

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"bennypowers.dev/chainsaw/builder"
	"bennypowers.dev/chainsaw/cache"
	chainsawfs "bennypowers.dev/chainsaw/internal/fs"
	"bennypowers.dev/chainsaw/internal/packagejson"
	"bennypowers.dev/chainsaw/lang/javascript"
	"bennypowers.dev/chainsaw/query"
	"bennypowers.dev/chainsaw/report"
)

// ErrEntryNotFound is returned when the positional entry-file argument does
// not name a readable file.
var ErrEntryNotFound = errors.New("entry file not found")

// ErrEntryNotInGraph is returned when a canonicalized entry somehow isn't
// present in its own freshly built graph — should not happen in practice,
// guarded against defensively.
var ErrEntryNotInGraph = errors.New("entry not in graph")

var traceCmd = &cobra.Command{
	Use:   "trace <entry-file>",
	Short: "Trace an entry file's transitive import weight",
	Long: `trace scans the module graph reachable from entry-file and reports its
transitive weight, the packages that dominate that weight, and (with --chain
or --why) the import chain responsible for pulling in a given package.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrace,
}

func init() {
	traceCmd.Flags().String("diff", "", "Compute trace for a second entry and emit a comparison")
	traceCmd.Flags().Bool("include-dynamic", false, "Follow dynamic imports during traversal (default: static-only)")
	traceCmd.Flags().Int("top", 10, "Number of heavy packages to show")
	traceCmd.Flags().String("chain", "", "Emit one shortest chain from entry to any module of this package")
	traceCmd.Flags().String("why", "", "Emit all shortest chains from entry to this package")
	traceCmd.Flags().Bool("json", false, "Emit machine-readable JSON instead of human output")
	traceCmd.Flags().Bool("no-cache", false, "Bypass the tier-1 whole-graph cache read; still write on exit")
}

func runTrace(cmd *cobra.Command, args []string) error {
	osfs := chainsawfs.NewOSFileSystem()

	includeDynamic, _ := cmd.Flags().GetBool("include-dynamic")
	top, _ := cmd.Flags().GetInt("top")
	chainPkg, _ := cmd.Flags().GetString("chain")
	whyPkg, _ := cmd.Flags().GetString("why")
	jsonOut, _ := cmd.Flags().GetBool("json")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	diffArg, _ := cmd.Flags().GetString("diff")

	session, entryID, err := openTraceSession(osfs, args[0], !noCache)
	if err != nil {
		return err
	}

	qopts := query.Options{IncludeDynamic: includeDynamic}

	switch {
	case whyPkg != "":
		why := buildWhy(session, entryID, whyPkg)
		return emitWhy(osfs, jsonOut, why)

	case chainPkg != "":
		why := buildChain(session, entryID, chainPkg)
		return emitWhy(osfs, jsonOut, why)

	case diffArg != "":
		otherSession, otherEntryID, err := openTraceSession(osfs, diffArg, !noCache)
		if err != nil {
			return err
		}
		diff := buildDiff(session, entryID, otherSession, otherEntryID, qopts)
		return emitDiff(osfs, jsonOut, diff)

	default:
		t := buildTraceReport(session, entryID, qopts, top)
		return emitTrace(osfs, jsonOut, t)
	}
}

// traceSession is the built graph plus the context (project root, cache)
// needed to render relative paths and persist the cache on exit.
type traceSession struct {
	root  string
	entry string
	osfs  chainsawfs.FileSystem
	c     *cache.Cache
	build *builder.BuildResult
}

func openTraceSession(osfs chainsawfs.FileSystem, entryArg string, useTier1 bool) (*traceSession, int, error) {
	absEntry, err := filepath.Abs(entryArg)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrEntryNotFound, entryArg)
	}
	if resolved, err := filepath.EvalSymlinks(absEntry); err == nil {
		absEntry = resolved
	}
	if !osfs.Exists(absEntry) {
		return nil, 0, fmt.Errorf("%w: %s", ErrEntryNotFound, entryArg)
	}

	root := findProjectRoot(osfs, filepath.Dir(absEntry))

	var workspaces []packagejson.WorkspacePackage
	if ws, err := packagejson.DiscoverWorkspacePackages(osfs, root); err == nil {
		workspaces = ws
	}

	support := javascript.NewSupport(osfs).WithWorkspaces(workspaces)
	c := cache.Load(osfs, root)
	b := builder.New(osfs, support, c)
	b.Warnings = os.Stderr

	result, err := b.Build(absEntry, useTier1)
	if err != nil {
		return nil, 0, fmt.Errorf("building graph for %s: %w", entryArg, err)
	}

	if err := c.Save(root, absEntry, result.Graph, result.UnresolvedSpecifiers, result.UnresolvableDynamic); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not write cache: %v\n", err)
	}

	entryID, ok := result.Graph.PathToID(absEntry)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrEntryNotInGraph, entryArg)
	}

	return &traceSession{root: root, entry: absEntry, osfs: osfs, c: c, build: result}, entryID, nil
}

// findProjectRoot walks upward from dir until it finds an ancestor
// containing package.json; if none exists, dir itself is used.
func findProjectRoot(osfs chainsawfs.FileSystem, dir string) string {
	cur := dir
	for {
		if osfs.Exists(filepath.Join(cur, "package.json")) {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}

func (s *traceSession) rel(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return path
	}
	return rel
}

func buildTraceReport(s *traceSession, entryID int, opts query.Options, top int) report.Trace {
	g := s.build.Graph
	weight := query.Weight(g, entryID, opts)
	heavy := query.HeavyPackages(g, entryID, top)

	heavyOut := make([]report.HeavyPackage, len(heavy))
	for i, h := range heavy {
		paths := make([]string, len(h.ChainPaths))
		for j, p := range h.ChainPaths {
			paths[j] = s.rel(p)
		}
		heavyOut[i] = report.HeavyPackage{Name: h.Name, SizeBytes: h.SizeBytes, FileCount: h.FileCount, Chain: paths}
	}

	modules := make([]report.ModuleCost, len(weight.Reachable))
	for i, id := range weight.Reachable {
		m := g.Module(id)
		modules[i] = report.ModuleCost{Path: s.rel(m.Path), SizeBytes: m.SizeBytes}
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].SizeBytes != modules[j].SizeBytes {
			return modules[i].SizeBytes > modules[j].SizeBytes
		}
		return modules[i].Path < modules[j].Path
	})

	return report.Trace{
		Entry:                  s.rel(s.entry),
		StaticWeightBytes:      weight.StaticWeightBytes,
		StaticModuleCount:      weight.StaticModuleCount,
		DynamicOnlyWeightBytes: weight.DynamicOnlyWeightBytes,
		DynamicOnlyModuleCount: weight.DynamicOnlyModuleCount,
		HeavyPackages:          heavyOut,
		ModulesByCost:          modules,
		UnresolvedSpecifiers:   s.build.UnresolvedSpecifiers,
		UnresolvableDynamic:    s.build.UnresolvableDynamic,
	}
}

func buildWhy(s *traceSession, entryID int, pkg string) report.Why {
	g := s.build.Graph
	all := query.AllChains(g, entryID, pkg)

	chains := make([][]string, len(all.Chains))
	for i, chain := range all.Chains {
		steps := make([]string, len(chain))
		for j, id := range chain {
			steps[j] = s.rel(g.Module(id).Path)
		}
		chains[i] = steps
	}

	return report.Why{Package: pkg, HopCount: all.HopCount, Chains: chains}
}

func buildChain(s *traceSession, entryID int, pkg string) report.Why {
	g := s.build.Graph
	chain := query.Chain(g, entryID, pkg)
	if chain == nil {
		return report.Why{Package: pkg}
	}
	steps := make([]string, len(chain))
	for i, id := range chain {
		steps[i] = s.rel(g.Module(id).Path)
	}
	return report.Why{Package: pkg, HopCount: len(chain) - 1, Chains: [][]string{steps}}
}

func buildDiff(a *traceSession, entryA int, b *traceSession, entryB int, opts query.Options) report.Diff {
	weightA := query.Weight(a.build.Graph, entryA, opts)
	weightB := query.Weight(b.build.Graph, entryB, opts)
	pkgsA := query.ReachablePackages(a.build.Graph, entryA, opts)
	pkgsB := query.ReachablePackages(b.build.Graph, entryB, opts)

	d := query.Diff(weightA.StaticWeightBytes, weightB.StaticWeightBytes, pkgsA, pkgsB)
	return report.Diff{
		WeightA:    d.WeightA,
		WeightB:    d.WeightB,
		DeltaBytes: d.DeltaBytes,
		OnlyInA:    d.OnlyInA,
		OnlyInB:    d.OnlyInB,
		InBoth:     d.InBoth,
	}
}

func emitTrace(osfs chainsawfs.FileSystem, jsonOut bool, t report.Trace) error {
	if jsonOut {
		return report.WriteJSON(osfs, os.Stdout, t)
	}
	report.WriteHumanTrace(os.Stdout, t)
	return nil
}

func emitWhy(osfs chainsawfs.FileSystem, jsonOut bool, w report.Why) error {
	if jsonOut {
		return report.WriteJSON(osfs, os.Stdout, w)
	}
	report.WriteHumanWhy(os.Stdout, w)
	return nil
}

func emitDiff(osfs chainsawfs.FileSystem, jsonOut bool, d report.Diff) error {
	if jsonOut {
		return report.WriteJSON(osfs, os.Stdout, d)
	}
	report.WriteHumanDiff(os.Stdout, d)
	return nil
}
