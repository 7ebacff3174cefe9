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
	"testing"

	"bennypowers.dev/chainsaw/internal/mapfs"
	"bennypowers.dev/chainsaw/query"
)

func TestFindProjectRootFindsNearestAncestorPackageJSON(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/proj/package.json", `{"name":"proj"}`, 0644)
	fsys.AddFile("/proj/src/deep/a.js", "", 0644)

	if got := findProjectRoot(fsys, "/proj/src/deep"); got != "/proj" {
		t.Fatalf("expected /proj, got %q", got)
	}
}

func TestFindProjectRootFallsBackToDirWhenNoPackageJSON(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/no/pkg/here/a.js", "", 0644)

	if got := findProjectRoot(fsys, "/no/pkg/here"); got != "/no/pkg/here" {
		t.Fatalf("expected the starting directory as a fallback, got %q", got)
	}
}

func TestOpenTraceSessionMissingEntryFails(t *testing.T) {
	fsys := mapfs.New()
	_, _, err := openTraceSession(fsys, "/proj/missing.js", true)
	if !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestOpenTraceSessionBuildsGraphAndResolvesEntryID(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/proj/package.json", `{"name":"proj"}`, 0644)
	fsys.AddFile("/proj/entry.js", `import "./a.js";`, 0644)
	fsys.AddFile("/proj/a.js", "", 0644)

	session, entryID, err := openTraceSession(fsys, "/proj/entry.js", true)
	if err != nil {
		t.Fatalf("openTraceSession: %v", err)
	}
	if session.root != "/proj" {
		t.Fatalf("expected project root /proj, got %q", session.root)
	}
	if session.build.Graph.Module(entryID).Path != "/proj/entry.js" {
		t.Fatalf("expected entryID to resolve to the entry file")
	}
	if session.build.Graph.ModuleCount() != 2 {
		t.Fatalf("expected 2 modules in the built graph, got %d", session.build.Graph.ModuleCount())
	}
	if !fsys.Exists("/proj/.chainsaw.cache") {
		t.Fatalf("expected openTraceSession to persist the cache on exit")
	}
}

func TestBuildTraceReportUsesRelativePaths(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/proj/package.json", `{"name":"proj"}`, 0644)
	fsys.AddFile("/proj/entry.js", `import "./a.js";`, 0644)
	fsys.AddFile("/proj/a.js", "", 0644)

	session, entryID, err := openTraceSession(fsys, "/proj/entry.js", true)
	if err != nil {
		t.Fatalf("openTraceSession: %v", err)
	}

	tr := buildTraceReport(session, entryID, query.Options{}, 10)
	if tr.Entry != "entry.js" {
		t.Fatalf("expected the entry path to be relative to the project root, got %q", tr.Entry)
	}
}

func TestBuildChainReturnsEmptyWhyWhenUnreachable(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/proj/package.json", `{"name":"proj"}`, 0644)
	fsys.AddFile("/proj/entry.js", "", 0644)

	session, entryID, err := openTraceSession(fsys, "/proj/entry.js", true)
	if err != nil {
		t.Fatalf("openTraceSession: %v", err)
	}

	why := buildChain(session, entryID, "nonexistent-pkg")
	if len(why.Chains) != 0 {
		t.Fatalf("expected no chains for an unreachable package, got %+v", why.Chains)
	}
}

func TestTraceCmdFlagsRegistered(t *testing.T) {
	for _, name := range []string{"diff", "include-dynamic", "top", "chain", "why", "json", "no-cache"} {
		if traceCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected trace command to register a %q flag", name)
		}
	}
}

func TestTraceCmdRequiresExactlyOneArg(t *testing.T) {
	if err := traceCmd.Args(traceCmd, nil); err == nil {
		t.Fatalf("expected an error with zero args")
	}
	if err := traceCmd.Args(traceCmd, []string{"a", "b"}); err == nil {
		t.Fatalf("expected an error with two args")
	}
	if err := traceCmd.Args(traceCmd, []string{"a"}); err != nil {
		t.Fatalf("expected no error with exactly one arg, got %v", err)
	}
}
