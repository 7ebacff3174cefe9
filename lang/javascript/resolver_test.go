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
package javascript

import (
	"testing"
	"time"

	"bennypowers.dev/chainsaw/internal/mapfs"
	"bennypowers.dev/chainsaw/internal/packagejson"
)

func TestResolveRelativeExactFile(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/proj/a.js", "", 0644)
	fsys.AddFile("/proj/b.js", "", 0644)
	r := NewResolver(fsys)

	got, ok := r.Resolve("/proj", "./b.js")
	if !ok || got != "/proj/b.js" {
		t.Fatalf("expected /proj/b.js, got %q, %v", got, ok)
	}
}

func TestResolveRelativeExtensionProbing(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/proj/b.ts", "", 0644)
	r := NewResolver(fsys)

	got, ok := r.Resolve("/proj", "./b")
	if !ok || got != "/proj/b.ts" {
		t.Fatalf("expected extension probing to find /proj/b.ts, got %q, %v", got, ok)
	}
}

func TestResolveRelativeDirectoryIndex(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/proj/sub/index.js", "", 0644)
	r := NewResolver(fsys)

	got, ok := r.Resolve("/proj", "./sub")
	if !ok || got != "/proj/sub/index.js" {
		t.Fatalf("expected directory index resolution, got %q, %v", got, ok)
	}
}

func TestResolveRelativeDirectoryPackageJSONMain(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/proj/sub/package.json", `{"main": "lib/entry.js"}`, 0644)
	fsys.AddFile("/proj/sub/lib/entry.js", "", 0644)
	r := NewResolver(fsys)

	got, ok := r.Resolve("/proj", "./sub")
	if !ok || got != "/proj/sub/lib/entry.js" {
		t.Fatalf("expected package.json main resolution, got %q, %v", got, ok)
	}
}

func TestResolveRelativeNoCandidateFails(t *testing.T) {
	fsys := mapfs.New()
	r := NewResolver(fsys)

	if _, ok := r.Resolve("/proj", "./missing"); ok {
		t.Fatalf("expected resolution to fail for a nonexistent relative path")
	}
}

func TestResolveBareSpecifierFromNodeModules(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/proj/node_modules/lit/package.json", `{"main": "index.js"}`, 0644)
	fsys.AddFile("/proj/node_modules/lit/index.js", "", 0644)
	fsys.AddFile("/proj/src/app.js", "", 0644)
	r := NewResolver(fsys)

	got, ok := r.Resolve("/proj/src", "lit")
	if !ok || got != "/proj/node_modules/lit/index.js" {
		t.Fatalf("expected node_modules resolution, got %q, %v", got, ok)
	}
}

func TestResolveBareSpecifierWalksUpAncestors(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/proj/node_modules/lit/index.js", "", 0644)
	r := NewResolver(fsys)

	got, ok := r.Resolve("/proj/src/deep/nested", "lit")
	if !ok || got != "/proj/node_modules/lit/index.js" {
		t.Fatalf("expected resolution to walk up to an ancestor node_modules, got %q, %v", got, ok)
	}
}

func TestResolveScopedPackageSubpath(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/proj/node_modules/@scope/pkg/sub/file.js", "", 0644)
	r := NewResolver(fsys)

	got, ok := r.Resolve("/proj", "@scope/pkg/sub/file.js")
	if !ok || got != "/proj/node_modules/@scope/pkg/sub/file.js" {
		t.Fatalf("expected scoped package subpath resolution, got %q, %v", got, ok)
	}
}

func TestResolveExportsConditionalOverMain(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/proj/node_modules/lit/package.json",
		`{"main": "old.js", "exports": {".": {"import": "new.js"}}}`, 0644)
	fsys.AddFile("/proj/node_modules/lit/new.js", "", 0644)
	r := NewResolver(fsys)

	got, ok := r.Resolve("/proj", "lit")
	if !ok || got != "/proj/node_modules/lit/new.js" {
		t.Fatalf("expected exports map to win over main, got %q, %v", got, ok)
	}
}

func TestResolveBareSpecifierMissingFails(t *testing.T) {
	fsys := mapfs.New()
	r := NewResolver(fsys)

	if _, ok := r.Resolve("/proj/src", "nonexistent-pkg"); ok {
		t.Fatalf("expected resolution to fail when no node_modules ancestor has the package")
	}
}

// TestResolveBareSpecifierEmptyPackageDirTerminates covers a node_modules/<pkg>
// directory that exists but has no resolvable entry point: no package.json,
// no index.*. Resolve must fail fast rather than looping forever re-probing
// the same unchanged directory.
func TestResolveBareSpecifierEmptyPackageDirTerminates(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddDir("/proj/node_modules/empty-pkg", 0755)
	r := NewResolver(fsys)

	done := make(chan struct{})
	var got string
	var ok bool
	go func() {
		got, ok = r.Resolve("/proj/src", "empty-pkg")
		close(done)
	}()

	select {
	case <-done:
		if ok {
			t.Fatalf("expected resolution of an empty package dir to fail, got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Resolve hung instead of terminating on an unresolvable package dir")
	}
}

func TestPackageNameFromNodeModules(t *testing.T) {
	r := NewResolver(mapfs.New())
	if got := r.PackageName("/proj/node_modules/lit/index.js"); got != "lit" {
		t.Fatalf("expected package name lit, got %q", got)
	}
}

func TestPackageNameScopedPackage(t *testing.T) {
	r := NewResolver(mapfs.New())
	if got := r.PackageName("/proj/node_modules/@scope/pkg/index.js"); got != "@scope/pkg" {
		t.Fatalf("expected @scope/pkg, got %q", got)
	}
}

func TestPackageNameSkipsDistInfoDirectories(t *testing.T) {
	r := NewResolver(mapfs.New())
	got := r.PackageName("/proj/node_modules/foo.dist-info/lit/index.js")
	if got != "lit" {
		t.Fatalf("expected dist-info marker directories to be skipped, got %q", got)
	}
}

func TestPackageNameFirstPartySourceIsEmpty(t *testing.T) {
	r := NewResolver(mapfs.New())
	if got := r.PackageName("/proj/src/app.js"); got != "" {
		t.Fatalf("expected no package attribution for first-party source, got %q", got)
	}
}

func TestPackageNameWorkspaceMember(t *testing.T) {
	r := NewResolver(mapfs.New()).WithWorkspaces([]packagejson.WorkspacePackage{
		{Name: "@proj/ui", Path: "/proj/packages/ui"},
	})
	if got := r.PackageName("/proj/packages/ui/src/button.js"); got != "@proj/ui" {
		t.Fatalf("expected workspace member attribution, got %q", got)
	}
}

func TestPackageNameOutsideWorkspaceIsEmpty(t *testing.T) {
	r := NewResolver(mapfs.New()).WithWorkspaces([]packagejson.WorkspacePackage{
		{Name: "@proj/ui", Path: "/proj/packages/ui"},
	})
	if got := r.PackageName("/proj/packages/other/index.js"); got != "" {
		t.Fatalf("expected no attribution outside any workspace package, got %q", got)
	}
}
