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
	"path/filepath"
	"strings"

	"bennypowers.dev/chainsaw/internal/fs"
	"bennypowers.dev/chainsaw/internal/packagejson"
)

// packageCacheDirName is the directory JS/TS package managers install
// dependencies into.
const packageCacheDirName = "node_modules"

// candidateExtensions is the extension/index probing order: try the bare
// path, then each of these suffixes.
var candidateExtensions = []string{"", ".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs"}

// Resolver implements lang.Resolver and lang.PackageLookup for JS/TS,
// following the relative/absolute/package-specifier resolution algorithm.
// It owns no mutable state beyond a package.json read-through cache, and is
// safe for concurrent use (cache is a packagejson.Cache, which is itself
// goroutine-safe).
type Resolver struct {
	fsys       fs.FileSystem
	pkgCache   packagejson.Cache
	workspaces []packagejson.WorkspacePackage
}

// NewResolver returns a Resolver rooted at no particular project; workspace
// packages (if any) should be supplied via WithWorkspaces.
func NewResolver(fsys fs.FileSystem) *Resolver {
	return &Resolver{
		fsys:     fsys,
		pkgCache: packagejson.NewMemoryCache(),
	}
}

// WithWorkspaces attaches the project's declared workspace packages, used
// to attribute a file under a first-party package directory to that
// package's name.
func (r *Resolver) WithWorkspaces(workspaces []packagejson.WorkspacePackage) *Resolver {
	r.workspaces = workspaces
	return r
}

// Resolve implements lang.Resolver.
func (r *Resolver) Resolve(sourceDir, specifier string) (string, bool) {
	switch {
	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
		return r.resolveWithRules(filepath.Join(sourceDir, specifier))
	case strings.HasPrefix(specifier, "/"):
		return r.resolveWithRules(specifier)
	default:
		return r.resolvePackageSpecifier(sourceDir, specifier)
	}
}

// resolveWithRules applies the extension/index probing order to candidate
// path p.
func (r *Resolver) resolveWithRules(p string) (string, bool) {
	for _, ext := range candidateExtensions {
		candidate := p + ext
		if r.isFile(candidate) {
			return candidate, true
		}
	}

	if !r.isDir(p) {
		return "", false
	}

	if pkg, ok := r.readPackageJSON(filepath.Join(p, "package.json")); ok {
		if target, err := pkg.ResolveExport(".", nil); err == nil {
			candidate := filepath.Join(p, target)
			if r.isFile(candidate) {
				return candidate, true
			}
		}
	}

	indexBase := filepath.Join(p, "index")
	for _, ext := range candidateExtensions {
		if ext == "" {
			continue
		}
		candidate := indexBase + ext
		if r.isFile(candidate) {
			return candidate, true
		}
	}

	return "", false
}

// resolvePackageSpecifier walks from sourceDir toward the filesystem root,
// probing each ancestor's node_modules for the package named by specifier.
func (r *Resolver) resolvePackageSpecifier(sourceDir, specifier string) (string, bool) {
	pkgName, subpath := splitPackageSpecifier(specifier)

	dir := sourceDir
	for {
		pkgRoot := filepath.Join(dir, packageCacheDirName, pkgName)
		if r.isDir(pkgRoot) {
			if subpath == "" {
				if pkg, ok := r.readPackageJSON(filepath.Join(pkgRoot, "package.json")); ok {
					if target, err := pkg.ResolveExport(".", nil); err == nil {
						if resolved, ok := r.resolveWithRules(filepath.Join(pkgRoot, target)); ok {
							return resolved, true
						}
					}
					if pkg.Main != "" {
						if resolved, ok := r.resolveWithRules(filepath.Join(pkgRoot, pkg.Main)); ok {
							return resolved, true
						}
					}
				}
				if resolved, ok := r.resolveWithRules(filepath.Join(pkgRoot, "index")); ok {
					return resolved, true
				}
				// pkgRoot exists but has no resolvable entry point (empty or
				// partially-installed package dir) — no ancestor node_modules
				// holds a "more correct" copy of the same package, so stop here
				// rather than looping on an unchanged dir.
				return "", false
			}
			if resolved, ok := r.resolveWithRules(filepath.Join(pkgRoot, subpath)); ok {
				return resolved, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// splitPackageSpecifier separates a bare specifier into its package name
// (handling @scope/name) and the remaining subpath, if any.
func splitPackageSpecifier(specifier string) (pkgName, subpath string) {
	parts := strings.SplitN(specifier, "/", 2)
	if strings.HasPrefix(specifier, "@") && len(parts) == 2 {
		scoped := strings.SplitN(parts[1], "/", 2)
		pkgName = parts[0] + "/" + scoped[0]
		if len(scoped) == 2 {
			subpath = scoped[1]
		}
		return
	}
	pkgName = parts[0]
	if len(parts) == 2 {
		subpath = parts[1]
	}
	return
}

func (r *Resolver) readPackageJSON(path string) (*packagejson.PackageJSON, bool) {
	pkg, err := r.pkgCache.GetOrLoad(path, func() (*packagejson.PackageJSON, error) {
		return packagejson.ParseFile(r.fsys, path)
	})
	if err != nil {
		return nil, false
	}
	return pkg, true
}

func (r *Resolver) isFile(path string) bool {
	info, err := r.fsys.Stat(path)
	return err == nil && !info.IsDir()
}

func (r *Resolver) isDir(path string) bool {
	info, err := r.fsys.Stat(path)
	return err == nil && info.IsDir()
}

// PackageName implements lang.PackageLookup. It returns the package-name
// segment of path below the nearest ancestor node_modules directory,
// skipping directory components ending in .dist-info or .egg-info, or the
// name of the first-party workspace package path falls under, or "" if
// neither applies.
func (r *Resolver) PackageName(path string) string {
	if name, ok := nodeModulesPackageName(path); ok {
		return name
	}
	for _, ws := range r.workspaces {
		if underDir(ws.Path, path) {
			return ws.Name
		}
	}
	return ""
}

func nodeModulesPackageName(path string) (string, bool) {
	slashed := filepath.ToSlash(path)
	marker := "/" + packageCacheDirName + "/"
	idx := strings.LastIndex(slashed, marker)
	if idx == -1 {
		return "", false
	}
	rest := slashed[idx+len(marker):]
	segments := strings.Split(rest, "/")

	i := 0
	for i < len(segments) {
		seg := segments[i]
		if strings.HasSuffix(seg, ".dist-info") || strings.HasSuffix(seg, ".egg-info") {
			i++
			continue
		}
		break
	}
	if i >= len(segments) {
		return "", false
	}

	if strings.HasPrefix(segments[i], "@") && i+1 < len(segments) {
		return segments[i] + "/" + segments[i+1], true
	}
	return segments[i], true
}

func underDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
