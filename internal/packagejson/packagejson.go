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

// Package packagejson provides parsing and export resolution for
// package.json files, and workspace-pattern discovery for monorepos.
package packagejson

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"bennypowers.dev/chainsaw/internal/fs"
)

// workspacesObjectFormat represents the object format for the workspaces
// field, used by yarn classic with nohoist: {"packages": [...], "nohoist": [...]}.
type workspacesObjectFormat struct {
	Packages []string `json:"packages"`
}

// ErrNotExported is returned when a subpath is not exported by package.json.
var ErrNotExported = errors.New("not exported by package.json")

// DefaultConditions is the default export condition priority.
var DefaultConditions = []string{"node", "import", "require", "default"}

// ResolveOptions configures how conditional exports are resolved.
type ResolveOptions struct {
	Conditions []string
}

// PackageJSON represents the subset of package.json relevant to resolution.
type PackageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Main            string            `json:"main,omitempty"`
	Module          string            `json:"module,omitempty"`
	Exports         any               `json:"exports,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	RawWorkspaces   json.RawMessage   `json:"workspaces,omitempty"`
}

// WorkspacePatterns returns the workspace glob patterns from the workspaces
// field. Handles both array format ["packages/*"] and object format
// {"packages": ["libs/*"]}.
func (pkg *PackageJSON) WorkspacePatterns() []string {
	if len(pkg.RawWorkspaces) == 0 {
		return nil
	}

	var patterns []string
	if err := json.Unmarshal(pkg.RawWorkspaces, &patterns); err == nil {
		return patterns
	}

	var obj workspacesObjectFormat
	if err := json.Unmarshal(pkg.RawWorkspaces, &obj); err == nil {
		return obj.Packages
	}

	return nil
}

// HasWorkspaces returns true if the package has workspace patterns defined.
func (pkg *PackageJSON) HasWorkspaces() bool {
	return len(pkg.WorkspacePatterns()) > 0
}

// Parse parses package.json data.
func Parse(data []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ParseFile parses a package.json file.
func ParseFile(fsys fs.FileSystem, path string) (*PackageJSON, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// ResolveExport resolves a subpath export to its target file path. subpath
// is "." for the main export or "./subpath" for subpath exports. Pass nil
// for opts to use DefaultConditions.
func (pkg *PackageJSON) ResolveExport(subpath string, opts *ResolveOptions) (string, error) {
	if pkg.Exports == nil {
		if pkg.Main != "" {
			if subpath == "." {
				return trimDotSlash(pkg.Main), nil
			}
			return "", ErrNotExported
		}
		return "", ErrNotExported
	}

	if exportStr, ok := pkg.Exports.(string); ok {
		if subpath == "." {
			return trimDotSlash(exportStr), nil
		}
		return "", ErrNotExported
	}

	exportsMap, ok := pkg.Exports.(map[string]any)
	if !ok {
		return "", ErrNotExported
	}

	hasSubpaths := false
	for key := range exportsMap {
		if strings.HasPrefix(key, ".") {
			hasSubpaths = true
			break
		}
	}

	if !hasSubpaths {
		if subpath == "." {
			return resolveConditionsWithOpts(exportsMap, opts)
		}
		return "", ErrNotExported
	}

	exportValue, ok := exportsMap[subpath]
	if !ok {
		return "", ErrNotExported
	}

	return resolveExportValueWithOpts(exportValue, opts)
}

func resolveExportValueWithOpts(value any, opts *ResolveOptions) (string, error) {
	switch v := value.(type) {
	case string:
		return trimDotSlash(v), nil
	case map[string]any:
		return resolveConditionsWithOpts(v, opts)
	}
	return "", ErrNotExported
}

func resolveConditionsWithOpts(conditions map[string]any, opts *ResolveOptions) (string, error) {
	conditionList := DefaultConditions
	if opts != nil && len(opts.Conditions) > 0 {
		conditionList = opts.Conditions
	}

	for _, cond := range conditionList {
		value, ok := conditions[cond]
		if !ok {
			continue
		}
		if valueMap, ok := value.(map[string]any); ok {
			if result, err := resolveConditionsWithOpts(valueMap, opts); err == nil {
				return result, nil
			}
			continue
		}
		if valueStr, ok := value.(string); ok {
			return trimDotSlash(valueStr), nil
		}
	}

	return "", ErrNotExported
}

func trimDotSlash(path string) string {
	return strings.TrimPrefix(path, "./")
}

// WorkspacePackage represents a package in a monorepo workspace.
type WorkspacePackage struct {
	Name string // Package name from package.json
	Path string // Absolute path to package directory
}

// DiscoverWorkspacePackages finds all workspace packages declared by the
// root package.json's workspaces field, expanding doublestar glob patterns
// (e.g. "packages/*", "libs/**") rather than only a trailing "/*" segment.
func DiscoverWorkspacePackages(fsys fs.FileSystem, rootDir string) ([]WorkspacePackage, error) {
	rootPkgPath := filepath.Join(rootDir, "package.json")
	rootPkg, err := ParseFile(fsys, rootPkgPath)
	if err != nil {
		return nil, err
	}

	patterns := rootPkg.WorkspacePatterns()
	if len(patterns) == 0 {
		return nil, nil
	}

	var packages []WorkspacePackage
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		dirs, err := expandWorkspacePattern(fsys, rootDir, pattern)
		if err != nil {
			continue
		}
		for _, dir := range dirs {
			if seen[dir] {
				continue
			}
			pkg, err := parseWorkspacePackage(fsys, dir)
			if err != nil {
				continue
			}
			seen[dir] = true
			packages = append(packages, pkg)
		}
	}

	return packages, nil
}

// expandWorkspacePattern expands a workspace glob pattern, relative to
// rootDir, to matching directories using doublestar so "**" and mid-pattern
// wildcards work, not just a trailing "/*".
func expandWorkspacePattern(fsys fs.FileSystem, rootDir, pattern string) ([]string, error) {
	pattern = strings.TrimSuffix(pattern, "/")

	if !strings.ContainsAny(pattern, "*?[") {
		fullPath := filepath.Join(rootDir, pattern)
		if fsys.Exists(fullPath) {
			return []string{fullPath}, nil
		}
		return nil, nil
	}

	// fs.FileSystem.Open has the exact signature io/fs.FS requires, so fsys
	// can be passed directly to doublestar without an adapter — but Glob
	// wants patterns relative to an fs.FS root, and our FileSystem is rooted
	// at "/", so join rootDir into the pattern and strip the leading slash.
	rooted := strings.TrimPrefix(filepath.ToSlash(filepath.Join(rootDir, pattern)), "/")
	matches, err := doublestar.Glob(fsys, rooted)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, m := range matches {
		full := "/" + m
		if fsys.Exists(full) {
			dirs = append(dirs, full)
		}
	}
	return dirs, nil
}

func parseWorkspacePackage(fsys fs.FileSystem, dir string) (WorkspacePackage, error) {
	pkgPath := filepath.Join(dir, "package.json")
	pkg, err := ParseFile(fsys, pkgPath)
	if err != nil {
		return WorkspacePackage{}, err
	}
	if pkg.Name == "" {
		return WorkspacePackage{}, errors.New("package at " + dir + " has no name")
	}
	return WorkspacePackage{Name: pkg.Name, Path: dir}, nil
}
