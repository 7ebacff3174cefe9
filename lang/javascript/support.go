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
	"bennypowers.dev/chainsaw/internal/fs"
	"bennypowers.dev/chainsaw/internal/packagejson"
)

// Support bundles Extractor and Resolver into one value satisfying
// lang.Support — the builder is generic over that interface and never
// names this package directly.
type Support struct {
	*Extractor
	*Resolver
}

// NewSupport returns a ready-to-use Support rooted at fsys.
func NewSupport(fsys fs.FileSystem) *Support {
	return &Support{
		Extractor: NewExtractor(),
		Resolver:  NewResolver(fsys),
	}
}

// WithWorkspaces attaches the project's declared workspace packages.
func (s *Support) WithWorkspaces(workspaces []packagejson.WorkspacePackage) *Support {
	s.Resolver = s.Resolver.WithWorkspaces(workspaces)
	return s
}
