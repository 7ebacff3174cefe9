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

// Package report renders trace/why/diff results, either as pterm-styled
// human output or as JSON shapes for scripting.
package report

// Trace is the report-layer view of a trace query result, independent of
// the query package's internal module-id representation.
type Trace struct {
	Entry                  string
	StaticWeightBytes      int64
	StaticModuleCount      int
	DynamicOnlyWeightBytes int64
	DynamicOnlyModuleCount int
	HeavyPackages          []HeavyPackage
	ModulesByCost          []ModuleCost
	UnresolvedSpecifiers   []string
	UnresolvableDynamic    int
}

// HeavyPackage is one row of the heavy-packages list.
type HeavyPackage struct {
	Name      string
	SizeBytes int64
	FileCount int
	Chain     []string // relative paths or package names, entry first
}

// ModuleCost is one entry in the modules-by-cost list.
type ModuleCost struct {
	Path      string
	SizeBytes int64
}

// Why is the report-layer view of an all-shortest-chains query result.
type Why struct {
	Package  string
	HopCount int
	Chains   [][]string // each a sequence of relative paths or package names
}

// Diff is the report-layer view of a trace-diff query result.
type Diff struct {
	WeightA, WeightB int64
	DeltaBytes       int64
	OnlyInA          []string
	OnlyInB          []string
	InBoth           []string
}
