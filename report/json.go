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
package report

// traceJSON is the on-the-wire JSON shape for a trace report.
type traceJSON struct {
	Entry                  string             `json:"entry"`
	StaticWeightBytes      int64              `json:"staticWeightBytes"`
	StaticModuleCount      int                `json:"staticModuleCount"`
	DynamicOnlyWeightBytes int64              `json:"dynamicOnlyWeightBytes"`
	DynamicOnlyModuleCount int                `json:"dynamicOnlyModuleCount"`
	HeavyPackages          []heavyPackageJSON `json:"heavyPackages"`
	ModulesByCost          []moduleCostJSON   `json:"modulesByCost"`
	UnresolvedSpecifiers   []string           `json:"unresolvedSpecifiers,omitempty"`
	UnresolvableDynamic    int                `json:"unresolvableDynamic,omitempty"`
}

type heavyPackageJSON struct {
	Name      string   `json:"name"`
	SizeBytes int64    `json:"sizeBytes"`
	FileCount int      `json:"fileCount"`
	Chain     []string `json:"chain"`
}

type moduleCostJSON struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
}

// whyJSON is the on-the-wire JSON shape for a why/chain report.
type whyJSON struct {
	Package    string     `json:"package"`
	ChainCount int        `json:"chainCount"`
	HopCount   int        `json:"hopCount"`
	Chains     [][]string `json:"chains"`
}

type diffJSON struct {
	WeightA    int64    `json:"weightA"`
	WeightB    int64    `json:"weightB"`
	DeltaBytes int64    `json:"deltaBytes"`
	OnlyInA    []string `json:"onlyInA"`
	OnlyInB    []string `json:"onlyInB"`
	InBoth     []string `json:"inBoth"`
}

func (t Trace) toJSON() traceJSON {
	heavy := make([]heavyPackageJSON, len(t.HeavyPackages))
	for i, h := range t.HeavyPackages {
		heavy[i] = heavyPackageJSON{Name: h.Name, SizeBytes: h.SizeBytes, FileCount: h.FileCount, Chain: h.Chain}
	}
	modules := make([]moduleCostJSON, len(t.ModulesByCost))
	for i, m := range t.ModulesByCost {
		modules[i] = moduleCostJSON{Path: m.Path, SizeBytes: m.SizeBytes}
	}
	return traceJSON{
		Entry:                  t.Entry,
		StaticWeightBytes:      t.StaticWeightBytes,
		StaticModuleCount:      t.StaticModuleCount,
		DynamicOnlyWeightBytes: t.DynamicOnlyWeightBytes,
		DynamicOnlyModuleCount: t.DynamicOnlyModuleCount,
		HeavyPackages:          heavy,
		ModulesByCost:          modules,
		UnresolvedSpecifiers:   t.UnresolvedSpecifiers,
		UnresolvableDynamic:    t.UnresolvableDynamic,
	}
}

func (w Why) toJSON() whyJSON {
	return whyJSON{
		Package:    w.Package,
		ChainCount: len(w.Chains),
		HopCount:   w.HopCount,
		Chains:     w.Chains,
	}
}

func (d Diff) toJSON() diffJSON {
	return diffJSON{
		WeightA:    d.WeightA,
		WeightB:    d.WeightB,
		DeltaBytes: d.DeltaBytes,
		OnlyInA:    d.OnlyInA,
		OnlyInB:    d.OnlyInB,
		InBoth:     d.InBoth,
	}
}
