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
package graph

import "testing"

func TestSnapshotRoundTrip(t *testing.T) {
	g := NewModuleGraph()
	a := g.AddModule("/a.js", 10, "")
	b := g.AddModule("/b.js", 20, "lit")
	g.AddEdge(a, b, Static, "lit")
	g.AddEdge(a, b, Dynamic, "lit")

	modules, edges := g.Snapshot()
	g2 := FromSnapshot(modules, edges)

	if g2.ModuleCount() != g.ModuleCount() || g2.EdgeCount() != g.EdgeCount() {
		t.Fatalf("round-tripped graph has different shape: modules %d/%d edges %d/%d",
			g2.ModuleCount(), g.ModuleCount(), g2.EdgeCount(), g.EdgeCount())
	}
	if id, ok := g2.PathToID("/b.js"); !ok || id != b {
		t.Fatalf("expected /b.js to round-trip to id %d, got %d, %v", b, id, ok)
	}
	if g2.Module(b).Package != "lit" {
		t.Fatalf("expected package name to survive round-trip, got %q", g2.Module(b).Package)
	}
	out := g2.OutgoingEdges(a)
	if len(out) != 2 {
		t.Fatalf("expected both edges to survive round-trip, got %d", len(out))
	}
}

func TestFromSnapshotDiscardsIncompatibleData(t *testing.T) {
	// A module list out of order relative to its own ids can't be
	// faithfully reconstructed through AddModule's interning; FromSnapshot
	// must not silently fabricate a corrupt graph.
	modules := []Module{
		{ID: 1, Path: "/b.js"},
		{ID: 0, Path: "/a.js"},
	}
	g := FromSnapshot(modules, nil)
	if g.ModuleCount() != 0 {
		t.Fatalf("expected incompatible snapshot data to be discarded, got %d modules", g.ModuleCount())
	}
}
