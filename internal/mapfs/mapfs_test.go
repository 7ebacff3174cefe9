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
package mapfs

import "testing"

func TestAddFileAndReadFile(t *testing.T) {
	mfs := New()
	mfs.AddFile("/src/a.js", "export const a = 1;", 0644)

	got, err := mfs.ReadFile("/src/a.js")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "export const a = 1;" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestTouchAdvancesMtimeStrictly(t *testing.T) {
	mfs := New()
	mfs.AddFile("/src/a.js", "v1", 0644)
	before, err := mfs.Stat("/src/a.js")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	mfs.Touch("/src/a.js", "v2")
	after, err := mfs.Stat("/src/a.js")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	if !after.ModTime().After(before.ModTime()) {
		t.Fatalf("Touch must strictly advance mtime, got before=%v after=%v", before.ModTime(), after.ModTime())
	}
	content, _ := mfs.ReadFile("/src/a.js")
	if string(content) != "v2" {
		t.Fatalf("expected Touch to rewrite content, got %q", content)
	}

	// Touching again without an intervening wall-clock tick must still
	// advance mtime, since invalidation depends on strict ordering.
	mfs.Touch("/src/a.js", "v3")
	again, _ := mfs.Stat("/src/a.js")
	if !again.ModTime().After(after.ModTime()) {
		t.Fatalf("a second Touch must advance mtime again")
	}
}

func TestRenameMovesContentAndRemovesOldPath(t *testing.T) {
	mfs := New()
	mfs.AddFile("/tmp/cache.tmp", "payload", 0644)

	if err := mfs.Rename("/tmp/cache.tmp", "/tmp/cache"); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	if mfs.Exists("/tmp/cache.tmp") {
		t.Fatalf("old path must not exist after rename")
	}
	got, err := mfs.ReadFile("/tmp/cache")
	if err != nil {
		t.Fatalf("ReadFile new path: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("expected content to survive rename, got %q", got)
	}
}

func TestRenameMissingSourceErrors(t *testing.T) {
	mfs := New()
	if err := mfs.Rename("/does/not/exist", "/dest"); err == nil {
		t.Fatalf("expected an error renaming a nonexistent path")
	}
}

func TestExistsMatchesDirectoryPrefix(t *testing.T) {
	mfs := New()
	mfs.AddFile("/project/src/index.ts", "", 0644)

	if !mfs.Exists("/project/src") {
		t.Fatalf("Exists should report a directory true when it contains files")
	}
	if mfs.Exists("/project/other") {
		t.Fatalf("Exists should report false for an unrelated path")
	}
}
