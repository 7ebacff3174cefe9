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

// Package mapfs provides an in-memory filesystem implementation for
// testing, with explicit control over each file's mtime — the cache
// invalidation tests need to advance a single
// file's mtime without touching the others.
package mapfs

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"testing/fstest"
	"time"
)

// MapFileSystem implements fs.FileSystem using an in-memory fstest.MapFS.
type MapFileSystem struct {
	mu      sync.RWMutex
	mapFS   fstest.MapFS
	tempDir string
	modTime time.Time
}

// New creates a new in-memory filesystem for testing.
func New() *MapFileSystem {
	return &MapFileSystem{
		mapFS:   make(fstest.MapFS),
		tempDir: "/tmp",
		modTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// AddFile adds a file to the in-memory filesystem, stamped with the
// filesystem's current default mtime.
func (mfs *MapFileSystem) AddFile(p string, content string, mode fs.FileMode) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	p = mfs.cleanPath(p)
	mfs.mapFS[p] = &fstest.MapFile{
		Data:    []byte(content),
		Mode:    mode,
		ModTime: mfs.modTime,
	}
}

// AddDir adds a directory to the in-memory filesystem.
func (mfs *MapFileSystem) AddDir(p string, mode fs.FileMode) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	p = mfs.cleanPath(p)
	keepFile := p + "/.keep"
	mfs.mapFS[keepFile] = &fstest.MapFile{
		Data:    []byte(""),
		Mode:    mode.Perm(),
		ModTime: mfs.modTime,
	}
}

// Touch rewrites a file's content and advances its mtime, simulating an
// edit between two builds. The new mtime is always strictly later than the
// previous one, even if called repeatedly within the same wall-clock tick.
func (mfs *MapFileSystem) Touch(p string, content string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	p = mfs.cleanPath(p)
	mfs.modTime = mfs.modTime.Add(time.Second)
	mfs.mapFS[p] = &fstest.MapFile{
		Data:    []byte(content),
		Mode:    0644,
		ModTime: mfs.modTime,
	}
}

// WriteFile implements fs.FileSystem.
func (mfs *MapFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = mfs.cleanPath(name)

	if err := mfs.ensureParentDirLocked(name); err != nil {
		return err
	}

	mfs.modTime = mfs.modTime.Add(time.Second)
	mfs.mapFS[name] = &fstest.MapFile{
		Data:    append([]byte(nil), data...),
		Mode:    perm,
		ModTime: mfs.modTime,
	}

	return nil
}

// ReadFile implements fs.FileSystem.
func (mfs *MapFileSystem) ReadFile(name string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return fs.ReadFile(mfs.mapFS, mfs.cleanPath(name))
}

// Remove implements fs.FileSystem.
func (mfs *MapFileSystem) Remove(name string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = mfs.cleanPath(name)

	if _, exists := mfs.mapFS[name]; !exists {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}

	delete(mfs.mapFS, name)
	return nil
}

// Rename implements fs.FileSystem.
func (mfs *MapFileSystem) Rename(oldpath, newpath string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	oldpath = mfs.cleanPath(oldpath)
	newpath = mfs.cleanPath(newpath)

	file, exists := mfs.mapFS[oldpath]
	if !exists {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	delete(mfs.mapFS, oldpath)
	mfs.mapFS[newpath] = file
	return nil
}

// MkdirAll implements fs.FileSystem.
func (mfs *MapFileSystem) MkdirAll(p string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	p = mfs.cleanPath(p)
	keepFile := p + "/.keep"

	if file, exists := mfs.mapFS[p]; exists && !file.Mode.IsDir() {
		return &fs.PathError{Op: "mkdir", Path: p, Err: fmt.Errorf("not a directory")}
	}

	mfs.mapFS[keepFile] = &fstest.MapFile{
		Data:    []byte(""),
		Mode:    perm.Perm(),
		ModTime: mfs.modTime,
	}

	return nil
}

// TempDir implements fs.FileSystem.
func (mfs *MapFileSystem) TempDir() string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.tempDir
}

// Stat implements fs.FileSystem.
func (mfs *MapFileSystem) Stat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return fs.Stat(mfs.mapFS, mfs.cleanPath(name))
}

// Exists implements fs.FileSystem.
func (mfs *MapFileSystem) Exists(p string) bool {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	p = mfs.cleanPath(p)

	if _, exists := mfs.mapFS[p]; exists {
		return true
	}

	prefix := p + "/"
	for filePath := range mfs.mapFS {
		if strings.HasPrefix(filePath, prefix) {
			return true
		}
	}

	return false
}

// ReadDir implements fs.FileSystem.
func (mfs *MapFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return fs.ReadDir(mfs.mapFS, mfs.cleanPath(name))
}

// Open implements fs.FileSystem.
func (mfs *MapFileSystem) Open(name string) (fs.File, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return mfs.mapFS.Open(mfs.cleanPath(name))
}

func (mfs *MapFileSystem) cleanPath(p string) string {
	cleaned := path.Clean(p)
	if !path.IsAbs(cleaned) {
		cleaned = "/" + cleaned
	}
	return strings.TrimPrefix(cleaned, "/")
}

func (mfs *MapFileSystem) ensureParentDirLocked(filePath string) error {
	dir := path.Dir(filePath)
	if dir == "." || dir == "/" || dir == "" {
		return nil
	}

	if file, exists := mfs.mapFS[dir]; exists && !file.Mode.IsDir() {
		return &fs.PathError{Op: "open", Path: filePath, Err: fmt.Errorf("not a directory")}
	}

	return nil
}
