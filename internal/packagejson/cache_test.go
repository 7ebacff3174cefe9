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
package packagejson

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestMemoryCacheGetSetInvalidate(t *testing.T) {
	c := NewMemoryCache()
	if _, ok := c.Get("/a/package.json"); ok {
		t.Fatalf("expected a miss on an empty cache")
	}

	pkg := &PackageJSON{Name: "a"}
	c.Set("/a/package.json", pkg)
	got, ok := c.Get("/a/package.json")
	if !ok || got != pkg {
		t.Fatalf("expected Get to return the stored entry")
	}

	c.Invalidate("/a/package.json")
	if _, ok := c.Get("/a/package.json"); ok {
		t.Fatalf("expected a miss after Invalidate")
	}
}

func TestGetOrLoadRunsLoaderOnce(t *testing.T) {
	c := NewMemoryCache()
	var calls int32

	loader := func() (*PackageJSON, error) {
		atomic.AddInt32(&calls, 1)
		return &PackageJSON{Name: "concurrent"}, nil
	}

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			pkg, err := c.GetOrLoad("/p/package.json", loader)
			if err != nil {
				t.Errorf("GetOrLoad: %v", err)
			}
			if pkg == nil || pkg.Name != "concurrent" {
				t.Errorf("unexpected package from GetOrLoad: %+v", pkg)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected the loader to run exactly once across %d concurrent callers, ran %d times", n, got)
	}
}

func TestGetOrLoadPropagatesLoaderError(t *testing.T) {
	c := NewMemoryCache()
	wantErr := errLoader{}
	_, err := c.GetOrLoad("/broken/package.json", func() (*PackageJSON, error) {
		return nil, wantErr
	})
	if err != wantErr {
		t.Fatalf("expected loader error to propagate, got %v", err)
	}
	if _, ok := c.Get("/broken/package.json"); ok {
		t.Fatalf("a failed load must not populate the cache")
	}
}

type errLoader struct{}

func (errLoader) Error() string { return "load failed" }
