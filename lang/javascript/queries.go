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
	"embed"
	"fmt"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsTypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

//go:embed queries/*/*.scm
var queryFiles embed.FS

// grammars holds the pre-initialized tree-sitter grammars this extractor
// can select between, keyed the same way file extension selects syntax by
// extension: TS without JSX, TS with JSX, JS with JSX ("TSX" covers both
// since the TSX grammar is JSX-aware TypeScript).
var grammars = struct {
	typescript *ts.Language
	tsx        *ts.Language
}{
	ts.NewLanguage(tsTypescript.LanguageTypescript()),
	ts.NewLanguage(tsTypescript.LanguageTSX()),
}

// parserPools holds one sync.Pool of parsers per grammar, so concurrent
// builder workers never share a *ts.Parser.
var parserPools = struct {
	typescript sync.Pool
	tsx        sync.Pool
}{
	typescript: sync.Pool{New: func() any {
		p := ts.NewParser()
		if err := p.SetLanguage(grammars.typescript); err != nil {
			panic("failed to set typescript language: " + err.Error())
		}
		return p
	}},
	tsx: sync.Pool{New: func() any {
		p := ts.NewParser()
		if err := p.SetLanguage(grammars.tsx); err != nil {
			panic("failed to set tsx language: " + err.Error())
		}
		return p
	}},
}

func getParser(useTSX bool) *ts.Parser {
	if useTSX {
		return parserPools.tsx.Get().(*ts.Parser)
	}
	return parserPools.typescript.Get().(*ts.Parser)
}

func putParser(p *ts.Parser, useTSX bool) {
	p.Reset()
	if useTSX {
		parserPools.tsx.Put(p)
	} else {
		parserPools.typescript.Put(p)
	}
}

// Queries must be compiled against the same language they'll be run
// against, even when (as here) two grammars share the same node vocabulary
// for the patterns we care about — so chainsaw keeps one compiled query per
// grammar rather than trying to share one across both.
var (
	queriesOnce sync.Once
	queriesErr  error
	importsTS   *ts.Query
	importsTSX  *ts.Query
)

func getImportsQuery(useTSX bool) (*ts.Query, error) {
	queriesOnce.Do(func() {
		data, err := queryFiles.ReadFile("queries/typescript/imports.scm")
		if err != nil {
			queriesErr = fmt.Errorf("reading embedded imports query: %w", err)
			return
		}
		importsTS, err = ts.NewQuery(grammars.typescript, string(data))
		if err != nil {
			queriesErr = fmt.Errorf("compiling imports query (typescript): %w", err)
			return
		}
		importsTSX, err = ts.NewQuery(grammars.tsx, string(data))
		if err != nil {
			queriesErr = fmt.Errorf("compiling imports query (tsx): %w", err)
			return
		}
	})
	if queriesErr != nil {
		return nil, queriesErr
	}
	if useTSX {
		return importsTSX, nil
	}
	return importsTS, nil
}
