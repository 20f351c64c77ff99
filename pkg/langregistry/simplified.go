// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package langregistry

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"github.com/symbolgraph/sg/pkg/model"
)

// simplifiedDef is a dependency-free fallback LanguageDef: a line-oriented
// scanner that recognizes a small set of definition keywords without
// building an AST. It trades precision for universal availability, the
// way the teacher's ParserModeSimplified falls back when a Tree-sitter
// grammar is unavailable for a language.
type simplifiedDef struct {
	name       string
	extensions []string
	keywords   []string // declaration-introducing tokens, e.g. "def", "function", "fn"
}

// Simplified returns a line-scanning LanguageDef for languages with no
// dedicated grammar wired in. name identifies the language; extensions are
// the file suffixes it claims (with leading dot); keywords are the tokens
// that introduce a named definition on a line (e.g. "def" for Python).
func Simplified(name string, extensions, keywords []string) LanguageDef {
	return simplifiedDef{name: name, extensions: extensions, keywords: keywords}
}

func (d simplifiedDef) Name() string         { return d.name }
func (d simplifiedDef) Extensions() []string { return d.extensions }

func (d simplifiedDef) CreateParser(Settings) (Parser, error) {
	return &simplifiedParser{keywords: d.keywords}, nil
}

func (d simplifiedDef) CreateBehavior() LanguageBehavior { return simplifiedBehavior{} }

// simplifiedBehavior treats every import literally: no aliasing, no
// wildcard detection, since the simplified parser never distinguishes
// those shapes from raw text.
type simplifiedBehavior struct{}

func (simplifiedBehavior) BuildResolutionContext(imports []model.Import, modulePath string) ResolutionScope {
	scope := ResolutionScope{CanonicalImports: make(map[string]string, len(imports))}
	for _, imp := range imports {
		scope.CanonicalImports[imp.Path] = imp.Path
	}
	return scope
}

type simplifiedParser struct {
	keywords []string
	localSeq int
}

// Parse scans line by line for "<keyword> <name>" patterns. It never
// produces Unresolved call relationships: without a real grammar there is
// no reliable way to tell a call expression from any other identifier use,
// so RESOLVE simply sees no references to chase for these files.
func (p *simplifiedParser) Parse(ctx context.Context, path string, text []byte) (*ParsedFile, error) {
	out := &ParsedFile{}
	scanner := bufio.NewScanner(bytes.NewReader(text))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := -1
	var pendingDoc []string
	for scanner.Scan() {
		line++
		raw := scanner.Text()
		trimmed := strings.TrimSpace(raw)

		if isCommentLine(trimmed) {
			pendingDoc = append(pendingDoc, stripCommentMarker(trimmed))
			continue
		}
		if trimmed == "" {
			pendingDoc = nil
			continue
		}

		if name, ok := matchDefinition(trimmed, p.keywords); ok {
			p.localSeq++
			vis := model.VisibilityPrivate
			if name != "" && name[0] >= 'A' && name[0] <= 'Z' {
				vis = model.VisibilityPublic
			}
			out.Symbols = append(out.Symbols, model.Symbol{
				ID:         model.SymbolId(p.localSeq),
				Name:       name,
				Kind:       model.KindFunction,
				Visibility: vis,
				Signature:  trimmed,
				DocComment: strings.Join(pendingDoc, "\n"),
				Range:      model.Range{StartLine: line, EndLine: line},
			})
		}
		pendingDoc = nil
	}
	return out, scanner.Err()
}

func isCommentLine(s string) bool {
	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, "#")
}

func stripCommentMarker(s string) string {
	s = strings.TrimPrefix(s, "//")
	s = strings.TrimPrefix(s, "#")
	return strings.TrimSpace(s)
}

// matchDefinition reports whether line opens with one of keywords followed
// by an identifier, returning that identifier.
func matchDefinition(line string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if !strings.HasPrefix(line, kw+" ") {
			continue
		}
		rest := strings.TrimSpace(line[len(kw):])
		name := rest
		for i, r := range rest {
			if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
				name = rest[:i]
				break
			}
		}
		if name == "" {
			continue
		}
		return name, true
	}
	return "", false
}
