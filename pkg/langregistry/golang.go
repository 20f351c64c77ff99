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
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/symbolgraph/sg/pkg/model"
)

// goDef is the Go LanguageDef, backed by smacker/go-tree-sitter's grammar.
type goDef struct{}

// Go returns the built-in Go LanguageDef.
func Go() LanguageDef { return goDef{} }

func (goDef) Name() string         { return "go" }
func (goDef) Extensions() []string { return []string{".go"} }

func (goDef) CreateParser(s Settings) (Parser, error) {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	maxSize := s.MaxTextSize
	if maxSize <= 0 {
		maxSize = 64 * 1024
	}
	return &goParser{sitter: p, maxCodeTextSize: maxSize}, nil
}

func (goDef) CreateBehavior() LanguageBehavior { return goBehavior{} }

// goBehavior canonicalizes Go import aliases: the default alias for an
// unaliased import is the last path component, mirroring the resolver's
// fileImports construction.
type goBehavior struct{}

func (goBehavior) BuildResolutionContext(imports []model.Import, modulePath string) ResolutionScope {
	scope := ResolutionScope{CanonicalImports: make(map[string]string, len(imports))}
	for _, imp := range imports {
		if imp.IsWildcard {
			scope.WildcardImports = append(scope.WildcardImports, imp.Path)
			continue
		}
		alias := imp.Alias
		if alias == "" {
			alias = lastPathComponent(imp.Path)
		}
		if alias == "_" {
			continue
		}
		scope.CanonicalImports[alias] = imp.Path
	}
	return scope
}

func lastPathComponent(p string) string {
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// goParser walks a tree-sitter parse tree for Go source, extracting
// function/method/type definitions, import statements, and unresolved
// call references within function bodies.
type goParser struct {
	sitter          *sitter.Parser
	maxCodeTextSize int64
	truncatedCount  int
	localSeq        int
}

func (p *goParser) Parse(ctx context.Context, path string, text []byte) (*ParsedFile, error) {
	tree, err := p.sitter.ParseCtx(ctx, nil, text)
	if err != nil {
		return nil, fmt.Errorf("langregistry: go parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	out := &ParsedFile{}

	modulePath := strings.TrimSuffix(path, "/"+lastPathComponent(path))
	funcNameToLocal := make(map[string]int) // simple name -> index into out.Symbols

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "import_declaration":
			out.Imports = append(out.Imports, extractGoImports(n, text)...)
		case "function_declaration":
			sym := p.extractFunction(n, text, path, modulePath)
			if sym != nil {
				out.Symbols = append(out.Symbols, *sym)
				funcNameToLocal[sym.Name] = len(out.Symbols) - 1
				out.Unresolved = append(out.Unresolved, p.extractCalls(n, text, sym.ID)...)
			}
		case "method_declaration":
			sym := p.extractMethod(n, text, path, modulePath)
			if sym != nil {
				out.Symbols = append(out.Symbols, *sym)
				out.Unresolved = append(out.Unresolved, p.extractCalls(n, text, sym.ID)...)
			}
		case "type_declaration":
			out.Symbols = append(out.Symbols, p.extractTypes(n, text, path, modulePath)...)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out, nil
}

// nextLocalID assigns a per-file placeholder SymbolId; COLLECT replaces
// these with real monotonic IDs, so the value here only needs to be
// unique within one ParsedFile.
func (p *goParser) nextLocalID() model.SymbolId {
	p.localSeq++
	return model.SymbolId(p.localSeq)
}

func (p *goParser) extractFunction(n *sitter.Node, content []byte, path, modulePath string) *model.Symbol {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := string(content[nameNode.StartByte():nameNode.EndByte()])
	sig := goSignature(n, content, "func "+name)
	return p.toSymbol(n, content, path, modulePath, name, sig, model.KindFunction)
}

func (p *goParser) extractMethod(n *sitter.Node, content []byte, path, modulePath string) *model.Symbol {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	methodName := string(content[nameNode.StartByte():nameNode.EndByte()])
	receiverType := ""
	if recv := n.ChildByFieldName("receiver"); recv != nil {
		receiverType = extractReceiverType(recv, content)
	}
	full := methodName
	if receiverType != "" {
		full = receiverType + "." + methodName
	}
	recvText := ""
	if recv := n.ChildByFieldName("receiver"); recv != nil {
		recvText = string(content[recv.StartByte():recv.EndByte()])
	}
	sig := goSignature(n, content, "func "+recvText+" "+methodName)
	return p.toSymbol(n, content, path, modulePath, full, sig, model.KindMethod)
}

func goSignature(n *sitter.Node, content []byte, prefix string) string {
	var b strings.Builder
	b.WriteString(prefix)
	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		b.WriteString(string(content[tp.StartByte():tp.EndByte()]))
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		b.WriteString(string(content[params.StartByte():params.EndByte()]))
	}
	if result := n.ChildByFieldName("result"); result != nil {
		b.WriteString(" ")
		b.WriteString(string(content[result.StartByte():result.EndByte()]))
	}
	return b.String()
}

func (p *goParser) toSymbol(n *sitter.Node, content []byte, path, modulePath, name, sig string, kind model.SymbolKind) *model.Symbol {
	rng := model.Range{
		StartLine: int(n.StartPoint().Row),
		StartCol:  int(n.StartPoint().Column),
		EndLine:   int(n.EndPoint().Row),
		EndCol:    int(n.EndPoint().Column),
	}
	vis := model.VisibilityPrivate
	simple := name
	if idx := strings.LastIndex(simple, "."); idx >= 0 {
		simple = simple[idx+1:]
	}
	if simple != "" && simple[0] >= 'A' && simple[0] <= 'Z' {
		vis = model.VisibilityPublic
	}
	return &model.Symbol{
		ID:         p.nextLocalID(),
		Name:       name,
		Kind:       kind,
		Visibility: vis,
		Signature:  truncate(sig, p.maxCodeTextSize, &p.truncatedCount),
		DocComment: precedingComment(n, content),
		Range:      rng,
		ModulePath: modulePath,
		LanguageID: "go",
	}
}

// precedingComment collects contiguous `//` line comments immediately
// above a declaration, matching godoc's own convention for doc comments.
func precedingComment(n *sitter.Node, content []byte) string {
	var lines []string
	cur := n.PrevSibling()
	for cur != nil && cur.Type() == "comment" {
		text := string(content[cur.StartByte():cur.EndByte()])
		lines = append([]string{strings.TrimPrefix(strings.TrimSpace(text), "//")}, lines...)
		cur = cur.PrevSibling()
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func truncate(s string, max int64, counter *int) string {
	if max <= 0 || int64(len(s)) <= max {
		return s
	}
	*counter++
	return s[:max]
}

func extractReceiverType(receiver *sitter.Node, content []byte) string {
	for i := 0; i < int(receiver.ChildCount()); i++ {
		child := receiver.Child(i)
		if child.Type() == "parameter_declaration" {
			if t := child.ChildByFieldName("type"); t != nil {
				return baseTypeName(t, content)
			}
		}
	}
	return ""
}

func baseTypeName(t *sitter.Node, content []byte) string {
	switch t.Type() {
	case "pointer_type":
		for i := 0; i < int(t.ChildCount()); i++ {
			child := t.Child(i)
			if child.Type() != "*" {
				return baseTypeName(child, content)
			}
		}
	case "generic_type":
		if name := t.ChildByFieldName("type"); name != nil {
			return string(content[name.StartByte():name.EndByte()])
		}
	case "type_identifier":
		return string(content[t.StartByte():t.EndByte()])
	}
	name := string(content[t.StartByte():t.EndByte()])
	name = strings.TrimPrefix(name, "*")
	if idx := strings.Index(name, "["); idx > 0 {
		name = name[:idx]
	}
	return name
}

func (p *goParser) extractTypes(n *sitter.Node, content []byte, path, modulePath string) []model.Symbol {
	var out []model.Symbol
	for i := 0; i < int(n.ChildCount()); i++ {
		spec := n.Child(i)
		if spec.Type() != "type_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := string(content[nameNode.StartByte():nameNode.EndByte()])
		kind := model.KindType
		if t := spec.ChildByFieldName("type"); t != nil && t.Type() == "interface_type" {
			kind = model.KindInterface
		}
		sym := p.toSymbol(spec, content, path, modulePath, name, "type "+name, kind)
		out = append(out, *sym)
	}
	return out
}

func (p *goParser) extractCalls(fn *sitter.Node, content []byte, callerID model.SymbolId) []model.UnresolvedRelationship {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []model.UnresolvedRelationship
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call_expression" {
			if fnNode := n.ChildByFieldName("function"); fnNode != nil {
				name := calleeName(fnNode, content)
				if name != "" {
					out = append(out, model.UnresolvedRelationship{
						FromID:     callerID,
						Kind:       model.RelCalls,
						TargetName: name,
						Range: model.Range{
							StartLine: int(n.StartPoint().Row),
							StartCol:  int(n.StartPoint().Column),
							EndLine:   int(n.EndPoint().Row),
							EndCol:    int(n.EndPoint().Column),
						},
					})
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
	return out
}

// calleeName extracts the textual callee of a call_expression: "Foo",
// "pkg.Foo", or the last segment of a longer selector chain ("a.b.Foo").
func calleeName(n *sitter.Node, content []byte) string {
	if n.Type() == "identifier" {
		return string(content[n.StartByte():n.EndByte()])
	}
	if n.Type() == "selector_expression" {
		operand := n.ChildByFieldName("operand")
		field := n.ChildByFieldName("field")
		if field == nil {
			return ""
		}
		fieldName := string(content[field.StartByte():field.EndByte()])
		if operand != nil && operand.Type() == "identifier" {
			return string(content[operand.StartByte():operand.EndByte()]) + "." + fieldName
		}
		return fieldName
	}
	return ""
}

func extractGoImports(n *sitter.Node, content []byte) []model.Import {
	var out []model.Import
	var collectSpec func(spec *sitter.Node)
	collectSpec = func(spec *sitter.Node) {
		if spec.Type() != "import_spec" {
			return
		}
		pathNode := spec.ChildByFieldName("path")
		if pathNode == nil {
			return
		}
		path := strings.Trim(string(content[pathNode.StartByte():pathNode.EndByte()]), `"`)
		alias := ""
		wildcard := false
		if nameNode := spec.ChildByFieldName("name"); nameNode != nil {
			alias = string(content[nameNode.StartByte():nameNode.EndByte()])
			wildcard = alias == "."
		}
		out = append(out, model.Import{
			Path:       path,
			Alias:      alias,
			IsWildcard: wildcard,
			Range: model.Range{
				StartLine: int(spec.StartPoint().Row),
				EndLine:   int(spec.EndPoint().Row),
			},
		})
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "import_spec":
			collectSpec(child)
		case "import_spec_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				collectSpec(child.Child(j))
			}
		}
	}
	return out
}
