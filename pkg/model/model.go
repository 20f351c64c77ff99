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

// Package model defines the value types shared by every stage of the
// indexing pipeline and by the query facade: file and symbol identifiers,
// ranges, symbols, imports, and the two relationship shapes (unresolved,
// produced during Phase 1, and resolved, produced during Phase 2).
package model

import "fmt"

// FileId uniquely identifies one indexed source file. Zero means "none".
// Values are assigned by the COLLECT stage from a monotonic counter
// persisted in the document store and never reused, even across a file's
// deletion and re-addition under a different FileId.
type FileId uint64

// SymbolId uniquely identifies one indexed symbol. Zero means "none".
// Assignment and persistence rules mirror FileId.
type SymbolId uint64

// String implements fmt.Stringer for log-friendly formatting.
func (id FileId) String() string { return fmt.Sprintf("file#%d", uint64(id)) }

// String implements fmt.Stringer for log-friendly formatting.
func (id SymbolId) String() string { return fmt.Sprintf("sym#%d", uint64(id)) }

// Valid reports whether id is a real identifier (non-zero).
func (id FileId) Valid() bool { return id != 0 }

// Valid reports whether id is a real identifier (non-zero).
func (id SymbolId) Valid() bool { return id != 0 }

// Range locates a span of source text by 0-based line/column.
type Range struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// SymbolKind classifies what a Symbol represents.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindType      SymbolKind = "type"
	KindInterface SymbolKind = "interface"
	KindConstant  SymbolKind = "constant"
	KindVariable  SymbolKind = "variable"
	KindModule    SymbolKind = "module"
)

// Visibility records whether a symbol is exported from its defining module.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// RelationshipKind classifies an edge between two symbols.
type RelationshipKind string

const (
	RelCalls    RelationshipKind = "calls"
	RelDefines  RelationshipKind = "defines"
	RelUses     RelationshipKind = "uses"
	RelImplements RelationshipKind = "implements"
	RelExtends  RelationshipKind = "extends"
)

// Symbol is one indexed definition: a function, type, constant, and so on.
type Symbol struct {
	ID          SymbolId
	FileID      FileId
	Name        string
	Kind        SymbolKind
	Visibility  Visibility
	Signature   string
	DocComment  string
	Range       Range
	ModulePath  string // dotted/slashed container path, e.g. "pkg/engine"
	LanguageID  string

	// Deprecated and Attributes carry language-level annotations attached
	// to a definition (Python decorators, Rust attributes, Go build tags
	// observed on the symbol). Zero value means "none observed".
	Deprecated bool
	Attributes []string
}

// Import is one raw import/use statement observed in a file, prior to
// alias canonicalization by a LanguageBehavior.
type Import struct {
	FileID     FileId
	Path       string
	Alias      string
	IsWildcard bool
	Range      Range
}

// UnresolvedRelationship is produced by PARSE/COLLECT: a reference by name
// from a known symbol (or bare file scope) to a callee/type name that has
// not yet been matched to a SymbolId.
type UnresolvedRelationship struct {
	FromID      SymbolId
	FromFileID  FileId
	Kind        RelationshipKind
	TargetName  string
	Range       Range
	CallContext string // short snippet around the reference site, optional
}

// Relationship is a fully resolved edge between two known symbols.
type Relationship struct {
	FromID      SymbolId
	ToID        SymbolId
	Kind        RelationshipKind
	Range       Range
	CallContext string
}

// FileRegistration is the per-file bookkeeping record stored alongside a
// file's symbols: its identifier, path, content hash, and language.
type FileRegistration struct {
	ID          FileId
	Path        string
	ContentHash uint64
	LanguageID  string
	SymbolCount int
}
