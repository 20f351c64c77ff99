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

package docstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/symbolgraph/sg/pkg/model"
)

// symbolDoc/relationshipDoc/fileInfoDoc are the flattened shapes actually
// handed to Bleve; docID encodes the logical key so lookups by ID are a
// direct Get rather than a search.

func symbolDocID(id model.SymbolId) string { return fmt.Sprintf("symbol:%d", uint64(id)) }
func fileDocID(id model.FileId) string     { return fmt.Sprintf("file:%d", uint64(id)) }
func relDocID(from model.SymbolId, kind model.RelationshipKind, to model.SymbolId) string {
	return fmt.Sprintf("rel:%d:%s:%d", uint64(from), kind, uint64(to))
}

type symbolDoc struct {
	Type       string `json:"_type"`
	SymbolID   uint64 `json:"symbol_id"`
	FileID     uint64 `json:"file_id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Visibility string `json:"visibility"`
	Signature  string `json:"signature"`
	DocComment string `json:"doc_comment"`
	ModulePath string `json:"module_path"`
	LanguageID string `json:"language_id"`
	StartLine  int    `json:"start_line"`
	StartCol   int    `json:"start_col"`
	EndLine    int    `json:"end_line"`
	EndCol     int    `json:"end_col"`
	Deprecated bool   `json:"deprecated"`
}

func newSymbolDoc(sym model.Symbol) symbolDoc {
	return symbolDoc{
		Type:       typeSymbol,
		SymbolID:   uint64(sym.ID),
		FileID:     uint64(sym.FileID),
		Name:       sym.Name,
		Kind:       string(sym.Kind),
		Visibility: string(sym.Visibility),
		Signature:  sym.Signature,
		DocComment: sym.DocComment,
		ModulePath: sym.ModulePath,
		LanguageID: sym.LanguageID,
		StartLine:  sym.Range.StartLine,
		StartCol:   sym.Range.StartCol,
		EndLine:    sym.Range.EndLine,
		EndCol:     sym.Range.EndCol,
		Deprecated: sym.Deprecated,
	}
}

func (d symbolDoc) toModel() model.Symbol {
	return model.Symbol{
		ID:         model.SymbolId(d.SymbolID),
		FileID:     model.FileId(d.FileID),
		Name:       d.Name,
		Kind:       model.SymbolKind(d.Kind),
		Visibility: model.Visibility(d.Visibility),
		Signature:  d.Signature,
		DocComment: d.DocComment,
		ModulePath: d.ModulePath,
		LanguageID: d.LanguageID,
		Range: model.Range{
			StartLine: d.StartLine, StartCol: d.StartCol,
			EndLine: d.EndLine, EndCol: d.EndCol,
		},
		Deprecated: d.Deprecated,
	}
}

type relationshipDoc struct {
	Type        string `json:"_type"`
	FromID      uint64 `json:"from_id"`
	ToID        uint64 `json:"to_id"`
	Kind        string `json:"kind"`
	Context     string `json:"context"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
}

func newRelationshipDoc(r model.Relationship) relationshipDoc {
	return relationshipDoc{
		Type: typeRelationship, FromID: uint64(r.FromID), ToID: uint64(r.ToID),
		Kind: string(r.Kind), Context: r.CallContext,
		StartLine: r.Range.StartLine, EndLine: r.Range.EndLine,
	}
}

func (d relationshipDoc) toModel() model.Relationship {
	return model.Relationship{
		FromID: model.SymbolId(d.FromID), ToID: model.SymbolId(d.ToID),
		Kind: model.RelationshipKind(d.Kind), CallContext: d.Context,
		Range: model.Range{StartLine: d.StartLine, EndLine: d.EndLine},
	}
}

func importDocID(fileID model.FileId, path string, alias string) string {
	return fmt.Sprintf("import:%d:%s:%s", uint64(fileID), path, alias)
}

type importDoc struct {
	Type       string `json:"_type"`
	FileID     uint64 `json:"file_id"`
	ImportPath string `json:"import_path"`
	Alias      string `json:"alias"`
	IsWildcard bool   `json:"is_wildcard"`
}

func newImportDoc(imp model.Import) importDoc {
	return importDoc{
		Type: typeImport, FileID: uint64(imp.FileID), ImportPath: imp.Path,
		Alias: imp.Alias, IsWildcard: imp.IsWildcard,
	}
}

func (d importDoc) toModel() model.Import {
	return model.Import{
		FileID: model.FileId(d.FileID), Path: d.ImportPath,
		Alias: d.Alias, IsWildcard: d.IsWildcard,
	}
}

type fileInfoDoc struct {
	Type        string `json:"_type"`
	FileID      uint64 `json:"file_id"`
	Path        string `json:"file_path"`
	ContentHash uint64 `json:"content_hash"`
	LanguageID  string `json:"language_id"`
	SymbolCount int    `json:"symbol_count"`
}

func newFileInfoDoc(f model.FileRegistration) fileInfoDoc {
	return fileInfoDoc{
		Type: typeFileInfo, FileID: uint64(f.ID), Path: f.Path,
		ContentHash: f.ContentHash, LanguageID: f.LanguageID, SymbolCount: f.SymbolCount,
	}
}

func (d fileInfoDoc) toModel() model.FileRegistration {
	return model.FileRegistration{
		ID: model.FileId(d.FileID), Path: d.Path, ContentHash: d.ContentHash,
		LanguageID: d.LanguageID, SymbolCount: d.SymbolCount,
	}
}

func parseUint(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

// counterDocID implements the persisted FileId/SymbolId
// counters as plain metadata documents keyed by a fixed string ID.
func counterDocID(key string) string { return key }

func isMetadataID(id string) bool { return strings.HasPrefix(id, "metadata:") }
