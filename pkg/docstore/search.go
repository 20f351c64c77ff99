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
	"sort"

	"github.com/blevesearch/bleve/v2"
	"github.com/symbolgraph/sg/pkg/model"
)

// Filters narrows a Search call with exact structural AND conditions, on
// top of the OR'd text/fuzzy relevance match.
type Filters struct {
	Kind       model.SymbolKind
	ModulePath string
	LanguageID string
}

// Search finds symbols whose name, doc_comment, signature, or context
// match text (exact or edit-distance-1 fuzzy), narrowed by any non-zero
// Filters fields, ranked by relevance score with ties broken by ascending
// SymbolId.
func (s *Store) Search(text string, f Filters, limit int) ([]model.Symbol, error) {
	textFields := []string{"name", "doc_comment", "signature", "context"}
	var textQueries []bleve.Query
	for _, field := range textFields {
		mq := bleve.NewMatchQuery(text)
		mq.SetField(field)
		textQueries = append(textQueries, mq)
	}
	fq := bleve.NewFuzzyQuery(text)
	fq.SetField("name")
	fq.Fuzziness = 1
	textQueries = append(textQueries, fq)

	relevance := bleve.NewDisjunctionQuery(textQueries...)

	typeQ := bleve.NewTermQuery(typeSymbol)
	typeQ.SetField("_type")
	and := []bleve.Query{relevance, typeQ}

	if f.Kind != "" {
		q := bleve.NewTermQuery(string(f.Kind))
		q.SetField("kind")
		and = append(and, q)
	}
	if f.ModulePath != "" {
		q := bleve.NewTermQuery(f.ModulePath)
		q.SetField("module_path")
		and = append(and, q)
	}
	if f.LanguageID != "" {
		q := bleve.NewTermQuery(f.LanguageID)
		q.SetField("language_id")
		and = append(and, q)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(and...), limit, 0, false)
	req.Fields = []string{"*"}
	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("docstore: search: %w", err)
	}

	symbols := make([]model.Symbol, 0, len(res.Hits))
	scores := make(map[model.SymbolId]float64, len(res.Hits))
	for _, hit := range res.Hits {
		sym := symbolFromHitFields(hit.Fields)
		scores[sym.ID] = hit.Score
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool {
		si, sj := scores[symbols[i].ID], scores[symbols[j].ID]
		if si != sj {
			return si > sj
		}
		return symbols[i].ID < symbols[j].ID
	})
	return symbols, nil
}

// GetSymbol fetches one symbol by ID.
func (s *Store) GetSymbol(id model.SymbolId) (model.Symbol, error) {
	res, err := s.searchDocID(symbolDocID(id))
	if err != nil {
		return model.Symbol{}, err
	}
	if len(res) == 0 {
		return model.Symbol{}, ErrNotFound
	}
	return symbolFromHitFields(res[0]), nil
}

// FindSymbolsByName returns every symbol with the exact given name. The
// name field is analyzed (lower-cased), so candidates come from the
// case-folded match and are then filtered to case-sensitive equality.
func (s *Store) FindSymbolsByName(name string) ([]model.Symbol, error) {
	candidates, err := s.FindSymbolsByNameFold(name)
	if err != nil {
		return nil, err
	}
	exact := candidates[:0]
	for _, sym := range candidates {
		if sym.Name == name {
			exact = append(exact, sym)
		}
	}
	return exact, nil
}

// FindSymbolsByNameFold is FindSymbolsByName's case-insensitive sibling:
// callers that want "Foo"/"foo"/"FOO" to collide ask for this explicitly,
// rather than FindSymbolsByName silently folding case for everyone.
func (s *Store) FindSymbolsByNameFold(name string) ([]model.Symbol, error) {
	q := bleve.NewMatchQuery(name)
	q.SetField("name")
	q.Analyzer = "standard"
	return s.symbolsMatching(q)
}

// FindSymbolsByFile returns every symbol belonging to fileID, ordered by
// position.
func (s *Store) FindSymbolsByFile(fileID model.FileId) ([]model.Symbol, error) {
	q := bleve.NewNumericRangeQuery(floatPtr(float64(fileID)), floatPtr(float64(fileID)+1))
	q.SetField("file_id")
	symbols, err := s.symbolsMatching(q)
	if err != nil {
		return nil, err
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Range.StartLine < symbols[j].Range.StartLine })
	return symbols, nil
}

// FindImportsByFile returns every import declared in fileID, used by
// Phase 2's CONTEXT stage to rebuild a file's resolution scope without
// depending on anything still held in COLLECT's memory.
func (s *Store) FindImportsByFile(fileID model.FileId) ([]model.Import, error) {
	q := bleve.NewNumericRangeQuery(floatPtr(float64(fileID)), floatPtr(float64(fileID)+1))
	q.SetField("file_id")
	typeQ := bleve.NewTermQuery(typeImport)
	typeQ.SetField("_type")
	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(q, typeQ), 10000, 0, false)
	req.Fields = []string{"*"}
	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("docstore: find imports for file %v: %w", fileID, err)
	}
	out := make([]model.Import, 0, len(res.Hits))
	for _, hit := range res.Hits {
		out = append(out, importFromHitFields(hit.Fields))
	}
	return out, nil
}

// GetFileInfo returns the file_info record for path, or ErrNotFound.
func (s *Store) GetFileInfo(path string) (model.FileRegistration, error) {
	q := bleve.NewTermQuery(path)
	q.SetField("file_path")
	typeQ := bleve.NewTermQuery(typeFileInfo)
	typeQ.SetField("_type")
	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(q, typeQ), 1, 0, false)
	req.Fields = []string{"*"}
	res, err := s.index.Search(req)
	if err != nil {
		return model.FileRegistration{}, fmt.Errorf("docstore: get file info %s: %w", path, err)
	}
	if len(res.Hits) == 0 {
		return model.FileRegistration{}, ErrNotFound
	}
	return fileInfoFromHitFields(res.Hits[0].Fields), nil
}

// AllFilePaths returns every registered file path whose path is root or a
// descendant of root (root itself is compared with a "/" suffix so that
// sibling directories sharing a prefix never match).
func (s *Store) AllFilePaths(root string) ([]string, error) {
	typeQ := bleve.NewTermQuery(typeFileInfo)
	typeQ.SetField("_type")
	req := bleve.NewSearchRequestOptions(typeQ, 1000000, 0, false)
	req.Fields = []string{"file_path"}
	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("docstore: list file paths: %w", err)
	}
	prefix := root
	if !hasTrailingSlash(prefix) {
		prefix += "/"
	}
	var out []string
	for _, hit := range res.Hits {
		path := stringField(hit.Fields, "file_path")
		if path == root || hasPrefix(path, prefix) {
			out = append(out, path)
		}
	}
	return out, nil
}

func hasTrailingSlash(s string) bool { return len(s) > 0 && s[len(s)-1] == '/' }
func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// RelationshipsFrom returns every relationship edge originating at id.
func (s *Store) RelationshipsFrom(id model.SymbolId) ([]model.Relationship, error) {
	q := bleve.NewNumericRangeQuery(floatPtr(float64(id)), floatPtr(float64(id)+1))
	q.SetField("from_id")
	return s.relationshipsMatching(q)
}

// RelationshipsTo returns every relationship edge terminating at id.
func (s *Store) RelationshipsTo(id model.SymbolId) ([]model.Relationship, error) {
	q := bleve.NewNumericRangeQuery(floatPtr(float64(id)), floatPtr(float64(id)+1))
	q.SetField("to_id")
	return s.relationshipsMatching(q)
}

func (s *Store) relationshipsTouching(ids []model.SymbolId) ([]model.Relationship, error) {
	seen := make(map[string]model.Relationship)
	for _, id := range ids {
		from, err := s.RelationshipsFrom(id)
		if err != nil {
			return nil, err
		}
		to, err := s.RelationshipsTo(id)
		if err != nil {
			return nil, err
		}
		for _, r := range append(from, to...) {
			seen[relDocID(r.FromID, r.Kind, r.ToID)] = r
		}
	}
	out := make([]model.Relationship, 0, len(seen))
	for _, r := range seen {
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) symbolsMatching(q bleve.Query) ([]model.Symbol, error) {
	typeQ := bleve.NewTermQuery(typeSymbol)
	typeQ.SetField("_type")
	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(q, typeQ), 10000, 0, false)
	req.Fields = []string{"*"}
	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("docstore: query symbols: %w", err)
	}
	out := make([]model.Symbol, 0, len(res.Hits))
	for _, hit := range res.Hits {
		out = append(out, symbolFromHitFields(hit.Fields))
	}
	return out, nil
}

func (s *Store) relationshipsMatching(q bleve.Query) ([]model.Relationship, error) {
	typeQ := bleve.NewTermQuery(typeRelationship)
	typeQ.SetField("_type")
	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(q, typeQ), 10000, 0, false)
	req.Fields = []string{"*"}
	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("docstore: query relationships: %w", err)
	}
	out := make([]model.Relationship, 0, len(res.Hits))
	for _, hit := range res.Hits {
		out = append(out, relationshipFromHitFields(hit.Fields))
	}
	return out, nil
}

func (s *Store) searchDocID(id string) ([]map[string]any, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewDocIDQuery([]string{id}), 1, 0, false)
	req.Fields = []string{"*"}
	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("docstore: get %s: %w", id, err)
	}
	out := make([]map[string]any, len(res.Hits))
	for i, hit := range res.Hits {
		out[i] = hit.Fields
	}
	return out, nil
}

func floatPtr(f float64) *float64 { return &f }

func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

func intField(fields map[string]any, name string) int {
	if v, ok := fields[name].(float64); ok {
		return int(v)
	}
	return 0
}

func boolField(fields map[string]any, name string) bool {
	v, _ := fields[name].(bool)
	return v
}

func symbolFromHitFields(fields map[string]any) model.Symbol {
	return model.Symbol{
		ID:         model.SymbolId(uint64(intField(fields, "symbol_id"))),
		FileID:     model.FileId(uint64(intField(fields, "file_id"))),
		Name:       stringField(fields, "name"),
		Kind:       model.SymbolKind(stringField(fields, "kind")),
		Visibility: model.Visibility(stringField(fields, "visibility")),
		Signature:  stringField(fields, "signature"),
		DocComment: stringField(fields, "doc_comment"),
		ModulePath: stringField(fields, "module_path"),
		LanguageID: stringField(fields, "language_id"),
		Range: model.Range{
			StartLine: intField(fields, "start_line"),
			StartCol:  intField(fields, "start_col"),
			EndLine:   intField(fields, "end_line"),
			EndCol:    intField(fields, "end_col"),
		},
		Deprecated: boolField(fields, "deprecated"),
	}
}

func fileInfoFromHitFields(fields map[string]any) model.FileRegistration {
	return model.FileRegistration{
		ID:          model.FileId(uint64(intField(fields, "file_id"))),
		Path:        stringField(fields, "file_path"),
		ContentHash: uint64(intField(fields, "content_hash")),
		LanguageID:  stringField(fields, "language_id"),
		SymbolCount: intField(fields, "symbol_count"),
	}
}

func importFromHitFields(fields map[string]any) model.Import {
	return model.Import{
		FileID:     model.FileId(uint64(intField(fields, "file_id"))),
		Path:       stringField(fields, "import_path"),
		Alias:      stringField(fields, "alias"),
		IsWildcard: boolField(fields, "is_wildcard"),
	}
}

func relationshipFromHitFields(fields map[string]any) model.Relationship {
	return model.Relationship{
		FromID: model.SymbolId(uint64(intField(fields, "from_id"))),
		ToID:   model.SymbolId(uint64(intField(fields, "to_id"))),
		Kind:   model.RelationshipKind(stringField(fields, "kind")),
		CallContext: stringField(fields, "context"),
		Range: model.Range{
			StartLine: intField(fields, "start_line"),
			EndLine:   intField(fields, "end_line"),
		},
	}
}
