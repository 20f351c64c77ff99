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

	"github.com/blevesearch/bleve/v2"
	"github.com/symbolgraph/sg/pkg/model"
)

// PutFile stages a file_info document in the open batch.
func (s *Store) PutFile(f model.FileRegistration) error {
	b, err := s.requireBatch()
	if err != nil {
		return err
	}
	return b.Index(fileDocID(f.ID), newFileInfoDoc(f))
}

// PutSymbol stages a symbol document in the open batch.
func (s *Store) PutSymbol(sym model.Symbol) error {
	b, err := s.requireBatch()
	if err != nil {
		return err
	}
	return b.Index(symbolDocID(sym.ID), newSymbolDoc(sym))
}

// PutImport stages an import document in the open batch.
func (s *Store) PutImport(imp model.Import) error {
	b, err := s.requireBatch()
	if err != nil {
		return err
	}
	return b.Index(importDocID(imp.FileID, imp.Path, imp.Alias), newImportDoc(imp))
}

// PutRelationship stages a relationship document in the open batch.
func (s *Store) PutRelationship(r model.Relationship) error {
	b, err := s.requireBatch()
	if err != nil {
		return err
	}
	return b.Index(relDocID(r.FromID, r.Kind, r.ToID), newRelationshipDoc(r))
}

// NextFileID atomically reserves and returns the next FileId. The advanced
// value lives in memory only until the next CommitBatch, which writes it
// down alongside whatever symbols/files that batch numbered -- COLLECT,
// the sole caller, never waits on a Bleve round trip per ID.
func (s *Store) NextFileID() (model.FileId, error) {
	return model.FileId(s.bumpCounter(&s.fileCounter)), nil
}

// NextSymbolID is the SymbolId analogue of NextFileID.
func (s *Store) NextSymbolID() (model.SymbolId, error) {
	return model.SymbolId(s.bumpCounter(&s.symbolCounter)), nil
}

func (s *Store) bumpCounter(counter *uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	*counter++
	return *counter
}

func (s *Store) readCounterLocked(key string) (uint64, error) {
	req := bleve.NewSearchRequest(bleve.NewDocIDQuery([]string{counterDocID(key)}))
	req.Fields = []string{"value"}
	res, err := s.index.Search(req)
	if err != nil {
		return 0, fmt.Errorf("docstore: read counter %s: %w", key, err)
	}
	if len(res.Hits) == 0 {
		return 0, nil
	}
	var value uint64
	if v, ok := res.Hits[0].Fields["value"].(float64); ok {
		value = uint64(v)
	}
	return value, nil
}

// DeleteFileDocuments removes the file_info document, every symbol
// document whose FileID matches, and every relationship document whose
// endpoint resolves to one of those symbols, cascading per spec.md's
// "atomic from the reader's point of view" invariant. It is issued as its
// own batch, independent of any caller-held batch.
func (s *Store) DeleteFileDocuments(fileID model.FileId) error {
	symbolIDs, err := s.symbolIDsForFile(fileID)
	if err != nil {
		return err
	}

	imports, err := s.FindImportsByFile(fileID)
	if err != nil {
		return err
	}

	b := s.index.NewBatch()
	b.Delete(fileDocID(fileID))
	for _, sid := range symbolIDs {
		b.Delete(symbolDocID(sid))
	}
	for _, imp := range imports {
		b.Delete(importDocID(imp.FileID, imp.Path, imp.Alias))
	}
	if err := s.deleteRelationshipsForSymbols(b, symbolIDs); err != nil {
		return err
	}
	if err := s.index.Batch(b); err != nil {
		return fmt.Errorf("docstore: delete file %v documents: %w", fileID, err)
	}
	return nil
}

func (s *Store) symbolIDsForFile(fileID model.FileId) ([]model.SymbolId, error) {
	symbols, err := s.FindSymbolsByFile(fileID)
	if err != nil {
		return nil, err
	}
	ids := make([]model.SymbolId, len(symbols))
	for i, sym := range symbols {
		ids[i] = sym.ID
	}
	return ids, nil
}

func (s *Store) deleteRelationshipsForSymbols(b *bleve.Batch, ids []model.SymbolId) error {
	if len(ids) == 0 {
		return nil
	}
	rels, err := s.relationshipsTouching(ids)
	if err != nil {
		return err
	}
	for _, r := range rels {
		b.Delete(relDocID(r.FromID, r.Kind, r.ToID))
	}
	return nil
}
