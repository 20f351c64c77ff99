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

// Package docstore is the single-writer/many-reader document store: a
// Bleve full-text index holding five logical document kinds (symbol,
// relationship, file_info, import, metadata) disambiguated by a keyword
// field.
// Exactly one batch may be open at a time; readers never block behind it
// and see only the last committed generation.
package docstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/symbolgraph/sg/pkg/model"
)

const (
	typeSymbol       = "symbol"
	typeRelationship = "relationship"
	typeFileInfo     = "file_info"
	typeImport       = "import"
	typeMetadata     = "metadata"

	counterFile   = "metadata:file_counter"
	counterSymbol = "metadata:symbol_counter"
)

// Store is the document store. The zero value is not usable; construct
// with Open.
type Store struct {
	mu    sync.Mutex // guards writer state: nil-or-not batch, commit, counters
	index bleve.Index
	path  string
	log   *slog.Logger

	batch *bleve.Batch

	// fileCounter and symbolCounter are the in-memory, already-advanced
	// counters NextFileID/NextSymbolID hand out from. They are seeded
	// from the persisted counter documents at Open and written back into
	// whichever batch is open at CommitBatch time, rather than each
	// earning its own commit -- COLLECT can assign thousands of IDs
	// between two INDEX batch commits without touching Bleve for each one.
	fileCounter   uint64
	symbolCounter uint64
}

// Open opens (creating if absent) a Bleve index rooted at dir.
func Open(dir string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	metaPath := filepath.Join(dir, "meta.json")
	_, statErr := os.Stat(metaPath)
	exists := statErr == nil

	var idx bleve.Index
	var err error
	if exists {
		idx, err = bleve.Open(dir)
	} else {
		if mkErr := os.MkdirAll(filepath.Dir(dir), 0o755); mkErr != nil {
			return nil, fmt.Errorf("docstore: create parent dir: %w", mkErr)
		}
		idx, err = bleve.New(dir, buildMapping())
		if err == nil {
			if werr := os.WriteFile(metaPath, []byte(`{"initialized":true,"schema_version":1}`), 0o644); werr != nil {
				return nil, fmt.Errorf("docstore: write meta: %w", werr)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: open %s: %w", dir, err)
	}
	s := &Store{index: idx, path: dir, log: log}
	if s.fileCounter, err = s.readCounterLocked(counterFile); err != nil {
		return nil, err
	}
	if s.symbolCounter, err = s.readCounterLocked(counterSymbol); err != nil {
		return nil, err
	}
	return s, nil
}

// buildMapping constructs the field mapping shared by every document kind:
// analyzed text fields for relevance search, and untokenized keyword
// fields for exact structural filtering.
func buildMapping() *mapping.IndexMappingImpl {
	m := bleve.NewIndexMapping()

	text := bleve.NewTextFieldMapping()
	text.Analyzer = "standard"

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"

	number := bleve.NewNumericFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", text)
	doc.AddFieldMappingsAt("doc_comment", text)
	doc.AddFieldMappingsAt("signature", text)
	doc.AddFieldMappingsAt("context", text)
	doc.AddFieldMappingsAt("kind", keyword)
	doc.AddFieldMappingsAt("module_path", keyword)
	doc.AddFieldMappingsAt("language_id", keyword)
	doc.AddFieldMappingsAt("file_path", keyword)
	doc.AddFieldMappingsAt("_type", keyword)
	doc.AddFieldMappingsAt("symbol_id", number)
	doc.AddFieldMappingsAt("file_id", number)
	doc.AddFieldMappingsAt("import_path", keyword)

	m.DefaultMapping = doc
	return m
}

// Close releases the underlying index handle.
func (s *Store) Close() error {
	return s.index.Close()
}

// StartBatch opens a new batch of writes. It is an error to call
// StartBatch while one is already open.
func (s *Store) StartBatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch != nil {
		return ErrBatchAlreadyOpen
	}
	s.batch = s.index.NewBatch()
	return nil
}

// CommitBatch flushes the open batch to the index and closes it. The
// current FileId/SymbolId counters ride along in the same batch as the
// symbols and files they numbered, so a commit durably persists both
// together instead of the counters needing a commit of their own per ID.
func (s *Store) CommitBatch() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch == nil {
		return ErrNoActiveBatch
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("docstore.writer.recovered", "panic", r)
			s.batch = nil
			err = fmt.Errorf("docstore: commit batch: recovered from %v", r)
		}
	}()
	b := s.batch
	s.batch = nil
	if err := b.Index(counterDocID(counterFile), map[string]any{"_type": typeMetadata, "value": s.fileCounter}); err != nil {
		return fmt.Errorf("docstore: stage file counter: %w", err)
	}
	if err := b.Index(counterDocID(counterSymbol), map[string]any{"_type": typeMetadata, "value": s.symbolCounter}); err != nil {
		return fmt.Errorf("docstore: stage symbol counter: %w", err)
	}
	return s.index.Batch(b)
}

// requireBatch returns the open batch or ErrNoActiveBatch.
func (s *Store) requireBatch() (*bleve.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch == nil {
		return nil, ErrNoActiveBatch
	}
	return s.batch, nil
}
