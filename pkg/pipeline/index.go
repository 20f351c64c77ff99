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

package pipeline

import (
	"context"
	"fmt"

	"github.com/symbolgraph/sg/internal/metrics"
	"github.com/symbolgraph/sg/pkg/model"
	"github.com/symbolgraph/sg/pkg/vectorstore"
)

// IndexResult is what INDEX hands back to Run once the channel from
// COLLECT has drained: every unresolved relationship produced this run,
// ready for Phase 2's CONTEXT/RESOLVE/WRITE, plus the file deletions
// already cascaded.
type IndexResult struct {
	Unresolved []model.UnresolvedRelationship
	Deleted    []model.FileId
}

// index is the single goroutine that owns the docstore writer. It is the
// only stage allowed to call StartBatch/CommitBatch: every write from
// COLLECT's batches lands here, doc-commented symbols are forwarded to the
// embedding pool inline, and deletions are cascaded through the store
// before their replacement documents (if any) are staged.
func (p *Pipeline) index(ctx context.Context, in <-chan collectedBatch) (IndexResult, error) {
	var result IndexResult
	batchesSinceCommit := 0

	commit := func() error {
		if err := p.store.CommitBatch(); err != nil {
			return fmt.Errorf("pipeline: index: commit: %w", err)
		}
		metrics.BatchCommitted()
		batchesSinceCommit = 0
		return nil
	}

	if err := p.store.StartBatch(); err != nil {
		return result, fmt.Errorf("pipeline: index: start batch: %w", err)
	}

	for batch := range in {
		for _, fileID := range batch.Deletions {
			if err := p.store.DeleteFileDocuments(fileID); err != nil {
				return result, fmt.Errorf("pipeline: index: delete file %v: %w", fileID, err)
			}
			result.Deleted = append(result.Deleted, fileID)
		}

		for _, f := range batch.Files {
			if err := p.store.PutFile(f); err != nil {
				return result, fmt.Errorf("pipeline: index: put file: %w", err)
			}
		}
		for _, imp := range batch.Imports {
			if err := p.store.PutImport(imp); err != nil {
				return result, fmt.Errorf("pipeline: index: put import: %w", err)
			}
		}

		var embedItems []vectorstore.EmbedItem
		for _, sym := range batch.Symbols {
			if err := p.store.PutSymbol(sym); err != nil {
				return result, fmt.Errorf("pipeline: index: put symbol: %w", err)
			}
			if sym.DocComment != "" {
				embedItems = append(embedItems, vectorstore.EmbedItem{ID: sym.ID, Text: sym.DocComment})
			} else {
				metrics.EmbedSkipped()
			}
		}
		metrics.SymbolsIndexed(len(batch.Symbols))

		if p.embedPool != nil && len(embedItems) > 0 {
			p.embedSymbols(ctx, embedItems)
		}

		result.Unresolved = append(result.Unresolved, batch.Unresolved...)

		batchesSinceCommit++
		if batchesSinceCommit >= p.cfg.Pipeline.BatchesPerCommit {
			if err := commit(); err != nil {
				return result, err
			}
			if err := p.store.StartBatch(); err != nil {
				return result, fmt.Errorf("pipeline: index: start batch: %w", err)
			}
		}
	}

	if err := commit(); err != nil {
		return result, err
	}
	return result, nil
}

// embedSymbols computes and persists vectors for a set of doc-commented
// symbols, logging and counting per-item failures without aborting the run.
func (p *Pipeline) embedSymbols(ctx context.Context, items []vectorstore.EmbedItem) {
	results := p.embedPool.EmbedParallel(ctx, items)
	for _, r := range results {
		if r.Err != nil {
			metrics.EmbedError()
			continue
		}
		if len(r.Vector) == 0 {
			continue
		}
		if err := p.vecStore.Add(r.ID, r.Vector); err != nil {
			p.log.Warn("pipeline.index.embed_store_error", "symbol_id", r.ID, "err", err)
			metrics.EmbedError()
			continue
		}
		metrics.EmbedComputed()
	}
}
