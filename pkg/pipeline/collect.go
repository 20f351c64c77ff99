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
	"fmt"

	"github.com/symbolgraph/sg/internal/metrics"
	"github.com/symbolgraph/sg/pkg/model"
)

// collectedBatch is COLLECT's unit of output to INDEX: newly assigned
// file registrations, their symbols and imports (with placeholder IDs
// already remapped to real monotonic ones), unresolved relationships
// scoped to those symbols, and any file deletions to cascade.
type collectedBatch struct {
	Files      []model.FileRegistration
	Symbols    []model.Symbol
	Imports    []model.Import
	Unresolved []model.UnresolvedRelationship
	Deletions  []model.FileId
}

// collect is the single-goroutine COLLECT stage: it owns the FileId and
// SymbolId counters and is the only stage allowed to assign them. Same-file
// name resolution (the first, cheapest tier of RESOLVE's lookup ladder) is
// rebuilt by CONTEXT directly from the persisted symbols rather than carried
// over from here, since Phase 2 may run as a separate invocation and cannot
// assume this goroutine's memory is still live.
func (p *Pipeline) collect(in <-chan parsedFile, out chan<- collectedBatch) error {
	defer close(out)

	var batch collectedBatch
	flush := func() {
		if len(batch.Files) == 0 && len(batch.Symbols) == 0 && len(batch.Deletions) == 0 {
			return
		}
		out <- batch
		batch = collectedBatch{}
	}

	for item := range in {
		if item.Delete {
			existing, err := p.store.GetFileInfo(item.Path)
			if err != nil {
				continue // never registered, nothing to cascade
			}
			batch.Deletions = append(batch.Deletions, existing.ID)
			continue
		}

		fileID, err := p.store.NextFileID()
		if err != nil {
			return fmt.Errorf("pipeline: collect: assign file id: %w", err)
		}

		localToReal := make(map[model.SymbolId]model.SymbolId, len(item.Parsed.Symbols))
		for _, sym := range item.Parsed.Symbols {
			realID, err := p.store.NextSymbolID()
			if err != nil {
				return fmt.Errorf("pipeline: collect: assign symbol id: %w", err)
			}
			localToReal[sym.ID] = realID
			sym.ID = realID
			sym.FileID = fileID
			batch.Symbols = append(batch.Symbols, sym)
		}

		for _, imp := range item.Parsed.Imports {
			imp.FileID = fileID
			batch.Imports = append(batch.Imports, imp)
		}

		for _, rel := range item.Parsed.Unresolved {
			rel.FromFileID = fileID
			if real, ok := localToReal[rel.FromID]; ok {
				rel.FromID = real
			}
			batch.Unresolved = append(batch.Unresolved, rel)
		}
		metrics.RelationshipsUnresolved(len(item.Parsed.Unresolved))

		batch.Files = append(batch.Files, model.FileRegistration{
			ID: fileID, Path: item.Path, ContentHash: item.ContentHash,
			LanguageID: item.LanguageID, SymbolCount: len(item.Parsed.Symbols),
		})

		if len(batch.Symbols) >= p.cfg.Pipeline.BatchSize {
			flush()
		}
	}
	flush()
	return nil
}
