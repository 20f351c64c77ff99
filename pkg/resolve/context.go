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

// Package resolve implements Phase 2 of the indexing run: CONTEXT groups
// Phase 1's unresolved relationships by file and builds each file's
// resolution scope, RESOLVE applies the five-tier lookup ladder across two
// passes, and WRITE commits the resulting edges. Phase 1 and Phase 2 are
// deliberately decoupled -- everything CONTEXT needs is read back from the
// document store, never carried over from pipeline goroutine memory.
package resolve

import (
	"fmt"
	"sync"

	"github.com/symbolgraph/sg/pkg/docstore"
	"github.com/symbolgraph/sg/pkg/langregistry"
	"github.com/symbolgraph/sg/pkg/model"
)

// fileContext is everything RESOLVE needs to resolve one file's unresolved
// relationships: its language, the symbols it locally defines, its
// resolution scope (canonicalized imports plus wildcard imports), and the
// relationships themselves.
type fileContext struct {
	FileID     model.FileId
	LanguageID string
	Local      []model.Symbol
	Scope      langregistry.ResolutionScope
	Unresolved []model.UnresolvedRelationship
}

// behaviorCache is a read-through cache of LanguageBehavior instances keyed
// by language id, guarded by double-checked locking under an RWMutex -- the
// construction cost is trivial here (behaviors are stateless), but the
// pattern mirrors how a future behavior with real setup cost would be
// cached safely across RESOLVE's concurrent per-file goroutines.
type behaviorCache struct {
	mu    sync.RWMutex
	byLang map[string]langregistry.LanguageBehavior
}

func newBehaviorCache() *behaviorCache {
	return &behaviorCache{byLang: make(map[string]langregistry.LanguageBehavior)}
}

func (c *behaviorCache) get(registry *langregistry.Registry, languageID string) langregistry.LanguageBehavior {
	c.mu.RLock()
	b, ok := c.byLang[languageID]
	c.mu.RUnlock()
	if ok {
		return b
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.byLang[languageID]; ok {
		return b
	}
	def := registry.ByName(languageID)
	if def == nil {
		return nil
	}
	b = def.CreateBehavior()
	c.byLang[languageID] = b
	return b
}

// buildContexts groups unresolved by FileId and constructs one fileContext
// per file, fetching local symbols and raw imports from store and asking
// the file's LanguageBehavior to build a ResolutionScope. Files whose
// language cannot be determined (no local symbol, or an unregistered
// language id) are skipped; their relationships are counted as unresolved.
func buildContexts(store *docstore.Store, registry *langregistry.Registry, cache *behaviorCache, unresolved []model.UnresolvedRelationship) ([]fileContext, int) {
	byFile := make(map[model.FileId][]model.UnresolvedRelationship)
	for _, rel := range unresolved {
		byFile[rel.FromFileID] = append(byFile[rel.FromFileID], rel)
	}

	var contexts []fileContext
	skipped := 0
	for fileID, rels := range byFile {
		local, err := store.FindSymbolsByFile(fileID)
		if err != nil || len(local) == 0 {
			skipped += len(rels)
			continue
		}
		languageID := local[0].LanguageID

		behavior := cache.get(registry, languageID)
		if behavior == nil {
			skipped += len(rels)
			continue
		}

		imports, err := store.FindImportsByFile(fileID)
		if err != nil {
			skipped += len(rels)
			continue
		}

		modulePath := local[0].ModulePath
		scope := behavior.BuildResolutionContext(imports, modulePath)

		contexts = append(contexts, fileContext{
			FileID: fileID, LanguageID: languageID, Local: local,
			Scope: scope, Unresolved: rels,
		})
	}
	return contexts, skipped
}

func (c fileContext) String() string {
	return fmt.Sprintf("file#%d(%s): %d local, %d unresolved", c.FileID, c.LanguageID, len(c.Local), len(c.Unresolved))
}
