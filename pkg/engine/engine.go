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

// Package engine is the query facade: it wraps the document store, the
// pipeline, the vector store, and the idcache lookup behind a single object
// whose methods match spec.md §4.4's operation list one-to-one.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/symbolgraph/sg/internal/config"
	sgerrors "github.com/symbolgraph/sg/internal/errors"
	"github.com/symbolgraph/sg/pkg/docstore"
	"github.com/symbolgraph/sg/pkg/idcache"
	"github.com/symbolgraph/sg/pkg/langregistry"
	"github.com/symbolgraph/sg/pkg/model"
	"github.com/symbolgraph/sg/pkg/pipeline"
	"github.com/symbolgraph/sg/pkg/resolve"
	"github.com/symbolgraph/sg/pkg/vectorstore"
)

// Engine is the top-level handle a caller constructs once per index. The
// document store and vector store each have exactly one owner (this
// struct); Go's garbage collector retires the original's refcounting
// scheme, and the store types' own mutexes enforce the single-writer
// discipline instead of a manual lifetime contract.
type Engine struct {
	cfg       config.Config
	store     *docstore.Store
	vecStore  *vectorstore.Store
	embedPool *vectorstore.EmbeddingPool
	registry  *langregistry.Registry
	pipe      *pipeline.Pipeline
	cache     *idcache.Cache // nil until the first successful index run
	cachePath string
	log       *slog.Logger
}

// Open constructs an Engine from cfg: the document store and vector store
// are opened (created if absent) under cfg.Index.IndexPath, the language
// registry is populated with every built-in LanguageDef, and an embedding
// pool is constructed when cfg.Semantic.Enabled.
func Open(cfg config.Config, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := docstore.Open(filepath.Join(cfg.Index.IndexPath, "docstore"), log)
	if err != nil {
		return nil, sgerrors.NewDatabaseError(
			"cannot open the symbol index",
			err.Error(),
			"Run 'sg init' to create a fresh index, or check index_path permissions",
			err,
		)
	}

	registry := langregistry.New()
	registry.Register(langregistry.Go())
	registry.Register(genericFallback())

	var vecStore *vectorstore.Store
	var embedPool *vectorstore.EmbeddingPool
	if cfg.Semantic.Enabled {
		vecCfg := vectorstore.Config{Dimension: cfg.Semantic.Dimension, ModelName: cfg.Semantic.Model}
		semanticDir := filepath.Join(cfg.Index.IndexPath, "semantic")
		loaded, loadErr := vectorstore.Load(semanticDir, vecCfg)
		var mismatch vectorstore.ErrDimensionMismatch
		switch {
		case loadErr == nil:
			vecStore = loaded
		case errors.As(loadErr, &mismatch):
			_ = store.Close()
			return nil, sgerrors.NewConfigError(
				"stored embeddings do not match the configured model",
				loadErr.Error(),
				"Re-index with a matching semantic_search model, or run: sg reset --yes",
				loadErr,
			)
		default:
			vecStore = vectorstore.New(vecCfg)
		}
		embedPool = vectorstore.NewEmbeddingPool(cfg.Semantic.EmbeddingThreads, func() vectorstore.EmbeddingProvider {
			return vectorstore.StaticEmbeddingProvider{Dimension: cfg.Semantic.Dimension}
		}, log)
	}

	pipe := pipeline.New(store, vecStore, embedPool, registry, cfg, log)
	cachePath := filepath.Join(cfg.Index.IndexPath, "symbol_cache.bin")

	e := &Engine{
		cfg: cfg, store: store, vecStore: vecStore, embedPool: embedPool,
		registry: registry, pipe: pipe, cachePath: cachePath, log: log,
	}
	if cache, err := idcache.Open(cachePath); err == nil {
		e.cache = cache
	}
	return e, nil
}

// genericFallback is the dependency-free LanguageDef registered alongside
// Go so DISCOVER never skips a file outright for want of a grammar: any
// extension not claimed by a dedicated LanguageDef degrades to
// langregistry.Simplified's line-oriented scan instead of going unindexed.
func genericFallback() langregistry.LanguageDef {
	extensions := []string{
		".py", ".rb", ".js", ".jsx", ".mjs", ".ts", ".tsx",
		".java", ".kt", ".c", ".h", ".cc", ".cpp", ".hpp",
		".cs", ".rs", ".php", ".swift", ".scala",
	}
	keywords := []string{
		"def", "func", "function", "fn", "class", "struct", "interface",
		"public", "private", "protected", "static", "void", "async",
	}
	return langregistry.Simplified("generic", extensions, keywords)
}

// Close releases the document store handle. The vector store has no
// separate handle to release; its state lives entirely in memory plus
// whatever was last persisted by Save.
func (e *Engine) Close() error {
	if e.cache != nil {
		_ = e.cache.Close()
	}
	return e.store.Close()
}

// FindSymbol looks up a symbol by exact name, falling back to the document
// store when no idcache is loaded or the cache misses.
func (e *Engine) FindSymbol(name string) ([]model.Symbol, error) {
	if e.cache != nil {
		var out []model.Symbol
		for _, id := range e.cache.Lookup(name) {
			sym, err := e.store.GetSymbol(id)
			if err == nil {
				out = append(out, sym)
			}
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	return e.store.FindSymbolsByName(name)
}

// SearchFold looks up a symbol by case-insensitive name match.
func (e *Engine) SearchFold(name string) ([]model.Symbol, error) {
	return e.store.FindSymbolsByNameFold(name)
}

// FindSymbolByID looks up a single symbol by its identifier.
func (e *Engine) FindSymbolByID(id model.SymbolId) (model.Symbol, error) {
	return e.store.GetSymbol(id)
}

// AllFilePaths lists every registered file path at or under root.
func (e *Engine) AllFilePaths(root string) ([]string, error) {
	return e.store.AllFilePaths(root)
}

// SymbolsInFile lists every symbol defined in path, ordered by position.
func (e *Engine) SymbolsInFile(path string) ([]model.Symbol, error) {
	info, err := e.store.GetFileInfo(path)
	if err != nil {
		return nil, err
	}
	return e.store.FindSymbolsByFile(info.ID)
}

// Callers returns every relationship of kind Calls terminating at id.
func (e *Engine) Callers(id model.SymbolId) ([]model.Relationship, error) {
	rels, err := e.store.RelationshipsTo(id)
	return filterKind(rels, err, model.RelCalls)
}

// Callees returns every relationship of kind Calls originating at id.
func (e *Engine) Callees(id model.SymbolId) ([]model.Relationship, error) {
	rels, err := e.store.RelationshipsFrom(id)
	return filterKind(rels, err, model.RelCalls)
}

// Implementations returns every symbol that implements id (edges of kind
// Implements terminating at id).
func (e *Engine) Implementations(id model.SymbolId) ([]model.Relationship, error) {
	rels, err := e.store.RelationshipsTo(id)
	return filterKind(rels, err, model.RelImplements)
}

// Extends returns every symbol that extends id.
func (e *Engine) Extends(id model.SymbolId) ([]model.Relationship, error) {
	rels, err := e.store.RelationshipsTo(id)
	return filterKind(rels, err, model.RelExtends)
}

// Uses returns every Uses relationship originating at id.
func (e *Engine) Uses(id model.SymbolId) ([]model.Relationship, error) {
	rels, err := e.store.RelationshipsFrom(id)
	return filterKind(rels, err, model.RelUses)
}

func filterKind(rels []model.Relationship, err error, kind model.RelationshipKind) ([]model.Relationship, error) {
	if err != nil {
		return nil, err
	}
	out := make([]model.Relationship, 0, len(rels))
	for _, r := range rels {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out, nil
}

// SymbolContextOptions selects which facets SymbolContext aggregates.
type SymbolContextOptions struct {
	IncludeCallers         bool
	IncludeCallees         bool
	IncludeImplementations bool
	IncludeDoc             bool
	IncludeSiblings        bool
}

// SymbolContext aggregates a symbol's surrounding graph per opts.
type SymbolContext struct {
	Symbol          model.Symbol
	Callers         []model.Relationship
	Callees         []model.Relationship
	Implementations []model.Relationship
	Siblings        []model.Symbol
}

// SymbolContext builds an aggregated view of id controlled by opts.
func (e *Engine) SymbolContext(id model.SymbolId, opts SymbolContextOptions) (SymbolContext, error) {
	sym, err := e.store.GetSymbol(id)
	if err != nil {
		return SymbolContext{}, err
	}
	ctx := SymbolContext{Symbol: sym}
	if opts.IncludeCallers {
		if ctx.Callers, err = e.Callers(id); err != nil {
			return SymbolContext{}, err
		}
	}
	if opts.IncludeCallees {
		if ctx.Callees, err = e.Callees(id); err != nil {
			return SymbolContext{}, err
		}
	}
	if opts.IncludeImplementations {
		if ctx.Implementations, err = e.Implementations(id); err != nil {
			return SymbolContext{}, err
		}
	}
	if opts.IncludeSiblings {
		siblings, err := e.store.FindSymbolsByFile(sym.FileID)
		if err != nil {
			return SymbolContext{}, err
		}
		for _, s := range siblings {
			if s.ID != sym.ID {
				ctx.Siblings = append(ctx.Siblings, s)
			}
		}
	}
	return ctx, nil
}

// Dependencies returns the distinct set of symbols id's Calls/Uses edges
// point to, keyed by SymbolId.
func (e *Engine) Dependencies(id model.SymbolId) (map[model.SymbolId]model.Symbol, error) {
	rels, err := e.store.RelationshipsFrom(id)
	if err != nil {
		return nil, err
	}
	return e.symbolsByID(rels, func(r model.Relationship) model.SymbolId { return r.ToID })
}

// Dependents returns the distinct set of symbols whose Calls/Uses edges
// point at id.
func (e *Engine) Dependents(id model.SymbolId) (map[model.SymbolId]model.Symbol, error) {
	rels, err := e.store.RelationshipsTo(id)
	if err != nil {
		return nil, err
	}
	return e.symbolsByID(rels, func(r model.Relationship) model.SymbolId { return r.FromID })
}

func (e *Engine) symbolsByID(rels []model.Relationship, pick func(model.Relationship) model.SymbolId) (map[model.SymbolId]model.Symbol, error) {
	out := make(map[model.SymbolId]model.Symbol)
	for _, r := range rels {
		if r.Kind != model.RelCalls && r.Kind != model.RelUses {
			continue
		}
		id := pick(r)
		if _, ok := out[id]; ok {
			continue
		}
		sym, err := e.store.GetSymbol(id)
		if err != nil {
			continue // dangling edge; skip rather than fail the whole query
		}
		out[id] = sym
	}
	return out, nil
}

// ImpactRadius returns every symbol that would be affected by a change to
// id: its dependents, and their dependents in turn, up to maxDepth hops
// (id itself is excluded). It walks relationship edges backward (who
// refers to the current frontier), not forward, since "impact" means
// "what breaks if id changes", not "what id calls".
func (e *Engine) ImpactRadius(id model.SymbolId, maxDepth int) (map[model.SymbolId]model.Symbol, error) {
	visited := map[model.SymbolId]int{id: 0}
	out := make(map[model.SymbolId]model.Symbol)
	frontier := []model.SymbolId{id}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []model.SymbolId
		for _, cur := range frontier {
			callers, err := e.store.RelationshipsTo(cur)
			if err != nil {
				return nil, err
			}
			for _, r := range callers {
				if _, seen := visited[r.FromID]; seen {
					continue
				}
				visited[r.FromID] = depth
				next = append(next, r.FromID)
				if sym, err := e.store.GetSymbol(r.FromID); err == nil {
					out[r.FromID] = sym
				}
			}
		}
		frontier = next
	}
	return out, nil
}

// Search runs a text query against symbol name/doc/signature/context.
func (e *Engine) Search(text string, f docstore.Filters, limit int) ([]model.Symbol, error) {
	return e.store.Search(text, f, limit)
}

// SemanticSearchOptions narrows a SemanticSearch call.
type SemanticSearchOptions struct {
	Threshold  float32
	LanguageID string
	Limit      int
}

// SemanticSearch embeds query with the same provider used at index time and
// returns the nearest doc-commented symbols by cosine similarity.
func (e *Engine) SemanticSearch(ctx context.Context, query string, opts SemanticSearchOptions) ([]vectorstore.Neighbor, error) {
	if e.vecStore == nil {
		return nil, fmt.Errorf("engine: semantic search: semantic_search is disabled")
	}
	provider := vectorstore.StaticEmbeddingProvider{Dimension: e.cfg.Semantic.Dimension}
	vec, err := provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("engine: semantic search: embed query: %w", err)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	neighbors, err := e.vecStore.Search(vec, limit, opts.Threshold)
	if err != nil {
		return nil, err
	}
	if opts.LanguageID == "" {
		return neighbors, nil
	}
	filtered := make([]vectorstore.Neighbor, 0, len(neighbors))
	for _, n := range neighbors {
		sym, err := e.store.GetSymbol(n.ID)
		if err == nil && sym.LanguageID == opts.LanguageID {
			filtered = append(filtered, n)
		}
	}
	return filtered, nil
}

// IndexFile runs Phase 1 and Phase 2 scoped to a single file's parent
// directory walk but is, in practice, a thin call into IndexDirectory --
// spec.md draws no distinction between the two beyond root scope.
func (e *Engine) IndexFile(ctx context.Context, path string, force bool) error {
	return e.IndexDirectory(ctx, filepath.Dir(path), force)
}

// IndexDirectory runs Phase 1 (discover/read/parse/collect/index) followed
// by Phase 2 (context/resolve/write) against root, then rebuilds the
// idcache. force disables incremental content-hash comparison.
func (e *Engine) IndexDirectory(ctx context.Context, root string, force bool) error {
	stats, err := e.pipe.Run(ctx, root, !force)
	if err != nil {
		return fmt.Errorf("engine: index %s: %w", root, err)
	}

	if len(stats.Unresolved) > 0 {
		if _, err := resolve.Run(ctx, e.store, e.registry, stats.Unresolved, resolve.DefaultConfig(), e.log); err != nil {
			return fmt.Errorf("engine: resolve %s: %w", root, err)
		}
	}

	if e.vecStore != nil {
		if err := e.vecStore.Save(filepath.Join(e.cfg.Index.IndexPath, "semantic")); err != nil {
			e.log.Warn("engine.index.vector_save_error", "err", err)
		}
	}

	return e.rebuildCache(root)
}

// rebuildCache regenerates symbol_cache.bin from every symbol currently
// registered under root and reopens it, replacing any previously open
// cache.
func (e *Engine) rebuildCache(root string) error {
	paths, err := e.store.AllFilePaths(root)
	if err != nil {
		return fmt.Errorf("engine: rebuild cache: %w", err)
	}
	var entries []idcache.Entry
	for _, path := range paths {
		info, err := e.store.GetFileInfo(path)
		if err != nil {
			continue
		}
		symbols, err := e.store.FindSymbolsByFile(info.ID)
		if err != nil {
			continue
		}
		for _, s := range symbols {
			entries = append(entries, idcache.Entry{Name: s.Name, ID: s.ID})
		}
	}
	if err := idcache.Build(e.cachePath, entries); err != nil {
		return fmt.Errorf("engine: rebuild cache: %w", err)
	}
	if e.cache != nil {
		_ = e.cache.Close()
	}
	cache, err := idcache.Open(e.cachePath)
	if err != nil {
		return fmt.Errorf("engine: reopen cache: %w", err)
	}
	e.cache = cache
	return nil
}

// SyncRoots reconciles the engine's indexed state against roots: any root
// not yet represented in the store is indexed, and any previously indexed
// root absent from roots has its files actually removed -- the
// REDESIGN FLAG fix for the stub `remove_directory_files` that silently
// no-ops in the original.
func (e *Engine) SyncRoots(ctx context.Context, roots []string) error {
	previous, err := e.loadRoots()
	if err != nil {
		return fmt.Errorf("engine: sync roots: load previous roots: %w", err)
	}

	want := make(map[string]bool, len(roots))
	for _, r := range roots {
		want[r] = true
	}

	for _, root := range roots {
		if err := e.IndexDirectory(ctx, root, false); err != nil {
			return err
		}
	}
	for _, root := range previous {
		if want[root] {
			continue
		}
		if err := e.removeRoot(root); err != nil {
			return err
		}
	}

	return e.saveRoots(roots)
}

func (e *Engine) rootsPath() string {
	return filepath.Join(e.cfg.Index.IndexPath, "roots.json")
}

// loadRoots reads the canonical root list from a prior SyncRoots call, or
// returns an empty list if none has ever run against this index.
func (e *Engine) loadRoots() ([]string, error) {
	data, err := os.ReadFile(e.rootsPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var roots []string
	if err := json.Unmarshal(data, &roots); err != nil {
		return nil, fmt.Errorf("parse %s: %w", e.rootsPath(), err)
	}
	return roots, nil
}

func (e *Engine) saveRoots(roots []string) error {
	sorted := append([]string{}, roots...)
	sort.Strings(sorted)
	data, err := json.Marshal(sorted)
	if err != nil {
		return err
	}
	return os.WriteFile(e.rootsPath(), data, 0o644)
}

// removeRoot deletes every file (and its symbols/relationships) registered
// under a departed root. The embeddings of those symbols are not removed.
func (e *Engine) removeRoot(root string) error {
	paths, err := e.store.AllFilePaths(root)
	if err != nil {
		return fmt.Errorf("engine: remove root %s: %w", root, err)
	}
	sort.Strings(paths)
	for _, path := range paths {
		info, err := e.store.GetFileInfo(path)
		if err != nil {
			continue
		}
		// The vector store has no per-symbol delete; embeddings for this
		// file's symbols stay in it and are written out again by every Save.
		if err := e.store.DeleteFileDocuments(info.ID); err != nil {
			return fmt.Errorf("engine: remove root %s: delete %s: %w", root, path, err)
		}
	}
	return nil
}
