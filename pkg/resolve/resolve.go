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

package resolve

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/symbolgraph/sg/internal/metrics"
	"github.com/symbolgraph/sg/pkg/docstore"
	"github.com/symbolgraph/sg/pkg/langregistry"
	"github.com/symbolgraph/sg/pkg/model"
)

// Config tunes Phase 2. ParallelFiles bounds the number of per-file RESOLVE
// goroutines running at once; CommitThreshold is WRITE's buffered-edge
// commit threshold.
type Config struct {
	ParallelFiles   int
	CommitThreshold int
}

// DefaultConfig returns spec.md's recommended Phase 2 defaults.
func DefaultConfig() Config {
	return Config{ParallelFiles: 8, CommitThreshold: 10000}
}

// Stats summarizes one Phase 2 run.
type Stats struct {
	Resolved   int
	Dropped    int
	FilesTotal int
}

// resolver carries the read-only state every per-file goroutine needs: the
// document store (for cross-file lookups) and accumulated counters.
type resolver struct {
	store *docstore.Store
	log   *slog.Logger

	mu      sync.Mutex
	stats   Stats
}

// Run groups unresolved by file, resolves each file's references across two
// passes (Defines first, then everything else), and commits the results
// through an internal writer. It never returns an error for an individual
// unresolved reference -- only store-level failures (a broken writer, a dead
// index) propagate.
func Run(ctx context.Context, store *docstore.Store, registry *langregistry.Registry, unresolved []model.UnresolvedRelationship, cfg Config, log *slog.Logger) (Stats, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.ParallelFiles <= 0 {
		cfg.ParallelFiles = 1
	}
	if cfg.CommitThreshold <= 0 {
		cfg.CommitThreshold = 10000
	}

	cache := newBehaviorCache()
	contexts, skipped := buildContexts(store, registry, cache, unresolved)
	for i := 0; i < skipped; i++ {
		metrics.RelationshipDropped()
	}

	r := &resolver{store: store, log: log, stats: Stats{Dropped: skipped, FilesTotal: len(contexts)}}
	w := newWriter(store, cfg.CommitThreshold, log)

	if err := r.resolvePass(ctx, splitByKind(contexts, model.RelDefines), w, cfg.ParallelFiles); err != nil {
		return r.stats, err
	}
	if err := w.commit(); err != nil {
		return r.stats, err
	}

	if err := r.resolvePass(ctx, splitByKind(contexts, ""), w, cfg.ParallelFiles); err != nil {
		return r.stats, err
	}
	if err := w.flush(); err != nil {
		return r.stats, err
	}
	return r.stats, nil
}

// splitByKind filters each context's Unresolved relationships to only kind
// (or, when kind is empty, to everything except Defines), dropping any
// context left with nothing to resolve.
func splitByKind(contexts []fileContext, kind model.RelationshipKind) []fileContext {
	var out []fileContext
	for _, c := range contexts {
		var filtered []model.UnresolvedRelationship
		for _, rel := range c.Unresolved {
			if kind == "" {
				if rel.Kind != model.RelDefines {
					filtered = append(filtered, rel)
				}
			} else if rel.Kind == kind {
				filtered = append(filtered, rel)
			}
		}
		if len(filtered) == 0 {
			continue
		}
		c.Unresolved = filtered
		out = append(out, c)
	}
	return out
}

// resolvePass runs one goroutine per file context, bounded by limit via
// errgroup.SetLimit, writing every resolved edge through w.
func (r *resolver) resolvePass(ctx context.Context, contexts []fileContext, w *writer, limit int) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, c := range contexts {
		c := c
		g.Go(func() error {
			for _, rel := range c.Unresolved {
				toID, ok := resolveOne(r.store, c, rel)
				if !ok {
					metrics.RelationshipDropped()
					r.mu.Lock()
					r.stats.Dropped++
					r.mu.Unlock()
					r.log.Debug("resolve.unresolved", "file_id", c.FileID, "target", rel.TargetName, "kind", rel.Kind)
					continue
				}
				resolved := model.Relationship{
					FromID: rel.FromID, ToID: toID, Kind: rel.Kind,
					Range: rel.Range, CallContext: rel.CallContext,
				}
				if err := w.add(resolved); err != nil {
					return err
				}
				metrics.RelationshipResolved()
				r.mu.Lock()
				r.stats.Resolved++
				r.mu.Unlock()
			}
			return nil
		})
	}
	return g.Wait()
}

// resolveOne applies the five-tier lookup ladder to one unresolved
// reference, returning the first tier's match.
func resolveOne(store *docstore.Store, c fileContext, rel model.UnresolvedRelationship) (model.SymbolId, bool) {
	if id, ok := tierLocal(c, rel); ok {
		return id, true
	}
	if id, ok := tierDirectImportBareName(store, c, rel.TargetName); ok {
		return id, true
	}
	qualifier, localName, hasDot := splitLastDot(rel.TargetName)
	if hasDot {
		if id, ok := tierDirectImport(store, c, qualifier, localName); ok {
			return id, true
		}
	}
	if id, ok := tierGlobImport(store, c, rel.TargetName); ok {
		return id, true
	}
	if hasDot {
		if id, ok := findInModule(store, c, qualifier, localName); ok {
			return id, true
		}
	}
	return tierWorkspaceWide(store, c, rel)
}

func tierLocal(c fileContext, rel model.UnresolvedRelationship) (model.SymbolId, bool) {
	for _, s := range c.Local {
		if s.Name == rel.TargetName {
			return s.ID, true
		}
	}
	return 0, false
}

// tierDirectImportBareName is Tier 2: an unqualified reference whose name is
// itself the last segment (or alias) of an import, e.g. TS "import {
// formatName } from './utils'" followed by a bare "formatName()" call. It
// must run ahead of Tier 3 (glob import), since an explicit import binding
// always wins over a wildcard guess.
func tierDirectImportBareName(store *docstore.Store, c fileContext, name string) (model.SymbolId, bool) {
	path, ok := c.Scope.CanonicalImports[name]
	if !ok {
		return 0, false
	}
	return findInModule(store, c, path, name)
}

func tierDirectImport(store *docstore.Store, c fileContext, qualifier, localName string) (model.SymbolId, bool) {
	path, ok := c.Scope.CanonicalImports[qualifier]
	if !ok {
		return 0, false
	}
	return findInModule(store, c, path, localName)
}

func tierGlobImport(store *docstore.Store, c fileContext, name string) (model.SymbolId, bool) {
	for _, path := range c.Scope.WildcardImports {
		if id, ok := findInModule(store, c, path, name); ok {
			return id, true
		}
	}
	return 0, false
}

// findInModule backs both Tier 2 (direct import), Tier 3 (glob import), and
// Tier 4 (module-qualified name): all three reduce to "find a symbol with
// this exact (module_path, name) in this file's language".
func findInModule(store *docstore.Store, c fileContext, modulePath, name string) (model.SymbolId, bool) {
	candidates, err := store.FindSymbolsByName(name)
	if err != nil {
		return 0, false
	}
	for _, s := range candidates {
		if s.ModulePath == modulePath && s.LanguageID == c.LanguageID {
			return s.ID, true
		}
	}
	return 0, false
}

func tierWorkspaceWide(store *docstore.Store, c fileContext, rel model.UnresolvedRelationship) (model.SymbolId, bool) {
	candidates, err := store.FindSymbolsByName(rel.TargetName)
	if err != nil {
		return 0, false
	}
	var matches []model.Symbol
	for _, s := range candidates {
		if s.LanguageID == c.LanguageID {
			matches = append(matches, s)
		}
	}
	if len(matches) == 0 {
		return 0, false
	}
	referrerModule := referrerModulePath(c, rel.FromID)
	best := matches[0]
	bestScore := tieBreakScore(best, referrerModule)
	for _, m := range matches[1:] {
		score := tieBreakScore(m, referrerModule)
		if score.less(bestScore) {
			best = m
			bestScore = score
		}
	}
	return best.ID, true
}

func referrerModulePath(c fileContext, fromID model.SymbolId) string {
	for _, s := range c.Local {
		if s.ID == fromID {
			return s.ModulePath
		}
	}
	if len(c.Local) > 0 {
		return c.Local[0].ModulePath
	}
	return ""
}

// tieBreak orders Tier 5 candidates: same-prefix module path first, then
// smaller module-path depth difference, then lowest SymbolId.
type tieBreak struct {
	samePrefix bool
	depthDiff  int
	id         model.SymbolId
}

func (a tieBreak) less(b tieBreak) bool {
	if a.samePrefix != b.samePrefix {
		return a.samePrefix
	}
	if a.depthDiff != b.depthDiff {
		return a.depthDiff < b.depthDiff
	}
	return a.id < b.id
}

func tieBreakScore(s model.Symbol, referrerModule string) tieBreak {
	return tieBreak{
		samePrefix: sharesPrefix(s.ModulePath, referrerModule),
		depthDiff:  abs(pathDepth(s.ModulePath) - pathDepth(referrerModule)),
		id:         s.ID,
	}
}

func sharesPrefix(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Split(a, "/")[0] == strings.Split(b, "/")[0]
}

func pathDepth(p string) int {
	if p == "" {
		return 0
	}
	return strings.Count(p, "/") + 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func splitLastDot(s string) (qualifier, local string, ok bool) {
	idx := strings.LastIndex(s, ".")
	if idx < 0 {
		return "", s, false
	}
	return s[:idx], s[idx+1:], true
}
