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

// Package pipeline implements Phase 1 of the indexing run: DISCOVER, READ,
// PARSE, COLLECT, and INDEX (with EMBED folded into INDEX for each batch of
// doc-commented symbols), wired together with bounded channels so a slow
// downstream stage applies backpressure rather than unbounded buffering.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/symbolgraph/sg/internal/config"
	"github.com/symbolgraph/sg/internal/metrics"
	"github.com/symbolgraph/sg/pkg/docstore"
	"github.com/symbolgraph/sg/pkg/langregistry"
	"github.com/symbolgraph/sg/pkg/model"
	"github.com/symbolgraph/sg/pkg/vectorstore"
)

// Pipeline wires the document store, vector store, embedding pool, and
// language registry together behind the single Run entry point. Its fields
// are immutable after construction; the goroutines Run spawns hold no state
// beyond what each stage function already threads through its channels.
type Pipeline struct {
	store     *docstore.Store
	vecStore  *vectorstore.Store
	embedPool *vectorstore.EmbeddingPool
	registry  *langregistry.Registry
	cfg       config.Config
	log       *slog.Logger
}

// New constructs a Pipeline. embedPool and vecStore may both be nil, which
// disables EMBED entirely (symbols are still indexed; no vectors are
// produced) -- the configuration surface for this is Semantic.Enabled.
func New(store *docstore.Store, vecStore *vectorstore.Store, embedPool *vectorstore.EmbeddingPool, registry *langregistry.Registry, cfg config.Config, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{store: store, vecStore: vecStore, embedPool: embedPool, registry: registry, cfg: cfg, log: log}
}

// Stats summarizes one Run invocation for callers (cmd/sg, the engine
// facade) that want to report progress without consuming metrics directly.
type Stats struct {
	FilesDeleted int
	Unresolved   []model.UnresolvedRelationship
	Duration     time.Duration
}

// Run executes Phase 1 end to end against root: walk, read, parse, assign
// identifiers, persist, and embed. incremental restricts work to files whose
// content hash changed (or that were deleted) since the last run scoped to
// root. The returned Stats carries every UnresolvedRelationship produced,
// ready to be handed to Phase 2's resolve package by the caller.
func (p *Pipeline) Run(ctx context.Context, root string, incremental bool) (*Stats, error) {
	start := time.Now()

	paths := make(chan discoveredPath, p.cfg.Pipeline.PathChannelSize)
	files := make(chan readFile, p.cfg.Pipeline.ContentChannelSize)
	parsed := make(chan parsedFile, p.cfg.Pipeline.ParsedChannelSize)
	batches := make(chan collectedBatch, p.cfg.Pipeline.BatchChannelSize)

	var wg sync.WaitGroup
	var discoverErr, collectErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		discoverErr = p.discover(root, incremental, paths)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.read(incremental, paths, files)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.parse(ctx, files, parsed)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		collectErr = p.collect(parsed, batches)
	}()

	result, indexErr := p.index(ctx, batches)
	wg.Wait()

	if discoverErr != nil {
		return nil, fmt.Errorf("pipeline: discover: %w", discoverErr)
	}
	if collectErr != nil {
		return nil, fmt.Errorf("pipeline: collect: %w", collectErr)
	}
	if indexErr != nil {
		return nil, fmt.Errorf("pipeline: index: %w", indexErr)
	}

	elapsed := time.Since(start)
	metrics.ObserveRunDuration(elapsed.Seconds())

	return &Stats{
		FilesDeleted: len(result.Deleted),
		Unresolved:   result.Unresolved,
		Duration:     elapsed,
	}, nil
}
