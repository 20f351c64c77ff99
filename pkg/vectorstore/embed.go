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

package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/symbolgraph/sg/pkg/model"
)

// EmbeddingProvider turns text into a dense vector. Implementations need
// not be safe for concurrent use; EmbeddingPool gives each worker its own
// instance.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbedItem pairs a symbol with the text its embedding is derived from
// (INDEX sends the symbol's doc comment; symbols without one are not sent).
type EmbedItem struct {
	ID   model.SymbolId
	Text string
}

// EmbedResult pairs an EmbedItem's ID with its computed vector, or a
// per-item error (which never aborts the batch).
type EmbedResult struct {
	ID     model.SymbolId
	Vector []float32
	Err    error
}

// EmbeddingPool holds a worker count and a provider constructor. Each
// EmbedParallel call starts that many worker goroutines, each holding its
// own EmbeddingProvider instance, fed through a jobs channel sized to the
// call's items.
type EmbeddingPool struct {
	newProvider func() EmbeddingProvider
	workers     int
	log         *slog.Logger
}

// NewEmbeddingPool constructs a pool of `workers` goroutines, each
// constructed via newProvider (called once per worker in every
// EmbedParallel call, so that providers
// requiring per-instance state - an HTTP client, a loaded model handle -
// are never shared across goroutines).
func NewEmbeddingPool(workers int, newProvider func() EmbeddingProvider, log *slog.Logger) *EmbeddingPool {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &EmbeddingPool{newProvider: newProvider, workers: workers, log: log}
}

// EmbedParallel embeds every item with non-empty Text, returning one
// EmbedResult per such item in no particular order; items with empty Text
// are skipped without calling the provider and get no result. A provider
// error on one item is recorded on that item's result and does not stop
// the others.
func (p *EmbeddingPool) EmbedParallel(ctx context.Context, items []EmbedItem) []EmbedResult {
	if len(items) == 0 {
		return nil
	}

	jobs := make(chan EmbedItem, len(items))
	results := make(chan EmbedResult, len(items))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		provider := p.newProvider()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				if item.Text == "" {
					continue
				}
				vec, err := provider.Embed(ctx, item.Text)
				if err != nil {
					p.log.Debug("vectorstore.embed.error", "symbol_id", item.ID, "err", err)
				}
				results <- EmbedResult{ID: item.ID, Vector: vec, Err: err}
			}
		}()
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]EmbedResult, 0, len(items))
	for r := range results {
		out = append(out, r)
	}
	return out
}

// StaticEmbeddingProvider is a deterministic, offline EmbeddingProvider: a
// bag-of-trigrams hash embedding seeded by xxhash. It exists so
// semantic_search works with zero external services; a real model-backed
// provider is a separate implementation of the same interface.
type StaticEmbeddingProvider struct {
	Dimension int
}

// Embed implements EmbeddingProvider by hashing overlapping trigrams of
// text into dimension buckets and L2-normalizing the result.
func (s StaticEmbeddingProvider) Embed(_ context.Context, text string) ([]float32, error) {
	if s.Dimension <= 0 {
		return nil, fmt.Errorf("vectorstore: static provider configured with dimension <= 0")
	}
	vec := make([]float32, s.Dimension)
	if len(text) == 0 {
		return vec, nil
	}

	runes := []rune(text)
	n := 3
	if len(runes) < n {
		n = len(runes)
	}
	for i := 0; i+n <= len(runes); i++ {
		gram := string(runes[i : i+n])
		h := xxhash.Sum64String(gram)
		bucket := h % uint64(s.Dimension)
		sign := float32(1)
		if (h>>3)&1 == 1 {
			sign = -1
		}
		vec[bucket] += sign
	}

	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return vec, nil
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}
