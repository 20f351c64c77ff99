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

// Package vectorstore holds the dense-vector map from SymbolId to a
// doc-comment embedding, backed by coder/hnsw for approximate nearest
// neighbor search under cosine similarity, plus the on-disk
// metadata.json/vectors.bin persistence format.
package vectorstore

import (
	"fmt"
	"math"
	"sync"

	"github.com/coder/hnsw"

	"github.com/symbolgraph/sg/pkg/model"
)

// Config controls graph construction and the persisted model identity.
type Config struct {
	Dimension int
	ModelName string
	M         int // graph degree; 0 uses coder/hnsw's recommended default
	EfSearch  int
}

// ErrDimensionMismatch is returned when a vector's length does not match
// the store's configured dimension, at either Add or Load time.
type ErrDimensionMismatch struct {
	Expected, Got int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vectorstore: dimension mismatch: expected %d, got %d (re-index with a semantic_search model whose dimension matches)", e.Expected, e.Got)
}

// Store maps model.SymbolId directly to a vector in an hnsw.Graph[uint64];
// unlike stores that key on opaque strings, our IDs are already dense
// uint64s, so no auxiliary id<->key table is needed. vectors mirrors what
// has been added, purely so Save can enumerate records without depending
// on the graph exposing an iteration API.
type Store struct {
	mu      sync.RWMutex
	graph   *hnsw.Graph[uint64]
	config  Config
	count   int
	vectors map[uint64][]float32
}

// New constructs an empty Store from cfg.
func New(cfg Config) *Store {
	if cfg.M == 0 {
		cfg.M = 16
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = 20
	}
	g := hnsw.NewGraph[uint64]()
	g.Distance = hnsw.CosineDistance
	g.M = cfg.M
	g.EfSearch = cfg.EfSearch
	g.Ml = 0.25
	return &Store{graph: g, config: cfg, vectors: make(map[uint64][]float32)}
}

// Add inserts or replaces the vector for id. vec is normalized in place
// for cosine similarity, matching the persisted-model contract.
func (s *Store) Add(id model.SymbolId, vec []float32) error {
	if len(vec) != s.config.Dimension {
		return ErrDimensionMismatch{Expected: s.config.Dimension, Got: len(vec)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	normalize(vec)
	s.graph.Add(hnsw.MakeNode(uint64(id), vec))
	if _, exists := s.vectors[uint64(id)]; !exists {
		s.count++
	}
	s.vectors[uint64(id)] = vec
	return nil
}

// Neighbor is one nearest-neighbor search result.
type Neighbor struct {
	ID    model.SymbolId
	Score float32 // cosine similarity, higher is closer
}

// Search returns the k nearest neighbors to query, optionally filtered to
// a minimum similarity threshold (threshold <= 0 disables filtering).
func (s *Store) Search(query []float32, k int, threshold float32) ([]Neighbor, error) {
	if len(query) != s.config.Dimension {
		return nil, ErrDimensionMismatch{Expected: s.config.Dimension, Got: len(query)}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := make([]float32, len(query))
	copy(q, query)
	normalize(q)

	nodes := s.graph.Search(q, k)
	out := make([]Neighbor, 0, len(nodes))
	for _, n := range nodes {
		score := 1 - cosineDistance(q, n.Value)
		if threshold > 0 && score < threshold {
			continue
		}
		out = append(out, Neighbor{ID: model.SymbolId(n.Key), Score: score})
	}
	return out, nil
}

// Len reports the number of vectors currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func normalize(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range v {
		v[i] /= norm
	}
}

func cosineDistance(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(na)*math.Sqrt(nb)))
}
