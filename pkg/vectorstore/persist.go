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
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/symbolgraph/sg/pkg/model"
)

// fileMetadata is the persisted metadata.json sidecar.
type fileMetadata struct {
	ModelName string `json:"model_name"`
	Dimension int    `json:"dimension"`
	Count     int    `json:"count"`
	CreatedAt string `json:"created_at"`
}

// recordSize is the fixed per-vector stride: a little-endian u32 id
// followed by Dimension little-endian float32 components.
func recordSize(dimension int) int { return 4 + 4*dimension }

// Save atomically writes metadata.json and vectors.bin into dir.
func (s *Store) Save(dir string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vectorstore: create dir: %w", err)
	}

	meta := fileMetadata{
		ModelName: s.config.ModelName,
		Dimension: s.config.Dimension,
		Count:     s.count,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("vectorstore: marshal metadata: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, "metadata.json"), metaBytes); err != nil {
		return err
	}

	buf := make([]byte, 0, recordSize(s.config.Dimension)*s.count)
	for id, vec := range s.vectors {
		rec := make([]byte, recordSize(s.config.Dimension))
		binary.LittleEndian.PutUint32(rec[0:4], uint32(id))
		for i, f := range vec {
			binary.LittleEndian.PutUint32(rec[4+4*i:8+4*i], math.Float32bits(f))
		}
		buf = append(buf, rec...)
	}
	return writeAtomic(filepath.Join(dir, "vectors.bin"), buf)
}

// Load reads metadata.json and vectors.bin from dir into a fresh Store.
// The persisted dimension must match cfg.Dimension.
func Load(dir string, cfg Config) (*Store, error) {
	metaBytes, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("vectorstore: read metadata: %w", err)
	}
	var meta fileMetadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("vectorstore: parse metadata: %w", err)
	}
	if meta.Dimension != cfg.Dimension {
		return nil, ErrDimensionMismatch{Expected: cfg.Dimension, Got: meta.Dimension}
	}
	cfg.ModelName = meta.ModelName

	data, err := os.ReadFile(filepath.Join(dir, "vectors.bin"))
	if err != nil {
		return nil, fmt.Errorf("vectorstore: read vectors: %w", err)
	}

	store := New(cfg)
	stride := recordSize(cfg.Dimension)
	for off := 0; off+stride <= len(data); off += stride {
		id := binary.LittleEndian.Uint32(data[off : off+4])
		vec := make([]float32, cfg.Dimension)
		for i := 0; i < cfg.Dimension; i++ {
			start := off + 4 + 4*i
			vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[start : start+4]))
		}
		if err := store.Add(model.SymbolId(id), vec); err != nil {
			return nil, fmt.Errorf("vectorstore: load record %d: %w", id, err)
		}
	}
	return store, nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("vectorstore: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("vectorstore: rename %s: %w", tmp, err)
	}
	return nil
}
