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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symbolgraph/sg/pkg/model"
)

func TestAddRejectsDimensionMismatch(t *testing.T) {
	s := New(Config{Dimension: 4})
	err := s.Add(1, []float32{1, 2, 3})
	require.Error(t, err)
	var mismatch ErrDimensionMismatch
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, 4, mismatch.Expected)
	require.Equal(t, 3, mismatch.Got)
}

func TestAddAndSearchFindsNearestNeighbor(t *testing.T) {
	s := New(Config{Dimension: 2})
	require.NoError(t, s.Add(model.SymbolId(1), []float32{1, 0}))
	require.NoError(t, s.Add(model.SymbolId(2), []float32{0, 1}))
	require.Equal(t, 2, s.Len())

	results, err := s.Search([]float32{1, 0.01}, 1, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, model.SymbolId(1), results[0].ID)
}

func TestAddReplacesExistingIDWithoutGrowingCount(t *testing.T) {
	s := New(Config{Dimension: 2})
	require.NoError(t, s.Add(model.SymbolId(1), []float32{1, 0}))
	require.NoError(t, s.Add(model.SymbolId(1), []float32{0, 1}))
	require.Equal(t, 1, s.Len())
}

func TestSearchThresholdFiltersDistantResults(t *testing.T) {
	s := New(Config{Dimension: 2})
	require.NoError(t, s.Add(model.SymbolId(1), []float32{1, 0}))
	require.NoError(t, s.Add(model.SymbolId(2), []float32{-1, 0}))

	results, err := s.Search([]float32{1, 0}, 2, 0.9)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, model.SymbolId(1), results[0].ID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Dimension: 3, ModelName: "test-model"}
	s := New(cfg)
	require.NoError(t, s.Add(model.SymbolId(1), []float32{1, 0, 0}))
	require.NoError(t, s.Add(model.SymbolId(2), []float32{0, 1, 0}))

	require.NoError(t, s.Save(dir))

	loaded, err := Load(dir, cfg)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Len())

	results, err := loaded.Search([]float32{1, 0, 0}, 1, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, model.SymbolId(1), results[0].ID)
}

func TestLoadRejectsDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	s := New(Config{Dimension: 3})
	require.NoError(t, s.Add(model.SymbolId(1), []float32{1, 0, 0}))
	require.NoError(t, s.Save(dir))

	_, err := Load(dir, Config{Dimension: 4})
	require.Error(t, err)
	var mismatch ErrDimensionMismatch
	require.ErrorAs(t, err, &mismatch)
}
