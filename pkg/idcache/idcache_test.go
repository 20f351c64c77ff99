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

package idcache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symbolgraph/sg/pkg/model"
)

func TestBuildAndLookupRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbol_cache.bin")
	entries := []Entry{
		{Name: "Greet", ID: model.SymbolId(1)},
		{Name: "Greet", ID: model.SymbolId(2)}, // overloaded/shadowed name, shares a key
		{Name: "Farewell", ID: model.SymbolId(3)},
	}
	require.NoError(t, Build(path, entries))

	cache, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	ids := cache.Lookup("Greet")
	require.ElementsMatch(t, []model.SymbolId{1, 2}, ids)

	require.Equal(t, []model.SymbolId{3}, cache.Lookup("Farewell"))
	require.Empty(t, cache.Lookup("Nonexistent"))
}
