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

package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	sgtesting "github.com/symbolgraph/sg/internal/testing"
	"github.com/symbolgraph/sg/pkg/engine"
	"github.com/symbolgraph/sg/pkg/model"
)

func TestIndexDirectoryAndFindSymbol(t *testing.T) {
	eng := sgtesting.SetupTestEngine(t)
	dir := t.TempDir()
	sgtesting.WriteTestFile(t, dir, "main.go", "package main\n\nfunc Entry() {\n\tHelper()\n}\n\nfunc Helper() {}\n")

	require.NoError(t, eng.IndexDirectory(context.Background(), dir, true))

	entry, err := eng.FindSymbol("Entry")
	require.NoError(t, err)
	require.Len(t, entry, 1)

	callees, err := eng.Callees(entry[0].ID)
	require.NoError(t, err)
	require.Len(t, callees, 1)
}

func TestSearchFoldIsCaseInsensitive(t *testing.T) {
	eng := sgtesting.SetupTestEngine(t)
	dir := t.TempDir()
	sgtesting.WriteTestFile(t, dir, "main.go", "package main\n\nfunc Entry() {}\n")

	require.NoError(t, eng.IndexDirectory(context.Background(), dir, true))

	exact, err := eng.FindSymbol("entry")
	require.NoError(t, err)
	require.Empty(t, exact)

	folded, err := eng.SearchFold("entry")
	require.NoError(t, err)
	require.Len(t, folded, 1)
}

func TestSymbolContextIncludesRequestedFacets(t *testing.T) {
	eng := sgtesting.SetupTestEngine(t)
	dir := t.TempDir()
	sgtesting.WriteTestFile(t, dir, "main.go", "package main\n\nfunc Entry() {\n\tHelper()\n}\n\nfunc Helper() {}\n")

	require.NoError(t, eng.IndexDirectory(context.Background(), dir, true))

	entry, err := eng.FindSymbol("Entry")
	require.NoError(t, err)
	require.Len(t, entry, 1)

	ctx, err := eng.SymbolContext(entry[0].ID, engine.SymbolContextOptions{IncludeCallees: true, IncludeSiblings: true})
	require.NoError(t, err)
	require.Len(t, ctx.Callees, 1)
	require.Len(t, ctx.Siblings, 1)
	require.Empty(t, ctx.Callers)
}

func TestImpactRadiusWalksDependentsBackward(t *testing.T) {
	eng := sgtesting.SetupTestEngine(t)
	dir := t.TempDir()
	sgtesting.WriteTestFile(t, dir, "main.go", `package main

func A() { B() }
func B() { C() }
func C() { D() }
func D() {}
`)

	require.NoError(t, eng.IndexDirectory(context.Background(), dir, true))

	byName := func(name string) model.SymbolId {
		found, err := eng.FindSymbol(name)
		require.NoError(t, err)
		require.Len(t, found, 1)
		return found[0].ID
	}

	b, c, d := byName("B"), byName("C"), byName("D")

	radius, err := eng.ImpactRadius(d, 2)
	require.NoError(t, err)
	require.Len(t, radius, 2)
	require.Contains(t, radius, b)
	require.Contains(t, radius, c)
	require.NotContains(t, radius, d)
}

func TestIndexDirectoryFallsBackToGenericParserForUnregisteredLanguage(t *testing.T) {
	eng := sgtesting.SetupTestEngine(t)
	dir := t.TempDir()
	sgtesting.WriteTestFile(t, dir, "util.py", "def format_name(value):\n    return value\n")

	require.NoError(t, eng.IndexDirectory(context.Background(), dir, true))

	found, err := eng.FindSymbol("format_name")
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestSyncRootsRemovesDepartedRootSymbols(t *testing.T) {
	eng := sgtesting.SetupTestEngine(t)
	dir := t.TempDir()
	sgtesting.WriteTestFile(t, dir, "main.go", "package main\n\nfunc Entry() {}\n")

	require.NoError(t, eng.IndexDirectory(context.Background(), dir, true))
	require.NoError(t, eng.SyncRoots(context.Background(), []string{dir}))

	found, err := eng.FindSymbol("Entry")
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, eng.SyncRoots(context.Background(), []string{}))

	found, err = eng.FindSymbol("Entry")
	require.NoError(t, err)
	require.Empty(t, found)
}
