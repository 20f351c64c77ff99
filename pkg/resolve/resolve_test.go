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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symbolgraph/sg/pkg/docstore"
	"github.com/symbolgraph/sg/pkg/langregistry"
	"github.com/symbolgraph/sg/pkg/model"
)

func openTestStore(t *testing.T) *docstore.Store {
	t.Helper()
	s, err := docstore.Open(filepath.Join(t.TempDir(), "docstore"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRunResolvesSameFileCall(t *testing.T) {
	store := openTestStore(t)
	reg := langregistry.New()
	reg.Register(langregistry.Go())

	fileID, err := store.NextFileID()
	require.NoError(t, err)
	callerID, err := store.NextSymbolID()
	require.NoError(t, err)
	calleeID, err := store.NextSymbolID()
	require.NoError(t, err)

	require.NoError(t, store.StartBatch())
	require.NoError(t, store.PutFile(model.FileRegistration{ID: fileID, Path: "main.go", LanguageID: "go"}))
	require.NoError(t, store.PutSymbol(model.Symbol{ID: callerID, FileID: fileID, Name: "Caller", Kind: model.KindFunction, LanguageID: "go"}))
	require.NoError(t, store.PutSymbol(model.Symbol{ID: calleeID, FileID: fileID, Name: "Callee", Kind: model.KindFunction, LanguageID: "go"}))
	require.NoError(t, store.CommitBatch())

	unresolved := []model.UnresolvedRelationship{
		{FromID: callerID, FromFileID: fileID, Kind: model.RelCalls, TargetName: "Callee"},
	}

	stats, err := Run(context.Background(), store, reg, unresolved, DefaultConfig(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.Equal(t, 1, stats.Resolved)
	require.Equal(t, 0, stats.Dropped)

	callees, err := store.RelationshipsFrom(callerID)
	require.NoError(t, err)
	require.Len(t, callees, 1)
	require.Equal(t, calleeID, callees[0].ToID)
}

func TestRunResolvesBareNameThroughDirectImportAheadOfWorkspaceGuess(t *testing.T) {
	store := openTestStore(t)
	reg := langregistry.New()
	reg.Register(langregistry.Go())

	callerFileID, err := store.NextFileID()
	require.NoError(t, err)
	importedFileID, err := store.NextFileID()
	require.NoError(t, err)
	decoyFileID, err := store.NextFileID()
	require.NoError(t, err)

	callerID, err := store.NextSymbolID()
	require.NoError(t, err)
	importedID, err := store.NextSymbolID()
	require.NoError(t, err)
	decoyID, err := store.NextSymbolID()
	require.NoError(t, err)

	require.NoError(t, store.StartBatch())
	require.NoError(t, store.PutFile(model.FileRegistration{ID: callerFileID, Path: "caller.go", LanguageID: "go"}))
	require.NoError(t, store.PutFile(model.FileRegistration{ID: importedFileID, Path: "callee.go", LanguageID: "go"}))
	require.NoError(t, store.PutFile(model.FileRegistration{ID: decoyFileID, Path: "decoy.go", LanguageID: "go"}))
	require.NoError(t, store.PutSymbol(model.Symbol{ID: callerID, FileID: callerFileID, Name: "Caller", Kind: model.KindFunction, LanguageID: "go", ModulePath: "github.com/myorg/app"}))
	require.NoError(t, store.PutSymbol(model.Symbol{ID: importedID, FileID: importedFileID, Name: "Callee", Kind: model.KindFunction, LanguageID: "go", ModulePath: "github.com/foo/Callee"}))
	require.NoError(t, store.PutSymbol(model.Symbol{ID: decoyID, FileID: decoyFileID, Name: "Callee", Kind: model.KindFunction, LanguageID: "go", ModulePath: "github.com/myorg/other"}))
	require.NoError(t, store.PutImport(model.Import{FileID: callerFileID, Path: "github.com/foo/Callee"}))
	require.NoError(t, store.CommitBatch())

	unresolved := []model.UnresolvedRelationship{
		{FromID: callerID, FromFileID: callerFileID, Kind: model.RelCalls, TargetName: "Callee"},
	}

	stats, err := Run(context.Background(), store, reg, unresolved, DefaultConfig(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.Equal(t, 1, stats.Resolved)
	require.Equal(t, 0, stats.Dropped)

	callees, err := store.RelationshipsFrom(callerID)
	require.NoError(t, err)
	require.Len(t, callees, 1)
	require.Equal(t, importedID, callees[0].ToID, "bare name should resolve through the direct-import tier, not the workspace-wide same-prefix guess")
}

func TestRunDropsUnresolvableReference(t *testing.T) {
	store := openTestStore(t)
	reg := langregistry.New()
	reg.Register(langregistry.Go())

	fileID, err := store.NextFileID()
	require.NoError(t, err)
	callerID, err := store.NextSymbolID()
	require.NoError(t, err)

	require.NoError(t, store.StartBatch())
	require.NoError(t, store.PutFile(model.FileRegistration{ID: fileID, Path: "main.go", LanguageID: "go"}))
	require.NoError(t, store.PutSymbol(model.Symbol{ID: callerID, FileID: fileID, Name: "Caller", Kind: model.KindFunction, LanguageID: "go"}))
	require.NoError(t, store.CommitBatch())

	unresolved := []model.UnresolvedRelationship{
		{FromID: callerID, FromFileID: fileID, Kind: model.RelCalls, TargetName: "NowhereToBeFound"},
	}

	stats, err := Run(context.Background(), store, reg, unresolved, DefaultConfig(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.Equal(t, 0, stats.Resolved)

	callees, err := store.RelationshipsFrom(callerID)
	require.NoError(t, err)
	require.Empty(t, callees)
}
