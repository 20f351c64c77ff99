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

package docstore

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symbolgraph/sg/pkg/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "docstore")
	s, err := Open(dir, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNextFileIDMonotonic(t *testing.T) {
	s := openTestStore(t)

	first, err := s.NextFileID()
	require.NoError(t, err)
	second, err := s.NextFileID()
	require.NoError(t, err)

	require.NotZero(t, first)
	require.Equal(t, first+1, second)
}

func TestNextSymbolIDMonotonic(t *testing.T) {
	s := openTestStore(t)

	first, err := s.NextSymbolID()
	require.NoError(t, err)
	second, err := s.NextSymbolID()
	require.NoError(t, err)

	require.NotZero(t, first)
	require.Equal(t, first+1, second)
}

func TestCounterSurvivesReopenAfterCommit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docstore")
	log := slog.New(slog.DiscardHandler)

	s, err := Open(dir, log)
	require.NoError(t, err)

	fileID, err := s.NextFileID()
	require.NoError(t, err)
	symID, err := s.NextSymbolID()
	require.NoError(t, err)

	require.NoError(t, s.StartBatch())
	require.NoError(t, s.PutFile(model.FileRegistration{ID: fileID, Path: "a.go", LanguageID: "go"}))
	require.NoError(t, s.PutSymbol(model.Symbol{ID: symID, FileID: fileID, Name: "A", Kind: model.KindFunction, LanguageID: "go"}))
	require.NoError(t, s.CommitBatch())
	require.NoError(t, s.Close())

	reopened, err := Open(dir, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	nextFileID, err := reopened.NextFileID()
	require.NoError(t, err)
	nextSymID, err := reopened.NextSymbolID()
	require.NoError(t, err)

	require.Equal(t, fileID+1, nextFileID)
	require.Equal(t, symID+1, nextSymID)
}

func TestNextFileIDAdvancesWithoutAnOpenBatch(t *testing.T) {
	s := openTestStore(t)

	first, err := s.NextFileID()
	require.NoError(t, err)
	second, err := s.NextFileID()
	require.NoError(t, err)

	require.Equal(t, first+1, second)
}

func TestPutAndFindSymbolByName(t *testing.T) {
	s := openTestStore(t)

	fileID, err := s.NextFileID()
	require.NoError(t, err)
	symID, err := s.NextSymbolID()
	require.NoError(t, err)

	require.NoError(t, s.StartBatch())
	require.NoError(t, s.PutFile(model.FileRegistration{ID: fileID, Path: "a/b.go", LanguageID: "go"}))
	require.NoError(t, s.PutSymbol(model.Symbol{
		ID: symID, FileID: fileID, Name: "DoThing", Kind: model.KindFunction,
	}))
	require.NoError(t, s.CommitBatch())

	found, err := s.FindSymbolsByName("DoThing")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, symID, found[0].ID)
}

func TestFindSymbolsByNameFoldIsCaseInsensitive(t *testing.T) {
	s := openTestStore(t)

	fileID, err := s.NextFileID()
	require.NoError(t, err)
	symID, err := s.NextSymbolID()
	require.NoError(t, err)

	require.NoError(t, s.StartBatch())
	require.NoError(t, s.PutFile(model.FileRegistration{ID: fileID, Path: "a/b.go", LanguageID: "go"}))
	require.NoError(t, s.PutSymbol(model.Symbol{
		ID: symID, FileID: fileID, Name: "DoThing", Kind: model.KindFunction,
	}))
	require.NoError(t, s.CommitBatch())

	exact, err := s.FindSymbolsByName("dothing")
	require.NoError(t, err)
	require.Empty(t, exact)

	folded, err := s.FindSymbolsByNameFold("dothing")
	require.NoError(t, err)
	require.Len(t, folded, 1)
	require.Equal(t, symID, folded[0].ID)
}

func TestGetFileInfoNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetFileInfo("does/not/exist.go")
	require.Error(t, err)
}

func TestDeleteFileDocumentsCascadesSymbols(t *testing.T) {
	s := openTestStore(t)

	fileID, err := s.NextFileID()
	require.NoError(t, err)
	symID, err := s.NextSymbolID()
	require.NoError(t, err)

	require.NoError(t, s.StartBatch())
	require.NoError(t, s.PutFile(model.FileRegistration{ID: fileID, Path: "a/b.go", LanguageID: "go"}))
	require.NoError(t, s.PutSymbol(model.Symbol{ID: symID, FileID: fileID, Name: "Gone", Kind: model.KindFunction}))
	require.NoError(t, s.CommitBatch())

	require.NoError(t, s.DeleteFileDocuments(fileID))

	found, err := s.FindSymbolsByName("Gone")
	require.NoError(t, err)
	require.Empty(t, found)
}
