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

package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symbolgraph/sg/internal/config"
	"github.com/symbolgraph/sg/pkg/docstore"
	"github.com/symbolgraph/sg/pkg/langregistry"
)

func newTestPipeline(t *testing.T) (*Pipeline, *docstore.Store, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default(root, filepath.Join(root, ".sg"))

	store, err := docstore.Open(filepath.Join(cfg.Index.IndexPath, "docstore"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg := langregistry.New()
	reg.Register(langregistry.Go())

	p := New(store, nil, nil, reg, cfg, slog.New(slog.DiscardHandler))
	return p, store, root
}

func TestPipelineRunIndexesGoFile(t *testing.T) {
	p, store, root := newTestPipeline(t)

	src := "package main\n\n// Greet says hello.\nfunc Greet() string {\n\treturn \"hi\"\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte(src), 0o644))

	stats, err := p.Run(context.Background(), root, false)
	require.NoError(t, err)
	require.NotNil(t, stats)

	symbols, err := store.FindSymbolsByName("Greet")
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	require.Equal(t, "go", symbols[0].LanguageID)
}

func TestPipelineRunSkipsUnregisteredExtensions(t *testing.T) {
	p, store, root := newTestPipeline(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello world"), 0o644))

	_, err := p.Run(context.Background(), root, false)
	require.NoError(t, err)

	paths, err := store.AllFilePaths(root)
	require.NoError(t, err)
	require.Empty(t, paths)
}

func TestPipelineIncrementalRunDetectsDeletion(t *testing.T) {
	p, store, root := newTestPipeline(t)

	path := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc Keep() {}\n"), 0o644))

	_, err := p.Run(context.Background(), root, true)
	require.NoError(t, err)

	symbols, err := store.FindSymbolsByName("Keep")
	require.NoError(t, err)
	require.Len(t, symbols, 1)

	require.NoError(t, os.Remove(path))

	stats, err := p.Run(context.Background(), root, true)
	require.NoError(t, err)
	require.Equal(t, 1, stats.FilesDeleted)

	symbols, err = store.FindSymbolsByName("Keep")
	require.NoError(t, err)
	require.Empty(t, symbols)
}
