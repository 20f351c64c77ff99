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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWhenFileAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sg.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, dir, cfg.Index.WorkspaceRoot)
	require.True(t, cfg.Semantic.Enabled)
}

func TestLoadConfigMergesYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("semantic_search: false\nembedding_threads: 7\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.False(t, cfg.Semantic.Enabled)
	require.Equal(t, 7, cfg.Semantic.EmbeddingThreads)
}

func TestLoadConfigOmittedSemanticSearchKeepsDefaultEnabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedding_threads: 3\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.True(t, cfg.Semantic.Enabled)
}

func TestConfigPathPrefersExplicit(t *testing.T) {
	path, err := ConfigPath("/tmp/custom.yaml")
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom.yaml", path)
}

func TestDefaultFileConfigEnablesSemanticSearch(t *testing.T) {
	fc := defaultFileConfig("/workspace")
	require.NotNil(t, fc.SemanticSearch)
	require.True(t, *fc.SemanticSearch)
	require.Equal(t, "/workspace/.sg", fc.IndexPath)
}
