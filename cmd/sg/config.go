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
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/symbolgraph/sg/internal/config"
	sgerrors "github.com/symbolgraph/sg/internal/errors"
)

// fileConfig is sg.yaml's on-disk shape: a thin YAML front end over
// config.Config that only exposes the fields a user plausibly wants to
// override from the command line.
type fileConfig struct {
	WorkspaceRoot    string `yaml:"workspace_root"`
	IndexPath        string `yaml:"index_path"`
	SemanticSearch   *bool  `yaml:"semantic_search"`
	EmbeddingThreads int    `yaml:"embedding_threads"`
}

// ConfigPath resolves the sg.yaml path: an explicit --config flag wins,
// otherwise ./sg.yaml relative to the current directory.
func ConfigPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, "sg.yaml"), nil
}

// LoadConfig reads sg.yaml (if present) and merges it over config.Default,
// rooted at the file's own directory so index_path/workspace_root resolve
// relative to where sg.yaml lives rather than the caller's cwd.
func LoadConfig(explicitPath string) (config.Config, error) {
	path, err := ConfigPath(explicitPath)
	if err != nil {
		return config.Config{}, sgerrors.NewConfigError(
			"cannot determine sg.yaml location",
			err.Error(),
			"Pass --config explicitly",
			err,
		)
	}

	dir := filepath.Dir(path)
	cfg := config.Default(dir, filepath.Join(dir, ".sg"))

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, cfg.Validate()
	}
	if err != nil {
		return config.Config{}, sgerrors.NewConfigError(
			"cannot read sg.yaml",
			err.Error(),
			"Run 'sg init' to create one",
			err,
		)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return config.Config{}, sgerrors.NewConfigError(
			"cannot parse sg.yaml",
			err.Error(),
			"Check sg.yaml's YAML syntax and option names",
			err,
		)
	}

	if fc.WorkspaceRoot != "" {
		root := fc.WorkspaceRoot
		if !filepath.IsAbs(root) {
			root = filepath.Join(dir, root)
		}
		cfg.Index.WorkspaceRoot = root
		cfg.Indexing.ProjectRoot = root
	}
	if fc.IndexPath != "" {
		indexPath := fc.IndexPath
		if !filepath.IsAbs(indexPath) {
			indexPath = filepath.Join(dir, indexPath)
		}
		cfg.Index.IndexPath = indexPath
	}
	if fc.SemanticSearch != nil {
		cfg.Semantic.Enabled = *fc.SemanticSearch
	}
	if fc.EmbeddingThreads > 0 {
		cfg.Semantic.EmbeddingThreads = fc.EmbeddingThreads
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func defaultFileConfig(workspaceRoot string) fileConfig {
	enabled := true
	return fileConfig{
		WorkspaceRoot:    workspaceRoot,
		IndexPath:        filepath.Join(workspaceRoot, ".sg"),
		SemanticSearch:   &enabled,
		EmbeddingThreads: 2,
	}
}
