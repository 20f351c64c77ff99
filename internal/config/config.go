// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package config defines the engine's recognized configuration surface.
// Any field not listed here is a validation error at load time -- the
// engine never silently ignores an unrecognized option.
package config

import (
	"fmt"

	sgerrors "github.com/symbolgraph/sg/internal/errors"
)

// IndexConfig locates the persisted index on disk.
type IndexConfig struct {
	IndexPath     string
	WorkspaceRoot string
}

// IndexingConfig controls file discovery during DISCOVER.
type IndexingConfig struct {
	ParallelThreads int
	IgnorePatterns  []string
	ProjectRoot     string
}

// SemanticConfig controls whether and how doc comments are embedded.
type SemanticConfig struct {
	Enabled          bool
	Model            string
	EmbeddingThreads int
	Dimension        int
}

// PipelineConfig exposes the channel/worker/batch tunables from
// SPEC_FULL.md's component design.
type PipelineConfig struct {
	PathChannelSize    int
	ContentChannelSize int
	ParsedChannelSize  int
	BatchChannelSize   int
	ReadThreads        int
	ParseThreads       int
	BatchSize          int
	BatchesPerCommit   int
}

// LanguageConfig toggles individual languages on or off by id.
type LanguageConfig struct {
	Enabled map[string]bool
}

// Config is the complete, validated configuration surface.
type Config struct {
	Index    IndexConfig
	Indexing IndexingConfig
	Semantic SemanticConfig
	Pipeline PipelineConfig
	Language LanguageConfig
}

// Default returns a Config with the recommended defaults from
// SPEC_FULL.md §9 (path_channel=1024, content_channel=256,
// parsed_channel=128, batch_channel=8).
func Default(workspaceRoot, indexPath string) Config {
	return Config{
		Index: IndexConfig{IndexPath: indexPath, WorkspaceRoot: workspaceRoot},
		Indexing: IndexingConfig{
			ParallelThreads: 4,
			ProjectRoot:     workspaceRoot,
		},
		Semantic: SemanticConfig{
			Enabled:          true,
			Model:            "static-trigram-v1",
			EmbeddingThreads: 2,
			Dimension:        256,
		},
		Pipeline: PipelineConfig{
			PathChannelSize:    1024,
			ContentChannelSize: 256,
			ParsedChannelSize:  128,
			BatchChannelSize:   8,
			ReadThreads:        4,
			ParseThreads:       4,
			BatchSize:          256,
			BatchesPerCommit:   8,
		},
		Language: LanguageConfig{Enabled: map[string]bool{"go": true}},
	}
}

// Validate checks field-level invariants and returns a *errors.UserError
// (ExitConfig) describing the first problem found.
func (c Config) Validate() error {
	if c.Index.IndexPath == "" {
		return sgerrors.NewConfigError(
			"index_path is required",
			"Config.Index.IndexPath was empty",
			"Set index_path to a writable directory",
			nil,
		)
	}
	if c.Index.WorkspaceRoot == "" {
		return sgerrors.NewConfigError(
			"workspace_root is required",
			"Config.Index.WorkspaceRoot was empty",
			"Set workspace_root to the directory you want indexed",
			nil,
		)
	}
	if c.Pipeline.ReadThreads <= 0 || c.Pipeline.ParseThreads <= 0 {
		return sgerrors.NewConfigError(
			"pipeline thread counts must be positive",
			fmt.Sprintf("read_threads=%d parse_threads=%d", c.Pipeline.ReadThreads, c.Pipeline.ParseThreads),
			"Set pipeline.read_threads and pipeline.parse_threads to at least 1",
			nil,
		)
	}
	if c.Semantic.Enabled && c.Semantic.Dimension <= 0 {
		return sgerrors.NewConfigError(
			"semantic_search.dimension must be positive when enabled",
			fmt.Sprintf("dimension=%d", c.Semantic.Dimension),
			"Set semantic_search.dimension to match the embedding model, or disable semantic_search",
			nil,
		)
	}
	return nil
}
