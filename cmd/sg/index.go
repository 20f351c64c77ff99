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
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/symbolgraph/sg/internal/ui"
	"github.com/symbolgraph/sg/pkg/engine"
)

// runIndex executes the 'index' command: opens the engine against the
// configured workspace root and runs a full pipeline pass over it.
func runIndex(args []string, explicitConfig string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	full := fs.Bool("full", false, "Force a full re-index, ignoring content hashes")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sg index [options]

Indexes the configured workspace root: discovers source files, parses
them, and writes symbols, relationships, and (if enabled) doc-comment
embeddings to the index.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := LoadConfig(explicitConfig)
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	eng, err := engine.Open(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	start := time.Now()
	if err := eng.IndexDirectory(context.Background(), cfg.Index.WorkspaceRoot, *full); err != nil {
		return err
	}

	ui.Successf("Indexed %s in %s", cfg.Index.WorkspaceRoot, time.Since(start).Round(time.Millisecond))
	return nil
}
