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
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/symbolgraph/sg/internal/output"
	"github.com/symbolgraph/sg/internal/ui"
	"github.com/symbolgraph/sg/pkg/engine"
)

// statusResult is the --json shape for the 'status' command.
type statusResult struct {
	WorkspaceRoot string `json:"workspace_root"`
	IndexPath     string `json:"index_path"`
	Files         int    `json:"files"`
	Symbols       int    `json:"symbols"`
	Error         string `json:"error,omitempty"`
}

// runStatus executes the 'status' command, counting files and symbols
// currently registered under the configured workspace root.
func runStatus(args []string, explicitConfig string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sg status [options]

Shows how many files and symbols the index currently holds for the
configured workspace root.

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

	result := statusResult{WorkspaceRoot: cfg.Index.WorkspaceRoot, IndexPath: cfg.Index.IndexPath}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	eng, err := engine.Open(cfg, log)
	if err != nil {
		result.Error = err.Error()
		printStatus(result, *jsonOutput)
		return err
	}
	defer func() { _ = eng.Close() }()

	files, symbols, err := countIndexed(eng, cfg.Index.WorkspaceRoot)
	if err != nil {
		result.Error = err.Error()
		printStatus(result, *jsonOutput)
		return err
	}
	result.Files = files
	result.Symbols = symbols

	printStatus(result, *jsonOutput)
	return nil
}

func countIndexed(eng *engine.Engine, root string) (files, symbols int, err error) {
	paths, err := eng.AllFilePaths(root)
	if err != nil {
		return 0, 0, err
	}
	for _, p := range paths {
		syms, err := eng.SymbolsInFile(p)
		if err != nil {
			continue
		}
		symbols += len(syms)
	}
	return len(paths), symbols, nil
}

func printStatus(r statusResult, jsonOutput bool) {
	if jsonOutput {
		_ = output.JSON(r)
		return
	}
	ui.Header("sg index status")
	fmt.Printf("Workspace:  %s\n", r.WorkspaceRoot)
	fmt.Printf("Index path: %s\n", r.IndexPath)
	fmt.Printf("Files:      %s\n", ui.CountText(r.Files))
	fmt.Printf("Symbols:    %s\n", ui.CountText(r.Symbols))
	if r.Error != "" {
		ui.Warningf("%s", r.Error)
	}
}
