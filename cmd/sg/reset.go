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
	"os"

	sgerrors "github.com/symbolgraph/sg/internal/errors"
	"github.com/symbolgraph/sg/internal/ui"
)

// runReset deletes the index directory entirely.
func runReset(args []string, explicitConfig string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "Confirm the reset (required)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sg reset --yes

Deletes the index directory, clearing all indexed data. Use before a
full re-index to guarantee a clean slate.

WARNING: this cannot be undone.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*confirm {
		return sgerrors.NewInputError(
			"reset requires --yes to confirm",
			"this operation deletes all indexed data",
			"Run: sg reset --yes",
		)
	}

	cfg, err := LoadConfig(explicitConfig)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Index.IndexPath); os.IsNotExist(err) {
		fmt.Printf("No index found at %s\n", cfg.Index.IndexPath)
		return nil
	}

	fmt.Printf("Resetting index at %s...\n", cfg.Index.IndexPath)
	if err := os.RemoveAll(cfg.Index.IndexPath); err != nil {
		return sgerrors.NewPermissionError(
			"cannot delete index directory",
			err.Error(),
			"Check directory permissions, or remove it manually",
			err,
		)
	}

	ui.Success("Reset complete.")
	fmt.Println("Run 'sg index' to reindex.")
	return nil
}
