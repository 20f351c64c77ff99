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

	sgerrors "github.com/symbolgraph/sg/internal/errors"
	"github.com/symbolgraph/sg/internal/output"
	"github.com/symbolgraph/sg/internal/ui"
	"github.com/symbolgraph/sg/pkg/engine"
	"github.com/symbolgraph/sg/pkg/model"
)

// queryResult is the --json shape for the 'query' command.
type queryResult struct {
	Symbol  model.Symbol         `json:"symbol"`
	Callers []model.Relationship `json:"callers,omitempty"`
	Callees []model.Relationship `json:"callees,omitempty"`
}

// runQuery executes the 'query' command: looks up a symbol by name and
// prints its callers and callees.
func runQuery(args []string, explicitConfig string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	fold := fs.Bool("fold", false, "Case-insensitive name match")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sg query <name> [options]

Looks up a symbol by exact name and prints its callers and callees.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	positional := fs.NArg()
	var name string
	if positional > 0 {
		name = fs.Arg(0)
		// Options may also follow the name ("sg query Engine.Open --json");
		// flag parsing stops at the first positional, so parse what follows it.
		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return err
		}
		positional = 1 + fs.NArg()
	}
	if positional != 1 {
		fs.Usage()
		return sgerrors.NewInputError(
			"query requires exactly one symbol name",
			fmt.Sprintf("got %d positional arguments", positional),
			"Run: sg query <name>",
		)
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

	var matches []model.Symbol
	if *fold {
		matches, err = eng.SearchFold(name)
	} else {
		matches, err = eng.FindSymbol(name)
	}
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return sgerrors.NewNotFoundError(
			fmt.Sprintf("no symbol named %q", name),
			"the index has no matching symbol",
			"Run 'sg index' first, or check the spelling",
		)
	}

	for _, sym := range matches {
		callers, err := eng.Callers(sym.ID)
		if err != nil {
			return err
		}
		callees, err := eng.Callees(sym.ID)
		if err != nil {
			return err
		}
		printQueryResult(queryResult{Symbol: sym, Callers: callers, Callees: callees}, *jsonOutput)
	}
	return nil
}

func printQueryResult(r queryResult, jsonOutput bool) {
	if jsonOutput {
		_ = output.JSON(r)
		return
	}
	ui.SubHeader(fmt.Sprintf("%s  (%s, file#%d:%d)", r.Symbol.Name, r.Symbol.Kind, r.Symbol.FileID, r.Symbol.Range.StartLine))
	fmt.Printf("  callers: %s\n", ui.CountText(len(r.Callers)))
	for _, c := range r.Callers {
		fmt.Printf("    <- #%d\n", c.FromID)
	}
	fmt.Printf("  callees: %s\n", ui.CountText(len(r.Callees)))
	for _, c := range r.Callees {
		fmt.Printf("    -> #%d\n", c.ToID)
	}
}
