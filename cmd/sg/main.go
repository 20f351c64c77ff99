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

// Package main implements the sg CLI for indexing a workspace and querying
// the resulting symbol graph.
//
// Usage:
//
//	sg init                         Create sg.yaml configuration
//	sg index [--full]               Index the workspace
//	sg status [--json]              Show index status
//	sg query <name> [--json]        Look up a symbol and its relationships
//	sg reset --yes                  Delete all indexed data
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	sgerrors "github.com/symbolgraph/sg/internal/errors"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "", "Path to sg.yaml (default: ./sg.yaml)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `sg - symbol graph indexer and query CLI

Usage:
  sg <command> [options]

Commands:
  init     Create sg.yaml configuration
  index    Index the workspace
  status   Show index status
  query    Look up a symbol and its relationships
  reset    Delete all indexed data (destructive!)

Global Options:
  --config   Path to sg.yaml
  --version  Show version and exit

Examples:
  sg init
  sg index
  sg index --full
  sg query Engine.Open
  sg query Engine.Open --json
  sg status

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("sg version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	var err error
	switch command {
	case "init":
		err = runInit(cmdArgs, *configPath)
	case "index":
		err = runIndex(cmdArgs, *configPath)
	case "status":
		err = runStatus(cmdArgs, *configPath)
	case "query":
		err = runQuery(cmdArgs, *configPath)
	case "reset":
		err = runReset(cmdArgs, *configPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(exitCode(err))
}

// exitCode reports err and collapses it down to the CLI's three-value
// contract: 0 success, 1 general error, 2 invalid argument. Richer
// *errors.UserError codes (database, network, permission, ...) are
// printed in full via Format but still exit 1, except ExitInput and
// ExitConfig which surface as 2 -- the caller passed something wrong,
// not the tool failing on its own.
func exitCode(err error) int {
	if err == nil {
		return sgerrors.ExitSuccess
	}

	var uerr *sgerrors.UserError
	if errors.As(err, &uerr) {
		fmt.Fprint(os.Stderr, uerr.Format(false))
		switch uerr.ExitCode {
		case sgerrors.ExitInput, sgerrors.ExitConfig:
			return 2
		default:
			return 1
		}
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}
