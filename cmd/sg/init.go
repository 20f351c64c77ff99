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

	"gopkg.in/yaml.v3"

	sgerrors "github.com/symbolgraph/sg/internal/errors"
)

// runInit writes a default sg.yaml rooted at the current directory.
func runInit(args []string, explicitConfig string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing sg.yaml")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sg init [options]

Creates sg.yaml in the current directory with default settings.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	path, err := ConfigPath(explicitConfig)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !*force {
		return sgerrors.NewConfigError(
			fmt.Sprintf("%s already exists", path),
			"init refuses to overwrite an existing config by default",
			"Pass --force to overwrite it",
			nil,
		)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	fc := defaultFileConfig(cwd)

	data, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return sgerrors.NewConfigError(
			"cannot write sg.yaml",
			err.Error(),
			"Check directory permissions",
			err,
		)
	}

	fmt.Printf("Created %s\n", path)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  sg index    Index the workspace")
	fmt.Println("  sg status   Check indexing progress")
	return nil
}
