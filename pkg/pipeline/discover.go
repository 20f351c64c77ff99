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
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	"github.com/symbolgraph/sg/internal/metrics"
)

// discoveredPath is one candidate file. It carries no content hash: READ
// hashes every file it reads and, in incremental mode, compares that hash
// with the stored one.
type discoveredPath struct {
	Path      string
	Delete    bool // true when this path is registered but missing from disk
	LanguageID string
}

var defaultIgnores = []string{
	"**/.git/**", "**/.git", "**/node_modules/**", "**/vendor/**",
	"**/.cache/**", "**/dist/**", "**/build/**",
}

// discover walks root, emitting one discoveredPath per candidate file onto
// out. In incremental mode it additionally diffs disk state against the
// document store's registered files scoped to root, emitting deletions
// for registered paths no longer present on disk.
func (p *Pipeline) discover(root string, incremental bool, out chan<- discoveredPath) error {
	defer close(out)

	ignores := append(append([]string{}, defaultIgnores...), p.cfg.Indexing.IgnorePatterns...)
	seen := make(map[string]bool)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, never abort the walk
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if rel != "." && matchesAny(ignores, rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		lang := p.registry.ByExtension(filepath.Ext(path))
		if lang == nil {
			return nil
		}
		seen[path] = true
		metrics.FilesDiscovered()
		out <- discoveredPath{Path: path, LanguageID: lang.Name()}
		return nil
	})
	if err != nil {
		return err
	}

	if !incremental {
		return nil
	}

	registered, err := p.store.AllFilePaths(root)
	if err != nil {
		return err
	}
	for _, path := range registered {
		if seen[path] {
			continue
		}
		if _, statErr := os.Stat(path); statErr == nil {
			continue // still present but filtered by ignore rules now; leave as-is
		}
		out <- discoveredPath{Path: path, Delete: true}
	}
	return nil
}

func matchesAny(patterns []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
		if strings.HasPrefix(rel, strings.TrimSuffix(pat, "/**")+"/") {
			return true
		}
	}
	return false
}

// contentHash computes the xxhash64 of file bytes. READ calls it for every
// file in both modes; in incremental mode READ compares it with the stored
// hash.
func contentHash(data []byte) uint64 {
	return xxhash.Sum64(data)
}
