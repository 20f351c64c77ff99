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
	"context"
	"sync"

	"github.com/symbolgraph/sg/internal/metrics"
	"github.com/symbolgraph/sg/pkg/langregistry"
)

// parsedFile is PARSE's output: a file's extracted symbols/imports/
// unresolved relationships, or a pass-through deletion for COLLECT.
type parsedFile struct {
	Path        string
	LanguageID  string
	ContentHash uint64
	Parsed      *langregistry.ParsedFile
	Delete      bool
}

// parse runs N worker goroutines, each owning a private per-language
// Parser cache (never shared across goroutines, so the worker count
// directly bounds live parser instances per language).
func (p *Pipeline) parse(ctx context.Context, in <-chan readFile, out chan<- parsedFile) {
	defer close(out)

	var wg sync.WaitGroup
	workers := p.cfg.Pipeline.ParseThreads
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			parsers := make(map[string]langregistry.Parser)
			for item := range in {
				if item.Delete {
					out <- parsedFile{Path: item.Path, Delete: true}
					continue
				}
				parser, ok := parsers[item.LanguageID]
				if !ok {
					def := p.registry.ByName(item.LanguageID)
					if def == nil {
						metrics.FileSkippedParse()
						continue
					}
					created, err := def.CreateParser(langregistry.Settings{})
					if err != nil {
						metrics.FileSkippedParse()
						p.log.Debug("pipeline.parse.provider_error", "language", item.LanguageID, "err", err)
						continue
					}
					parser = created
					parsers[item.LanguageID] = parser
				}
				result, err := parser.Parse(ctx, item.Path, item.Content)
				if err != nil {
					metrics.FileSkippedParse()
					p.log.Debug("pipeline.parse.error", "path", item.Path, "err", err)
					continue
				}
				metrics.FilesParsed()
				out <- parsedFile{
					Path: item.Path, LanguageID: item.LanguageID,
					ContentHash: item.ContentHash, Parsed: result,
				}
			}
		}()
	}
	wg.Wait()
}
