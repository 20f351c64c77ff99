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
	"os"
	"sync"

	"github.com/symbolgraph/sg/internal/metrics"
)

// readFile is READ's unit of output: the raw bytes plus the metadata
// DISCOVER attached, ready for PARSE or for a pass-through deletion.
type readFile struct {
	Path        string
	LanguageID  string
	Content     []byte
	ContentHash uint64
	Delete      bool
}

// read runs N worker goroutines pulling from in and pushing to out,
// skipping (and counting) files it cannot read rather than aborting the
// run. In incremental mode, a file whose hash matches the stored hash is
// dropped here rather than forwarded to PARSE.
func (p *Pipeline) read(incremental bool, in <-chan discoveredPath, out chan<- readFile) {
	defer close(out)

	var wg sync.WaitGroup
	workers := p.cfg.Pipeline.ReadThreads
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range in {
				if item.Delete {
					out <- readFile{Path: item.Path, Delete: true}
					continue
				}
				data, err := os.ReadFile(item.Path)
				if err != nil {
					metrics.FileSkippedIO()
					p.log.Debug("pipeline.read.error", "path", item.Path, "err", err)
					continue
				}
				hash := contentHash(data)
				if incremental {
					if existing, err := p.store.GetFileInfo(item.Path); err == nil && existing.ContentHash == hash {
						continue // unchanged, nothing to re-parse
					}
				}
				metrics.FilesRead()
				out <- readFile{
					Path: item.Path, LanguageID: item.LanguageID,
					Content: data, ContentHash: hash,
				}
			}
		}()
	}
	wg.Wait()
}
