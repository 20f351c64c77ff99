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

package resolve

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/symbolgraph/sg/pkg/docstore"
	"github.com/symbolgraph/sg/pkg/model"
)

// writer buffers resolved edges and commits them once the buffer reaches
// threshold, or on an explicit commit/flush call. It is written to
// concurrently by every RESOLVE goroutine in a pass, so add is guarded by a
// mutex around both the buffer and the shared docstore batch.
type writer struct {
	mu        sync.Mutex
	store     *docstore.Store
	threshold int
	buffered  int
	log       *slog.Logger
	batchOpen bool
}

func newWriter(store *docstore.Store, threshold int, log *slog.Logger) *writer {
	return &writer{store: store, threshold: threshold, log: log}
}

// add stages one resolved relationship, committing the batch first if it
// has reached threshold. A failure to stage a single edge is logged and
// counted but never aborts the pass.
func (w *writer) add(r model.Relationship) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.batchOpen {
		if err := w.store.StartBatch(); err != nil {
			return fmt.Errorf("resolve: write: start batch: %w", err)
		}
		w.batchOpen = true
	}

	if err := w.store.PutRelationship(r); err != nil {
		w.log.Warn("resolve.write.edge_error", "from", r.FromID, "to", r.ToID, "kind", r.Kind, "err", err)
		return nil
	}
	w.buffered++

	if w.buffered >= w.threshold {
		return w.commitLocked()
	}
	return nil
}

// commit flushes any buffered edges now, used between Pass 1 and Pass 2 so
// Pass 2 can see Pass 1's container-membership edges through the store.
func (w *writer) commit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.commitLocked()
}

// flush is commit's end-of-phase counterpart; the two are identical but
// named separately to mirror spec.md's "commit between passes, flush at the
// end" vocabulary.
func (w *writer) flush() error {
	return w.commit()
}

func (w *writer) commitLocked() error {
	if !w.batchOpen {
		return nil
	}
	if err := w.store.CommitBatch(); err != nil {
		return fmt.Errorf("resolve: write: commit: %w", err)
	}
	w.batchOpen = false
	w.buffered = 0
	return nil
}
