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

package metrics

import "testing"

// TestCountersDoNotPanic exercises every exported counter/gauge/histogram
// once. The pipeline and resolve packages are the real functional coverage
// for these (they call into this package mid-run); this just guards the
// lazy-init path (m.init()) against a nil-pointer regression.
func TestCountersDoNotPanic(t *testing.T) {
	FilesDiscovered()
	FilesRead()
	FilesParsed()
	FileSkippedIO()
	FileSkippedParse()
	SymbolsIndexed(3)
	RelationshipsUnresolved(2)
	RelationshipResolved()
	RelationshipDropped()
	EmbedComputed()
	EmbedSkipped()
	EmbedError()
	BatchCommitted()
	ObserveParseDuration(0.1)
	ObserveEmbedDuration(0.1)
	ObserveResolveDuration(0.1)
	ObserveRunDuration(0.1)
	SetEmbedPoolBusyWorkers(1)
	SetEmbedPoolQueueDepth(1)
}
