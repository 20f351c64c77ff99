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

// Package metrics holds the Prometheus collectors shared by the pipeline
// and resolve packages.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type engineMetrics struct {
	once sync.Once

	filesDiscovered  prometheus.Counter
	filesRead        prometheus.Counter
	filesParsed      prometheus.Counter
	filesSkippedIO   prometheus.Counter
	filesSkippedParse prometheus.Counter

	symbolsIndexed      prometheus.Counter
	relationsUnresolved prometheus.Counter
	relationsResolved   prometheus.Counter
	relationsDropped    prometheus.Counter

	embedComputed prometheus.Counter
	embedSkipped  prometheus.Counter
	embedErrors   prometheus.Counter

	batchesCommitted prometheus.Counter

	parseDuration    prometheus.Histogram
	embedDuration    prometheus.Histogram
	resolveDuration  prometheus.Histogram
	totalRunDuration prometheus.Histogram

	embedPoolBusyWorkers prometheus.Gauge
	embedPoolQueueDepth  prometheus.Gauge
}

var m engineMetrics

func (e *engineMetrics) init() {
	e.once.Do(func() {
		e.filesDiscovered = prometheus.NewCounter(prometheus.CounterOpts{Name: "sg_files_discovered_total", Help: "Files yielded by DISCOVER"})
		e.filesRead = prometheus.NewCounter(prometheus.CounterOpts{Name: "sg_files_read_total", Help: "Files successfully read"})
		e.filesParsed = prometheus.NewCounter(prometheus.CounterOpts{Name: "sg_files_parsed_total", Help: "Files successfully parsed"})
		e.filesSkippedIO = prometheus.NewCounter(prometheus.CounterOpts{Name: "sg_files_skipped_io_total", Help: "Files skipped due to I/O errors"})
		e.filesSkippedParse = prometheus.NewCounter(prometheus.CounterOpts{Name: "sg_files_skipped_parse_total", Help: "Files skipped due to parse errors"})

		e.symbolsIndexed = prometheus.NewCounter(prometheus.CounterOpts{Name: "sg_symbols_indexed_total", Help: "Symbols persisted by INDEX"})
		e.relationsUnresolved = prometheus.NewCounter(prometheus.CounterOpts{Name: "sg_relationships_unresolved_total", Help: "Unresolved relationships produced by PARSE"})
		e.relationsResolved = prometheus.NewCounter(prometheus.CounterOpts{Name: "sg_relationships_resolved_total", Help: "Relationships resolved by RESOLVE"})
		e.relationsDropped = prometheus.NewCounter(prometheus.CounterOpts{Name: "sg_relationships_dropped_total", Help: "Relationships dropped unresolved"})

		e.embedComputed = prometheus.NewCounter(prometheus.CounterOpts{Name: "sg_embeddings_computed_total", Help: "Embeddings computed"})
		e.embedSkipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "sg_embeddings_skipped_total", Help: "Symbols skipped for embedding (empty doc comment)"})
		e.embedErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "sg_embeddings_errors_total", Help: "Embedding provider errors"})

		e.batchesCommitted = prometheus.NewCounter(prometheus.CounterOpts{Name: "sg_batches_committed_total", Help: "Document store batches committed"})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
		e.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "sg_parse_seconds", Help: "PARSE stage duration", Buckets: buckets})
		e.embedDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "sg_embed_seconds", Help: "EMBED stage duration", Buckets: buckets})
		e.resolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "sg_resolve_seconds", Help: "RESOLVE stage duration", Buckets: buckets})
		e.totalRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "sg_run_seconds", Help: "Total indexing run duration", Buckets: buckets})

		e.embedPoolBusyWorkers = prometheus.NewGauge(prometheus.GaugeOpts{Name: "sg_embed_pool_busy_workers", Help: "Embedding pool workers currently busy"})
		e.embedPoolQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{Name: "sg_embed_pool_queue_depth", Help: "Embedding pool pending job count"})

		prometheus.MustRegister(
			e.filesDiscovered, e.filesRead, e.filesParsed, e.filesSkippedIO, e.filesSkippedParse,
			e.symbolsIndexed, e.relationsUnresolved, e.relationsResolved, e.relationsDropped,
			e.embedComputed, e.embedSkipped, e.embedErrors,
			e.batchesCommitted,
			e.parseDuration, e.embedDuration, e.resolveDuration, e.totalRunDuration,
			e.embedPoolBusyWorkers, e.embedPoolQueueDepth,
		)
	})
}

func FilesDiscovered()   { m.init(); m.filesDiscovered.Inc() }
func FilesRead()         { m.init(); m.filesRead.Inc() }
func FilesParsed()       { m.init(); m.filesParsed.Inc() }
func FileSkippedIO()     { m.init(); m.filesSkippedIO.Inc() }
func FileSkippedParse()  { m.init(); m.filesSkippedParse.Inc() }

func SymbolsIndexed(n int)      { m.init(); m.symbolsIndexed.Add(float64(n)) }
func RelationshipsUnresolved(n int) { m.init(); m.relationsUnresolved.Add(float64(n)) }
func RelationshipResolved()     { m.init(); m.relationsResolved.Inc() }
func RelationshipDropped()      { m.init(); m.relationsDropped.Inc() }

func EmbedComputed() { m.init(); m.embedComputed.Inc() }
func EmbedSkipped()  { m.init(); m.embedSkipped.Inc() }
func EmbedError()    { m.init(); m.embedErrors.Inc() }

func BatchCommitted() { m.init(); m.batchesCommitted.Inc() }

func ObserveParseDuration(seconds float64)   { m.init(); m.parseDuration.Observe(seconds) }
func ObserveEmbedDuration(seconds float64)   { m.init(); m.embedDuration.Observe(seconds) }
func ObserveResolveDuration(seconds float64) { m.init(); m.resolveDuration.Observe(seconds) }
func ObserveRunDuration(seconds float64)     { m.init(); m.totalRunDuration.Observe(seconds) }

func SetEmbedPoolBusyWorkers(n int) { m.init(); m.embedPoolBusyWorkers.Set(float64(n)) }
func SetEmbedPoolQueueDepth(n int)  { m.init(); m.embedPoolQueueDepth.Set(float64(n)) }
