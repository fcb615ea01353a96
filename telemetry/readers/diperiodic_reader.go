// SPDX-FileCopyrightText: Copyright (c) 2025 NVIDIA CORPORATION & AFFILIATES. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package readers provides an OpenTelemetry metric.Reader that collects
// gauge snapshots far more often than it exports them, so a vfs.FileSystem
// backend under heavy traffic doesn't spend bandwidth shipping a metrics
// payload per operation.
package readers

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Default intervals for the diperiodic collect/export cycle.
const (
	DefaultCollectIntervalMillis = 1000  // 1 second
	DefaultCollectTimeoutMillis  = 10000 // 10 seconds
	DefaultExportIntervalMillis  = 60000 // 60 seconds
	DefaultExportTimeoutMillis   = 30000 // 30 seconds
)

// snapshotQueue accumulates ResourceMetrics snapshots between exports and
// hands the whole batch to the exporter atomically. A gauge only carries
// its latest value, so every collected snapshot must be kept and exported
// individually rather than overwritten by the next one.
type snapshotQueue struct {
	mu    sync.Mutex
	items []metricdata.ResourceMetrics
}

func (q *snapshotQueue) push(rm metricdata.ResourceMetrics) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, rm)
}

// drain empties the queue and returns what it held, leaving an empty queue
// behind so collection can continue uninterrupted while the caller exports.
func (q *snapshotQueue) drain() []metricdata.ResourceMetrics {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// DiperiodicReader implements the diperiodic pattern by wrapping
// ManualReader: Collect() snapshots current gauge values into a queue on a
// short tick, and a separate long tick drains the queue and exports
// everything it holds in one batch. Go's OTel SDK keeps Reader's methods
// unexported, so the only way to build a custom reader is to embed one
// that already implements it and override the lifecycle methods.
type DiperiodicReader struct {
	*metric.ManualReader
	exporter metric.Exporter

	collectInterval time.Duration
	collectTimeout  time.Duration
	exportInterval  time.Duration
	exportTimeout   time.Duration

	pending snapshotQueue

	collectTicker *time.Ticker
	exportTicker  *time.Ticker
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	shutdownOnce  sync.Once

	flush chan chan error
}

// Option configures a DiperiodicReader at construction time.
type Option func(*DiperiodicReader)

// WithCollectInterval sets how often gauge values are snapshotted.
func WithCollectInterval(d time.Duration) Option {
	return func(r *DiperiodicReader) { r.collectInterval = d }
}

// WithCollectTimeout bounds a single collection snapshot.
func WithCollectTimeout(d time.Duration) Option {
	return func(r *DiperiodicReader) { r.collectTimeout = d }
}

// WithExportInterval sets how often accumulated snapshots are shipped to
// the exporter.
func WithExportInterval(d time.Duration) Option {
	return func(r *DiperiodicReader) { r.exportInterval = d }
}

// WithExportTimeout bounds a single export round-trip.
func WithExportTimeout(d time.Duration) Option {
	return func(r *DiperiodicReader) { r.exportTimeout = d }
}

// NewDiperiodicReader starts the collect and export background goroutines
// and returns the reader to register with a MeterProvider.
func NewDiperiodicReader(exporter metric.Exporter, opts ...Option) metric.Reader {
	ctx, cancel := context.WithCancel(context.Background())

	r := &DiperiodicReader{
		ManualReader:    metric.NewManualReader(),
		exporter:        exporter,
		collectInterval: DefaultCollectIntervalMillis * time.Millisecond,
		collectTimeout:  DefaultCollectTimeoutMillis * time.Millisecond,
		exportInterval:  DefaultExportIntervalMillis * time.Millisecond,
		exportTimeout:   DefaultExportTimeoutMillis * time.Millisecond,
		ctx:             ctx,
		cancel:          cancel,
		flush:           make(chan chan error, 1),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.collectTicker = time.NewTicker(r.collectInterval)
	r.exportTicker = time.NewTicker(r.exportInterval)

	r.wg.Add(2)
	go r.runCollectLoop()
	go r.runExportLoop()

	return r
}

// ForceFlush collects one final snapshot and exports everything buffered.
func (r *DiperiodicReader) ForceFlush(ctx context.Context) error {
	errCh := make(chan error, 1)
	select {
	case r.flush <- errCh:
		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return r.exporter.ForceFlush(ctx)
}

// Shutdown stops the background loops, flushes whatever is buffered, and
// shuts down the embedded ManualReader and exporter. Safe to call more
// than once.
func (r *DiperiodicReader) Shutdown(ctx context.Context) error {
	var err error
	r.shutdownOnce.Do(func() {
		r.cancel()
		r.wg.Wait()

		if r.collectTicker != nil {
			r.collectTicker.Stop()
		}
		if r.exportTicker != nil {
			r.exportTicker.Stop()
		}

		r.export(ctx)

		if shutErr := r.ManualReader.Shutdown(ctx); shutErr != nil {
			err = shutErr
		}
		if shutErr := r.exporter.Shutdown(ctx); shutErr != nil && err == nil {
			err = shutErr
		}
	})
	return err
}

func (r *DiperiodicReader) runCollectLoop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.collectTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.collectTimeout)
			r.collect(ctx)
			cancel()
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *DiperiodicReader) runExportLoop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.exportTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.exportTimeout)
			r.export(ctx)
			cancel()
		case errCh := <-r.flush:
			ctx, cancel := context.WithTimeout(context.Background(), r.exportTimeout)
			r.collect(ctx)
			errCh <- r.export(ctx)
			cancel()
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *DiperiodicReader) collect(ctx context.Context) {
	var rm metricdata.ResourceMetrics
	if err := r.ManualReader.Collect(ctx, &rm); err != nil {
		otel.Handle(err)
		return
	}
	r.pending.push(rm)
}

// export drains every snapshot collected since the last export and ships
// them to the exporter as one merged ResourceMetrics payload.
func (r *DiperiodicReader) export(ctx context.Context) error {
	batch := r.pending.drain()
	if len(batch) == 0 {
		return nil
	}

	merged := batch[0]
	for _, rm := range batch[1:] {
		merged.ScopeMetrics = append(merged.ScopeMetrics, rm.ScopeMetrics...)
	}

	if err := r.exporter.Export(ctx, &merged); err != nil {
		otel.Handle(err)
		return err
	}
	return nil
}
