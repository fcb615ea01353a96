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

// Package telemetry instruments a vfs.FileSystem with OpenTelemetry metrics:
// request counts, operation latency/status, and bytes transferred, using the
// diperiodic collect/export reader for low-overhead emission.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/NVIDIA/vfscore"
	"github.com/NVIDIA/vfscore/telemetry/attributes"
)

// Metrics holds the instruments recorded around every vfs.FileSystem
// operation.
type Metrics struct {
	baseAttributes []attribute.KeyValue

	latencyGauge  metric.Float64Gauge
	dataSizeGauge metric.Int64Gauge
	dataRateGauge metric.Float64Gauge

	requestSumCounter  metric.Int64Counter
	responseSumCounter metric.Int64Counter
	dataSizeSumCounter metric.Int64Counter
}

// NewMetrics creates the instrument set under serviceName. baseAttributes
// are attached to every recorded metric (collected once, since this process
// never forks mid-lifetime the way a per-request library binding might).
func NewMetrics(serviceName string, baseAttributes []attribute.KeyValue) (Metrics, error) {
	meter := otel.Meter(serviceName)

	latencyGauge, err := meter.Float64Gauge(
		"vfscore.latency",
		metric.WithDescription("Latency per individual operation"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return Metrics{}, err
	}

	dataSizeGauge, err := meter.Int64Gauge(
		"vfscore.data_size",
		metric.WithDescription("Data size per individual operation"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return Metrics{}, err
	}

	dataRateGauge, err := meter.Float64Gauge(
		"vfscore.data_rate",
		metric.WithDescription("Data rate per individual operation"),
		metric.WithUnit("By/s"),
	)
	if err != nil {
		return Metrics{}, err
	}

	requestSumCounter, err := meter.Int64Counter(
		"vfscore.request.sum",
		metric.WithDescription("Total number of requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return Metrics{}, err
	}

	responseSumCounter, err := meter.Int64Counter(
		"vfscore.response.sum",
		metric.WithDescription("Total number of responses"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return Metrics{}, err
	}

	dataSizeSumCounter, err := meter.Int64Counter(
		"vfscore.data_size.sum",
		metric.WithDescription("Total data size across all operations"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		baseAttributes:     baseAttributes,
		latencyGauge:       latencyGauge,
		dataSizeGauge:      dataSizeGauge,
		dataRateGauge:      dataRateGauge,
		requestSumCounter:  requestSumCounter,
		responseSumCounter: responseSumCounter,
		dataSizeSumCounter: dataSizeSumCounter,
	}, nil
}

// WithBackendAttributes returns a copy of m with attributes describing
// backend (its name and capability flags, via a BackendAttributesProvider)
// merged into every metric recorded from the copy onward. Instrument calls
// this once per wrapped vfs.FileSystem so backend identity never has to be
// threaded through every RecordRequest/RecordOperation call by hand.
func (m Metrics) WithBackendAttributes(backend string, caps vfs.CapabilityFlags) Metrics {
	provider := attributes.NewBackendAttributesProvider(backend, caps)
	merged := make([]attribute.KeyValue, 0, len(m.baseAttributes)+4)
	merged = append(merged, m.baseAttributes...)
	merged = append(merged, provider.Attributes()...)
	m.baseAttributes = merged
	return m
}

// RecordRequest records the request counter at the start of an operation,
// before it has had a chance to fail.
func (m *Metrics) RecordRequest(ctx context.Context, backend, operation string) {
	attrs := make([]attribute.KeyValue, 0, len(m.baseAttributes)+2)
	attrs = append(attrs, m.baseAttributes...)
	attrs = append(attrs,
		attribute.String("vfscore.backend", backend),
		attribute.String("vfscore.operation", operation),
	)
	m.requestSumCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordOperation records latency, status, and (on success) bytes
// transferred for a completed operation. Instrument calls it after every
// wrapped call returns, passing that call's error.
func (m *Metrics) RecordOperation(ctx context.Context, backend, operation string, start time.Time, err error, bytesTransferred int64) {
	status := "success"
	if err != nil {
		status = "error"
	}

	attrs := make([]attribute.KeyValue, 0, len(m.baseAttributes)+3)
	attrs = append(attrs, m.baseAttributes...)
	attrs = append(attrs,
		attribute.String("vfscore.backend", backend),
		attribute.String("vfscore.operation", operation),
		attribute.String("vfscore.status", status),
	)

	m.responseSumCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	duration := time.Since(start)
	m.latencyGauge.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if err == nil && bytesTransferred > 0 {
		m.dataSizeGauge.Record(ctx, bytesTransferred, metric.WithAttributes(attrs...))
		if duration.Seconds() > 0 {
			m.dataRateGauge.Record(ctx, float64(bytesTransferred)/duration.Seconds(), metric.WithAttributes(attrs...))
		}
		m.dataSizeSumCounter.Add(ctx, bytesTransferred, metric.WithAttributes(attrs...))
	}
}
