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

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/NVIDIA/vfscore/telemetry/attributes"
	"github.com/NVIDIA/vfscore/telemetry/readers"
)

// Config holds configuration for OTLP metrics export over the diperiodic
// reader.
type Config struct {
	OTLPEndpoint          string
	CollectIntervalMillis uint64
	CollectTimeoutMillis  uint64
	ExportIntervalMillis  uint64
	ExportTimeoutMillis   uint64
	ServiceName           string
	Insecure              bool
	AttributeProviders    []attributes.AttributesProvider
}

// Setup builds an OTLP/HTTP exporter, wraps it with a DiperiodicReader, and
// registers the resulting MeterProvider as the global one. It returns the
// MeterProvider (the caller is responsible for Shutdown) and the collected
// attributes to attach to every recorded metric.
func Setup(cfg Config) (*sdkmetric.MeterProvider, []attribute.KeyValue, error) {
	ctx := context.Background()

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}

	collectInterval := millisOrDefault(cfg.CollectIntervalMillis, readers.DefaultCollectIntervalMillis)
	collectTimeout := millisOrDefault(cfg.CollectTimeoutMillis, readers.DefaultCollectTimeoutMillis)
	exportInterval := millisOrDefault(cfg.ExportIntervalMillis, readers.DefaultExportIntervalMillis)
	exportTimeout := millisOrDefault(cfg.ExportTimeoutMillis, readers.DefaultExportTimeoutMillis)

	reader := readers.NewDiperiodicReader(
		exporter,
		readers.WithCollectInterval(collectInterval),
		readers.WithCollectTimeout(collectTimeout),
		readers.WithExportInterval(exportInterval),
		readers.WithExportTimeout(exportTimeout),
	)

	var resourceAttrs, metricAttrs []attribute.KeyValue
	if len(cfg.AttributeProviders) > 0 {
		resourceAttrs = attributes.CollectAttributes(cfg.AttributeProviders)
		metricAttrs = make([]attribute.KeyValue, len(resourceAttrs))
		copy(metricAttrs, resourceAttrs)
	}
	resourceAttrs = append(resourceAttrs, semconv.ServiceName(cfg.ServiceName))

	res := resource.NewWithAttributes(semconv.SchemaURL, resourceAttrs...)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	return meterProvider, metricAttrs, nil
}

func millisOrDefault(v uint64, dflt int) time.Duration {
	if v == 0 {
		return time.Duration(dflt) * time.Millisecond
	}
	return time.Duration(v) * time.Millisecond
}
