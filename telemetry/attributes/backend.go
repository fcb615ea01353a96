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

package attributes

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/NVIDIA/vfscore"
)

// BackendAttributesProvider contributes attributes describing a
// vfs.FileSystem backend: its name and three of the capabilities it
// advertises (implicit directories, directory move, and append); the other
// CapabilityFlags fields are not reported. The telemetry decorator attaches
// one to every instrumented backend so a latency or error-rate spike can be traced to, say, an S3 backend's lack
// of atomic directory rename rather than local disk's.
type BackendAttributesProvider struct {
	backend string
	caps    vfs.CapabilityFlags
}

// NewBackendAttributesProvider builds a provider for backend, named after
// the backend package it wraps (e.g. "s3", "local", "memfs").
func NewBackendAttributesProvider(backend string, caps vfs.CapabilityFlags) *BackendAttributesProvider {
	return &BackendAttributesProvider{backend: backend, caps: caps}
}

func (p *BackendAttributesProvider) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("vfscore.backend", p.backend),
		attribute.Bool("vfscore.backend.implicit_directories", p.caps.HaveImplicitDirectories),
		attribute.Bool("vfscore.backend.allow_move_dir", p.caps.AllowMoveDir),
		attribute.Bool("vfscore.backend.allow_append", p.caps.AllowAppendToFile),
	}
}
