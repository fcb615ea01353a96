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
	"os"

	"go.opentelemetry.io/otel/attribute"
)

// ProcessAttributesProvider provides attributes derived from the current
// process, for distinguishing metrics from two instances of the same
// vfs.FileSystem backend running as separate processes on the same host.
// Options should contain an "attributes" key mapping attribute names to
// process attribute kinds; "pid" and "hostname" are supported.
type ProcessAttributesProvider struct {
	fields map[string]string
}

// NewProcessAttributesProvider builds a provider from options.
func NewProcessAttributesProvider(options map[string]interface{}) *ProcessAttributesProvider {
	fields := make(map[string]string)

	if rawFields, ok := options["attributes"]; ok {
		if fieldMap, ok := rawFields.(map[string]interface{}); ok {
			for key, kind := range fieldMap {
				if kindStr, ok := kind.(string); ok {
					fields[key] = kindStr
				}
			}
		}
	}

	return &ProcessAttributesProvider{fields: fields}
}

func (p *ProcessAttributesProvider) Attributes() []attribute.KeyValue {
	result := make([]attribute.KeyValue, 0, len(p.fields))

	for attrKey, kind := range p.fields {
		switch kind {
		case "pid":
			result = append(result, attribute.Int(attrKey, os.Getpid()))
		case "hostname":
			if host, err := os.Hostname(); err == nil {
				result = append(result, attribute.String(attrKey, host))
			}
		}
	}

	return result
}
