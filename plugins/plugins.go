/*
   Copyright The containerd Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package plugins defines the github.com/containerd/plugin Type values
// every Orion plugin registers under, the same role containerd's own
// plugins.go constant file plays for its Type values.
package plugins

import "github.com/containerd/plugin"

const (
	// HALPlugin registers the HAL bootstrap (C1-C4): flag translation,
	// architecture backends, the registry/manager, and the fixed
	// mmu/interrupt/timer/.../debug init sequence.
	HALPlugin plugin.Type = "io.orion.hal.v1"

	// SecurityPlugin registers the capability and security kernel (C5-C11):
	// entropy, capability pool, contexts, audit ring, IDS, hardware-security
	// hooks, and the policy enforcement surface.
	SecurityPlugin plugin.Type = "io.orion.security.v1"
)
