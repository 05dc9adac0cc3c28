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

// Package hal registers the HAL Integration Layer (C4) bootstrap as a
// containerd/plugin, the same shape plugins/metadata uses for the bolt
// metadata store: a Config struct, an InitFn, and a registry.Register
// call in an init func.
package hal

import (
	"github.com/containerd/plugin"
	"github.com/containerd/plugin/registry"

	"github.com/orion-os/kernel/core/hal/integration"
	"github.com/orion-os/kernel/plugins"
)

func init() {
	registry.Register(&plugin.Registration{
		Type:   plugins.HALPlugin,
		ID:     "hal",
		Config: &Config{},
		InitFn: func(ic *plugin.InitContext) (interface{}, error) {
			return integration.Run(ic.Context)
		},
	})
}

// Config is presently empty: the fixed init-order sequence and the set of
// shipped architecture backends are fixed constants, not operator-tunable,
// so there is nothing to validate yet. It exists as a typed placeholder so
// a future per-backend tuning knob (e.g. disabling an architecture at
// boot) has a natural home without changing the plugin's registration
// shape.
type Config struct{}
