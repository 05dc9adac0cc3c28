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

// Package security registers the capability and security kernel (C5-C11)
// as a containerd/plugin, depending on the HAL plugin the same way
// plugins/metadata required the content/events/snapshot plugins before it
// could construct its bolt-backed store.
package security

import (
	"github.com/containerd/plugin"
	"github.com/containerd/plugin/registry"

	orionsecurity "github.com/orion-os/kernel/core/security"
	"github.com/orion-os/kernel/plugins"
)

func init() {
	registry.Register(&plugin.Registration{
		Type: plugins.SecurityPlugin,
		ID:   "security",
		Requires: []plugin.Type{
			plugins.HALPlugin,
		},
		Config: &Config{},
		InitFn: func(ic *plugin.InitContext) (interface{}, error) {
			cfg := ic.Config.(*Config)
			if err := cfg.Validate(); err != nil {
				return nil, err
			}

			// The HAL plugin registration is required so boot ordering
			// places architecture detection before the security core
			// exists, even though the security core does not yet consume
			// the returned *integration.Bootstrap directly (hwsec.Hooks's
			// ArchProbe is wired once arch_validate_user_address has a
			// concrete collaborator).
			if _, err := ic.GetSingle(plugins.HALPlugin); err != nil {
				return nil, err
			}

			core, err := orionsecurity.New(orionsecurity.Config{
				KASLRBase:       cfg.KASLRBase,
				AuditDBPath:     cfg.AuditDBPath,
				MetricsInterval: cfg.MetricsInterval.Duration,
			}, nil, nil)
			if err != nil {
				return nil, err
			}
			go core.RunMetrics(ic.Context, cfg.MetricsInterval.Duration)
			return core, nil
		},
	})
}

// Config is the toml-tagged configuration loaded for the security plugin,
// following plugins/metadata.BoltConfig's shape. Durations are expressed
// via a wrapper so pelletier/go-toml/v2 round-trips "10s"-style strings.
type Config struct {
	// KASLRBase is the kernel's unrelocated base virtual address.
	KASLRBase uint64 `toml:"kaslr_base"`

	// AuditDBPath optionally attaches a durable bbolt sink to the audit
	// ring. Empty keeps the ring purely in-memory.
	AuditDBPath string `toml:"audit_db_path"`

	// MetricsInterval controls how often the pool-occupancy/alert-mode
	// gauges are sampled.
	MetricsInterval TOMLDuration `toml:"metrics_interval"`
}

// Validate checks the config is internally consistent. There is currently
// nothing to reject: every field has a safe zero value (no durable audit
// sink, KASLR base 0, default metrics interval).
func (c *Config) Validate() error {
	return nil
}
