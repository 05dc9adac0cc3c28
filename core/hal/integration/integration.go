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

// Package integration is the HAL Integration Layer (C4): it bootstraps the
// manager, registers every known architecture backend, and drives the
// backend's init slots in the exact fixed order required at boot.
package integration

import (
	"context"
	"fmt"

	"github.com/containerd/log"

	"github.com/orion-os/kernel/core/hal/arch"
	"github.com/orion-os/kernel/core/hal/arch/aarch64"
	"github.com/orion-os/kernel/core/hal/arch/armv7l"
	"github.com/orion-os/kernel/core/hal/arch/loongarch"
	"github.com/orion-os/kernel/core/hal/arch/mips"
	"github.com/orion-os/kernel/core/hal/arch/powerpc"
	"github.com/orion-os/kernel/core/hal/arch/riscv64"
	"github.com/orion-os/kernel/core/hal/arch/s390x"
	"github.com/orion-os/kernel/core/hal/arch/x86_64"
	"github.com/orion-os/kernel/core/hal/backend"
	"github.com/orion-os/kernel/core/hal/registry"
)

// factories lists every architecture this build ships a backend for. It is
// intentionally exhaustive (all eight known families) so
// detect()/switch() always have real registrants to select between.
var factories = map[arch.Tag]func() *backend.Descriptor{
	arch.X86_64:    x86_64.New,
	arch.AArch64:   aarch64.New,
	arch.RISCV64:   riscv64.New,
	arch.PowerPC:   powerpc.New,
	arch.LoongArch: loongarch.New,
	arch.MIPS:      mips.New,
	arch.ARMv7L:    armv7l.New,
	arch.S390X:     s390x.New,
}

// step is one named entry in the fixed C4 init sequence.
type step struct {
	name string
	fn   func(backend.Backend) error
}

var sequence = []step{
	{"mmu_init", backend.Backend.MMUInit},
	{"interrupt_init", backend.Backend.InterruptInit},
	{"timer_init", backend.Backend.TimerInit},
	{"cache_init", backend.Backend.CacheInit},
	{"cpu_init", backend.Backend.CPUInit},
	{"perf_init", backend.Backend.PerfInit},
	{"power_init", backend.Backend.PowerInit},
	{"secure_init", backend.Backend.SecureInit},
	{"debug_init", backend.Backend.DebugInit},
}

// Bootstrap observes how far the fixed init sequence progressed, for
// diagnostics and tests.
type Bootstrap struct {
	Manager     *registry.Manager
	LastStep    string
	Completed   []string
}

// Run constructs the manager, registers every known backend, detects and
// selects the running architecture, then drives the fixed init sequence.
// Any non-success aborts the remaining steps and returns the first
// failure, with LastStep recording where it stopped.
func Run(ctx context.Context) (*Bootstrap, error) {
	mgr := registry.New()
	for tag, factory := range factories {
		if err := mgr.Register(factory()); err != nil {
			return nil, fmt.Errorf("registering %s backend: %w", tag, err)
		}
	}

	if err := mgr.Init(ctx); err != nil {
		return nil, fmt.Errorf("hal manager init: %w", err)
	}

	cur := mgr.Current()
	if cur == nil {
		return nil, fmt.Errorf("hal manager ready with no current backend")
	}

	bs := &Bootstrap{Manager: mgr}
	for _, s := range sequence {
		if err := s.fn(cur.Ops); err != nil {
			bs.LastStep = s.name
			log.G(ctx).WithError(err).WithField("step", s.name).Error("hal bootstrap step failed")
			return bs, fmt.Errorf("hal bootstrap step %s: %w", s.name, err)
		}
		bs.Completed = append(bs.Completed, s.name)
		bs.LastStep = s.name
	}
	log.G(ctx).WithField("arch", cur.Tag).Info("hal bootstrap complete")
	return bs, nil
}
