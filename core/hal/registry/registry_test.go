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

package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orion-os/kernel/core/hal/arch"
	"github.com/orion-os/kernel/core/hal/arch/genericcpu"
	"github.com/orion-os/kernel/core/hal/backend"
	"github.com/orion-os/kernel/pkg/kernelerrors"
)

// stub builds a minimal, real backend.Backend (via the shared genericcpu
// engine) tagged and named for tests, so the registry is exercised
// against a genuine operation vector rather than a hand-rolled fake.
func stub(tag arch.Tag, name string) *backend.Descriptor {
	eng := genericcpu.New(genericcpu.Config{
		Tag:        tag,
		Name:       name,
		Version:    "0.0.0-test",
		MaxIRQ:     16,
		MaxCounter: 2,
		TimerMinNS: time.Microsecond,
		TimerMaxNS: time.Second,
	})
	return &backend.Descriptor{Tag: tag, Name: name, Version: "0.0.0-test", Ops: eng}
}

// TestRegistryHappyPath registers a backend tagged X86_64, then AARCH64;
// the first registration becomes current; Get returns the second by tag.
func TestRegistryHappyPath(t *testing.T) {
	mgr := New()

	require.NoError(t, mgr.Register(stub(arch.X86_64, "x86_64-stub")))
	require.NoError(t, mgr.Register(stub(arch.AArch64, "aarch64-stub")))

	cur := mgr.Current()
	require.NotNil(t, cur)
	require.Equal(t, arch.X86_64, cur.Tag, "first registration becomes current")

	got, ok := mgr.Get(arch.AArch64)
	require.True(t, ok)
	require.Equal(t, arch.AArch64, got.Tag)
}

func TestRegisterDuplicateTagRejected(t *testing.T) {
	mgr := New()
	require.NoError(t, mgr.Register(stub(arch.X86_64, "a")))
	err := mgr.Register(stub(arch.X86_64, "b"))
	require.Error(t, err)
	require.Equal(t, kernelerrors.AlreadyExists, kernelerrors.CodeOf(err))
}

func TestRegisterDuplicateNameRejected(t *testing.T) {
	mgr := New()
	require.NoError(t, mgr.Register(stub(arch.X86_64, "same-name")))
	err := mgr.Register(stub(arch.AArch64, "same-name"))
	require.Error(t, err)
	require.Equal(t, kernelerrors.AlreadyExists, kernelerrors.CodeOf(err))
}

func TestRegisterTableFull(t *testing.T) {
	mgr := New()
	for i := 0; i < MaxArchitectures; i++ {
		tag := arch.Tag(rune('a' + i))
		name := "name-" + string(rune('a'+i))
		require.NoError(t, mgr.Register(stub(tag, name)))
	}
	err := mgr.Register(stub(arch.Tag("overflow"), "overflow"))
	require.Error(t, err)
	require.Equal(t, kernelerrors.OutOfMemory, kernelerrors.CodeOf(err))
}

// TestSwitchBeforeBootCompleteSucceeds: switch(AARCH64) succeeds and
// current() then returns the AARCH64 descriptor, modeling the boot-time
// diagnostic window before the boot-complete latch engages.
func TestSwitchBeforeBootCompleteSucceeds(t *testing.T) {
	mgr := New()
	require.NoError(t, mgr.Register(stub(arch.X86_64, "x86_64-stub")))
	require.NoError(t, mgr.Register(stub(arch.AArch64, "aarch64-stub")))

	mgr.mu.Lock()
	mgr.state = StateReady
	mgr.mu.Unlock()

	require.NoError(t, mgr.Switch(arch.AArch64))
	cur := mgr.Current()
	require.Equal(t, arch.AArch64, cur.Tag)
}

func TestSwitchAfterBootCompleteRejected(t *testing.T) {
	mgr := New()
	require.NoError(t, mgr.Register(stub(arch.X86_64, "x86_64-stub")))
	require.NoError(t, mgr.Register(stub(arch.AArch64, "aarch64-stub")))

	mgr.mu.Lock()
	mgr.state = StateReady
	mgr.bootComplete = true
	mgr.mu.Unlock()

	err := mgr.Switch(arch.AArch64)
	require.Error(t, err)
	require.Equal(t, kernelerrors.InvalidState, kernelerrors.CodeOf(err))
}

func TestSwitchUnregisteredArchFails(t *testing.T) {
	mgr := New()
	require.NoError(t, mgr.Register(stub(arch.X86_64, "x86_64-stub")))
	mgr.mu.Lock()
	mgr.state = StateReady
	mgr.mu.Unlock()

	err := mgr.Switch(arch.RISCV64)
	require.Error(t, err)
	require.Equal(t, kernelerrors.UnsupportedArch, kernelerrors.CodeOf(err))
}

func TestInitIsIdempotent(t *testing.T) {
	mgr := New()
	tag, err := mgr.Detect()
	if err != nil {
		t.Skipf("host architecture has no registered backend in this test: %v", err)
	}
	require.NoError(t, mgr.Register(stub(tag, "host-stub")))

	ctx := context.Background()
	require.NoError(t, mgr.Init(ctx))
	require.Equal(t, StateReady, mgr.State())
	require.NoError(t, mgr.Init(ctx)) // second call is a no-op success
	require.Equal(t, StateReady, mgr.State())
}

func TestReportCapabilitiesWithNoCurrentBackend(t *testing.T) {
	mgr := New()
	_, err := mgr.ReportCapabilities()
	require.Error(t, err)
	require.Equal(t, kernelerrors.InvalidState, kernelerrors.CodeOf(err))
}
