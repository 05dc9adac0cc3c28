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

// Package backend declares the operation vector every architecture backend
// (C2) must implement, and the immutable Descriptor the registry stores one
// of per registered architecture. There is exactly one concrete
// implementation per CPU family; this package defines the closed interface
// set, not a plugin-loading mechanism.
package backend

import (
	"context"
	"time"

	"github.com/orion-os/kernel/core/hal/arch"
	"github.com/orion-os/kernel/core/hal/flags"
)

type (
	VAddr   uint64
	PAddr   uint64
	Size    uint64
	IRQ     uint32
	Counter uint32
)

// PowerState is the closed set of power states a backend can report or set.
type PowerState int

const (
	PowerActive PowerState = iota
	PowerIdle
	PowerSleep
	PowerDeepSleep
	PowerOff
)

// BreakpointKind distinguishes software (trap instruction) breakpoints from
// hardware (debug register) ones.
type BreakpointKind int

const (
	BreakpointSoftware BreakpointKind = iota
	BreakpointHardware
)

// Message is the single object moved by the IPC fast path, with no
// intermediate copy in the default implementation.
type Message struct {
	SenderPID   uint64
	ReceiverPID uint64
	Payload     []byte
}

// ThreadState is the opaque, architecture-owned register snapshot used by
// context switch/save/restore/init. The generic layer never reads its
// contents.
type ThreadState struct {
	Entry      VAddr
	StackTop   VAddr
	archOpaque interface{}
}

// MMU is the memory-management operation group.
type MMU interface {
	Map(ctx context.Context, va VAddr, pa PAddr, size Size, f flags.Arch) error
	Unmap(ctx context.Context, va VAddr, size Size) error
	Protect(ctx context.Context, va VAddr, size Size, f flags.Arch) error
	Translate(ctx context.Context, va VAddr) (PAddr, bool)
}

// Interrupt is the interrupt-controller operation group.
type Interrupt interface {
	Register(irq IRQ, handler func(IRQ), data interface{}) error
	Enable(irq IRQ) error
	Disable(irq IRQ) error
	Ack(irq IRQ) error
	SetPriority(irq IRQ, priority int) error
	Pending(irq IRQ) (bool, error)
}

// Timer is the system-timer operation group.
type Timer interface {
	TimerInit() error
	SetInterval(d time.Duration) error
	GetCurrent() uint64
	EnableTimer() error
	DisableTimer() error
	SetCallback(cb func()) error
	Frequency() uint64
}

// Cache is the cache-maintenance operation group.
type Cache interface {
	InvalidateData(va VAddr, size Size) error
	CleanData(va VAddr, size Size) error
	FlushData(va VAddr, size Size) error
	InvalidateInstruction(va VAddr, size Size) error
	Sync() error
}

// CPU is the multi-core bring-up operation group.
type CPU interface {
	CPUInit() error
	ID() uint32
	Count() uint32
	StartCPU(id uint32) error
	StopCPU(id uint32) error
	WaitCPU(ctx context.Context, id uint32) error
	Features() uint64
}

// ContextSwitch is the thread register-state operation group. These are
// the only operations permitted to observe or mutate CPU register state
// directly.
type ContextSwitch interface {
	Switch(ctx context.Context, from, to *ThreadState) error
	Save(t *ThreadState) error
	Restore(t *ThreadState) error
	InitThread(entry, stack VAddr) *ThreadState
}

// IPCFastPath is the architecture-optimized send/recv operation group.
type IPCFastPath interface {
	IPCSetup() error
	Send(ctx context.Context, m *Message) error
	Recv(ctx context.Context) (*Message, error)
}

// PerfCounters is the performance-monitoring operation group.
type PerfCounters interface {
	StartCounter(c Counter) error
	StopCounter(c Counter) error
	ReadCounter(c Counter) (uint64, error)
	SetEvent(c Counter, event uint32) error
}

// Power is the power-management operation group.
type Power interface {
	SetPower(s PowerState) error
	GetPower() (PowerState, error)
	SleepCPU(ctx context.Context, d time.Duration) error
	WakeCPU() error
	SetFrequency(hz uint64) error
}

// Debug is the in-kernel debug-facility operation group.
type Debug interface {
	Breakpoint(kind BreakpointKind, va VAddr) error
	Watchpoint(va VAddr, size Size) error
	Step() error
	Continue() error
}

// Lifecycle holds the init hooks that belong to no other operation group.
// The HAL Integration Layer (C4) calls them, together with Timer.TimerInit
// and CPU.CPUInit, in this fixed order during bootstrap: mmu_init,
// interrupt_init, timer_init, cache_init, cpu_init, perf_init, power_init,
// secure_init, debug_init.
type Lifecycle interface {
	MMUInit() error
	InterruptInit() error
	CacheInit() error
	PerfInit() error
	PowerInit() error
	SecureInit() error
	DebugInit() error
}

// Backend is the complete operation vector a CPU family implements. Every
// slot is either bound to a real implementation or to the shared
// UNSUPPORTED stub; Backend never panics on out-of-range input, only on
// hardware failures unsafe to continue past.
type Backend interface {
	Lifecycle
	MMU
	Interrupt
	Timer
	Cache
	CPU
	ContextSwitch
	IPCFastPath
	PerfCounters
	Power
	Debug

	// ExtensionCall dispatches an architecture-unique operation (vector and
	// crypto facilities, generation-specific features) not covered by the
	// closed groups above. Unknown ids return ErrUnsupported.
	ExtensionCall(ctx context.Context, id uint32, args []byte) ([]byte, error)

	// Slots reports which operation-vector entries are bound to a real
	// implementation versus the UNSUPPORTED stub, keyed by group name, for
	// report_capabilities.
	Slots() map[string]bool
}

// Descriptor is the immutable, registered shape of one architecture
// backend: identification, the operation vector, and an opaque
// per-backend pointer the generic layer never interprets.
type Descriptor struct {
	Tag     arch.Tag
	Name    string
	Version string
	Ops     Backend
	Private interface{}
}
