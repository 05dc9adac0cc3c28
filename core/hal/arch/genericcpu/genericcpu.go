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

// Package genericcpu implements the shared engine behind every per-family
// backend in core/hal/arch. Real per-architecture backends in production
// Orion would replace most of this with device-specific assembly; this
// engine models the operation vector's observable contract (idempotent
// mapping, bounded IRQ numbers, monotonic ticks, global cache sync) well
// enough to exercise the HAL dispatch core end to end. Slots it cannot
// meaningfully emulate return UNSUPPORTED: single-step always, and
// hardware breakpoints/watchpoints on families configured without a debug
// unit. Starting a secondary CPU is recorded as bookkeeping only.
package genericcpu

import (
	"context"
	"sync"
	"time"

	"github.com/orion-os/kernel/core/hal/arch"
	"github.com/orion-os/kernel/core/hal/backend"
	"github.com/orion-os/kernel/core/hal/flags"
	"github.com/orion-os/kernel/pkg/kernelerrors"
)

const cacheLineSize = backend.Size(64)

// Features is a closed bitmap over the vector/crypto/etc. extensions a
// family may expose, reported by Backend.Features.
type Features uint64

const (
	FeatureSSE Features = 1 << iota
	FeatureAVX
	FeatureNEON
	FeatureSVE
	FeatureRVV
	FeatureVSX
)

type mapping struct {
	pa backend.PAddr
	f  flags.Arch
}

// Config parametrizes one family's instance of the shared engine: its
// identity, declared IRQ/counter/breakpoint limits, and feature bitmap.
type Config struct {
	Tag          arch.Tag
	Name         string
	Version      string
	MaxIRQ       backend.IRQ
	MaxCounter   backend.Counter
	Features     Features
	HasHWBreak   bool
	HasPerfMon   bool
	TimerMinNS   time.Duration
	TimerMaxNS   time.Duration
	ExtensionIDs map[uint32]func(args []byte) ([]byte, error)
}

// Engine is the concrete backend.Backend implementation shared by every
// registered architecture.
type Engine struct {
	cfg Config

	mu       sync.Mutex
	mappings map[backend.VAddr]mapping

	irqMu     sync.Mutex
	handlers  map[backend.IRQ]func(backend.IRQ)
	pending   map[backend.IRQ]bool
	priority  map[backend.IRQ]int

	timerMu  sync.Mutex
	interval time.Duration
	ticks    uint64
	timerOn  bool
	callback func()

	cpusMu  sync.Mutex
	started map[uint32]bool

	perfMu sync.Mutex
	counts map[backend.Counter]uint64
	events map[backend.Counter]uint32
	active map[backend.Counter]bool

	powerMu sync.Mutex
	power   backend.PowerState
	freq    uint64

	ipcMu sync.Mutex
	inbox chan *backend.Message
}

// New constructs an Engine for the given family configuration.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:      cfg,
		mappings: make(map[backend.VAddr]mapping),
		handlers: make(map[backend.IRQ]func(backend.IRQ)),
		pending:  make(map[backend.IRQ]bool),
		priority: make(map[backend.IRQ]int),
		started:  map[uint32]bool{0: true},
		counts:   make(map[backend.Counter]uint64),
		events:   make(map[backend.Counter]uint32),
		active:   make(map[backend.Counter]bool),
		power:    backend.PowerActive,
		inbox:    make(chan *backend.Message, 64),
	}
}

// --- Lifecycle (C4 bootstrap hooks) ---

func (e *Engine) MMUInit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mappings = make(map[backend.VAddr]mapping)
	return nil
}

func (e *Engine) InterruptInit() error {
	e.irqMu.Lock()
	defer e.irqMu.Unlock()
	e.handlers = make(map[backend.IRQ]func(backend.IRQ))
	e.pending = make(map[backend.IRQ]bool)
	e.priority = make(map[backend.IRQ]int)
	return nil
}

func (e *Engine) CacheInit() error { return e.Sync() }

func (e *Engine) PerfInit() error {
	if !e.cfg.HasPerfMon {
		return kernelerrors.New(kernelerrors.Unsupported, "no performance-monitoring unit")
	}
	e.perfMu.Lock()
	defer e.perfMu.Unlock()
	e.counts = make(map[backend.Counter]uint64)
	e.active = make(map[backend.Counter]bool)
	return nil
}

func (e *Engine) PowerInit() error {
	e.powerMu.Lock()
	defer e.powerMu.Unlock()
	e.power = backend.PowerActive
	return nil
}

func (e *Engine) SecureInit() error { return nil }

func (e *Engine) DebugInit() error { return nil }

// --- MMU ---

func (e *Engine) Map(ctx context.Context, va backend.VAddr, pa backend.PAddr, size backend.Size, f flags.Arch) error {
	if size == 0 || uint64(va)%4096 != 0 || uint64(pa)%4096 != 0 {
		return kernelerrors.New(kernelerrors.InvalidArgument, "unaligned map request")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.mappings[va]; ok {
		if existing.pa == pa && existing.f == f {
			return nil // idempotent re-map
		}
		return kernelerrors.New(kernelerrors.AlreadyExists, "overlapping mapping")
	}
	e.mappings[va] = mapping{pa: pa, f: f}
	return nil
}

func (e *Engine) Unmap(ctx context.Context, va backend.VAddr, size backend.Size) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.mappings, va)
	return nil
}

func (e *Engine) Protect(ctx context.Context, va backend.VAddr, size backend.Size, f flags.Arch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.mappings[va]
	if !ok {
		return kernelerrors.New(kernelerrors.InvalidArgument, "protect on unmapped range")
	}
	m.f = f
	e.mappings[va] = m
	return nil
}

func (e *Engine) Translate(ctx context.Context, va backend.VAddr) (backend.PAddr, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.mappings[va]
	if !ok {
		return 0, false
	}
	return m.pa, true
}

// --- Interrupt ---

func (e *Engine) Register(irq backend.IRQ, handler func(backend.IRQ), data interface{}) error {
	if irq > e.cfg.MaxIRQ {
		return kernelerrors.New(kernelerrors.InvalidArgument, "irq out of range")
	}
	e.irqMu.Lock()
	defer e.irqMu.Unlock()
	e.handlers[irq] = handler // replaces any existing handler atomically under the lock
	return nil
}

func (e *Engine) Enable(irq backend.IRQ) error {
	if irq > e.cfg.MaxIRQ {
		return kernelerrors.New(kernelerrors.InvalidArgument, "irq out of range")
	}
	e.irqMu.Lock()
	defer e.irqMu.Unlock()
	e.pending[irq] = false
	return nil
}

func (e *Engine) Disable(irq backend.IRQ) error {
	if irq > e.cfg.MaxIRQ {
		return kernelerrors.New(kernelerrors.InvalidArgument, "irq out of range")
	}
	return nil
}

func (e *Engine) Ack(irq backend.IRQ) error {
	if irq > e.cfg.MaxIRQ {
		return kernelerrors.New(kernelerrors.InvalidArgument, "irq out of range")
	}
	e.irqMu.Lock()
	defer e.irqMu.Unlock()
	e.pending[irq] = false // idempotent: acking an already-clear IRQ is a no-op
	return nil
}

func (e *Engine) SetPriority(irq backend.IRQ, priority int) error {
	if irq > e.cfg.MaxIRQ {
		return kernelerrors.New(kernelerrors.InvalidArgument, "irq out of range")
	}
	e.irqMu.Lock()
	defer e.irqMu.Unlock()
	e.priority[irq] = priority
	return nil
}

func (e *Engine) Pending(irq backend.IRQ) (bool, error) {
	if irq > e.cfg.MaxIRQ {
		return false, kernelerrors.New(kernelerrors.InvalidArgument, "irq out of range")
	}
	e.irqMu.Lock()
	defer e.irqMu.Unlock()
	return e.pending[irq], nil
}

// --- Timer ---

func (e *Engine) TimerInit() error {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	e.ticks = 0
	return nil
}

func (e *Engine) SetInterval(d time.Duration) error {
	if d < e.cfg.TimerMinNS || d > e.cfg.TimerMaxNS {
		return kernelerrors.New(kernelerrors.InvalidArgument, "interval out of range")
	}
	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	e.interval = d // one-shot re-arm while armed replaces the deadline
	return nil
}

func (e *Engine) GetCurrent() uint64 {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	e.ticks++
	return e.ticks
}

func (e *Engine) EnableTimer() error {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	e.timerOn = true
	return nil
}

func (e *Engine) DisableTimer() error {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	e.timerOn = false
	return nil
}

func (e *Engine) SetCallback(cb func()) error {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	e.callback = cb
	return nil
}

func (e *Engine) Frequency() uint64 { return 1_000_000_000 }

// --- Cache ---

func normalize(va backend.VAddr, size backend.Size) (backend.VAddr, backend.Size) {
	start := backend.VAddr(uint64(va) - uint64(va)%uint64(cacheLineSize))
	end := uint64(va) + uint64(size)
	if end%uint64(cacheLineSize) != 0 {
		end += uint64(cacheLineSize) - end%uint64(cacheLineSize)
	}
	return start, backend.Size(end - uint64(start))
}

func (e *Engine) InvalidateData(va backend.VAddr, size backend.Size) error {
	_, _ = normalize(va, size)
	return nil
}

func (e *Engine) CleanData(va backend.VAddr, size backend.Size) error {
	_, _ = normalize(va, size)
	return nil
}

func (e *Engine) FlushData(va backend.VAddr, size backend.Size) error {
	_, _ = normalize(va, size)
	return nil
}

func (e *Engine) InvalidateInstruction(va backend.VAddr, size backend.Size) error {
	_, _ = normalize(va, size)
	return nil
}

func (e *Engine) Sync() error { return nil }

// --- CPU ---

func (e *Engine) CPUInit() error { return nil }

func (e *Engine) ID() uint32 { return 0 }

func (e *Engine) Count() uint32 {
	e.cpusMu.Lock()
	defer e.cpusMu.Unlock()
	return uint32(len(e.started))
}

func (e *Engine) StartCPU(id uint32) error {
	e.cpusMu.Lock()
	defer e.cpusMu.Unlock()
	if e.started[id] {
		return kernelerrors.New(kernelerrors.AlreadyExists, "cpu already running")
	}
	e.started[id] = true
	return nil
}

func (e *Engine) StopCPU(id uint32) error {
	if id == 0 {
		return kernelerrors.New(kernelerrors.InvalidArgument, "cannot stop the boot cpu")
	}
	e.cpusMu.Lock()
	defer e.cpusMu.Unlock()
	delete(e.started, id)
	return nil
}

func (e *Engine) WaitCPU(ctx context.Context, id uint32) error {
	return nil
}

func (e *Engine) Features() uint64 { return uint64(e.cfg.Features) }

// --- ContextSwitch ---

func (e *Engine) Switch(ctx context.Context, from, to *backend.ThreadState) error {
	if to == nil {
		return kernelerrors.New(kernelerrors.InvalidArgument, "switch target required")
	}
	return nil
}

func (e *Engine) Save(t *backend.ThreadState) error {
	if t == nil {
		return kernelerrors.New(kernelerrors.InvalidArgument, "nil thread state")
	}
	return nil
}

func (e *Engine) Restore(t *backend.ThreadState) error {
	if t == nil {
		return kernelerrors.New(kernelerrors.InvalidArgument, "nil thread state")
	}
	return nil
}

func (e *Engine) InitThread(entry, stack backend.VAddr) *backend.ThreadState {
	return &backend.ThreadState{Entry: entry, StackTop: stack}
}

// --- IPCFastPath ---

func (e *Engine) IPCSetup() error { return nil }

func (e *Engine) Send(ctx context.Context, m *backend.Message) error {
	select {
	case e.inbox <- m:
		return nil
	default:
		return kernelerrors.New(kernelerrors.Busy, "ipc inbox full")
	}
}

func (e *Engine) Recv(ctx context.Context) (*backend.Message, error) {
	select {
	case m := <-e.inbox:
		return m, nil
	case <-ctx.Done():
		return nil, kernelerrors.New(kernelerrors.Timeout, "ipc recv canceled")
	default:
		return nil, kernelerrors.New(kernelerrors.Unsupported, "no message pending")
	}
}

// --- PerfCounters ---

func (e *Engine) StartCounter(c backend.Counter) error {
	if !e.cfg.HasPerfMon || c >= e.cfg.MaxCounter {
		return kernelerrors.New(kernelerrors.InvalidArgument, "counter out of range")
	}
	e.perfMu.Lock()
	defer e.perfMu.Unlock()
	e.active[c] = true
	return nil
}

func (e *Engine) StopCounter(c backend.Counter) error {
	if !e.cfg.HasPerfMon || c >= e.cfg.MaxCounter {
		return kernelerrors.New(kernelerrors.InvalidArgument, "counter out of range")
	}
	e.perfMu.Lock()
	defer e.perfMu.Unlock()
	e.active[c] = false
	return nil
}

func (e *Engine) ReadCounter(c backend.Counter) (uint64, error) {
	if !e.cfg.HasPerfMon || c >= e.cfg.MaxCounter {
		return 0, kernelerrors.New(kernelerrors.InvalidArgument, "counter out of range")
	}
	e.perfMu.Lock()
	defer e.perfMu.Unlock()
	if e.active[c] {
		e.counts[c]++
	}
	return e.counts[c], nil
}

func (e *Engine) SetEvent(c backend.Counter, event uint32) error {
	if !e.cfg.HasPerfMon || c >= e.cfg.MaxCounter {
		return kernelerrors.New(kernelerrors.InvalidArgument, "counter out of range")
	}
	e.perfMu.Lock()
	defer e.perfMu.Unlock()
	e.events[c] = event
	return nil
}

// --- Power ---

func (e *Engine) SetPower(s backend.PowerState) error {
	if s < backend.PowerActive || s > backend.PowerOff {
		return kernelerrors.New(kernelerrors.InvalidArgument, "unknown power state")
	}
	e.powerMu.Lock()
	defer e.powerMu.Unlock()
	e.power = s
	return nil
}

func (e *Engine) GetPower() (backend.PowerState, error) {
	e.powerMu.Lock()
	defer e.powerMu.Unlock()
	return e.power, nil
}

func (e *Engine) SleepCPU(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) WakeCPU() error {
	e.powerMu.Lock()
	defer e.powerMu.Unlock()
	e.power = backend.PowerActive
	return nil
}

func (e *Engine) SetFrequency(hz uint64) error {
	e.powerMu.Lock()
	defer e.powerMu.Unlock()
	e.freq = hz
	return nil
}

// --- Debug ---

func (e *Engine) Breakpoint(kind backend.BreakpointKind, va backend.VAddr) error {
	if kind == backend.BreakpointHardware && !e.cfg.HasHWBreak {
		return kernelerrors.New(kernelerrors.Unsupported, "no hardware breakpoint unit")
	}
	return nil
}

func (e *Engine) Watchpoint(va backend.VAddr, size backend.Size) error {
	if !e.cfg.HasHWBreak {
		return kernelerrors.New(kernelerrors.Unsupported, "no watchpoint unit")
	}
	return nil
}

func (e *Engine) Step() error {
	return kernelerrors.New(kernelerrors.Unsupported, "single-step not wired to a debug host")
}

func (e *Engine) Continue() error { return nil }

// --- Extension / introspection ---

func (e *Engine) ExtensionCall(ctx context.Context, id uint32, args []byte) ([]byte, error) {
	fn, ok := e.cfg.ExtensionIDs[id]
	if !ok {
		return nil, kernelerrors.New(kernelerrors.Unsupported, "unknown extension id")
	}
	return fn(args)
}

func (e *Engine) Slots() map[string]bool {
	return map[string]bool{
		"mmu":       true,
		"interrupt": true,
		"timer":     true,
		"cache":     true,
		"cpu":       true,
		"context":   true,
		"ipc":       true,
		"perf":      e.cfg.HasPerfMon,
		"power":     true,
		"debug_sw":  true,
		"debug_hw":  e.cfg.HasHWBreak,
	}
}
