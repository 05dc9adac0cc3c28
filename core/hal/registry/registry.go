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

// Package registry implements the HAL Registry & Manager (C3): the set of
// registered architecture backends, the currently selected one, and the
// manager's own lifecycle state machine.
package registry

import (
	"context"
	"runtime"
	"sync"

	"github.com/containerd/log"
	"github.com/containerd/platforms"

	"github.com/orion-os/kernel/core/hal/arch"
	"github.com/orion-os/kernel/core/hal/backend"
	"github.com/orion-os/kernel/pkg/identifiers"
	"github.com/orion-os/kernel/pkg/kernelerrors"
)

// MaxArchitectures bounds the registry table.
const MaxArchitectures = 16

// State is the manager's lifecycle state machine:
// uninitialized -> initializing -> ready <-> switching.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateSwitching
)

// Manager holds the registered backend descriptors and the currently
// selected one. All mutating operations (other than dispatch reads through
// Current) are single-writer, serialized by mu.
type Manager struct {
	mu      sync.RWMutex
	backend map[arch.Tag]*backend.Descriptor
	current *backend.Descriptor
	state   State

	// bootComplete latches true the first time Init succeeds; once true,
	// Switch is restricted to returning ErrInvalidState, since runtime
	// architecture switching after boot is architecturally unsound.
	bootComplete bool
}

// New returns an empty, uninitialized manager.
func New() *Manager {
	return &Manager{backend: make(map[arch.Tag]*backend.Descriptor)}
}

// Register inserts a backend descriptor. The first registration also
// becomes the current backend. Registering a tag or name already present
// fails with ErrAlreadyExists; a full table fails with ErrOutOfMemory.
func (m *Manager) Register(d *backend.Descriptor) error {
	if d == nil {
		return kernelerrors.New(kernelerrors.InvalidArgument, "nil descriptor")
	}
	if err := identifiers.Validate(string(d.Name)); err != nil {
		return kernelerrors.Newf(kernelerrors.InvalidArgument, "backend name %q: %v", d.Name, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.backend[d.Tag]; exists {
		return kernelerrors.Newf(kernelerrors.AlreadyExists, "architecture %s already registered", d.Tag)
	}
	for tag, existing := range m.backend {
		if existing.Name == d.Name {
			return kernelerrors.Newf(kernelerrors.AlreadyExists, "backend name %q already used by %s", d.Name, tag)
		}
	}
	if len(m.backend) >= MaxArchitectures {
		return kernelerrors.New(kernelerrors.OutOfMemory, "architecture registry full")
	}

	m.backend[d.Tag] = d
	if m.current == nil {
		m.current = d
	}
	return nil
}

// Detect identifies the running architecture from the Go runtime's
// GOARCH, normalized through containerd/platforms the same way the
// teacher normalizes OCI platform strings. It must succeed before Init
// reports success.
func (m *Manager) Detect() (arch.Tag, error) {
	goarch := runtime.GOARCH
	if p, err := platforms.Parse(goarch); err == nil && p.Architecture != "" {
		goarch = p.Architecture
	}
	tag, ok := arch.FromGOARCH(goarch)
	if !ok {
		return "", kernelerrors.Newf(kernelerrors.NoArch, "no backend for GOARCH %q", runtime.GOARCH)
	}
	return tag, nil
}

// Switch selects a different registered backend as current. Restricted to
// the ready state and to before boot-complete latches: swapping the CPU
// dispatch table under a running kernel has no well-defined semantics for
// operations already bound to the previous backend's function pointers.
func (m *Manager) Switch(tag arch.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateReady {
		return kernelerrors.New(kernelerrors.InvalidState, "manager not ready")
	}
	if m.bootComplete {
		return kernelerrors.New(kernelerrors.InvalidState, "architecture switch restricted to boot-time diagnostics")
	}
	d, ok := m.backend[tag]
	if !ok {
		return kernelerrors.Newf(kernelerrors.UnsupportedArch, "architecture %s not registered", tag)
	}

	m.state = StateSwitching
	m.current = d
	m.state = StateReady
	return nil
}

// Current returns the active backend descriptor, or nil if none is
// registered yet.
func (m *Manager) Current() *backend.Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Get returns the registered descriptor for tag, if any.
func (m *Manager) Get(tag arch.Tag) (*backend.Descriptor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.backend[tag]
	return d, ok
}

// Init transitions uninitialized -> initializing -> ready. It is
// idempotent: calling it again after success returns nil without
// re-running detection.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateReady {
		m.mu.Unlock()
		return nil
	}
	m.state = StateInitializing
	m.mu.Unlock()

	tag, err := m.Detect()
	if err != nil {
		m.mu.Lock()
		m.state = StateUninitialized
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.backend[tag]; !ok {
		m.state = StateUninitialized
		return kernelerrors.Newf(kernelerrors.NoArch, "detected architecture %s has no registered backend", tag)
	}
	m.current = m.backend[tag]
	m.state = StateReady
	m.bootComplete = true
	log.G(ctx).WithField("arch", tag).Info("hal manager ready")
	return nil
}

// Shutdown tears the manager back down to uninitialized. There is no
// per-backend teardown hook defined yet; Shutdown only resets manager
// state so a fresh Init can run again (used by tests).
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateUninitialized
	m.current = nil
	m.bootComplete = false
	return nil
}

// State reports the manager's current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// ReportCapabilities iterates the current backend's exposed slots and
// reports which are bound to a real implementation versus UNSUPPORTED.
func (m *Manager) ReportCapabilities() (map[string]bool, error) {
	cur := m.Current()
	if cur == nil {
		return nil, kernelerrors.New(kernelerrors.InvalidState, "no current backend")
	}
	return cur.Ops.Slots(), nil
}

// Benchmark is a diagnostic surface that calls four fixed operations of the
// current backend once each (CPUInit, TimerInit, Sync, IPCSetup) and
// returns how many of them returned no error. It does not consult Slots()
// and exercises no other slot.
func (m *Manager) Benchmark(ctx context.Context) (int, error) {
	cur := m.Current()
	if cur == nil {
		return 0, kernelerrors.New(kernelerrors.InvalidState, "no current backend")
	}
	ok := 0
	if cur.Ops.CPUInit() == nil {
		ok++
	}
	if cur.Ops.TimerInit() == nil {
		ok++
	}
	if cur.Ops.Sync() == nil {
		ok++
	}
	if cur.Ops.IPCSetup() == nil {
		ok++
	}
	return ok, nil
}
