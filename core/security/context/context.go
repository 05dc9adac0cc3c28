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

// Package context implements the Security Context Table (C7): a
// fixed-size, per-process table of security level, resource limits,
// denied-syscall bitmap, and violation counter.
package context

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/orion-os/kernel/core/security/seclevel"
	"github.com/orion-os/kernel/core/security/syscallclass"
	"github.com/orion-os/kernel/pkg/clock"
	"github.com/orion-os/kernel/pkg/identifiers"
	"github.com/orion-os/kernel/pkg/kernelerrors"
)

// DefaultCapacity is the table's default slot count.
const DefaultCapacity = 1024

const (
	defaultMemoryLimit = 512 * 1024 * 1024 // 512 MiB
	defaultFileLimit   = 1024
	defaultSocketLimit = 64
)

// deniedWords holds the 8x64-bit denied-syscall bitmap.
type deniedWords [8]uint64

// Context is one process's security context record.
type Context struct {
	PID            uint64
	Level          seclevel.Level
	CapabilityBits uint64 // coarse capability-class bitmap, independent of the capability pool

	mu          sync.Mutex
	denied      deniedWords
	memoryLimit uint64
	fileLimit   uint64
	socketLimit uint64
	sandboxed   bool
	jailRoot    string

	violations atomic.Uint64
	createdAt  uint64
}

// DenySyscall marks syscall number n as denied for this context.
func (c *Context) DenySyscall(n int) {
	if n < 0 || n >= 8*64 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.denied[n/64] |= 1 << uint(n%64)
}

// AllowSyscall clears a previously denied syscall number.
func (c *Context) AllowSyscall(n int) {
	if n < 0 || n >= 8*64 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.denied[n/64] &^= 1 << uint(n%64)
}

// IsDenied reports whether syscall number n is denied for this context.
func (c *Context) IsDenied(n int) bool {
	if n < 0 || n >= 8*64 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.denied[n/64]&(1<<uint(n%64)) != 0
}

// Limits returns the current memory/file/socket limits.
func (c *Context) Limits() (memory, files, sockets uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memoryLimit, c.fileLimit, c.socketLimit
}

// SetMemoryLimit updates the memory limit, in bytes.
func (c *Context) SetMemoryLimit(bytes uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memoryLimit = bytes
}

// Sandboxed reports whether this context is sandboxed.
func (c *Context) Sandboxed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sandboxed
}

// JailRoot returns the jail root path, if any.
func (c *Context) JailRoot() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.jailRoot
}

// SetJailRoot sets the jail root path, after validating every path
// component with pkg/identifiers so a malformed or hostile component
// (".." is rejected by the same alphanumeric-plus-separators pattern
// containerd uses for image identifiers) can never reach a path join
// downstream in the filesystem collaborator.
func (c *Context) SetJailRoot(root string) error {
	for _, part := range strings.Split(strings.Trim(root, "/"), "/") {
		if part == "" {
			continue
		}
		if err := identifiers.Validate(part); err != nil {
			return kernelerrors.Newf(kernelerrors.InvalidArgument, "jail root component %q: %v", part, err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jailRoot = root
	return nil
}

// Violations returns the current violation counter value.
func (c *Context) Violations() uint64 { return c.violations.Load() }

// RecordViolation atomically increments the violation counter and returns
// the new value.
func (c *Context) RecordViolation() uint64 { return c.violations.Add(1) }

// Table is the process-wide security context singleton: a linear table of
// fixed size, looked up by pid, never recycled without explicit teardown.
type Table struct {
	mu       sync.RWMutex
	byPID    map[uint64]*Context
	capacity int
	clock    clock.Source
}

// NewTable constructs a Table with DefaultCapacity slots.
func NewTable(clk clock.Source) *Table {
	return &Table{
		byPID:    make(map[uint64]*Context),
		capacity: DefaultCapacity,
		clock:    clk,
	}
}

// Lookup returns the context for pid, if one exists.
func (t *Table) Lookup(pid uint64) (*Context, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.byPID[pid]
	return c, ok
}

// Create inserts a new context for pid at the given level, applying the
// standard defaults (512 MiB memory, 1024 files, 64 sockets, sandboxed iff
// level >= RESTRICTED). Fails with OUT_OF_MEMORY if the table is full.
func (t *Table) Create(pid uint64, level seclevel.Level) (*Context, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.byPID[pid]; ok {
		return c, nil
	}
	if len(t.byPID) >= t.capacity {
		return nil, kernelerrors.New(kernelerrors.OutOfMemory, "security context table full")
	}

	var created uint64
	if t.clock != nil {
		created = t.clock.NowMonotonic()
	}
	c := &Context{
		PID:         pid,
		Level:       level,
		memoryLimit: defaultMemoryLimit,
		fileLimit:   defaultFileLimit,
		socketLimit: defaultSocketLimit,
		sandboxed:   level >= seclevel.Restricted,
		createdAt:   created,
	}
	if c.sandboxed {
		// A freshly sandboxed context starts with no capability grants,
		// so every privileged syscall class syscallclass knows about is
		// denied until something explicitly allows it back.
		for _, n := range syscallclass.DefaultDenied(nil) {
			if n >= 0 && n < 8*64 {
				c.denied[n/64] |= 1 << uint(n%64)
			}
		}
	}
	t.byPID[pid] = c
	return c, nil
}

// EnsureContext returns the existing context for pid, or creates one at
// LevelRestricted if absent. This is the "create one at level RESTRICTED
// if absent" precondition used throughout the capability pool.
func (t *Table) EnsureContext(pid uint64) (*Context, error) {
	if c, ok := t.Lookup(pid); ok {
		return c, nil
	}
	return t.Create(pid, seclevel.Restricted)
}

// Remove tears down the context for pid. Callers are responsible for
// having already destroyed pid's owned capabilities; Table does not
// recycle a slot implicitly.
func (t *Table) Remove(pid uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byPID, pid)
}

// Len reports how many contexts currently exist.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byPID)
}
