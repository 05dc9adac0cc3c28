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

// Package entropy implements the Entropy Pool & Secure Random source (C5):
// a continuously-mixed byte pool feeding a 64-bit secure random generator
// used for capability ids, the KASLR offset, and the stack canary.
package entropy

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/orion-os/kernel/internal/avalanche"
	"github.com/orion-os/kernel/pkg/clock"
)

// DefaultSize is the pool's default byte-array size.
const DefaultSize = 4096

// DefaultReseedInterval is how often GetU64 (through maybeReseedLocked)
// mixes in additional hardware entropy, when available.
const DefaultReseedInterval = 10 * time.Second

// HWSource supplies hardware entropy, when the platform has one. It maps
// to the arch_hw_entropy() collaborator.
type HWSource interface {
	HWEntropy() (uint64, bool)
}

// Pool is the process-wide entropy singleton. It must be constructed via
// New and have Init called exactly once before GetU64 is relied on; before
// Init, GetU64 falls back to mixing the wall clock, which must never be
// used again afterward.
type Pool struct {
	mu          sync.Mutex
	buf         []byte
	writeCursor int
	readCursor  int
	entropyBits uint64
	wrapped     bool
	initialized bool
	lastReseed  time.Time

	clock clock.Source
	hw    HWSource
}

// New constructs a Pool of DefaultSize bytes.
func New(clk clock.Source, hw HWSource) *Pool {
	return &Pool{
		buf:   make([]byte, DefaultSize),
		clock: clk,
		hw:    hw,
	}
}

// Init seeds the pool until it has wrapped at least once, then marks it
// usable. Before Init, the pool still answers AddEvent/GetU64 calls, but
// through the documented clock-based fallback.
func (p *Pool) Init() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return
	}
	for i := 0; i < len(p.buf); i += 8 {
		p.mixLocked(uint64(time.Now().UnixNano()) ^ uint64(i))
	}
	p.initialized = true
	p.lastReseed = time.Now()
}

func (p *Pool) mixLocked(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	for i := 0; i < 8; i++ {
		idx := (p.writeCursor + i) % len(p.buf)
		p.buf[idx] ^= b[i] // XOR in, never overwrite
	}
	p.writeCursor = (p.writeCursor + 8) % len(p.buf)
	if p.writeCursor < 8 {
		p.wrapped = true
	}
	p.entropyBits += 8
}

// AddEvent XORs an externally observed 64-bit event (timer jitter,
// interrupt timestamps, device completion times, ...) into the pool at the
// current write cursor.
func (p *Pool) AddEvent(v uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mixLocked(v)
}

// Ready reports whether the pool has been seeded past one full wrap, the
// threshold before it is considered usable.
func (p *Pool) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized && p.wrapped
}

// GetU64 reads eight bytes at the read cursor, advances it, and feeds the
// current monotonic timestamp back into the pool so consecutive calls draw
// different state. Before Init, it uses the documented fallback of mixing
// the wall clock with a synthetic cycle counter; that fallback must never
// run again once Init has completed.
func (p *Pool) GetU64() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return avalanche.Combine(uint64(time.Now().UnixNano()), fallbackCycleCounter())
	}

	p.maybeReseedLocked()

	var out uint64
	for i := 0; i < 8; i++ {
		idx := (p.readCursor + i) % len(p.buf)
		out = out<<8 | uint64(p.buf[idx])
	}
	p.readCursor = (p.readCursor + 8) % len(p.buf)

	var ts uint64
	if p.clock != nil {
		ts = p.clock.NowMonotonic()
	} else {
		ts = uint64(time.Now().UnixNano())
	}
	p.mixLocked(ts)
	return out
}

func (p *Pool) maybeReseedLocked() {
	now := time.Now()
	if now.Sub(p.lastReseed) < DefaultReseedInterval {
		return
	}
	p.lastReseed = now
	if p.hw == nil {
		return
	}
	if v, ok := p.hw.HWEntropy(); ok {
		p.mixLocked(v)
	}
}

// fallbackCycleCounter is the pre-init fallback's stand-in for a hardware
// cycle counter: the wall-clock nanosecond reading XORed with a fixed
// constant, so it differs from the plain wall-clock term it's combined
// with. It is not a monotonic reading.
func fallbackCycleCounter() uint64 {
	return uint64(time.Now().UnixNano()) ^ 0x5deece66d
}
