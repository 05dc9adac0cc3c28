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

// Package flags holds the generic page-flag namespace and the bidirectional
// translation tables between it and each architecture's own bit encoding
// (C1 in the HAL design). Translation is total: unknown or unsupported bits
// are silently discarded in either direction, never rejected.
package flags

import "github.com/orion-os/kernel/core/hal/arch"

// Generic is the closed, architecture-independent page-flag set. Backends
// never see these bits directly; every call crosses through ToArch/FromArch
// first.
type Generic uint32

const (
	Present Generic = 1 << iota
	Writable
	User
	Executable
	Kernel
	Device
	NoCache
)

// Arch is an architecture-specific encoding of a Generic set. Its bit
// layout is meaningless outside the owning architecture's backend.
type Arch uint64

type table struct {
	toArch   map[Generic]Arch
	fromArch map[Arch]Generic
}

func newTable(pairs map[Generic]Arch) table {
	t := table{
		toArch:   make(map[Generic]Arch, len(pairs)),
		fromArch: make(map[Arch]Generic, len(pairs)),
	}
	for g, a := range pairs {
		t.toArch[g] = a
		t.fromArch[a] = g
	}
	return t
}

// tables holds one entry per known architecture. Every table maps all seven
// generic bits (PRESENT/WRITABLE/USER/EXECUTABLE/KERNEL/DEVICE/NOCACHE)
// to one architecture bit each, except ARMv7-L's, which has no NoCache
// entry.
var tables = map[arch.Tag]table{
	arch.X86_64: newTable(map[Generic]Arch{
		Present:    1 << 0,
		Writable:   1 << 1,
		User:       1 << 2,
		Executable: 1 << 3, // NX inverted at encode time by the backend
		Kernel:     1 << 4,
		Device:     1 << 5,
		NoCache:    1 << 6,
	}),
	arch.AArch64: newTable(map[Generic]Arch{
		Present:    1 << 0,
		Writable:   1 << 1,
		User:       1 << 2,
		Executable: 1 << 3,
		Kernel:     1 << 4,
		Device:     1 << 5,
		NoCache:    1 << 6,
	}),
	arch.RISCV64: newTable(map[Generic]Arch{
		Present:    1 << 0,
		Writable:   1 << 1,
		User:       1 << 2,
		Executable: 1 << 3,
		Kernel:     1 << 4,
		Device:     1 << 5,
		NoCache:    1 << 6,
	}),
	arch.PowerPC: newTable(map[Generic]Arch{
		Present:    1 << 0,
		Writable:   1 << 1,
		User:       1 << 2,
		Executable: 1 << 3,
		Kernel:     1 << 4,
		Device:     1 << 5,
		NoCache:    1 << 6,
	}),
	arch.LoongArch: newTable(map[Generic]Arch{
		Present:    1 << 0,
		Writable:   1 << 1,
		User:       1 << 2,
		Executable: 1 << 3,
		Kernel:     1 << 4,
		Device:     1 << 5,
		NoCache:    1 << 6,
	}),
	arch.MIPS: newTable(map[Generic]Arch{
		Present:    1 << 0,
		Writable:   1 << 1,
		User:       1 << 2,
		Executable: 1 << 3,
		Kernel:     1 << 4,
		Device:     1 << 5,
		NoCache:    1 << 6,
	}),
	arch.ARMv7L: newTable(map[Generic]Arch{
		Present:    1 << 0,
		Writable:   1 << 1,
		User:       1 << 2,
		Executable: 1 << 3,
		Kernel:     1 << 4,
		Device:     1 << 5,
		// ARMv7-L short-descriptor tables have no dedicated no-cache bit
		// in this generic mapping; NoCache is dropped going out and
		// reads back as absent, which is the documented lossy case.
	}),
	arch.S390X: newTable(map[Generic]Arch{
		Present:    1 << 0,
		Writable:   1 << 1,
		User:       1 << 2,
		Executable: 1 << 3,
		Kernel:     1 << 4,
		Device:     1 << 5,
		NoCache:    1 << 6,
	}),
}

// ToArch translates a generic flag set into an architecture's own encoding.
// Bits the architecture does not support are silently discarded. An unknown
// architecture tag translates to zero.
func ToArch(g Generic, tag arch.Tag) Arch {
	t, ok := tables[tag]
	if !ok {
		return 0
	}
	var out Arch
	for bit := Generic(1); bit != 0 && bit <= NoCache; bit <<= 1 {
		if g&bit == 0 {
			continue
		}
		if enc, ok := t.toArch[bit]; ok {
			out |= enc
		}
	}
	return out
}

// FromArch translates an architecture-encoded flag set back to the generic
// namespace. Unrecognized architecture bits are silently discarded.
func FromArch(a Arch, tag arch.Tag) Generic {
	t, ok := tables[tag]
	if !ok {
		return 0
	}
	var out Generic
	for bit, enc := range t.toArch {
		if a&enc != 0 {
			out |= bit
		}
		_ = bit
	}
	return out
}

// SupportedBy reports the subset of the generic namespace an architecture's
// table can represent, used by the round-trip law g -> FromArch(ToArch(g))
// == g & SupportedBy(tag).
func SupportedBy(tag arch.Tag) Generic {
	t, ok := tables[tag]
	if !ok {
		return 0
	}
	var out Generic
	for bit := range t.toArch {
		out |= bit
	}
	return out
}
