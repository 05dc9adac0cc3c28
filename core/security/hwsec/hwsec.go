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

// Package hwsec implements the Hardware-Security Hooks (C10): the KASLR
// offset, stack canary, CFI jump table, W^X check and address-validity
// validator that the policy layer (C11) consults on every memory and
// control-flow-sensitive decision.
package hwsec

import (
	"sync"

	"github.com/orion-os/kernel/internal/avalanche"
)

const (
	kaslrMask      = 1<<16 - 1 // 2^16 possible offsets
	kaslrAlignBits = 21        // 2 MiB alignment
	kaslrAlignMask = ^uint64(0) << kaslrAlignBits

	// DefaultCFICapacity is the jump table's default slot count.
	DefaultCFICapacity = 1024
)

// RandomSource supplies the secure 64-bit values KASLR and the canary are
// drawn from.
type RandomSource interface {
	GetU64() uint64
}

// ArchProbe bridges address-validity checks the generic layer cannot
// decide on its own to the active HAL backend's architecture-extension
// escape hatch (arch_validate_user_address and friends).
type ArchProbe interface {
	ValidateUserAddress(vaddr, size uint64) bool
}

// AuditClass mirrors the one audit.Class the hardware-security hooks
// ever raise, without importing core/security/audit directly (keeping
// hwsec a leaf relative to audit, the same way capability does).
type AuditClass int

const (
	AuditMemoryViolation AuditClass = iota
)

// Auditor receives one audit write per hardware-security violation.
type Auditor interface {
	Write(pid, tid uint64, class AuditClass, severity int, capID, objectID uint64, result int, description string)
}

// IDSClass mirrors the subset of ids.Class the hooks can raise.
type IDSClass int

const (
	IDSStackOverflow IDSClass = iota
	IDSCFIViolation
	IDSWXViolation
)

// IDSReporter receives violation-class counts from the hooks.
type IDSReporter interface {
	Report(class IDSClass, severity int)
}

// jumpSlot is one CFI allow-list entry.
type jumpSlot struct {
	source uint64
	target uint64
	hash   uint64
	valid  bool
}

// Hooks bundles the boot-time-seeded hardware-security state: KASLR
// offset, stack canary, and CFI jump table. All fields are process-wide
// singletons initialized once at boot.
type Hooks struct {
	mu sync.Mutex

	kaslrBase   uint64
	kaslrOffset uint64

	canary uint64

	cfi     []jumpSlot
	cfiNext int

	arch  ArchProbe
	audit Auditor
	ids   IDSReporter
}

// New draws the KASLR offset and stack canary from random and
// initializes an empty CFI jump table of DefaultCFICapacity slots.
// kaslrBase is the kernel's unrelocated base virtual address. audit and
// ids may be nil, in which case violations are still computed correctly
// but go unreported (used by tests that only care about the predicate).
func New(random RandomSource, kaslrBase uint64, arch ArchProbe, audit Auditor, ids IDSReporter) *Hooks {
	h := &Hooks{
		kaslrBase: kaslrBase,
		cfi:       make([]jumpSlot, DefaultCFICapacity),
		arch:      arch,
		audit:     audit,
		ids:       ids,
	}
	h.kaslrOffset = (random.GetU64() & kaslrMask) << kaslrAlignBits & kaslrAlignMask
	h.canary = random.GetU64()
	return h
}

// report emits an audit entry and an IDS count for a hardware-security
// violation attributed to pid.
func (h *Hooks) report(pid uint64, class IDSClass, severity int, description string) {
	if h.audit != nil {
		h.audit.Write(pid, 0, AuditMemoryViolation, severity, 0, 0, 0, description)
	}
	if h.ids != nil {
		h.ids.Report(class, severity)
	}
}

// KASLROffset returns the boot-time KASLR offset.
func (h *Hooks) KASLROffset() uint64 { return h.kaslrOffset }

// KASLRWindow returns the protected address window [base+offset,
// base+offset+offset) that AddressValid rejects addresses inside of.
func (h *Hooks) KASLRWindow() (start, end uint64) {
	start = h.kaslrBase + h.kaslrOffset
	return start, start + h.kaslrOffset
}

// CheckCanary compares c against the stored stack canary. A mismatch is
// attributed to pid: sev-9 memory-violation audit entry plus an IDS
// stack_overflow report.
func (h *Hooks) CheckCanary(pid uint64, c uint64) bool {
	if c == h.canary {
		return true
	}
	h.report(pid, IDSStackOverflow, 9, "stack canary mismatch")
	return false
}

func cfiHash(source, target uint64) uint64 {
	return avalanche.Combine(source, target)
}

// RegisterCFITarget appends a valid (source, target) pair to the jump
// table, overwriting the oldest entry once the table is full.
func (h *Hooks) RegisterCFITarget(source, target uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfi[h.cfiNext] = jumpSlot{
		source: source,
		target: target,
		hash:   cfiHash(source, target),
		valid:  true,
	}
	h.cfiNext = (h.cfiNext + 1) % len(h.cfi)
}

// ValidateCFITransfer scans the jump table for a valid entry matching
// source and the recomputed hash of (source, target). Absence of a
// matching entry is attributed to pid: sev-9 memory-violation audit
// entry plus an IDS cfi_violation report.
func (h *Hooks) ValidateCFITransfer(pid, source, target uint64) bool {
	want := cfiHash(source, target)
	h.mu.Lock()
	for _, s := range h.cfi {
		if s.valid && s.source == source && s.hash == want {
			h.mu.Unlock()
			return true
		}
	}
	h.mu.Unlock()
	h.report(pid, IDSCFIViolation, 9, "cfi transfer not in jump table")
	return false
}

// CheckWX reports whether flags carries both WRITABLE and EXECUTABLE,
// which is always a violation. A violation is recorded and counted
// against pid, the owning process of the mapping being checked.
func (h *Hooks) CheckWX(pid uint64, writable, executable bool) bool {
	violation := writable && executable
	if violation {
		h.report(pid, IDSWXViolation, 8, "page mapping writable and executable")
	}
	return violation
}

// AddressValid rejects null pointers, zero lengths, vaddr+size overflow,
// and any address inside the KASLR-protected window, then delegates to
// the architecture probe if one is configured.
func (h *Hooks) AddressValid(vaddr, size uint64) bool {
	if vaddr == 0 || size == 0 {
		return false
	}
	end := vaddr + size
	if end < vaddr {
		return false // overflow
	}
	winStart, winEnd := h.KASLRWindow()
	if vaddr < winEnd && end > winStart {
		return false
	}
	if h.arch != nil {
		return h.arch.ValidateUserAddress(vaddr, size)
	}
	return true
}
