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

// Package policy implements the Policy Enforcement Surface (C11): the
// syscall-allow and memory-limit gates, and report_violation, the single
// funnel every other security subsystem's denial path runs through.
// Unlike the leaf packages under core/security, policy is the top
// composition layer and is allowed to depend on the concrete context,
// audit and ids types directly.
package policy

import (
	"github.com/orion-os/kernel/core/security/audit"
	"github.com/orion-os/kernel/core/security/context"
	"github.com/orion-os/kernel/core/security/ids"
)

// Scheduler is the process-control collaborator memory_limit_ok and the
// escalation path consult. It is the kernel's only source of truth for
// a process's current memory usage; there is intentionally no
// hard-coded fallback estimate is acceptable here.
type Scheduler interface {
	MemoryUsage(pid uint64) (uint64, error)
	RequestTerminate(pid uint64) error
}

// Enforcer wires the security contexts, audit ring and IDS aggregator
// into the three enforcement entry points every syscall path and
// capability operation ultimately calls through.
type Enforcer struct {
	contexts  *context.Table
	auditRing *audit.Ring
	ids       *ids.Aggregator
	scheduler Scheduler
}

// New constructs an Enforcer over the given collaborators.
func New(contexts *context.Table, auditRing *audit.Ring, aggregator *ids.Aggregator, sched Scheduler) *Enforcer {
	return &Enforcer{contexts: contexts, auditRing: auditRing, ids: aggregator, scheduler: sched}
}

// SyscallAllowed consults pid's denied-syscall bitmap. Absence of a
// context is allow-by-default. A deny is reported through the standard
// funnel at severity 5.
func (e *Enforcer) SyscallAllowed(syscallNum int, pid uint64) bool {
	c, ok := e.contexts.Lookup(pid)
	if !ok {
		return true
	}
	if !c.IsDenied(syscallNum) {
		return true
	}
	e.reportViolation(ids.SuspiciousSyscall, audit.SyscallDenied, 5, pid, 0, uint64(syscallNum), "syscall denied")
	return false
}

// MemoryLimitOK checks pid's current usage (queried through the Scheduler
// collaborator, never estimated) plus the requested bytes against its
// context's memory limit. A deny is reported at severity 4.
func (e *Enforcer) MemoryLimitOK(pid uint64, bytes uint64) bool {
	c, ok := e.contexts.Lookup(pid)
	if !ok {
		return true
	}
	limit, _, _ := c.Limits()

	used, err := e.scheduler.MemoryUsage(pid)
	if err != nil {
		return false
	}
	if used+bytes <= limit {
		return true
	}

	e.reportViolation(ids.Other, audit.MemoryViolation, 4, pid, 0, 0, "memory limit exceeded")
	return false
}

// ReportViolation is the single funnel used by every other subsystem for
// violations it cannot classify more precisely: it audits the event as
// SECURITY_BREACH, updates the IDS aggregator, increments the owning
// context's violation counter, and — via the aggregator's escalation
// policy — may request the scheduler terminate the process.
func (e *Enforcer) ReportViolation(class ids.Class, severity int, pid uint64, details string) {
	e.reportViolation(class, audit.SecurityBreach, severity, pid, 0, 0, details)
}

func (e *Enforcer) reportViolation(class ids.Class, auditClass audit.Class, severity int, pid, capID, objectID uint64, details string) {
	e.ids.ReportForPID(class, severity, pid)

	if c, ok := e.contexts.Lookup(pid); ok {
		c.RecordViolation()
	}

	e.auditRing.Write(pid, 0, auditClass, severity, capID, objectID, 0, details)
}
