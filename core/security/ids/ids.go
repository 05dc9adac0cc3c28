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

// Package ids implements the Intrusion Detection Aggregator (C9): a set
// of per-class atomic violation counters with escalating alert-mode
// behavior and an optional scheduler-termination escalation policy.
package ids

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/orion-os/kernel/pkg/clock"

	"github.com/containerd/log"
	metrics "github.com/docker/go-metrics"
)

// Class enumerates the violation classes the aggregator tracks.
type Class int

const (
	AuthFailure Class = iota
	PrivilegeEscalation
	SuspiciousSyscall
	MemoryCorruption
	CapabilityExhaustion
	CapabilityCorruption
	WXViolation
	StackOverflow
	CFIViolation
	Other

	numClasses
)

func (c Class) String() string {
	switch c {
	case AuthFailure:
		return "auth_failure"
	case PrivilegeEscalation:
		return "privilege_escalation"
	case SuspiciousSyscall:
		return "suspicious_syscall"
	case MemoryCorruption:
		return "memory_corruption"
	case CapabilityExhaustion:
		return "capability_exhaustion"
	case CapabilityCorruption:
		return "capability_corruption"
	case WXViolation:
		return "wx_violation"
	case StackOverflow:
		return "stack_overflow"
	case CFIViolation:
		return "cfi_violation"
	default:
		return "other"
	}
}

// alertEscalationCount is the length that the run of consecutive
// severity>=9 reports (any class, any pid) must exceed before
// ReportForPID requests scheduler termination. Any lower-severity report
// resets the run.
const alertEscalationCount = 5

// alertWindow suppresses repeated alert-mode warnings: a severity>=8
// report within this many nanoseconds of the last one, while alert mode
// is already set, is not logged again. Alert mode itself stays set until
// Clear.
const alertWindow = uint64(1_000_000_000) // 1s, expressed in clock.Source units (ns)

// Scheduler is the process-control collaborator the aggregator escalates
// to when the severity>=9 run crosses the escalation threshold.
type Scheduler interface {
	RequestTerminate(pid uint64) error
}

// Aggregator is the IDS violation counter and alert-mode state machine.
type Aggregator struct {
	counters  [numClasses]atomic.Uint64
	clock     clock.Source
	scheduler Scheduler

	mu            sync.Mutex
	alertMode     bool
	lastAlertTime uint64
	highSevStreak int

	classCounter metrics.LabeledCounter
}

// New constructs an Aggregator. ns may be nil to skip Prometheus
// registration (e.g. in tests).
func New(clk clock.Source, sched Scheduler, ns *metrics.Namespace) *Aggregator {
	a := &Aggregator{clock: clk, scheduler: sched}
	if ns != nil {
		a.classCounter = ns.NewLabeledCounter("violations", "intrusion detection violations by class", "class")
	}
	return a
}

func (a *Aggregator) now() uint64 {
	if a.clock == nil {
		return 0
	}
	return a.clock.NowMonotonic()
}

// Report records one violation of the given class and severity (1-10) and
// updates alert-mode state and the severity>=9 run. It never requests
// termination; ReportForPID does.
func (a *Aggregator) Report(class Class, severity int) {
	if class < 0 || class >= numClasses {
		class = Other
	}
	a.counters[class].Add(1)
	if a.classCounter != nil {
		a.classCounter.WithValues(class.String()).Inc()
	}

	now := a.now()
	a.mu.Lock()
	defer a.mu.Unlock()

	if severity >= 8 {
		sticky := a.alertMode && now-a.lastAlertTime < alertWindow
		a.alertMode = true
		a.lastAlertTime = now
		if !sticky {
			log.L.WithField("class", class.String()).WithField("severity", severity).Warn("intrusion detection alert mode engaged")
		}
	}

	if severity >= 9 {
		a.highSevStreak++
	} else {
		a.highSevStreak = 0
	}
}

// ReportForPID is Report plus the escalation policy: if this report leaves
// the run of consecutive severity>=9 reports longer than
// alertEscalationCount, request scheduler termination of pid. The run is
// counted across every class and every pid the aggregator sees, not per
// pid. Subsystems that can
// attribute a violation to a pid should call this instead of Report.
func (a *Aggregator) ReportForPID(class Class, severity int, pid uint64) {
	a.Report(class, severity)

	a.mu.Lock()
	streak := a.highSevStreak
	a.mu.Unlock()

	if severity >= 9 && streak > alertEscalationCount && a.scheduler != nil {
		if err := a.scheduler.RequestTerminate(pid); err != nil {
			log.L.WithError(err).WithField("pid", pid).Error("intrusion detection escalation: terminate request failed")
		}
	}
}

// AlertMode reports whether the aggregator is currently in alert mode.
func (a *Aggregator) AlertMode() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.alertMode
}

// Count returns the current counter value for class.
func (a *Aggregator) Count(class Class) uint64 {
	if class < 0 || class >= numClasses {
		return 0
	}
	return a.counters[class].Load()
}

// Clear resets all counters and alert-mode state. check receives the
// rights bitmap the administrator operation requires and must return
// true for the clear to proceed; this lets callers enforce an
// ADMIN-rights check without ids importing the capability package.
func (a *Aggregator) Clear(ctx context.Context, requiredRights uint64, check func(required uint64) bool) bool {
	if check != nil && !check(requiredRights) {
		return false
	}
	for i := range a.counters {
		a.counters[i].Store(0)
	}
	a.mu.Lock()
	a.alertMode = false
	a.lastAlertTime = 0
	a.highSevStreak = 0
	a.mu.Unlock()
	return true
}
