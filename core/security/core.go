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

// Package security is the composition root for C5-C11: it wires the leaf
// packages (entropy, capability, context, audit, ids, hwsec, policy) into
// one Core value, an explicit constructed parameter instead of ambient
// process globals. The adapters that only exist to satisfy one leaf
// package's narrow collaborator interface in terms of another leaf
// package's concrete type live here, not in the leaf packages themselves;
// the exception is audit.CapabilityAuditor, which lives in audit and
// imports capability.
package security

import (
	"context"
	"time"

	metrics "github.com/docker/go-metrics"
	bolt "go.etcd.io/bbolt"

	"github.com/orion-os/kernel/core/security/audit"
	"github.com/orion-os/kernel/core/security/capability"
	seccontext "github.com/orion-os/kernel/core/security/context"
	"github.com/orion-os/kernel/core/security/entropy"
	"github.com/orion-os/kernel/core/security/hwsec"
	"github.com/orion-os/kernel/core/security/ids"
	secmetrics "github.com/orion-os/kernel/core/security/metrics"
	"github.com/orion-os/kernel/core/security/policy"
	"github.com/orion-os/kernel/pkg/clock"
)

// Scheduler is the union of every process-control collaborator the
// security core calls out to: termination requests from the IDS
// escalation policy, and the memory-usage query memory_limit_ok needs.
// A kernel without a real scheduler wired yet can pass NoopScheduler{}.
type Scheduler interface {
	MemoryUsage(pid uint64) (uint64, error)
	RequestTerminate(pid uint64) error
}

// NoopScheduler answers every memory query with zero usage and every
// termination request with success, for diagnostic tools (cmd/orionctl)
// that exercise the security core outside a running kernel.
type NoopScheduler struct{}

// MemoryUsage implements Scheduler.
func (NoopScheduler) MemoryUsage(uint64) (uint64, error) { return 0, nil }

// RequestTerminate implements Scheduler.
func (NoopScheduler) RequestTerminate(uint64) error { return nil }

// HWEntropySource maps to the arch_hw_entropy() collaborator.
type HWEntropySource interface {
	HWEntropy() (uint64, bool)
}

// Config configures Core's construction. It is loaded by
// plugins/security's plugin.Registration, following the same toml-tagged
// Config-struct shape as plugins/metadata.BoltConfig.
type Config struct {
	// KASLRBase is the kernel's unrelocated base virtual address, used to
	// compute the protected address window hwsec.Hooks rejects addresses
	// inside of.
	KASLRBase uint64 `toml:"kaslr_base"`

	// AuditDBPath, if non-empty, opens a bbolt database at this path and
	// attaches it as a durable audit.Sink (see core/security/audit/bolt.go).
	// Leaving it empty keeps the audit ring purely in-memory.
	AuditDBPath string `toml:"audit_db_path"`

	// MetricsInterval is how often the pool-occupancy/alert-mode gauges
	// are sampled. Zero uses core/security/metrics's own default.
	MetricsInterval time.Duration `toml:"metrics_interval"`
}

// Validate accepts every Config, including the zero value, and changes no
// field.
func (c *Config) Validate() error {
	return nil
}

// Core bundles every C5-C11 singleton into one value, constructed once at
// boot and passed down rather than reached for via package-level globals.
type Core struct {
	Clock     clock.Source
	Entropy   *entropy.Pool
	Contexts  *seccontext.Table
	Audit     *audit.Ring
	IDS       *ids.Aggregator
	Pool      *capability.Pool
	HWSec     *hwsec.Hooks
	Enforcer  *policy.Enforcer
	Metrics   *secmetrics.Collector
	boltSink  *audit.BoltSink
}

// contextEnsurer adapts *seccontext.Table to capability.ContextEnsurer:
// *seccontext.Context already has the RecordViolation method
// capability.ViolationRecorder needs, but Go requires the adapted method's
// return type to say so explicitly since interface satisfaction is not
// covariant across return types.
type contextEnsurer struct{ t *seccontext.Table }

func (c contextEnsurer) EnsureContext(pid uint64) (capability.ViolationRecorder, error) {
	return c.t.EnsureContext(pid)
}

// idsReporter adapts *ids.Aggregator to capability.IDSReporter, translating
// the pool's narrow two-member IDSClass into the aggregator's full Class
// enumeration.
type idsReporter struct{ a *ids.Aggregator }

func (r idsReporter) Report(class capability.IDSClass, severity int) {
	switch class {
	case capability.IDSCapabilityExhaustion:
		r.a.Report(ids.CapabilityExhaustion, severity)
	case capability.IDSCapabilityCorruption:
		r.a.Report(ids.CapabilityCorruption, severity)
	}
}

// hwsecAuditor adapts *audit.Ring to hwsec.Auditor.
type hwsecAuditor struct{ r *audit.Ring }

func (a hwsecAuditor) Write(pid, tid uint64, class hwsec.AuditClass, severity int, capID, objectID uint64, result int, description string) {
	a.r.Write(pid, tid, audit.MemoryViolation, severity, capID, objectID, result, description)
}

// hwsecIDSReporter adapts *ids.Aggregator to hwsec.IDSReporter, translating
// the hooks' narrow three-member IDSClass into the aggregator's full Class
// enumeration.
type hwsecIDSReporter struct{ a *ids.Aggregator }

func (r hwsecIDSReporter) Report(class hwsec.IDSClass, severity int) {
	switch class {
	case hwsec.IDSStackOverflow:
		r.a.Report(ids.StackOverflow, severity)
	case hwsec.IDSCFIViolation:
		r.a.Report(ids.CFIViolation, severity)
	case hwsec.IDSWXViolation:
		r.a.Report(ids.WXViolation, severity)
	}
}

// New constructs every C5-C11 singleton and wires their collaborator
// interfaces together. hw may be nil (no hardware entropy source on this
// build); sched may be nil, in which case NoopScheduler is used.
func New(cfg Config, hw HWEntropySource, sched Scheduler) (*Core, error) {
	if sched == nil {
		sched = NoopScheduler{}
	}

	clk := clock.NewSystem()

	ep := entropy.New(clk, hw)
	ep.Init()

	ns := metrics.NewNamespace("orion", "security", nil)

	var sinks []audit.Sink
	var boltSink *audit.BoltSink
	if cfg.AuditDBPath != "" {
		db, err := bolt.Open(cfg.AuditDBPath, 0600, &bolt.Options{Timeout: 10 * time.Second})
		if err != nil {
			return nil, err
		}
		boltSink, err = audit.NewBoltSink(db)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, boltSink)
	}
	ring := audit.New(clk, sinks...)

	aggregator := ids.New(clk, sched, ns)

	contexts := seccontext.NewTable(clk)

	pool := capability.New(contextEnsurer{contexts}, audit.CapabilityAuditor{Ring: ring}, idsReporter{aggregator}, ep, clk)

	var arch hwsec.ArchProbe // wired by the HAL plugin once arch_validate_user_address is available
	hooks := hwsec.New(ep, cfg.KASLRBase, arch, hwsecAuditor{ring}, hwsecIDSReporter{aggregator})

	enforcer := policy.New(contexts, ring, aggregator, sched)

	collector := secmetrics.NewCollector(ns, pool, aggregator)
	metrics.Register(ns)

	return &Core{
		Clock:    clk,
		Entropy:  ep,
		Contexts: contexts,
		Audit:    ring,
		IDS:      aggregator,
		Pool:     pool,
		HWSec:    hooks,
		Enforcer: enforcer,
		Metrics:  collector,
		boltSink: boltSink,
	}, nil
}

// RunMetrics samples the metrics collector every interval until ctx is
// done. Callers that embed Core in a longer-lived process should run this
// in its own goroutine; diagnostic tools that just want one reading can
// call c.Metrics.Collect() directly instead.
func (c *Core) RunMetrics(ctx context.Context, interval time.Duration) {
	c.Metrics.Run(ctx, interval)
}

