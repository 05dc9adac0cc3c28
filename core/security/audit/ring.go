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

// Package audit implements the Audit Ring (C8): a fixed-capacity,
// lock-free-append ring buffer of security-relevant events. The ring
// overwrites its oldest entries once full; callers that need durable
// history should attach a Sink (see bolt.go).
package audit

import (
	"context"
	"sync/atomic"

	"github.com/orion-os/kernel/pkg/clock"

	"github.com/containerd/log"
)

// DefaultCapacity is the ring's default entry count.
const DefaultCapacity = 4096

// MaxDescriptionBytes is the stored length of Entry.Description; longer
// descriptions are truncated when written.
const MaxDescriptionBytes = 128

// Class is the audit event type, the full set of classes tracked: the
// five capability-lifecycle events plus the three enforcement events
// raised by the policy funnel.
type Class int

const (
	CapCreate Class = iota
	CapGrant
	CapRevoke
	CapAccess
	CapViolation
	SyscallDenied
	MemoryViolation
	SecurityBreach
)

// Entry is one audit record.
type Entry struct {
	Seq         uint64
	Timestamp   uint64
	PID         uint64
	TID         uint64
	Class       Class
	Severity    int
	CapID       uint64
	ObjectID    uint64
	Result      int
	Description string
}

// Sink receives a copy of every entry as it is written, for durable
// storage. Write must not block the ring for long; implementations that
// need to do I/O should buffer internally.
type Sink interface {
	Write(Entry)
}

// Ring is the fixed-capacity audit buffer. Head advances via atomic
// fetch-add so concurrent writers never block each other; each writer
// owns the slot it claimed exclusively.
type Ring struct {
	buf   []Entry
	head  atomic.Uint64 // next sequence number to assign
	clock clock.Source
	sinks []Sink
}

// New constructs a Ring with DefaultCapacity slots.
func New(clk clock.Source, sinks ...Sink) *Ring {
	return &Ring{
		buf:   make([]Entry, DefaultCapacity),
		clock: clk,
		sinks: sinks,
	}
}

// truncateDescription clamps description to MaxDescriptionBytes, the
// data-model's fixed-size field for Entry.Description.
func truncateDescription(description string) string {
	if len(description) <= MaxDescriptionBytes {
		return description
	}
	return description[:MaxDescriptionBytes]
}

// Write appends an entry, overwriting the oldest one if the ring is full.
// Entries with severity >= 7 are also logged at warning level.
func (r *Ring) Write(pid, tid uint64, class Class, severity int, capID, objectID uint64, result int, description string) {
	seq := r.head.Add(1) - 1
	var ts uint64
	if r.clock != nil {
		ts = r.clock.NowMonotonic()
	}
	e := Entry{
		Seq:         seq,
		Timestamp:   ts,
		PID:         pid,
		TID:         tid,
		Class:       class,
		Severity:    severity,
		CapID:       capID,
		ObjectID:    objectID,
		Result:      result,
		Description: truncateDescription(description),
	}
	r.buf[seq%uint64(len(r.buf))] = e

	if severity >= 7 {
		log.L.WithFields(log.Fields{
			"pid":      pid,
			"class":    int(class),
			"severity": severity,
			"cap_id":   capID,
		}).Warn(description)
	}

	for _, s := range r.sinks {
		s.Write(e)
	}
}

// Snapshot returns the currently live entries in chronological order. It
// uses a read-head / read-records / compare-head retry loop so a
// concurrent writer wrapping the ring mid-read is detected and the read
// retried, rather than returning a torn view.
func (r *Ring) Snapshot(ctx context.Context) []Entry {
	for {
		head := r.head.Load()
		n := uint64(len(r.buf))
		count := head
		if count > n {
			count = n
		}

		out := make([]Entry, 0, count)
		start := head - count
		for i := start; i < head; i++ {
			out = append(out, r.buf[i%n])
		}

		if r.head.Load()-head < n {
			// No more than a full lap occurred while we read; the window
			// we copied is still valid (worst case we re-read some
			// entries the writer already advanced past, which is safe
			// since Entry is copied by value).
			return out
		}

		select {
		case <-ctx.Done():
			return out
		default:
		}
	}
}

// Len reports how many entries have ever been written (not bounded by
// capacity).
func (r *Ring) Len() uint64 { return r.head.Load() }
