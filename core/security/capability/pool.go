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

package capability

import (
	"sync"
	"sync/atomic"

	"github.com/orion-os/kernel/internal/avalanche"
	"github.com/orion-os/kernel/pkg/kernelerrors"
)

// Record is one capability in the pool.
type Record struct {
	CapID           uint64
	RefCount        int32
	Type            Type
	ObjectID        uint64
	Rights          Rights
	OwnerPID        uint64
	CreatorPID      uint64
	CreationTime    uint64
	LastAccessTime  uint64
	AccessCount     uint64
	Level           Level
	ExpiryTime      uint64
	DelegationDepth uint8
	AuditMask       Rights
	State           State
	Checksum        uint64
}

// slot owns one Record behind its own lock. Cross-slot operations acquire
// locks only in ascending slot-index order.
type slot struct {
	mu     sync.Mutex
	rec    Record
	rights atomic.Uint64
	state  atomic.Int32
}

func (s *slot) snapshot() Record {
	r := s.rec
	r.Rights = Rights(s.rights.Load())
	r.State = State(s.state.Load())
	return r
}

// Pool is the fixed-capacity capability table (C6).
type Pool struct {
	slots []*slot
	mu    sync.Mutex // guards free-slot scan only; per-record mutation uses slot.mu

	counter atomic.Uint64

	contexts ContextEnsurer
	audit    Auditor
	ids      IDSReporter
	random   RandomSource
	clock    Clock
}

// New constructs a Pool of DefaultCapacity slots, all initially REVOKED
// (empty).
func New(contexts ContextEnsurer, audit Auditor, ids IDSReporter, random RandomSource, clk Clock) *Pool {
	p := &Pool{
		slots:    make([]*slot, DefaultCapacity),
		contexts: contexts,
		audit:    audit,
		ids:      ids,
		random:   random,
		clock:    clk,
	}
	for i := range p.slots {
		p.slots[i] = &slot{}
		p.slots[i].rec.State = StateRevoked
	}
	return p
}

func checksumOf(r *Record) uint64 {
	return avalanche.Combine(
		r.CapID,
		uint64(r.Type),
		r.ObjectID,
		uint64(r.Rights),
		r.OwnerPID,
		r.CreationTime,
	)
}

func (p *Pool) now() uint64 {
	if p.clock == nil {
		return 0
	}
	return p.clock.NowMonotonic()
}

func (p *Pool) auditf(pid, tid uint64, class AuditClass, severity int, capID, objectID uint64, result int, desc string) {
	if p.audit != nil {
		p.audit.Write(pid, tid, class, severity, capID, objectID, result, desc)
	}
}

func (p *Pool) report(class IDSClass, severity int) {
	if p.ids != nil {
		p.ids.Report(class, severity)
	}
}

// Create allocates a capability. Preconditions: owner has a security
// context (one is created at RESTRICTED if absent). Returns the nonzero
// cap_id, or 0 on pool exhaustion (which also raises an IDS
// capability_exhaustion event).
func (p *Pool) Create(typ Type, objectID uint64, rights Rights, ownerPID uint64) uint64 {
	if p.contexts != nil {
		if _, err := p.contexts.EnsureContext(ownerPID); err != nil {
			return 0
		}
	}

	idx, ok := p.findFreeSlot()
	if !ok {
		p.report(IDSCapabilityExhaustion, 7)
		return 0
	}

	s := p.slots[idx]
	s.mu.Lock()

	// Double-check under lock: another goroutine may have raced us into
	// this slot between the scan and the lock acquisition. Unlock before
	// retrying: findFreeSlot's scan revisits this same index, and s.mu is
	// not reentrant.
	if s.rec.State != StateRevoked {
		s.mu.Unlock()
		return p.Create(typ, objectID, rights, ownerPID)
	}

	capID := p.counter.Add(1) ^ p.secureRandom()
	now := p.now()

	s.rec = Record{
		CapID:        capID,
		RefCount:     1,
		Type:         typ,
		ObjectID:     objectID,
		Rights:       rights,
		OwnerPID:     ownerPID,
		CreatorPID:   ownerPID,
		CreationTime: now,
		Level:        LevelRestricted,
		State:        StateActive,
	}
	s.rec.Checksum = checksumOf(&s.rec)
	s.rights.Store(uint64(rights))
	s.state.Store(int32(StateActive))
	s.mu.Unlock()

	p.auditf(ownerPID, 0, AuditCapCreate, 3, capID, objectID, 0, "capability created")
	return capID
}

func (p *Pool) secureRandom() uint64 {
	if p.random == nil {
		return 0
	}
	return p.random.GetU64()
}

func (p *Pool) findFreeSlot() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.slots {
		s.mu.Lock()
		free := s.rec.State == StateRevoked
		s.mu.Unlock()
		if free {
			return i, true
		}
	}
	return 0, false
}

func (p *Pool) findByCapID(capID uint64) (int, bool) {
	if capID == 0 {
		return 0, false
	}
	for i, s := range p.slots {
		s.mu.Lock()
		match := s.rec.State != StateRevoked && s.rec.CapID == capID
		s.mu.Unlock()
		if match {
			return i, true
		}
	}
	return 0, false
}

// CheckRights verifies that caller_pid holds all of required over cap_id,
// per the six-step procedure below (state, expiry, checksum, owner,
// rights, audit).
func (p *Pool) CheckRights(capID uint64, required Rights, callerPID uint64) bool {
	idx, ok := p.findByCapID(capID)
	if !ok {
		p.auditf(callerPID, 0, AuditCapViolation, 4, capID, 0, 0, "capability not found")
		return false
	}

	s := p.slots[idx]
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec.State != StateActive {
		p.auditf(callerPID, 0, AuditCapViolation, 4, capID, s.rec.ObjectID, 0, "capability not active")
		return false
	}

	now := p.now()
	if s.rec.ExpiryTime != 0 && now > s.rec.ExpiryTime {
		s.rec.State = StateExpired
		s.state.Store(int32(StateExpired))
		p.auditf(callerPID, 0, AuditCapViolation, 4, capID, s.rec.ObjectID, 0, "capability expired")
		return false
	}

	if checksumOf(&s.rec) != s.rec.Checksum {
		s.rec.State = StateRevoked
		s.rec.CapID = 0
		s.rec.Rights = 0
		s.state.Store(int32(StateRevoked))
		s.rights.Store(0)
		p.report(IDSCapabilityCorruption, 9)
		p.auditf(callerPID, 0, AuditCapViolation, 9, capID, s.rec.ObjectID, 0, "integrity checksum mismatch")
		return false
	}

	if s.rec.OwnerPID != callerPID {
		p.auditf(callerPID, 0, AuditCapViolation, 6, capID, s.rec.ObjectID, 0, "caller is not the owner")
		return false
	}

	if s.rec.Rights&required != required {
		p.auditf(callerPID, 0, AuditCapViolation, 5, capID, s.rec.ObjectID, 0, "insufficient rights")
		return false
	}

	s.rec.LastAccessTime = now
	s.rec.AccessCount++
	if s.rec.AuditMask&required != 0 {
		p.auditf(callerPID, 0, AuditCapAccess, 2, capID, s.rec.ObjectID, 0, "audited right exercised")
	}
	return true
}

// Grant delegates a masked subset of cap_id's rights to target_pid. The
// caller must hold GRANT on cap_id: callerPID must be cap_id's owner and
// cap_id's rights must include Grant, checked under src.mu before any
// delegation is minted. IMMORTAL is never transferable.
func (p *Pool) Grant(capID uint64, targetPID uint64, rightsMask Rights, callerPID uint64) (uint64, error) {
	idx, ok := p.findByCapID(capID)
	if !ok {
		return 0, kernelerrors.New(kernelerrors.NotFound, "capability not found")
	}
	src := p.slots[idx]
	src.mu.Lock()
	if src.rec.State != StateActive {
		src.mu.Unlock()
		return 0, kernelerrors.New(kernelerrors.InvalidState, "source capability not active")
	}
	if src.rec.OwnerPID != callerPID || src.rec.Rights&Grant == 0 {
		src.mu.Unlock()
		p.auditf(callerPID, 0, AuditCapViolation, 6, capID, 0, 0, "caller lacks grant right")
		return 0, kernelerrors.New(kernelerrors.PermissionDenied, "caller does not hold grant right")
	}
	if src.rec.DelegationDepth >= MaxDelegationDepth {
		src.mu.Unlock()
		p.auditf(callerPID, 0, AuditCapViolation, 5, capID, 0, 0, "delegation depth exceeded")
		return 0, kernelerrors.New(kernelerrors.PermissionDenied, "delegation depth exceeded")
	}
	delegated := src.rec.Rights & rightsMask &^ Immortal
	typ := src.rec.Type
	objectID := src.rec.ObjectID
	depth := src.rec.DelegationDepth + 1
	src.mu.Unlock()

	if p.contexts != nil {
		if _, err := p.contexts.EnsureContext(targetPID); err != nil {
			return 0, err
		}
	}

	dstIdx, ok := p.findFreeSlot()
	if !ok {
		p.report(IDSCapabilityExhaustion, 7)
		return 0, kernelerrors.New(kernelerrors.OutOfMemory, "capability pool exhausted")
	}
	dst := p.slots[dstIdx]
	dst.mu.Lock()
	// Unlock before retrying: findFreeSlot's scan revisits this same
	// index, and dst.mu is not reentrant.
	if dst.rec.State != StateRevoked {
		dst.mu.Unlock()
		return p.Grant(capID, targetPID, rightsMask, callerPID)
	}

	newID := p.counter.Add(1) ^ p.secureRandom()
	now := p.now()
	dst.rec = Record{
		CapID:           newID,
		RefCount:        1,
		Type:            typ,
		ObjectID:        objectID,
		Rights:          delegated,
		OwnerPID:        targetPID,
		CreatorPID:      callerPID,
		CreationTime:    now,
		Level:           LevelRestricted,
		DelegationDepth: depth,
		State:           StateActive,
	}
	dst.rec.Checksum = checksumOf(&dst.rec)
	dst.rights.Store(uint64(delegated))
	dst.state.Store(int32(StateActive))
	dst.mu.Unlock()

	p.auditf(callerPID, 0, AuditCapGrant, 3, newID, objectID, 0, "capability granted")
	return newID, nil
}

// Revoke sweeps the pool for ACTIVE capabilities owned by target_pid whose
// derivation chain includes caller_pid (object_id == 0 OR creator_pid ==
// caller_pid, kept as a coarse predicate rather than a narrower redesign),
// masking off rights_mask from each. The caller must hold REVOKE on capID,
// checked the same way Grant checks GRANT, before the sweep proceeds. It
// returns the number of slots whose rights changed.
func (p *Pool) Revoke(capID uint64, targetPID uint64, rightsMask Rights, callerPID uint64) (int, error) {
	idx, ok := p.findByCapID(capID)
	if !ok {
		return 0, kernelerrors.New(kernelerrors.NotFound, "authorizing capability not found")
	}
	authorizing := p.slots[idx]
	authorizing.mu.Lock()
	if authorizing.rec.State != StateActive {
		authorizing.mu.Unlock()
		return 0, kernelerrors.New(kernelerrors.InvalidState, "authorizing capability not active")
	}
	if authorizing.rec.OwnerPID != callerPID || authorizing.rec.Rights&Revoke == 0 {
		authorizing.mu.Unlock()
		p.auditf(callerPID, 0, AuditCapViolation, 6, capID, 0, 0, "caller lacks revoke right")
		return 0, kernelerrors.New(kernelerrors.PermissionDenied, "caller does not hold revoke right")
	}
	authorizing.mu.Unlock()

	affected := 0
	for _, s := range p.slots {
		s.mu.Lock()
		// Slots whose rights the mask leaves unchanged are neither counted
		// nor audited.
		if s.rec.State == StateActive && s.rec.OwnerPID == targetPID &&
			(s.rec.ObjectID == 0 || s.rec.CreatorPID == callerPID) &&
			s.rec.Rights&(rightsMask&^Immortal) != 0 {

			mask := rightsMask &^ Immortal
			newRights := s.rec.Rights &^ mask
			s.rec.Rights = newRights
			s.rights.Store(uint64(newRights))
			if newRights == 0 {
				s.rec.State = StateRevoked
				s.rec.CapID = 0
				s.state.Store(int32(StateRevoked))
			} else {
				s.rec.Checksum = checksumOf(&s.rec)
			}
			capID := s.rec.CapID
			objID := s.rec.ObjectID
			s.mu.Unlock()

			p.auditf(callerPID, 0, AuditCapRevoke, 3, capID, objID, 0, "capability revoked")
			affected++
			continue
		}
		s.mu.Unlock()
	}
	return affected, nil
}

// Destroy revokes a single capability by id. IMMORTAL capabilities cannot
// be destroyed; the call fails closed and is audited.
func (p *Pool) Destroy(capID uint64) error {
	idx, ok := p.findByCapID(capID)
	if !ok {
		return kernelerrors.New(kernelerrors.NotFound, "capability not found")
	}
	s := p.slots[idx]
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec.Rights&Immortal != 0 {
		owner := s.rec.OwnerPID
		p.auditf(owner, 0, AuditCapViolation, 6, capID, s.rec.ObjectID, 0, "attempted destroy of immortal capability")
		return kernelerrors.New(kernelerrors.PermissionDenied, "capability is immortal")
	}

	s.rec.State = StateRevoked
	s.rec.CapID = 0
	s.rec.Rights = 0
	s.rec.OwnerPID = 0
	s.rec.ObjectID = 0
	s.state.Store(int32(StateRevoked))
	s.rights.Store(0)
	return nil
}

// Occupancy returns the number of slots currently not REVOKED, for the
// pool-occupancy gauge core/security/metrics exposes.
func (p *Pool) Occupancy() int {
	n := 0
	for _, s := range p.slots {
		s.mu.Lock()
		if s.rec.State != StateRevoked {
			n++
		}
		s.mu.Unlock()
	}
	return n
}

// Capacity returns the pool's fixed slot count.
func (p *Pool) Capacity() int { return len(p.slots) }

// Snapshot returns a copy of the record for capID, for diagnostics and
// tests. The second return value is false if the capability does not
// exist (including when it has been destroyed).
func (p *Pool) Snapshot(capID uint64) (Record, bool) {
	idx, ok := p.findByCapID(capID)
	if !ok {
		return Record{}, false
	}
	s := p.slots[idx]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), true
}

// CorruptForTest flips bits in a capability's rights without recomputing
// its checksum, modeling an external memory corruption for the integrity
// quarantine test scenario. It must never be called outside tests.
func (p *Pool) CorruptForTest(capID uint64, flip Rights) bool {
	idx, ok := p.findByCapID(capID)
	if !ok {
		return false
	}
	s := p.slots[idx]
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Rights ^= flip
	s.rights.Store(uint64(s.rec.Rights))
	return true
}
