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

package audit

import "github.com/orion-os/kernel/core/security/capability"

// CapabilityAuditor adapts a Ring to capability.Auditor, translating the
// capability package's local AuditClass mirror into the ring's full
// Class enumeration. It is the only file in this package allowed to
// import capability: capability never imports audit back, so this one
// direction does not create a cycle.
type CapabilityAuditor struct {
	Ring *Ring
}

var capClassToClass = [...]Class{
	capability.AuditCapCreate:    CapCreate,
	capability.AuditCapGrant:     CapGrant,
	capability.AuditCapRevoke:    CapRevoke,
	capability.AuditCapAccess:    CapAccess,
	capability.AuditCapViolation: CapViolation,
}

// Write implements capability.Auditor.
func (a CapabilityAuditor) Write(pid, tid uint64, class capability.AuditClass, severity int, capID, objectID uint64, result int, description string) {
	c := CapViolation
	if int(class) >= 0 && int(class) < len(capClassToClass) {
		c = capClassToClass[class]
	}
	a.Ring.Write(pid, tid, c, severity, capID, objectID, result, description)
}
