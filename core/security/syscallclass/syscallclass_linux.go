//go:build linux

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

// Package syscallclass groups host syscall numbers into the capability
// classes a seccomp default profile names (CAP_SYS_ADMIN, CAP_SYS_PTRACE,
// ...), but inverted: where a seccomp profile allows a syscall once a
// capability is granted, core/security/context uses these same classes to
// seed a new security context's denied-syscall bitmap (C7) with every
// class the context's capability set does not cover. A RESTRICTED context
// with no grants denies all of them.
package syscallclass

import (
	"github.com/syndtr/gocapability/capability"
	"golang.org/x/sys/unix"
)

// Class is one capability-gated group of syscalls.
type Class struct {
	Name string
	Cap  capability.Cap
	Nums []int
}

// Classes mirrors the CAP_SYS_* groupings from a default seccomp profile,
// trimmed to the syscalls this kernel's policy layer cares about
// classifying as privileged.
var Classes = []Class{
	{Name: "ptrace", Cap: capability.CAP_SYS_PTRACE, Nums: []int{unix.SYS_PTRACE}},
	{Name: "module", Cap: capability.CAP_SYS_MODULE, Nums: []int{unix.SYS_INIT_MODULE, unix.SYS_DELETE_MODULE}},
	{Name: "admin", Cap: capability.CAP_SYS_ADMIN, Nums: []int{unix.SYS_MOUNT, unix.SYS_UMOUNT2, unix.SYS_SETNS, unix.SYS_UNSHARE}},
	{Name: "boot", Cap: capability.CAP_SYS_BOOT, Nums: []int{unix.SYS_REBOOT}},
	{Name: "chroot", Cap: capability.CAP_SYS_CHROOT, Nums: []int{unix.SYS_CHROOT}},
	{Name: "pacct", Cap: capability.CAP_SYS_PACCT, Nums: []int{unix.SYS_ACCT}},
}

// DefaultDenied returns the syscall numbers a security context should
// deny by default: every class whose capability is absent from granted.
// A nil granted set (the common case for a freshly created RESTRICTED
// context) denies every class.
func DefaultDenied(granted map[capability.Cap]bool) []int {
	var out []int
	for _, c := range Classes {
		if granted != nil && granted[c.Cap] {
			continue
		}
		out = append(out, c.Nums...)
	}
	return out
}
