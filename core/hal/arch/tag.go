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

// Package arch defines the closed set of CPU family tags the HAL dispatch
// core knows about. It is deliberately a leaf package (no dependencies on
// flags/backend/registry) so it can be imported from any layer without
// creating cycles.
package arch

// Tag identifies one of the CPU families the HAL can register a backend
// for.
type Tag string

const (
	X86_64    Tag = "x86_64"
	AArch64   Tag = "aarch64"
	RISCV64   Tag = "riscv64"
	PowerPC   Tag = "powerpc"
	LoongArch Tag = "loongarch"
	MIPS      Tag = "mips"
	ARMv7L    Tag = "armv7l"
	S390X     Tag = "s390x"
)

// All lists every architecture tag this build knows a stub backend for, in
// a stable order used by tests and by report_capabilities output.
var All = []Tag{X86_64, AArch64, RISCV64, PowerPC, LoongArch, MIPS, ARMv7L, S390X}

// FromGOARCH maps a Go runtime.GOARCH string to the Orion architecture tag
// it corresponds to. It returns ("", false) for architectures this build
// has no backend for, which the registry surfaces as NO_ARCH.
func FromGOARCH(goarch string) (Tag, bool) {
	switch goarch {
	case "amd64":
		return X86_64, true
	case "arm64":
		return AArch64, true
	case "riscv64":
		return RISCV64, true
	case "ppc64", "ppc64le":
		return PowerPC, true
	case "loong64":
		return LoongArch, true
	case "mips", "mipsle", "mips64", "mips64le":
		return MIPS, true
	case "arm":
		return ARMv7L, true
	case "s390x":
		return S390X, true
	default:
		return "", false
	}
}
