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

// Package armv7l registers the 32-bit ARMv7-L HAL backend. Like mips, it
// has no extra architecture-specific page-flag bits: the generic flag set
// in core/hal/flags is authoritative, and armv7l only loses NoCache on
// the round trip (see core/hal/flags.tables).
package armv7l

import (
	"time"

	"github.com/orion-os/kernel/core/hal/arch"
	"github.com/orion-os/kernel/core/hal/arch/genericcpu"
	"github.com/orion-os/kernel/core/hal/backend"
)

// New constructs the ARMv7-L backend descriptor.
func New() *backend.Descriptor {
	eng := genericcpu.New(genericcpu.Config{
		Tag:        arch.ARMv7L,
		Name:       "armv7l-generic",
		Version:    "1.0.0",
		MaxIRQ:     224, // GICv2 SPI range
		MaxCounter: 4,
		Features:   genericcpu.FeatureNEON,
		HasHWBreak: true,
		HasPerfMon: true,
		TimerMinNS: 100 * time.Microsecond,
		TimerMaxNS: 5 * time.Second,
	})
	return &backend.Descriptor{
		Tag:     arch.ARMv7L,
		Name:    "armv7l-generic",
		Version: "1.0.0",
		Ops:     eng,
	}
}
