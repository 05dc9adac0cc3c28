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

// Package mips registers the MIPS HAL backend. MIPS has no architecture
// page-flag bits of its own beyond the generic set; this backend only
// ever sees flags already translated by core/hal/flags.
package mips

import (
	"time"

	"github.com/orion-os/kernel/core/hal/arch"
	"github.com/orion-os/kernel/core/hal/arch/genericcpu"
	"github.com/orion-os/kernel/core/hal/backend"
)

// New constructs the MIPS backend descriptor.
func New() *backend.Descriptor {
	eng := genericcpu.New(genericcpu.Config{
		Tag:        arch.MIPS,
		Name:       "mips-generic",
		Version:    "1.0.0",
		MaxIRQ:     64,
		MaxCounter: 4,
		HasHWBreak: false,
		HasPerfMon: false,
		TimerMinNS: 1 * time.Millisecond,
		TimerMaxNS: 10 * time.Second,
	})
	return &backend.Descriptor{
		Tag:     arch.MIPS,
		Name:    "mips-generic",
		Version: "1.0.0",
		Ops:     eng,
	}
}
