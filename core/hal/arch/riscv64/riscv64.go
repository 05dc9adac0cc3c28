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

// Package riscv64 registers the RISC-V 64-bit HAL backend.
package riscv64

import (
	"time"

	"github.com/orion-os/kernel/core/hal/arch"
	"github.com/orion-os/kernel/core/hal/arch/genericcpu"
	"github.com/orion-os/kernel/core/hal/backend"
)

const extRVVLength uint32 = 1

// New constructs the RISC-V 64-bit backend descriptor.
func New() *backend.Descriptor {
	eng := genericcpu.New(genericcpu.Config{
		Tag:        arch.RISCV64,
		Name:       "riscv64-generic",
		Version:    "1.0.0",
		MaxIRQ:     1024, // PLIC source count
		MaxCounter: 29,   // hpmcounter3..31
		Features:   genericcpu.FeatureRVV,
		HasHWBreak: false, // no standard hardware breakpoint unit modeled
		HasPerfMon: true,
		TimerMinNS: 10 * time.Microsecond,
		TimerMaxNS: 10 * time.Second,
		ExtensionIDs: map[uint32]func([]byte) ([]byte, error){
			extRVVLength: func(args []byte) ([]byte, error) { return args, nil },
		},
	})
	return &backend.Descriptor{
		Tag:     arch.RISCV64,
		Name:    "riscv64-generic",
		Version: "1.0.0",
		Ops:     eng,
	}
}
