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

// Package aarch64 registers the AArch64 HAL backend.
package aarch64

import (
	"time"

	"github.com/orion-os/kernel/core/hal/arch"
	"github.com/orion-os/kernel/core/hal/arch/genericcpu"
	"github.com/orion-os/kernel/core/hal/backend"
)

const extSVEVectorLength uint32 = 1

// New constructs the AArch64 backend descriptor.
func New() *backend.Descriptor {
	eng := genericcpu.New(genericcpu.Config{
		Tag:        arch.AArch64,
		Name:       "aarch64-generic",
		Version:    "1.0.0",
		MaxIRQ:     1020, // GICv3 SPI range
		MaxCounter: 6,
		Features:   genericcpu.FeatureNEON | genericcpu.FeatureSVE,
		HasHWBreak: true,
		HasPerfMon: true,
		TimerMinNS: 10 * time.Microsecond,
		TimerMaxNS: 10 * time.Second,
		ExtensionIDs: map[uint32]func([]byte) ([]byte, error){
			extSVEVectorLength: func(args []byte) ([]byte, error) { return args, nil },
		},
	})
	return &backend.Descriptor{
		Tag:     arch.AArch64,
		Name:    "aarch64-generic",
		Version: "1.0.0",
		Ops:     eng,
	}
}
