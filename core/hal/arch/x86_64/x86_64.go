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

// Package x86_64 registers the x86-64 HAL backend.
package x86_64

import (
	"time"

	"github.com/orion-os/kernel/core/hal/arch"
	"github.com/orion-os/kernel/core/hal/arch/genericcpu"
	"github.com/orion-os/kernel/core/hal/backend"
)

const extCPUID uint32 = 1

// New constructs the x86-64 backend descriptor.
func New() *backend.Descriptor {
	eng := genericcpu.New(genericcpu.Config{
		Tag:        arch.X86_64,
		Name:       "x86_64-generic",
		Version:    "1.0.0",
		MaxIRQ:     256,
		MaxCounter: 8,
		Features:   genericcpu.FeatureSSE | genericcpu.FeatureAVX,
		HasHWBreak: true,
		HasPerfMon: true,
		TimerMinNS: 100 * time.Microsecond,
		TimerMaxNS: 10 * time.Second,
		ExtensionIDs: map[uint32]func([]byte) ([]byte, error){
			extCPUID: func(args []byte) ([]byte, error) { return args, nil },
		},
	})
	return &backend.Descriptor{
		Tag:     arch.X86_64,
		Name:    "x86_64-generic",
		Version: "1.0.0",
		Ops:     eng,
	}
}
