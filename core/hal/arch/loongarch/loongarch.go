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

// Package loongarch registers the LoongArch HAL backend.
package loongarch

import (
	"time"

	"github.com/orion-os/kernel/core/hal/arch"
	"github.com/orion-os/kernel/core/hal/arch/genericcpu"
	"github.com/orion-os/kernel/core/hal/backend"
)

// New constructs the LoongArch backend descriptor.
func New() *backend.Descriptor {
	eng := genericcpu.New(genericcpu.Config{
		Tag:        arch.LoongArch,
		Name:       "loongarch-generic",
		Version:    "1.0.0",
		MaxIRQ:     256,
		MaxCounter: 4,
		HasHWBreak: false,
		HasPerfMon: true,
		TimerMinNS: 100 * time.Microsecond,
		TimerMaxNS: 10 * time.Second,
	})
	return &backend.Descriptor{
		Tag:     arch.LoongArch,
		Name:    "loongarch-generic",
		Version: "1.0.0",
		Ops:     eng,
	}
}
