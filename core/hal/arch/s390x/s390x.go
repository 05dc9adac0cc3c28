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

// Package s390x registers the IBM Z HAL backend.
package s390x

import (
	"time"

	"github.com/orion-os/kernel/core/hal/arch"
	"github.com/orion-os/kernel/core/hal/arch/genericcpu"
	"github.com/orion-os/kernel/core/hal/backend"
)

// New constructs the s390x backend descriptor.
func New() *backend.Descriptor {
	eng := genericcpu.New(genericcpu.Config{
		Tag:        arch.S390X,
		Name:       "s390x-generic",
		Version:    "1.0.0",
		MaxIRQ:     6, // external/IO/machine-check subclasses
		MaxCounter: 8,
		HasHWBreak: true,
		HasPerfMon: true,
		TimerMinNS: 1 * time.Microsecond,
		TimerMaxNS: 10 * time.Second,
	})
	return &backend.Descriptor{
		Tag:     arch.S390X,
		Name:    "s390x-generic",
		Version: "1.0.0",
		Ops:     eng,
	}
}
