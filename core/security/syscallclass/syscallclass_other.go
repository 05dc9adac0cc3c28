//go:build !linux

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

// Package syscallclass has no syscall-number table outside Linux; the
// numeric syscall ABI this package classifies is Linux-specific.
package syscallclass

import "github.com/syndtr/gocapability/capability"

// Class is kept identical to the Linux build so callers compile
// unconditionally.
type Class struct {
	Name string
	Cap  capability.Cap
	Nums []int
}

// Classes is empty outside Linux.
var Classes []Class

// DefaultDenied always returns nil outside Linux.
func DefaultDenied(granted map[capability.Cap]bool) []int { return nil }
