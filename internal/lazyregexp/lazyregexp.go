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

// Package lazyregexp is a thin wrapper around regexp that defers
// compilation until the expression is first used. pkg/identifiers builds
// its validation pattern as a package-level var (core/hal/registry and
// core/security/context validate through it); lazy compilation keeps that
// package-init path cheap
// in binaries (diagnostic tools, tests) that end up never exercising
// identifier validation at all.
package lazyregexp

import (
	"regexp"
	"sync"
)

// Regexp lazily compiles its pattern on first use, then behaves like a
// *regexp.Regexp for the handful of methods callers in this module need.
type Regexp struct {
	str string

	once sync.Once
	re   *regexp.Regexp
}

// New returns a Regexp that will compile str the first time it is used.
// It does not validate str eagerly; a malformed pattern panics on first
// use, the same as a package-level regexp.MustCompile would at init time.
func New(str string) *Regexp {
	return &Regexp{str: str}
}

func (r *Regexp) compiled() *regexp.Regexp {
	r.once.Do(func() {
		r.re = regexp.MustCompile(r.str)
	})
	return r.re
}

// MatchString reports whether s contains any match of the pattern.
func (r *Regexp) MatchString(s string) bool {
	return r.compiled().MatchString(s)
}

// String returns the source text used to compile the pattern.
func (r *Regexp) String() string {
	return r.str
}
