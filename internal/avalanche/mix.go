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

// Package avalanche implements the cheap golden-ratio mixing function shared
// by the capability pool's integrity checksum and the CFI jump-table hash.
// Neither use case is cryptographic; both need a fast function where a
// single bit flip in the input visibly changes most output bits.
package avalanche

const goldenRatio64 = 0x9e3779b97f4a7c15

// Mix64 folds seed into a single 64-bit value with avalanche behavior,
// splitmix64-style.
func Mix64(seed uint64) uint64 {
	z := seed + goldenRatio64
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Combine mixes an arbitrary number of 64-bit words into one digest by
// folding each word through Mix64 and XORing into a running accumulator.
func Combine(words ...uint64) uint64 {
	var acc uint64 = goldenRatio64
	for _, w := range words {
		acc ^= Mix64(w ^ acc)
	}
	return acc
}
