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

package avalanche

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMix64Deterministic(t *testing.T) {
	require.Equal(t, Mix64(12345), Mix64(12345))
}

func TestMix64SingleBitFlipChangesManyBits(t *testing.T) {
	a := Mix64(0)
	b := Mix64(1)
	require.NotEqual(t, a, b)
	// Avalanche property: roughly half the 64 bits differ. Assert a loose
	// bound rather than pin an exact count.
	diff := bits.OnesCount64(a ^ b)
	require.Greater(t, diff, 10)
	require.Less(t, diff, 54)
}

func TestCombineOrderSensitive(t *testing.T) {
	a := Combine(1, 2, 3)
	b := Combine(3, 2, 1)
	require.NotEqual(t, a, b)
}

func TestCombineDeterministic(t *testing.T) {
	require.Equal(t, Combine(1, 2, 3), Combine(1, 2, 3))
}

func TestCombineEmpty(t *testing.T) {
	require.Equal(t, uint64(goldenRatio64), Combine())
}
