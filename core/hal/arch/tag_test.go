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

package arch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromGOARCHKnownArchitectures(t *testing.T) {
	cases := []struct {
		goarch string
		want   Tag
	}{
		{"amd64", X86_64},
		{"arm64", AArch64},
		{"riscv64", RISCV64},
		{"ppc64", PowerPC},
		{"ppc64le", PowerPC},
		{"loong64", LoongArch},
		{"mips", MIPS},
		{"mips64le", MIPS},
		{"arm", ARMv7L},
		{"s390x", S390X},
	}
	for _, c := range cases {
		got, ok := FromGOARCH(c.goarch)
		require.Truef(t, ok, "expected %q to resolve", c.goarch)
		require.Equal(t, c.want, got)
	}
}

func TestFromGOARCHUnknownIsFalse(t *testing.T) {
	_, ok := FromGOARCH("wasm")
	require.False(t, ok)
}

func TestAllListsEveryTagExactlyOnce(t *testing.T) {
	seen := make(map[Tag]bool, len(All))
	for _, tag := range All {
		require.Falsef(t, seen[tag], "tag %q listed more than once", tag)
		seen[tag] = true
	}
	require.Len(t, All, 8)
}
