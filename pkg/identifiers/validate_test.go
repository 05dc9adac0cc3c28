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

package identifiers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateAccepts(t *testing.T) {
	for _, s := range []string{"x86_64", "aarch64-generic", "proc.1", "a", "A1-b2.c3"} {
		require.NoErrorf(t, Validate(s), "expected %q to be valid", s)
	}
}

func TestValidateRejectsEmpty(t *testing.T) {
	require.Error(t, Validate(""))
}

func TestValidateRejectsTooLong(t *testing.T) {
	require.Error(t, Validate(strings.Repeat("a", maxLength+1)))
}

func TestValidateRejectsBadCharacters(t *testing.T) {
	for _, s := range []string{"..", "/etc", "has space", "semi;colon", "-leading"} {
		require.Errorf(t, Validate(s), "expected %q to be rejected", s)
	}
}
