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

package syscallclass

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/gocapability/capability"
)

// TestDefaultDeniedWithNoGrantsDeniesEveryClass holds on every platform:
// on Linux, Classes is the real CAP_SYS_* table; outside Linux it is
// empty, so the "every class" claim is vacuously true either way.
func TestDefaultDeniedWithNoGrantsDeniesEveryClass(t *testing.T) {
	denied := DefaultDenied(nil)
	var want int
	for _, c := range Classes {
		want += len(c.Nums)
	}
	require.Len(t, denied, want)
}

func TestDefaultDeniedSkipsGrantedClasses(t *testing.T) {
	if len(Classes) == 0 {
		t.Skip("no syscall classes on this platform")
	}
	granted := map[capability.Cap]bool{Classes[0].Cap: true}
	denied := DefaultDenied(granted)
	for _, n := range Classes[0].Nums {
		require.NotContains(t, denied, n)
	}
}
