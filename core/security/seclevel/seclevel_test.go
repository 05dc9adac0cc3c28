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

package seclevel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelOrdering(t *testing.T) {
	require.True(t, Public < Restricted)
	require.True(t, Restricted < Confidential)
	require.True(t, Confidential < Secret)
	require.True(t, Secret < TopSecret)
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "PUBLIC", Public.String())
	require.Equal(t, "RESTRICTED", Restricted.String())
	require.Equal(t, "CONFIDENTIAL", Confidential.String())
	require.Equal(t, "SECRET", Secret.String())
	require.Equal(t, "TOP_SECRET", TopSecret.String())
	require.Equal(t, "UNKNOWN", Level(99).String())
}
