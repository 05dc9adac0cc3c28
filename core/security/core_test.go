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

package security

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orion-os/kernel/core/security/capability"
	"github.com/orion-os/kernel/core/security/ids"
)

// TestCoreEndToEnd constructs a single Core (core.New registers its
// docker/go-metrics namespace process-wide, so the package only ever
// constructs one per test run) and exercises every cross-wiring concern
// against it: singleton presence, a create/check/destroy sequence through
// the fully wired pool, the contextEnsurer adapter's on-demand context
// creation, and the idsReporter adapter's class translation.
func TestCoreEndToEnd(t *testing.T) {
	core, err := New(Config{}, nil, nil)
	require.NoError(t, err)

	t.Run("every singleton wired", func(t *testing.T) {
		require.NotNil(t, core.Clock)
		require.NotNil(t, core.Entropy)
		require.NotNil(t, core.Contexts)
		require.NotNil(t, core.Audit)
		require.NotNil(t, core.IDS)
		require.NotNil(t, core.Pool)
		require.NotNil(t, core.HWSec)
		require.NotNil(t, core.Enforcer)
		require.NotNil(t, core.Metrics)
	})

	t.Run("create check destroy", func(t *testing.T) {
		id := core.Pool.Create(capability.TypeMemory, 0xABCD, capability.Read|capability.Write, 42)
		require.NotZero(t, id)

		require.True(t, core.Pool.CheckRights(id, capability.Read, 42))
		require.False(t, core.Pool.CheckRights(id, capability.Exec, 42))
		require.False(t, core.Pool.CheckRights(id, capability.Read, 43))

		require.NoError(t, core.Pool.Destroy(id))
		require.False(t, core.Pool.CheckRights(id, capability.Read, 42))
	})

	t.Run("contextEnsurer adapter creates on demand", func(t *testing.T) {
		_, ok := core.Contexts.Lookup(777)
		require.False(t, ok)

		id := core.Pool.Create(capability.TypeMemory, 1, capability.Read, 777)
		require.NotZero(t, id)

		_, ok = core.Contexts.Lookup(777)
		require.True(t, ok)
	})

	t.Run("idsReporter adapter translates exhaustion class", func(t *testing.T) {
		before := core.IDS.Count(ids.CapabilityExhaustion)
		idsReporter{core.IDS}.Report(capability.IDSCapabilityExhaustion, 7)
		after := core.IDS.Count(ids.CapabilityExhaustion)
		require.Equal(t, before+1, after)
	})
}
