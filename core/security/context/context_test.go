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

package context

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orion-os/kernel/core/security/seclevel"
	"github.com/orion-os/kernel/core/security/syscallclass"
	"github.com/orion-os/kernel/pkg/clock"
	"github.com/orion-os/kernel/pkg/kernelerrors"
)

func TestCreateAppliesDefaults(t *testing.T) {
	tbl := NewTable(clock.NewManual(100))

	c, err := tbl.Create(1, seclevel.Public)
	require.NoError(t, err)
	require.Equal(t, seclevel.Public, c.Level)
	require.False(t, c.Sandboxed())

	mem, files, sockets := c.Limits()
	require.EqualValues(t, 512*1024*1024, mem)
	require.EqualValues(t, 1024, files)
	require.EqualValues(t, 64, sockets)
}

func TestSandboxedIffLevelAtLeastRestricted(t *testing.T) {
	tbl := NewTable(clock.NewManual(0))

	pub, err := tbl.Create(1, seclevel.Public)
	require.NoError(t, err)
	require.False(t, pub.Sandboxed())

	restricted, err := tbl.Create(2, seclevel.Restricted)
	require.NoError(t, err)
	require.True(t, restricted.Sandboxed())

	secret, err := tbl.Create(3, seclevel.Secret)
	require.NoError(t, err)
	require.True(t, secret.Sandboxed())
}

func TestCreateIsIdempotentPerPID(t *testing.T) {
	tbl := NewTable(clock.NewManual(0))
	c1, err := tbl.Create(7, seclevel.Restricted)
	require.NoError(t, err)
	c2, err := tbl.Create(7, seclevel.TopSecret) // level ignored on re-create
	require.NoError(t, err)
	require.Same(t, c1, c2)
	require.Equal(t, seclevel.Restricted, c2.Level)
}

func TestEnsureContextCreatesAtRestricted(t *testing.T) {
	tbl := NewTable(clock.NewManual(0))
	c, err := tbl.EnsureContext(42)
	require.NoError(t, err)
	require.Equal(t, seclevel.Restricted, c.Level)

	again, err := tbl.EnsureContext(42)
	require.NoError(t, err)
	require.Same(t, c, again)
}

func TestTableFullRejectsCreate(t *testing.T) {
	tbl := &Table{byPID: make(map[uint64]*Context), capacity: 2}
	_, err := tbl.Create(1, seclevel.Public)
	require.NoError(t, err)
	_, err = tbl.Create(2, seclevel.Public)
	require.NoError(t, err)

	_, err = tbl.Create(3, seclevel.Public)
	require.Error(t, err)
	require.Equal(t, kernelerrors.OutOfMemory, kernelerrors.CodeOf(err))
}

func TestDenySyscallRoundTrip(t *testing.T) {
	tbl := NewTable(clock.NewManual(0))
	c, err := tbl.Create(1, seclevel.Public)
	require.NoError(t, err)

	require.False(t, c.IsDenied(57))
	c.DenySyscall(57)
	require.True(t, c.IsDenied(57))
	c.AllowSyscall(57)
	require.False(t, c.IsDenied(57))
}

func TestDenySyscallOutOfRangeIgnored(t *testing.T) {
	tbl := NewTable(clock.NewManual(0))
	c, _ := tbl.Create(1, seclevel.Public)
	c.DenySyscall(-1)
	c.DenySyscall(8 * 64)
	require.False(t, c.IsDenied(-1))
	require.False(t, c.IsDenied(8*64))
}

func TestSandboxedContextDeniesByDefault(t *testing.T) {
	tbl := NewTable(clock.NewManual(0))
	c, err := tbl.Create(9, seclevel.Restricted)
	require.NoError(t, err)
	// A freshly sandboxed context must start fully restricted: at least
	// one syscall class bit should already be set, not an all-zero
	// (nothing denied) bitmap.
	anyDenied := false
	for _, word := range c.denied {
		if word != 0 {
			anyDenied = true
			break
		}
	}
	// Platform-dependent: Linux seeds real classes, others none.
	require.Equal(t, len(syscallclass.DefaultDenied(nil)) > 0, anyDenied)
}

func TestSetJailRootValidatesComponents(t *testing.T) {
	tbl := NewTable(clock.NewManual(0))
	c, _ := tbl.Create(1, seclevel.Public)

	require.NoError(t, c.SetJailRoot("/var/jail/proc-1"))
	require.Equal(t, "/var/jail/proc-1", c.JailRoot())

	err := c.SetJailRoot("/var/../etc")
	require.Error(t, err)
	require.Equal(t, kernelerrors.InvalidArgument, kernelerrors.CodeOf(err))
}

func TestRecordViolationIncrements(t *testing.T) {
	tbl := NewTable(clock.NewManual(0))
	c, _ := tbl.Create(1, seclevel.Public)
	require.EqualValues(t, 0, c.Violations())
	require.EqualValues(t, 1, c.RecordViolation())
	require.EqualValues(t, 2, c.RecordViolation())
	require.EqualValues(t, 2, c.Violations())
}

func TestRemoveDeletesContext(t *testing.T) {
	tbl := NewTable(clock.NewManual(0))
	_, err := tbl.Create(1, seclevel.Public)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	tbl.Remove(1)
	require.Equal(t, 0, tbl.Len())
	_, ok := tbl.Lookup(1)
	require.False(t, ok)
}
