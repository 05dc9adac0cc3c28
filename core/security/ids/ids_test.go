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

package ids

import (
	"context"
	"testing"

	"github.com/orion-os/kernel/pkg/clock"

	"github.com/stretchr/testify/require"
)

type fakeScheduler struct {
	terminated []uint64
}

func (f *fakeScheduler) RequestTerminate(pid uint64) error {
	f.terminated = append(f.terminated, pid)
	return nil
}

func TestReportIncrementsCounter(t *testing.T) {
	a := New(&clock.Manual{}, nil, nil)
	a.Report(CapabilityExhaustion, 7)
	a.Report(CapabilityExhaustion, 5)
	require.Equal(t, uint64(2), a.Count(CapabilityExhaustion))
	require.Zero(t, a.Count(WXViolation))
}

func TestAlertModeEngagesAtSeverityEight(t *testing.T) {
	a := New(&clock.Manual{}, nil, nil)
	require.False(t, a.AlertMode())
	a.Report(MemoryCorruption, 8)
	require.True(t, a.AlertMode())
}

func TestEscalationRequestsTerminationAfterThreshold(t *testing.T) {
	sched := &fakeScheduler{}
	a := New(&clock.Manual{}, sched, nil)

	for i := 0; i < alertEscalationCount; i++ {
		a.ReportForPID(CFIViolation, 9, 42)
	}
	require.Empty(t, sched.terminated, "must not escalate before exceeding the threshold")

	a.ReportForPID(CFIViolation, 9, 42)
	require.Contains(t, sched.terminated, uint64(42))
}

func TestClearRequiresCheckToPass(t *testing.T) {
	a := New(&clock.Manual{}, nil, nil)
	a.Report(AuthFailure, 3)

	ok := a.Clear(context.Background(), 1<<13, func(uint64) bool { return false })
	require.False(t, ok)
	require.Equal(t, uint64(1), a.Count(AuthFailure))

	ok = a.Clear(context.Background(), 1<<13, func(uint64) bool { return true })
	require.True(t, ok)
	require.Zero(t, a.Count(AuthFailure))
}
