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

package audit

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/orion-os/kernel/pkg/clock"

	"github.com/stretchr/testify/require"
)

func TestWriteAndSnapshotOrder(t *testing.T) {
	r := New(&clock.Manual{})
	for i := 0; i < 10; i++ {
		r.Write(uint64(i), 0, CapCreate, 3, uint64(i), 0, 0, "entry")
	}

	snap := r.Snapshot(context.Background())
	require.Len(t, snap, 10)
	for i, e := range snap {
		require.Equal(t, uint64(i), e.PID)
	}
}

func TestRingOverwritesOldestWhenFull(t *testing.T) {
	r := New(&clock.Manual{})
	r.buf = make([]Entry, 4)

	for i := 0; i < 6; i++ {
		r.Write(uint64(i), 0, CapAccess, 1, 0, 0, 0, "e")
	}

	snap := r.Snapshot(context.Background())
	require.Len(t, snap, 4)
	require.Equal(t, uint64(2), snap[0].PID, "oldest two entries must have been overwritten")
	require.Equal(t, uint64(5), snap[3].PID)
}

func TestWriteTruncatesDescription(t *testing.T) {
	r := New(&clock.Manual{})
	long := strings.Repeat("x", MaxDescriptionBytes*2)
	r.Write(1, 0, CapViolation, 5, 0, 0, 0, long)

	snap := r.Snapshot(context.Background())
	require.Len(t, snap, 1)
	require.Len(t, snap[0].Description, MaxDescriptionBytes)
}

func TestConcurrentWritesProduceUniqueSequences(t *testing.T) {
	r := New(&clock.Manual{})
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Write(1, 0, CapAccess, 1, 0, 0, 0, "e")
		}()
	}
	wg.Wait()

	require.Equal(t, uint64(n), r.Len())
}
