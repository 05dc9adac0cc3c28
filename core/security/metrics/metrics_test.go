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

package metrics

import (
	"context"
	"testing"
	"time"

	gometrics "github.com/docker/go-metrics"
	"github.com/stretchr/testify/require"
)

type fakePool struct{ occ, cap int }

func (f fakePool) Occupancy() int { return f.occ }
func (f fakePool) Capacity() int  { return f.cap }

type fakeAlert struct{ on bool }

func (f fakeAlert) AlertMode() bool { return f.on }

func TestCollectWithoutNamespaceIsNoop(t *testing.T) {
	c := NewCollector(nil, fakePool{occ: 3, cap: 10}, fakeAlert{on: true})
	require.NotPanics(t, func() { c.Collect() })
}

func TestCollectSamplesGauges(t *testing.T) {
	ns := gometrics.NewNamespace("orion", "test", nil)
	c := NewCollector(ns, fakePool{occ: 3, cap: 10}, fakeAlert{on: true})
	require.NotPanics(t, func() { c.Collect() })
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ns := gometrics.NewNamespace("orion", "test2", nil)
	c := NewCollector(ns, fakePool{occ: 1, cap: 1}, fakeAlert{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
