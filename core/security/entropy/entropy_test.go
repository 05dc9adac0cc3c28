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

package entropy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orion-os/kernel/pkg/clock"
)

func TestNotReadyBeforeInit(t *testing.T) {
	p := New(clock.NewManual(0), nil)
	require.False(t, p.Ready())
}

func TestReadyAfterInit(t *testing.T) {
	p := New(clock.NewManual(0), nil)
	p.Init()
	require.True(t, p.Ready())
}

func TestInitIsIdempotent(t *testing.T) {
	p := New(clock.NewManual(0), nil)
	p.Init()
	first := p.buf[0]
	p.Init() // must not reseed again
	require.Equal(t, first, p.buf[0])
}

func TestAddEventXORsRatherThanOverwrites(t *testing.T) {
	p := New(clock.NewManual(0), nil)
	before := append([]byte(nil), p.buf...)
	p.AddEvent(0x1122334455667788)
	after := p.buf
	// At least one byte in the touched window must have changed, and the
	// pool must not simply have been replaced wholesale (len unchanged).
	require.Equal(t, len(before), len(after))
	changed := false
	for i := range before {
		if before[i] != after[i] {
			changed = true
			break
		}
	}
	require.True(t, changed)
}

func TestGetU64BeforeInitUsesFallback(t *testing.T) {
	p := New(clock.NewManual(0), nil)
	a := p.GetU64()
	b := p.GetU64()
	// The fallback mixes the wall clock, so consecutive calls are not
	// guaranteed distinct at nanosecond resolution, but both must be
	// nonzero with overwhelming probability.
	require.NotZero(t, a)
	require.NotZero(t, b)
}

func TestGetU64AfterInitConsumesPoolSequentially(t *testing.T) {
	clk := clock.NewManual(1000)
	p := New(clk, nil)
	p.Init()

	a := p.GetU64()
	clk.Advance(1)
	b := p.GetU64()
	// Each call advances the read cursor and mixes a fresh timestamp back
	// in, so consecutive reads should not collide in this deterministic
	// setup.
	require.NotEqual(t, a, b)
}

func TestAddEventAdvancesWriteCursorModSize(t *testing.T) {
	p := New(clock.NewManual(0), nil)
	for i := 0; i < DefaultSize/8+1; i++ {
		p.AddEvent(uint64(i))
	}
	require.True(t, p.wrapped)
}

type fakeHW struct{ v uint64 }

func (f fakeHW) HWEntropy() (uint64, bool) { return f.v, true }

func TestReseedMixesHardwareEntropyWhenDue(t *testing.T) {
	p := New(clock.NewManual(0), fakeHW{v: 0xdeadbeef})
	p.Init()
	p.lastReseed = p.lastReseed.Add(-2 * DefaultReseedInterval)
	before := append([]byte(nil), p.buf...)
	p.GetU64()
	require.NotEqual(t, before, p.buf)
}
