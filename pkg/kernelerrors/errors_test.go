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

package kernelerrors

import (
	"errors"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/require"
)

func TestCodeOfRoundTrips(t *testing.T) {
	err := New(NotFound, "capability not found")
	require.Equal(t, NotFound, CodeOf(err))
}

func TestCodeOfNilIsSuccess(t *testing.T) {
	require.Equal(t, Success, CodeOf(nil))
}

func TestCodeOfForeignErrorIsInvalidState(t *testing.T) {
	require.Equal(t, InvalidState, CodeOf(errors.New("not ours")))
}

func TestNewMatchesErrdefsSentinel(t *testing.T) {
	err := New(NotFound, "missing")
	require.True(t, errors.Is(err, errdefs.ErrNotFound))
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestNewfFormats(t *testing.T) {
	err := Newf(InvalidArgument, "bad value %d", 7)
	require.EqualError(t, err, "INVALID_ARGUMENT: bad value 7")
}

func TestCodeStrings(t *testing.T) {
	cases := map[Code]string{
		Success:          "SUCCESS",
		InvalidArgument:  "INVALID_ARGUMENT",
		OutOfMemory:      "OUT_OF_MEMORY",
		Unsupported:      "UNSUPPORTED",
		UnsupportedArch:  "UNSUPPORTED_ARCH",
		NoArch:           "NO_ARCH",
		Security:         "SECURITY",
		PermissionDenied: "PERMISSION_DENIED",
	}
	for code, want := range cases {
		require.Equal(t, want, code.String())
	}
	require.Equal(t, "UNKNOWN", Code(999).String())
}
