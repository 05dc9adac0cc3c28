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

import "time"

// TOMLDuration round-trips a time.Duration through pelletier/go-toml/v2 as
// a "10s"-style string, via the encoding.Text(Un)Marshaler hooks go-toml/v2
// recognizes, instead of requiring operators to write raw nanosecond
// integers in config.toml.
type TOMLDuration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *TOMLDuration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
