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

package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigEmptyPathReturnsZeroValue(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Zero(t, cfg)
}

func TestLoadConfigParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`kaslr_base = 4096
audit_db_path = "/var/lib/orion/audit.db"
`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, uint64(4096), cfg.KASLRBase)
	require.Equal(t, "/var/lib/orion/audit.db", cfg.AuditDBPath)
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestLoadConfigMalformedTOMLErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))

	_, err := loadConfig(path)
	require.Error(t, err)
}

func TestNewRegistersEveryCommand(t *testing.T) {
	app := New()
	require.Equal(t, "orionctl", app.Name)

	names := make(map[string]bool, len(app.Commands))
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"report-capabilities", "benchmark", "audit-dump", "switch-arch"} {
		require.Truef(t, names[want], "expected command %q to be registered", want)
	}
}
