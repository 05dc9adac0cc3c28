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

// Package app builds the orionctl *cli.App, mirroring cmd/ctr/app's shape:
// global flags parsed once in Before, subcommands doing the real work.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v2"

	"github.com/orion-os/kernel/core/hal/arch"
	"github.com/orion-os/kernel/core/hal/integration"
	orionsecurity "github.com/orion-os/kernel/core/security"
)

// fileConfig is the on-disk shape orionctl reads with --config, the same
// subset of knobs plugins/security.Config exposes at boot.
type fileConfig struct {
	KASLRBase   uint64 `toml:"kaslr_base"`
	AuditDBPath string `toml:"audit_db_path"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// New returns the orionctl *cli.App.
func New() *cli.App {
	app := cli.NewApp()
	app.Name = "orionctl"
	app.Usage = "diagnostic CLI for the Orion kernel HAL and security core"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to a TOML config file (kaslr_base, audit_db_path)",
		},
	}
	app.Commands = []*cli.Command{
		reportCapabilitiesCommand,
		benchmarkCommand,
		auditDumpCommand,
		switchArchCommand,
	}
	return app
}

var reportCapabilitiesCommand = &cli.Command{
	Name:  "report-capabilities",
	Usage: "list the current architecture backend's operation slots and whether each is implemented",
	Action: func(cliContext *cli.Context) error {
		bs, err := integration.Run(cliContext.Context)
		if err != nil && bs == nil {
			return err
		}
		caps, err := bs.Manager.ReportCapabilities()
		if err != nil {
			return err
		}
		names := make([]string, 0, len(caps))
		for name := range caps {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%-20s %v\n", name, caps[name])
		}
		return nil
	},
}

var benchmarkCommand = &cli.Command{
	Name:  "benchmark",
	Usage: "call CPUInit, TimerInit, Sync and IPCSetup on the current backend once each",
	Action: func(cliContext *cli.Context) error {
		bs, err := integration.Run(cliContext.Context)
		if err != nil && bs == nil {
			return err
		}
		n, err := bs.Manager.Benchmark(cliContext.Context)
		if err != nil {
			return err
		}
		fmt.Printf("%d slots responded without error\n", n)
		return nil
	},
}

var switchArchCommand = &cli.Command{
	Name:      "switch-arch",
	Usage:     "select a different registered architecture backend (rejected once boot has completed)",
	ArgsUsage: "<arch-tag>",
	Description: "Demonstrates the manager's boot-complete latch: integration.Run both\n" +
		"registers the backends and runs Init, so by the time this command can\n" +
		"call Switch, bootComplete is already true and the call always returns\n" +
		"ErrInvalidState. That is the intended behavior, not a bug.",
	Action: func(cliContext *cli.Context) error {
		if cliContext.NArg() != 1 {
			return fmt.Errorf("expected exactly one architecture tag argument")
		}
		bs, err := integration.Run(cliContext.Context)
		if err != nil && bs == nil {
			return err
		}
		tag := arch.Tag(cliContext.Args().First())
		if err := bs.Manager.Switch(tag); err != nil {
			return err
		}
		fmt.Printf("switched to %s\n", tag)
		return nil
	},
}

var auditDumpCommand = &cli.Command{
	Name:  "audit-dump",
	Usage: "print this process's in-memory audit ring as JSON (a configured bolt sink is not read)",
	Action: func(cliContext *cli.Context) error {
		cfg, err := loadConfig(cliContext.String("config"))
		if err != nil {
			return err
		}
		core, err := orionsecurity.New(orionsecurity.Config{
			KASLRBase:   cfg.KASLRBase,
			AuditDBPath: cfg.AuditDBPath,
		}, nil, nil)
		if err != nil {
			return err
		}
		entries := core.Audit.Snapshot(cliContext.Context)
		return printJSON(entries)
	},
}
