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

// orionctl is a diagnostic CLI for the Orion kernel core, in the style of
// cmd/ctr: it does not talk to a running kernel over any transport (there
// is none at this layer) but instead bootstraps the HAL and security
// cores in-process the same way the kernel's own boot path would, so a
// developer can inspect backend capabilities and the audit ring offline.
package main

import (
	"fmt"
	"os"

	"github.com/orion-os/kernel/cmd/orionctl/app"
)

func main() {
	if err := app.New().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "orionctl:", err)
		os.Exit(1)
	}
}
