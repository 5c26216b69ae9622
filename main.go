// SPDX-License-Identifier: MPL-2.0

// The shipm command is a cross-platform meta-installer for prebuilt
// binaries. See cmd/shipm for the command implementations.
package main

import cmd "github.com/shipm/shipm/cmd/shipm"

func main() {
	cmd.Execute()
}
