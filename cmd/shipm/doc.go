// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for shipm.
//
// This package implements the Cobra command hierarchy for the shipm CLI:
// the root command, the install pipeline commands (install, deps), catalog
// commands (list, info, update), self-maintenance (upgrade, config), and
// shell completion.
package cmd
