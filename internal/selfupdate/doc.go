// SPDX-License-Identifier: MPL-2.0

// Package selfupdate replaces the running shipm binary with the latest
// released build. It compares the build version against the newest release
// tag, refuses when the binary is managed by a package manager or go
// install, and otherwise downloads the platform asset and atomically swaps
// it into place.
//
// The package is organized into two concerns:
//   - detect.go: install method detection (SystemPackage, Homebrew, GoInstall, Unknown)
//   - selfupdate.go: Updater composing detection, release resolution, and binary replacement
package selfupdate
