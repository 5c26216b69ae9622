// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"runtime"
)

// Distribution marker files, probed in priority order. The first marker
// that exists decides the family, so a Debian-derived system that also
// ships /etc/arch-release (improbable but possible in containers) is
// still classified as Debian.
const (
	markerDebian = "/etc/debian_version"
	markerArch   = "/etc/arch-release"
	markerFedora = "/etc/fedora-release"
)

// Detect identifies the running operating system and, on Linux, the
// distribution family. It never fails: hosts without a recognized
// marker yield DistroUnknown and the pipeline degrades to advisory
// behavior. Only file existence is checked; no file contents are read.
func Detect() Profile {
	return detectWith(runtime.GOOS, markerExists)
}

// detectWith is the seam behind Detect: tests supply their own GOOS
// string and marker probe instead of touching the real filesystem.
func detectWith(goos string, exists func(string) bool) Profile {
	switch goos {
	case GOOSLinux:
		return Profile{OS: OSLinux, Distro: detectLinuxDistro(exists)}
	case GOOSWindows:
		return Profile{OS: OSWindows, Distro: DistroWindows}
	default:
		return Profile{OS: OSOther, Distro: DistroUnknown}
	}
}

// detectLinuxDistro probes the marker files in fixed priority order:
// Debian before Arch before Fedora.
func detectLinuxDistro(exists func(string) bool) Distro {
	switch {
	case exists(markerDebian):
		return DistroDebian
	case exists(markerArch):
		return DistroArch
	case exists(markerFedora):
		return DistroFedora
	default:
		return DistroUnknown
	}
}

// markerExists reports whether a marker path exists. Directories count:
// the probe mirrors a plain existence check, not a file-type check.
func markerExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
