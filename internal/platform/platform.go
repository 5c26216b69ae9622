// SPDX-License-Identifier: MPL-2.0

// Package platform identifies the host operating system and Linux
// distribution family. The resulting Profile drives dependency
// installation and asset selection for the whole pipeline.
package platform

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	GOOSWindows = "windows"
	GOOSDarwin  = "darwin"
	GOOSLinux   = "linux"
)

const (
	// OSOther indicates an operating system with no install support
	// (macOS, BSDs, anything that is not Linux or Windows).
	OSOther OS = 0

	// OSLinux indicates a Linux host. Only Linux hosts carry a
	// meaningful distro family.
	OSLinux OS = 1

	// OSWindows indicates a Windows host.
	OSWindows OS = 2
)

const (
	// DistroUnknown indicates no recognized distribution marker was found,
	// or the host is not Linux. Dependency installation degrades to an
	// advisory message for this value.
	DistroUnknown Distro = 0

	// DistroDebian covers Debian, Ubuntu, and derivatives (apt/dpkg).
	DistroDebian Distro = 1

	// DistroArch covers Arch Linux and derivatives (pacman).
	DistroArch Distro = 2

	// DistroFedora covers Fedora, RHEL, and derivatives (dnf/rpm).
	DistroFedora Distro = 3

	// DistroWindows is the pseudo-family for Windows hosts, which have
	// no sub-distribution concept.
	DistroWindows Distro = 4
)

type (
	// OS identifies the operating system class of the host.
	OS int

	// Distro identifies the Linux distribution family of the host.
	// Values outside Linux collapse to DistroWindows or DistroUnknown.
	Distro int

	// Profile describes the detected host. It is derived once per
	// operation, immutable afterwards, and never persisted.
	Profile struct {
		OS     OS
		Distro Distro
	}
)

// String returns the lowercase operating system name.
func (o OS) String() string {
	switch o {
	case OSLinux:
		return "linux"
	case OSWindows:
		return "windows"
	case OSOther:
		return "other"
	}
	return "other"
}

// String returns the lowercase distro family name as it appears in
// catalog documents and user-facing output.
func (d Distro) String() string {
	switch d {
	case DistroDebian:
		return "debian"
	case DistroArch:
		return "arch"
	case DistroFedora:
		return "fedora"
	case DistroWindows:
		return "windows"
	case DistroUnknown:
		return "unknown"
	}
	return "unknown"
}

// ParseDistro maps a catalog document key to a Distro. The boolean is
// false for keys that name no known family, letting callers drop them
// at the decode boundary instead of carrying free-form strings around.
func ParseDistro(s string) (Distro, bool) {
	switch s {
	case "debian":
		return DistroDebian, true
	case "arch":
		return DistroArch, true
	case "fedora":
		return DistroFedora, true
	case "windows":
		return DistroWindows, true
	case "unknown":
		return DistroUnknown, true
	}
	return DistroUnknown, false
}

// String renders the profile the way the CLI reports it.
func (p Profile) String() string {
	return p.OS.String() + " (" + p.Distro.String() + ")"
}
