// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	// homebrewMacARM is the Homebrew prefix on macOS ARM (Apple Silicon).
	homebrewMacARM = "/opt/homebrew/"

	// homebrewMacIntel is the Homebrew Cellar path on macOS Intel.
	homebrewMacIntel = "/usr/local/Cellar/"

	// homebrewLinux is the Linuxbrew prefix.
	homebrewLinux = "/home/linuxbrew/.linuxbrew/"

	// modulePath is the expected Go module path used to confirm go-install origin.
	modulePath = "github.com/shipm/shipm"

	// InstallMethodUnknown indicates the install method could not be determined,
	// typically a manual download or the install script. Unknown installs are
	// the only ones the updater replaces in place.
	InstallMethodUnknown InstallMethod = 0

	// InstallMethodSystemPackage indicates the binary lives in a directory
	// owned by the distribution's package manager (dpkg, pacman, rpm).
	// Upgrades should go through that package manager.
	InstallMethodSystemPackage InstallMethod = 1

	// InstallMethodHomebrew indicates installation via Homebrew (brew install).
	// Upgrades should be handled by `brew upgrade shipm`.
	InstallMethodHomebrew InstallMethod = 2

	// InstallMethodGoInstall indicates installation via `go install`.
	// Upgrades should be handled by re-running `go install` with the desired version.
	InstallMethodGoInstall InstallMethod = 3
)

// systemPackageDirs are directories populated by distribution package
// managers. /usr/local is deliberately absent: it is conventional manual
// territory.
//
//nolint:gochecknoglobals // Shared lookup table, never mutated.
var systemPackageDirs = []string{"/usr/bin/", "/usr/sbin/", "/bin/", "/sbin/"}

var (
	// installMethodHint is set via -ldflags at build time to override detection.
	// When non-empty, it takes priority over all path heuristics.
	//
	//nolint:gochecknoglobals // Build-time ldflags injection requires a package-level variable.
	installMethodHint string

	// readBuildInfo is a test seam for debug.ReadBuildInfo. Production code uses the
	// real implementation; tests replace it to simulate different build info scenarios.
	//
	//nolint:gochecknoglobals // Test seam requires a package-level variable.
	readBuildInfo = debug.ReadBuildInfo
)

// InstallMethod identifies how shipm was installed on the current system.
// The detection result routes upgrade behavior: unknown (manual) installs
// can be self-updated, while system packages, Homebrew, and go-install
// defer to their respective package managers.
type InstallMethod int

// String returns a human-readable name for the install method.
func (m InstallMethod) String() string {
	switch m {
	case InstallMethodUnknown:
		return "unknown"
	case InstallMethodSystemPackage:
		return "system"
	case InstallMethodHomebrew:
		return "homebrew"
	case InstallMethodGoInstall:
		return "goinstall"
	}
	return "unknown"
}

// DetectInstallMethod determines how shipm was installed based on the executable path
// and build information. Detection priority:
//  1. Build-time ldflags hint (highest priority) -- checked via the installMethodHint package var
//  2. Homebrew path heuristics -- known Homebrew prefixes
//  3. debug.ReadBuildInfo() module path confirmation for go-install
//  4. System package manager directories
//  5. Fallback to Unknown
func DetectInstallMethod(execPath string) InstallMethod {
	// 1. Build-time ldflags hint takes absolute priority.
	if installMethodHint != "" {
		return parseMethodHint(installMethodHint)
	}

	// 2. Homebrew path heuristics -- check all known Homebrew prefixes.
	if strings.Contains(execPath, homebrewMacARM) ||
		strings.Contains(execPath, homebrewMacIntel) ||
		strings.Contains(execPath, homebrewLinux) {
		return InstallMethodHomebrew
	}

	// 3. Go install -- path must be in GOPATH/bin AND build info must confirm
	// the module path. Both conditions are required to avoid false positives
	// from binaries that happen to be placed in GOPATH/bin manually.
	if isInGOPATHBin(execPath) && hasShipmModulePath() {
		return InstallMethodGoInstall
	}

	// 4. System package directories.
	if isSystemPackagePath(execPath) {
		return InstallMethodSystemPackage
	}

	// 5. Fallback -- could not determine install method.
	return InstallMethodUnknown
}

// parseMethodHint converts a build-time ldflags hint string to an InstallMethod.
func parseMethodHint(hint string) InstallMethod {
	switch strings.ToLower(hint) {
	case "homebrew":
		return InstallMethodHomebrew
	case "goinstall":
		return InstallMethodGoInstall
	case "system":
		return InstallMethodSystemPackage
	default:
		return InstallMethodUnknown
	}
}

// isInGOPATHBin checks whether the given path is inside $GOPATH/bin.
// It uses the GOPATH environment variable, falling back to ~/go if unset
// (matching the Go toolchain's default behavior).
func isInGOPATHBin(execPath string) bool {
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return false
		}
		gopath = filepath.Join(home, "go")
	}

	gopathBin := filepath.Clean(filepath.Join(gopath, "bin"))
	cleanExec := filepath.Clean(execPath)

	// Check if the executable path starts with the GOPATH/bin directory.
	// The trailing separator ensures we match the directory boundary, not
	// a prefix like /home/user/gobin vs /home/user/go/bin.
	return strings.HasPrefix(cleanExec, gopathBin+string(filepath.Separator)) ||
		cleanExec == gopathBin
}

// isSystemPackagePath checks whether the executable sits in a directory
// owned by the distribution's package manager. The caller passes a
// symlink-resolved path, so /bin entries that alias /usr/bin are already
// collapsed.
func isSystemPackagePath(execPath string) bool {
	cleanExec := filepath.ToSlash(filepath.Clean(execPath))
	for _, dir := range systemPackageDirs {
		if strings.HasPrefix(cleanExec, dir) {
			return true
		}
	}
	return false
}

// hasShipmModulePath checks whether the current binary's build info contains
// the expected shipm module path. This confirms the binary was built via
// `go install github.com/shipm/shipm@...` rather than being a manually-placed
// binary that happens to reside in GOPATH/bin.
func hasShipmModulePath() bool {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return false
	}
	return strings.Contains(info.Path, modulePath)
}
