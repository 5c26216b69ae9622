// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"context"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/host"
)

// HostInfo carries descriptive host details for diagnostic output.
// It is reporting-only: the install pipeline decides the distro family
// exclusively through Detect's marker probes, never through this data.
type HostInfo struct {
	Hostname string
	Platform string // distribution or product name, e.g. "ubuntu"
	Family   string // vendor-reported family, e.g. "debian"
	Version  string // platform version, e.g. "24.04"
	Arch     string // kernel architecture, e.g. "x86_64"
}

// Host gathers descriptive information about the running system for the
// info report.
func Host(ctx context.Context) (HostInfo, error) {
	platformName, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		return HostInfo{}, fmt.Errorf("reading platform information: %w", err)
	}

	arch, err := host.KernelArch()
	if err != nil {
		return HostInfo{}, fmt.Errorf("reading kernel architecture: %w", err)
	}

	// Hostname is decoration; a failure should not sink the report.
	hostname, hostErr := os.Hostname()
	if hostErr != nil {
		hostname = "unknown"
	}

	return HostInfo{
		Hostname: hostname,
		Platform: platformName,
		Family:   family,
		Version:  version,
		Arch:     arch,
	}, nil
}
