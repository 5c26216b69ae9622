// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shipm/shipm/internal/config"
	"github.com/shipm/shipm/internal/platform"
)

func TestRunInfo(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := infoParams{
		stdout: &out,
		cfg: &config.Config{
			DataDir:  "/srv/shipm",
			CacheDir: "/srv/shipm/cache",
		},
		detect: func() platform.Profile {
			return platform.Profile{OS: platform.OSLinux, Distro: platform.DistroDebian}
		},
		host: func(context.Context) (platform.HostInfo, error) {
			return platform.HostInfo{
				Hostname: "buildbox",
				Platform: "ubuntu",
				Family:   "debian",
				Version:  "24.04",
				Arch:     "x86_64",
			}, nil
		},
	}

	if err := runInfo(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	wantTokens := []string{
		"System",
		"linux",
		"Distro",
		"debian",
		"ubuntu 24.04 (debian family)",
		"x86_64",
		"buildbox",
		"Data dir",
		"/srv/shipm",
		"Cache dir",
		"/srv/shipm/cache",
		"Index URL",
		config.DefaultIndexURL,
		"API URL",
		config.DefaultAPIBaseURL,
	}
	for _, token := range wantTokens {
		if !strings.Contains(got, token) {
			t.Errorf("output %q does not contain %q", got, token)
		}
	}
}

func TestRunInfo_HostProbeFailure(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := infoParams{
		stdout: &out,
		cfg: &config.Config{
			DataDir:  "/srv/shipm",
			CacheDir: "/srv/shipm/cache",
		},
		detect: func() platform.Profile {
			return platform.Profile{OS: platform.OSWindows, Distro: platform.DistroWindows}
		},
		host: func(context.Context) (platform.HostInfo, error) {
			return platform.HostInfo{}, errors.New("probe failed")
		},
	}

	// A failed host probe degrades to a warning; the report still succeeds.
	if err := runInfo(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "host details unavailable") {
		t.Errorf("output %q does not contain the host warning", got)
	}
	if !strings.Contains(got, "probe failed") {
		t.Errorf("output %q does not name the probe error", got)
	}
	if !strings.Contains(got, "Data dir") {
		t.Errorf("output %q is missing the directory report after a host failure", got)
	}
}
