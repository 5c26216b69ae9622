// SPDX-License-Identifier: MPL-2.0

// Package install performs the final pipeline step: handing a downloaded
// artifact to the native package manager or unpacking it next to its cache
// entry. Package-manager failures are reported as warnings rather than
// errors, so one broken artifact does not stop the remaining ones.
package install

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shipm/shipm/internal/platform"
	"github.com/shipm/shipm/internal/run"
)

type (
	// Option configures an Installer.
	Option func(*Installer)

	// Installer installs or extracts one artifact per call.
	Installer struct {
		runner  run.Runner
		elevate []string
		out     io.Writer
	}
)

// WithElevate sets the argv prefix prepended to package-manager
// invocations. The default is {"sudo"}.
func WithElevate(argv []string) Option {
	return func(i *Installer) { i.elevate = argv }
}

// WithOutput redirects progress and warning lines, which go to stdout by
// default.
func WithOutput(w io.Writer) Option {
	return func(i *Installer) { i.out = w }
}

// New returns an Installer that spawns package managers through runner.
func New(runner run.Runner, opts ...Option) *Installer {
	inst := &Installer{
		runner:  runner,
		elevate: []string{"sudo"},
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(inst)
	}
	return inst
}

// Install dispatches on the artifact's file name suffix: native packages
// go to the system package manager, archives are extracted into a sibling
// "<path>_extracted" directory, and anything else is skipped with a notice.
func (i *Installer) Install(ctx context.Context, path string, profile platform.Profile) error {
	fmt.Fprintf(i.out, "Installing %s ...\n", path)

	switch kind := Classify(path); kind {
	case KindDeb:
		return i.installDeb(ctx, path, profile)
	case KindRPM:
		return i.runElevated(ctx, "rpm", "-i", path)
	case KindZip, KindTarGz, KindTarXz, KindTar:
		return i.extract(path, kind)
	default:
		fmt.Fprintln(i.out, "Unknown file type, skipping install.")
		return nil
	}
}

// installDeb uses apt on Debian-family systems. Elsewhere it falls back to
// dpkg, which understands the format but resolves no dependencies.
func (i *Installer) installDeb(ctx context.Context, path string, profile platform.Profile) error {
	if profile.Distro == platform.DistroDebian {
		return i.runElevated(ctx, "apt", "install", "-y", path)
	}
	fmt.Fprintln(i.out, "Warning: installing a .deb package on a non-Debian distro, compatibility is not guaranteed.")
	return i.runElevated(ctx, "dpkg", "-i", path)
}

// runElevated executes argv behind the elevation prefix. A failing command
// is reported as a warning, not returned as an error; only context
// cancellation aborts the caller.
func (i *Installer) runElevated(ctx context.Context, argv ...string) error {
	res := i.runner.Run(ctx, run.Elevated(i.elevate, argv))
	if res.Err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprintf(i.out, "Warning: %s failed to run: %v\n", argv[0], res.Err)
		return nil
	}
	if !res.ExitCode.IsSuccess() {
		fmt.Fprintf(i.out, "Warning: %s exited with status %s.\n", argv[0], res.ExitCode)
	}
	return nil
}
