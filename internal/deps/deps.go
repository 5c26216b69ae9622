// SPDX-License-Identifier: MPL-2.0

// Package deps installs a package's native OS dependencies through the
// host's package manager. Dependency installation is advisory: a failing
// package-manager invocation is reported as a warning and never stops the
// surrounding pipeline.
package deps

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shipm/shipm/internal/catalog"
	"github.com/shipm/shipm/internal/platform"
	"github.com/shipm/shipm/internal/run"
)

type (
	// Option configures an Installer.
	Option func(*Installer)

	// Installer dispatches dependency lists to the distro family's native
	// package manager.
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

// Install resolves pkg's dependency list for the profile's distro family
// and hands it to the native package manager. A missing or empty list is
// reported and succeeds trivially. On platforms without a supported
// package manager the list is printed for manual installation instead.
func (i *Installer) Install(ctx context.Context, pkg catalog.Package, profile platform.Profile) error {
	need, ok := pkg.Deps[profile.Distro]
	if !ok {
		fmt.Fprintln(i.out, "No dependencies for this distro.")
		return nil
	}
	if len(need) == 0 {
		fmt.Fprintln(i.out, "No dependencies needed.")
		return nil
	}

	fmt.Fprintf(i.out, "Installing dependencies: %s\n", strings.Join(need, " "))

	switch profile.Distro {
	case platform.DistroDebian:
		// Metadata refresh first; its failure is advisory like any other,
		// so the install attempt still happens.
		if err := i.runElevated(ctx, []string{"apt", "update"}); err != nil {
			return err
		}
		return i.runElevated(ctx, append([]string{"apt", "install", "-y"}, need...))
	case platform.DistroArch:
		return i.runElevated(ctx, append([]string{"pacman", "-Sy", "--needed"}, need...))
	case platform.DistroFedora:
		return i.runElevated(ctx, append([]string{"dnf", "install", "-y"}, need...))
	default:
		fmt.Fprintf(i.out, "No supported package manager here, install manually: %s\n", strings.Join(need, " "))
		return nil
	}
}

// runElevated executes argv behind the elevation prefix. A failing command
// is reported as a warning, not returned as an error; only context
// cancellation aborts the caller.
func (i *Installer) runElevated(ctx context.Context, argv []string) error {
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
