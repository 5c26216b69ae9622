// SPDX-License-Identifier: MPL-2.0

// Package pipeline composes the full install flow: catalog lookup, system
// detection, native dependency installation, release resolution, cached
// download, and artifact installation. Every collaborator is injected, so
// tests exercise the sequencing with in-memory doubles.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shipm/shipm/internal/catalog"
	"github.com/shipm/shipm/internal/platform"
	"github.com/shipm/shipm/internal/release"
)

type (
	// Catalog resolves logical package names. *catalog.Catalog satisfies it.
	Catalog interface {
		Lookup(name string) (catalog.Package, error)
	}

	// DepsInstaller installs native OS dependencies. *deps.Installer
	// satisfies it.
	DepsInstaller interface {
		Install(ctx context.Context, pkg catalog.Package, profile platform.Profile) error
	}

	// Resolver queries the hosting API for the latest release.
	// *release.Client satisfies it.
	Resolver interface {
		LatestRelease(ctx context.Context, repo string) (*release.Release, error)
	}

	// Fetcher materializes a release asset as a local file. *cache.Cache
	// satisfies it.
	Fetcher interface {
		Fetch(ctx context.Context, asset release.Asset, force bool) (string, error)
	}

	// ArtifactInstaller installs or extracts one fetched artifact.
	// *install.Installer satisfies it.
	ArtifactInstaller interface {
		Install(ctx context.Context, path string, profile platform.Profile) error
	}

	// Components bundles the collaborators an Orchestrator composes.
	// Every field is required.
	Components struct {
		Catalog   Catalog
		Deps      DepsInstaller
		Resolver  Resolver
		Cache     Fetcher
		Installer ArtifactInstaller
	}

	// Option configures an Orchestrator.
	Option func(*Orchestrator)

	// InstallOptions selects the behavior of one Install operation.
	InstallOptions struct {
		// Force re-downloads assets even when a cache entry exists.
		Force bool
		// AllAssets installs every release asset instead of the single
		// distro-matching one.
		AllAssets bool
	}

	// Orchestrator drives the pipeline over injected components.
	Orchestrator struct {
		c      Components
		detect func() platform.Profile
		out    io.Writer
	}
)

// WithDetector overrides host detection. Tests pin a fixed profile.
func WithDetector(fn func() platform.Profile) Option {
	return func(o *Orchestrator) { o.detect = fn }
}

// WithOutput redirects progress lines, which go to stdout by default.
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) { o.out = w }
}

// New returns an Orchestrator over c.
func New(c Components, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		c:      c,
		detect: platform.Detect,
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Install runs the full pipeline for the named package. Catalog misses,
// release resolution failures, and download failures abort the operation;
// dependency and package-manager failures are advisory and reported by the
// components themselves. When AllAssets is set, a failing artifact install
// only skips that artifact and the collected errors are returned joined.
func (o *Orchestrator) Install(ctx context.Context, name string, opts InstallOptions) error {
	pkg, err := o.c.Catalog.Lookup(name)
	if err != nil {
		return err
	}

	profile := o.detect()
	fmt.Fprintf(o.out, "System: %s, Distro: %s\n", profile.OS, profile.Distro)

	if err := o.c.Deps.Install(ctx, pkg, profile); err != nil {
		return err
	}

	rel, err := o.c.Resolver.LatestRelease(ctx, pkg.Repo)
	if err != nil {
		return err
	}

	assets, err := selectAssets(rel, pkg, profile, opts.AllAssets)
	if err != nil {
		return err
	}

	var errs []error
	for _, asset := range assets {
		path, fetchErr := o.c.Cache.Fetch(ctx, asset, opts.Force)
		if fetchErr != nil {
			return errors.Join(append(errs, fetchErr)...)
		}
		if installErr := o.c.Installer.Install(ctx, path, profile); installErr != nil {
			if ctx.Err() != nil {
				return errors.Join(append(errs, installErr)...)
			}
			errs = append(errs, installErr)
		}
	}
	return errors.Join(errs...)
}

// Deps installs only the named package's native dependencies.
func (o *Orchestrator) Deps(ctx context.Context, name string) error {
	pkg, err := o.c.Catalog.Lookup(name)
	if err != nil {
		return err
	}

	profile := o.detect()
	fmt.Fprintf(o.out, "System: %s, Distro: %s\n", profile.OS, profile.Distro)

	return o.c.Deps.Install(ctx, pkg, profile)
}

// selectAssets picks the distro-matching asset, or every asset when all is
// set. A release without assets yields ErrAssetNotFound either way.
func selectAssets(rel *release.Release, pkg catalog.Package, profile platform.Profile, all bool) ([]release.Asset, error) {
	if all {
		if len(rel.Assets) == 0 {
			return nil, release.ErrAssetNotFound
		}
		return rel.Assets, nil
	}

	// A distro without a configured pattern matches the first asset.
	asset, err := release.FirstMatch(rel.Assets, pkg.AssetMatch[profile.Distro])
	if err != nil {
		return nil, err
	}
	return []release.Asset{asset}, nil
}
