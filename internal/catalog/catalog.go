// SPDX-License-Identifier: MPL-2.0

// Package catalog maps logical package names to their install metadata:
// the source repository, the native dependencies per distro family, and
// the release asset pattern per distro family. The catalog is built once
// from an index document and is read-only for the rest of the run.
package catalog

import (
	"errors"
	"fmt"

	"github.com/shipm/shipm/internal/platform"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ErrUnknownPackage is the sentinel error wrapped by UnknownPackageError.
var ErrUnknownPackage = errors.New("unknown package")

type (
	// Package is one resolvable entry: a logical name, the "owner/name"
	// repository its releases come from, and per-distro install metadata.
	// Absent map keys mean "nothing to do" (no deps) or "match any asset"
	// (empty pattern), never an error.
	Package struct {
		Name       string
		Repo       string
		Deps       map[platform.Distro][]string
		AssetMatch map[platform.Distro]string
	}

	// Catalog is an immutable name-to-package lookup table.
	Catalog struct {
		packages map[string]Package
	}

	// UnknownPackageError is returned when a looked-up name has no
	// catalog entry.
	UnknownPackageError struct {
		Name string
	}
)

// Error implements the error interface.
func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("unknown package %q", e.Name)
}

// Unwrap returns ErrUnknownPackage so callers can use errors.Is for
// programmatic detection.
func (e *UnknownPackageError) Unwrap() error { return ErrUnknownPackage }

// NewCatalog builds a catalog from already-normalized packages.
// The map is used as-is; callers must not mutate it afterwards.
func NewCatalog(packages map[string]Package) *Catalog {
	if packages == nil {
		packages = map[string]Package{}
	}
	return &Catalog{packages: packages}
}

// Lookup resolves a logical package name.
func (c *Catalog) Lookup(name string) (Package, error) {
	pkg, ok := c.packages[name]
	if !ok {
		return Package{}, &UnknownPackageError{Name: name}
	}
	return pkg, nil
}

// Names returns all package names in sorted order.
func (c *Catalog) Names() []string {
	names := maps.Keys(c.packages)
	slices.Sort(names)
	return names
}

// Len returns the number of packages in the catalog.
func (c *Catalog) Len() int {
	return len(c.packages)
}
