// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/shipm/shipm/internal/platform"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type (
	// Entry is the wire form of one package in an index document or
	// overlay. Distro keys are free-form strings here; they are
	// normalized to the closed platform.Distro enum in FromDocument.
	Entry struct {
		Repo   string              `json:"repo" toml:"repo"`
		Deps   map[string][]string `json:"deps,omitempty" toml:"deps,omitempty"`
		Assets map[string]string   `json:"assets,omitempty" toml:"assets,omitempty"`
	}

	// Document is the parsed index: logical package name to entry.
	Document map[string]Entry
)

// ParseDocument decodes a JSON index document.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing package index: %w", err)
	}
	return doc, nil
}

// FromDocument normalizes a document into a catalog. Unknown distro keys
// are dropped, each producing one warning line; they never fail the load,
// so an index written for a newer shipm still works on an older one.
// Warnings are ordered by package name for deterministic output.
func FromDocument(doc Document) (*Catalog, []string) {
	packages := make(map[string]Package, len(doc))
	var warnings []string

	names := maps.Keys(doc)
	slices.Sort(names)

	for _, name := range names {
		entry := doc[name]
		pkg := Package{Name: name, Repo: entry.Repo}

		if len(entry.Deps) > 0 {
			pkg.Deps = make(map[platform.Distro][]string, len(entry.Deps))
			for _, key := range sortedKeys(entry.Deps) {
				distro, ok := platform.ParseDistro(key)
				if !ok {
					warnings = append(warnings,
						fmt.Sprintf("package %q: ignoring unknown distro %q in deps", name, key))
					continue
				}
				pkg.Deps[distro] = slices.Clone(entry.Deps[key])
			}
		}

		if len(entry.Assets) > 0 {
			pkg.AssetMatch = make(map[platform.Distro]string, len(entry.Assets))
			for _, key := range sortedKeys(entry.Assets) {
				distro, ok := platform.ParseDistro(key)
				if !ok {
					warnings = append(warnings,
						fmt.Sprintf("package %q: ignoring unknown distro %q in assets", name, key))
					continue
				}
				pkg.AssetMatch[distro] = entry.Assets[key]
			}
		}

		packages[name] = pkg
	}

	return NewCatalog(packages), warnings
}

// sortedKeys returns the map's keys in sorted order, for deterministic
// iteration over wire-form distro keys.
func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
