// SPDX-License-Identifier: MPL-2.0

package install

import "strings"

type (
	// Kind identifies the installation action for an artifact. It is
	// decoded once from the file name suffix; file contents are never
	// sniffed. KindUnknown is the zero value, so an unclassified name
	// dispatches no action.
	Kind int
)

const (
	KindUnknown Kind = iota
	KindDeb
	KindRPM
	KindZip
	KindTarGz
	KindTarXz
	KindTar
)

// String returns the canonical suffix name for the Kind.
func (k Kind) String() string {
	switch k {
	case KindDeb:
		return "deb"
	case KindRPM:
		return "rpm"
	case KindZip:
		return "zip"
	case KindTarGz:
		return "tar.gz"
	case KindTarXz:
		return "tar.xz"
	case KindTar:
		return "tar"
	default:
		return "unknown"
	}
}

// Classify maps an artifact file name to its Kind. Compound suffixes are
// checked before their ".tar" tail so "tool.tar.gz" never classifies as a
// plain tarball.
func Classify(name string) Kind {
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return KindTarGz
	case strings.HasSuffix(name, ".tar.xz"):
		return KindTarXz
	case strings.HasSuffix(name, ".tar"):
		return KindTar
	case strings.HasSuffix(name, ".deb"):
		return KindDeb
	case strings.HasSuffix(name, ".rpm"):
		return KindRPM
	case strings.HasSuffix(name, ".zip"):
		return KindZip
	default:
		return KindUnknown
	}
}
