// SPDX-License-Identifier: MPL-2.0

// Package release queries the release hosting API for a repository's
// latest release and selects the asset to install. Transport, rate-limit,
// and not-found outcomes are distinct error kinds so the caller can map
// them to exit codes.
package release

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoRelease is returned when a repository has no published release
	// (the API answers 404 for releases/latest).
	ErrNoRelease = errors.New("no release found")

	// ErrAssetNotFound is returned when no asset name contains the
	// requested pattern, or the release carries no assets at all.
	ErrAssetNotFound = errors.New("no matching asset found")
)

type (
	// Asset is one downloadable file attached to a release.
	Asset struct {
		Name        string // filename, e.g. "fastfetch-linux-amd64.deb"
		DownloadURL string // direct download URL
	}

	// Release is the resolved latest release of a repository.
	Release struct {
		TagName string  // version tag, e.g. "v2.25.0"
		Assets  []Asset // ordered as returned by the host
	}

	// RateLimitError is returned when the hosting API rate limit is
	// exhausted (403/429 with a zero remaining quota).
	RateLimitError struct {
		Limit     int
		Remaining int
		ResetAt   time.Time
	}

	// StatusError is returned for any other non-200 API response.
	StatusError struct {
		URL        string
		StatusCode int
	}
)

// Error formats the rate limit details as a human-readable message.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("API rate limit exceeded (%d remaining, resets at %s)",
		e.Remaining, e.ResetAt.UTC().Format("15:04 UTC"))
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// FirstMatch returns the first asset whose name contains pattern.
// Matching is case-sensitive substring containment; an empty pattern
// matches the first asset. The scan preserves the host's asset order, so
// "first match wins" is deterministic for a given release.
func FirstMatch(assets []Asset, pattern string) (Asset, error) {
	for _, a := range assets {
		if strings.Contains(a.Name, pattern) {
			return a, nil
		}
	}
	return Asset{}, ErrAssetNotFound
}
