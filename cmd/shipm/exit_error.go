// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/shipm/shipm/internal/catalog"
	"github.com/shipm/shipm/internal/issue"
	"github.com/shipm/shipm/internal/release"
	"github.com/shipm/shipm/internal/selfupdate"
	"github.com/shipm/shipm/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// classifyExitCode maps a command failure to the process exit code.
// User-correctable failures exit 1: unknown package, missing release or
// asset, permission problems, an uncomparable build version, a declined
// confirmation. Everything else is environmental (network failures, rate
// limits, broken downloads, subprocess failures in a fatal position) and
// exits 2.
func classifyExitCode(err error) types.ExitCode {
	switch {
	case errors.Is(err, catalog.ErrUnknownPackage),
		errors.Is(err, release.ErrNoRelease),
		errors.Is(err, release.ErrAssetNotFound),
		errors.Is(err, selfupdate.ErrInvalidVersion),
		errors.Is(err, os.ErrPermission),
		errors.Is(err, errUpgradeDeclined):
		return types.ExitUserError
	default:
		return types.ExitTransient
	}
}

// issueForError picks the remediation issue matching a command failure, or
// nil when the registry has nothing specific to say about it.
func issueForError(err error) *issue.Issue {
	var (
		rateLimitErr *release.RateLimitError
		statusErr    *release.StatusError
		urlErr       *url.Error
	)
	switch {
	case errors.Is(err, catalog.ErrUnknownPackage):
		return issue.Get(issue.UnknownPackageId)
	case errors.Is(err, release.ErrAssetNotFound):
		return issue.Get(issue.NoMatchingAssetId)
	case errors.As(err, &rateLimitErr):
		return issue.Get(issue.RateLimitExceededId)
	case errors.As(err, &statusErr), errors.As(err, &urlErr):
		return issue.Get(issue.NetworkFailureId)
	case errors.Is(err, os.ErrPermission):
		return issue.Get(issue.PermissionDeniedId)
	default:
		return nil
	}
}

// printIssueHint writes the rendered remediation issue for err to w, when the
// registry has one.
func printIssueHint(w io.Writer, err error) {
	iss := issueForError(err)
	if iss == nil {
		return
	}
	rendered, _ := iss.Render("dark")
	fmt.Fprint(w, rendered)
}
