// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/shipm/shipm/internal/install"
	"github.com/shipm/shipm/internal/platform"
	"github.com/shipm/shipm/internal/release"

	"github.com/ulikunitz/xz"
	"golang.org/x/mod/semver"
)

const (
	// selfRepo is the repository shipm's own releases are published to.
	selfRepo = "shipm/shipm"

	// maxBinaryBytes is the upper bound on extracted binary size (500 MB).
	// Prevents decompression bombs when extracting the shipm binary from
	// a release archive.
	maxBinaryBytes = 500 << 20
)

var (
	// ErrInvalidVersion indicates the provided version string is not valid semver.
	ErrInvalidVersion = errors.New("invalid semantic version")

	//nolint:gochecknoglobals // Test seam for os.Executable().
	osExecutable = os.Executable

	//nolint:gochecknoglobals // Test seam for filepath.EvalSymlinks().
	evalSymlinks = filepath.EvalSymlinks
)

type (
	// Client resolves and downloads shipm's own releases. *release.Client
	// satisfies it.
	Client interface {
		LatestRelease(ctx context.Context, repo string) (*release.Release, error)
		Download(ctx context.Context, url string) (io.ReadCloser, error)
	}

	// UpgradeCheck holds the result of a version comparison between the
	// currently running binary and the latest release. The InstallMethod
	// field determines whether the Updater can apply the upgrade directly
	// or must defer to an external package manager.
	UpgradeCheck struct {
		CurrentVersion   string           // Currently running version
		LatestVersion    string           // Latest release version
		Target           *release.Release // Full release info (nil if up-to-date or managed)
		InstallMethod    InstallMethod    // How shipm was installed
		UpgradeAvailable bool             // True if upgrade available and applicable
		Message          string           // Human-readable status message
	}

	// Updater composes release resolution, install method detection, and
	// atomic binary replacement into an end-to-end upgrade flow.
	Updater struct {
		client         Client
		currentVersion string
	}

	// UpdaterOption configures an Updater during construction.
	UpdaterOption func(*Updater)
)

// WithClient overrides the default release client used by the Updater.
func WithClient(c Client) UpdaterOption {
	return func(u *Updater) {
		u.client = c
	}
}

// NewUpdater creates an Updater for the given currentVersion. If no
// WithClient option is provided, a default release client is created.
func NewUpdater(currentVersion string, opts ...UpdaterOption) *Updater {
	u := &Updater{
		currentVersion: currentVersion,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.client == nil {
		u.client = release.NewClient()
	}
	return u
}

// Check determines whether an upgrade is available by comparing the current
// version against the latest release.
//
// For managed installs (system package, Homebrew, go install), Check returns
// immediately with guidance to use the appropriate package manager and no
// API call is made. For unmanaged installs it fetches the latest release and
// performs a semver comparison.
func (u *Updater) Check(ctx context.Context) (*UpgradeCheck, error) {
	execPath, err := resolveExecPath()
	if err != nil {
		return nil, fmt.Errorf("resolving executable path: %w", err)
	}

	method := DetectInstallMethod(execPath)
	if method != InstallMethodUnknown {
		return &UpgradeCheck{
			CurrentVersion: u.currentVersion,
			InstallMethod:  method,
			Message:        managedInstallMessage(method, execPath),
		}, nil
	}

	rel, err := u.client.LatestRelease(ctx, selfRepo)
	if err != nil {
		return nil, fmt.Errorf("resolving latest release: %w", err)
	}

	currentNorm, err := normalizeVersion(u.currentVersion)
	if err != nil {
		return nil, fmt.Errorf("current version: %w", err)
	}
	latestNorm, err := normalizeVersion(rel.TagName)
	if err != nil {
		return nil, fmt.Errorf("release version: %w", err)
	}

	// A pre-release build at or beyond the latest stable tag counts as up
	// to date; replacing it with the stable build would be a downgrade.
	if semver.Prerelease(currentNorm) != "" && semver.Compare(currentNorm, latestNorm) >= 0 {
		return &UpgradeCheck{
			CurrentVersion: u.currentVersion,
			LatestVersion:  rel.TagName,
			InstallMethod:  method,
			Message:        fmt.Sprintf("Running pre-release %s (ahead of %s).", u.currentVersion, rel.TagName),
		}, nil
	}

	if semver.Compare(currentNorm, latestNorm) >= 0 {
		return &UpgradeCheck{
			CurrentVersion: u.currentVersion,
			LatestVersion:  rel.TagName,
			InstallMethod:  method,
			Message:        "Already up to date.",
		}, nil
	}

	return &UpgradeCheck{
		CurrentVersion:   u.currentVersion,
		LatestVersion:    rel.TagName,
		Target:           rel,
		InstallMethod:    method,
		UpgradeAvailable: true,
		Message:          fmt.Sprintf("Upgrade available: %s -> %s", u.currentVersion, rel.TagName),
	}, nil
}

// Apply downloads the platform asset from the given release and atomically
// replaces the current binary. The replacement uses os.Rename, which
// requires the temp file to reside on the same filesystem as the target, so
// all temporary files are created in the same directory as the running
// binary.
func (u *Updater) Apply(ctx context.Context, rel *release.Release) error {
	if rel == nil {
		return errors.New("release must not be nil")
	}

	execPath, err := resolveExecPath()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	asset, err := platformAsset(rel.Assets)
	if err != nil {
		return err
	}

	targetDir := filepath.Dir(execPath)

	downloadPath, err := u.downloadToTempFile(ctx, asset.DownloadURL, targetDir)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", asset.Name, err)
	}
	defer func() { _ = os.Remove(downloadPath) }()

	// The asset is either an archive wrapping the binary or the raw binary
	// itself.
	binaryPath := downloadPath
	switch kind := install.Classify(asset.Name); kind {
	case install.KindTarGz, install.KindTarXz, install.KindTar:
		binaryPath, err = extractFromTar(kind, downloadPath, targetDir)
	case install.KindZip:
		binaryPath, err = extractFromZip(downloadPath, targetDir)
	}
	if err != nil {
		return fmt.Errorf("extracting binary from %s: %w", asset.Name, err)
	}

	// Track whether the rename succeeded so the deferred cleanup knows
	// whether to remove the temp binary.
	renamed := false
	defer func() {
		if !renamed && binaryPath != downloadPath {
			_ = os.Remove(binaryPath)
		}
	}()

	if err := os.Chmod(binaryPath, 0o755); err != nil {
		return fmt.Errorf("setting binary permissions: %w", err)
	}

	if err := replaceExecutable(binaryPath, execPath); err != nil {
		return err
	}
	renamed = true

	return nil
}

// resolveExecPath returns the absolute, symlink-resolved path to the currently
// running binary.
func resolveExecPath() (string, error) {
	p, err := osExecutable()
	if err != nil {
		return "", fmt.Errorf("determining executable path: %w", err)
	}

	resolved, err := evalSymlinks(p)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", p, err)
	}

	return resolved, nil
}

// platformAsset selects the release asset built for this OS and
// architecture: either the bare binary (shipm_linux_amd64) or an archive
// carrying a suffix (shipm_windows_amd64.zip).
func platformAsset(assets []release.Asset) (release.Asset, error) {
	base := fmt.Sprintf("shipm_%s_%s", runtime.GOOS, runtime.GOARCH)
	for _, a := range assets {
		if a.Name == base || strings.HasPrefix(a.Name, base+".") {
			return a, nil
		}
	}
	return release.Asset{}, fmt.Errorf("no asset named %s in release: %w", base, release.ErrAssetNotFound)
}

// managedInstallMessage returns a human-readable message advising the user to
// upgrade via their package manager, formatted per the CLI contract.
func managedInstallMessage(method InstallMethod, execPath string) string {
	switch method {
	case InstallMethodHomebrew:
		return fmt.Sprintf("Detected a Homebrew installation at %s\n\nTo upgrade, run:\n  brew upgrade shipm", execPath)
	case InstallMethodGoInstall:
		return fmt.Sprintf("Detected a go install at %s\n\nTo upgrade, run:\n  go install %s@latest", execPath, modulePath)
	case InstallMethodSystemPackage:
		return fmt.Sprintf("Detected a system package installation at %s\n\nUpgrade shipm through your distribution's package manager.", execPath)
	case InstallMethodUnknown:
		return ""
	}
	return ""
}

// normalizeVersion ensures the version string has a "v" prefix as required by
// the semver package, and validates that the result is a well-formed semantic
// version. Returns ErrInvalidVersion if the input cannot be normalized to
// valid semver.
func normalizeVersion(v string) (string, error) {
	norm := v
	if !strings.HasPrefix(norm, "v") {
		norm = "v" + norm
	}
	if !semver.IsValid(norm) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	return norm, nil
}

// binaryName is the expected name of the shipm binary inside release
// archives for the current platform.
func binaryName() string {
	if runtime.GOOS == platform.GOOSWindows {
		return "shipm.exe"
	}
	return "shipm"
}

// downloadToTempFile downloads the asset at url into a temporary file in dir
// and returns the path to the temp file. The caller is responsible for removing
// the file when done.
func (u *Updater) downloadToTempFile(ctx context.Context, url, dir string) (_ string, err error) {
	body, err := u.client.Download(ctx, url)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }() // read-only HTTP response body

	tmp, err := os.CreateTemp(dir, "shipm-download-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if closeErr := tmp.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(tmp, body); err != nil {
		// Best-effort removal of partially written temp file.
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("writing to temp file: %w", err)
	}

	return tmp.Name(), nil
}

// extractFromTar plucks the shipm binary out of a tar archive into a temp
// file in dir. Entries are matched by base filename, so flat archives and
// nested layouts (e.g. shipm_linux_amd64/shipm) are handled transparently.
func extractFromTar(kind install.Kind, archivePath, dir string) (string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer func() { _ = f.Close() }() // read-only file handle

	// Plain tar needs no decompression wrapper.
	var src io.Reader = f
	switch kind {
	case install.KindTarGz:
		gz, gzErr := gzip.NewReader(f)
		if gzErr != nil {
			return "", fmt.Errorf("creating gzip reader: %w", gzErr)
		}
		defer func() { _ = gz.Close() }() // wraps the file handle above
		src = gz
	case install.KindTarXz:
		xzr, xzErr := xz.NewReader(f)
		if xzErr != nil {
			return "", fmt.Errorf("creating xz reader: %w", xzErr)
		}
		src = xzr
	}

	tr := tar.NewReader(src)
	for {
		hdr, nextErr := tr.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}
		if nextErr != nil {
			return "", fmt.Errorf("reading tar entry: %w", nextErr)
		}
		if hdr.Typeflag != tar.TypeReg || filepath.Base(hdr.Name) != binaryName() {
			continue
		}

		// Limit the reader to maxBinaryBytes to prevent decompression bombs.
		return writeTempBinary(dir, io.LimitReader(tr, maxBinaryBytes))
	}

	return "", fmt.Errorf("binary %q not found in archive %s", binaryName(), archivePath)
}

// extractFromZip plucks the shipm binary out of a zip archive into a temp
// file in dir, matching entries by base filename like extractFromTar.
func extractFromZip(archivePath, dir string) (string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer func() { _ = zr.Close() }() // read-only archive handle

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || filepath.Base(f.Name) != binaryName() {
			continue
		}

		rc, openErr := f.Open()
		if openErr != nil {
			return "", fmt.Errorf("opening archive entry %s: %w", f.Name, openErr)
		}
		path, writeErr := writeTempBinary(dir, io.LimitReader(rc, maxBinaryBytes))
		_ = rc.Close()
		return path, writeErr
	}

	return "", fmt.Errorf("binary %q not found in archive %s", binaryName(), archivePath)
}

// writeTempBinary copies src into a fresh temp file in dir and returns its
// path. The partially written file is removed on copy failure.
func writeTempBinary(dir string, src io.Reader) (_ string, err error) {
	tmp, err := os.CreateTemp(dir, "shipm-upgrade-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file for binary: %w", err)
	}
	defer func() {
		if closeErr := tmp.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("extracting binary: %w", err)
	}

	return tmp.Name(), nil
}

// replaceExecutable moves tempPath over execPath. Windows locks the running
// image, so there the current binary is first renamed aside to .old instead
// of being overwritten in place.
func replaceExecutable(tempPath, execPath string) error {
	if runtime.GOOS == platform.GOOSWindows {
		oldPath := execPath + ".old"
		// Leftover from a previous upgrade.
		_ = os.Remove(oldPath)
		if err := os.Rename(execPath, oldPath); err != nil {
			return fmt.Errorf("moving current binary aside: %w", err)
		}
		if err := os.Rename(tempPath, execPath); err != nil {
			// Put the original back so the installation stays usable.
			_ = os.Rename(oldPath, execPath)
			return fmt.Errorf("replacing binary: %w", err)
		}
		return nil
	}

	if err := os.Rename(tempPath, execPath); err != nil {
		return fmt.Errorf("replacing binary: %w", err)
	}
	return nil
}
