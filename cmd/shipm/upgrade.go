// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shipm/shipm/internal/release"
	"github.com/shipm/shipm/internal/selfupdate"
	"github.com/shipm/shipm/pkg/types"

	"github.com/spf13/cobra"
)

// errUpgradeDeclined marks a confirmation prompt answered with anything
// but yes. classifyExitCode maps it to exit code 1.
var errUpgradeDeclined = errors.New("upgrade declined")

// upgradeParams bundles the dependencies of runUpgrade for testability.
// All user-facing output goes through stdout and stderr; the confirmation
// prompt reads from stdin.
type upgradeParams struct {
	stdout  io.Writer
	stderr  io.Writer
	stdin   io.Reader
	updater *selfupdate.Updater
	check   bool // --check mode: report availability without installing
	yes     bool // --yes flag: skip confirmation prompt
}

// newUpgradeCommand creates the `shipm upgrade` command, which replaces the
// running binary with the latest stable release.
func newUpgradeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade shipm to the latest stable release",
		Long: `Upgrade shipm to the latest stable release.

The upgrade command downloads the release asset for this platform,
extracts the binary when the asset is an archive, and atomically
replaces the current executable.

If shipm was installed via Homebrew, go install, or a system package,
the command suggests the matching package manager instead.`,
		Example: `  # Check whether a newer release exists
  shipm upgrade --check

  # Upgrade without the confirmation prompt
  shipm upgrade --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			checkFlag, _ := cmd.Flags().GetBool("check")
			yesFlag, _ := cmd.Flags().GetBool("yes")

			ctx := cmd.Context()
			cfg, err := app.loadConfig(ctx)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: types.ExitUserError, Err: err}
			}

			updater := selfupdate.NewUpdater(Version, selfupdate.WithClient(app.newReleaseClient(cfg)))

			p := upgradeParams{
				stdout:  cmd.OutOrStdout(),
				stderr:  cmd.ErrOrStderr(),
				stdin:   cmd.InOrStdin(),
				updater: updater,
				check:   checkFlag,
				yes:     yesFlag,
			}

			if err := runUpgrade(ctx, p); err != nil {
				if !errors.Is(err, errUpgradeDeclined) {
					fmt.Fprintln(p.stderr, formatUpgradeError(err))
				}
				return &ExitError{Code: classifyExitCode(err), Err: err}
			}

			return nil
		},
	}

	cmd.Flags().Bool("check", false, "Check for an available upgrade without installing")
	cmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")

	return cmd
}

// runUpgrade is the core upgrade logic, separated from Cobra for testability.
// All user-facing output goes through p.stdout and p.stderr.
//
// Flow:
//  1. Check for an available upgrade via the hosting API.
//  2. If the install is managed (Homebrew, go install, system package),
//     print guidance and return.
//  3. If already up-to-date, print status and return.
//  4. If --check, print availability and return.
//  5. Otherwise, confirm with the user (unless --yes), download, and replace.
func runUpgrade(ctx context.Context, p upgradeParams) error {
	check, err := p.updater.Check(ctx)
	if err != nil {
		return fmt.Errorf("checking for upgrade: %w", err)
	}

	// Managed installs should be upgraded through their own package
	// manager. Check returns a pre-formatted message naming it.
	if check.InstallMethod != selfupdate.InstallMethodUnknown {
		fmt.Fprintln(p.stdout, check.Message)
		return nil
	}

	// No upgrade available: already up-to-date or running a pre-release
	// ahead of the latest stable version.
	if !check.UpgradeAvailable {
		fmt.Fprintf(p.stdout, "Current version: %s\n", check.CurrentVersion)
		if check.LatestVersion != "" {
			fmt.Fprintf(p.stdout, "Latest version:  %s\n", check.LatestVersion)
		}
		fmt.Fprintf(p.stdout, "\n%s\n", check.Message)
		return nil
	}

	// Upgrade available, check-only mode: report and exit without installing.
	if p.check {
		fmt.Fprintf(p.stdout, "Current version: %s\n", check.CurrentVersion)
		fmt.Fprintf(p.stdout, "Latest version:  %s\n", check.LatestVersion)
		fmt.Fprintf(p.stdout, "\nAn upgrade is available: %s → %s\n", check.CurrentVersion, check.LatestVersion)
		fmt.Fprintln(p.stdout, "Run 'shipm upgrade' to install.")
		return nil
	}

	// Upgrade available, apply mode: confirm, download, and replace.
	fmt.Fprintf(p.stdout, "Current version: %s\n", check.CurrentVersion)
	fmt.Fprintf(p.stdout, "Latest version:  %s\n", check.LatestVersion)

	if !p.yes {
		confirmed, confirmErr := confirmUpgrade(p.stdin, p.stdout, check.CurrentVersion, check.LatestVersion)
		if confirmErr != nil {
			return fmt.Errorf("confirmation prompt: %w", confirmErr)
		}
		if !confirmed {
			fmt.Fprintln(p.stdout, "Upgrade canceled.")
			return errUpgradeDeclined
		}
	}

	fmt.Fprintf(p.stdout, "\nDownloading shipm %s...\n", check.LatestVersion)

	if err := p.updater.Apply(ctx, check.Target); err != nil {
		return fmt.Errorf("applying upgrade: %w", err)
	}

	fmt.Fprintln(p.stdout, SuccessStyle.Render(fmt.Sprintf("Successfully upgraded to %s", check.LatestVersion)))

	return nil
}

// confirmUpgrade asks for a yes/no answer on the upgrade prompt. Only an
// explicit "y" or "yes" (case-insensitive) confirms; everything else,
// including an empty answer, declines.
func confirmUpgrade(in io.Reader, out io.Writer, current, latest string) (bool, error) {
	fmt.Fprintf(out, "Upgrade shipm from %s to %s? [y/N] ", current, latest)

	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// formatUpgradeError produces a user-friendly error message with actionable
// remediation guidance tailored to the specific error type.
func formatUpgradeError(err error) string {
	var rateLimitErr *release.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return fmt.Sprintf("%s\n\nTo increase your rate limit, set a GitHub token:\n  export GITHUB_TOKEN=ghp_...\nThen retry: shipm upgrade",
			rateLimitErr.Error())
	}

	if errors.Is(err, release.ErrAssetNotFound) {
		return fmt.Sprintf("%s\n\nNo prebuilt binary exists for this platform.\nBuild from source instead:\n  go install github.com/shipm/shipm@latest",
			err.Error())
	}

	if errors.Is(err, os.ErrPermission) {
		return "insufficient permissions to replace the binary\n\nTry running with elevated privileges:\n  sudo shipm upgrade"
	}

	return fmt.Sprintf("%s\n\nCheck your network connection and try again.\nIf behind a firewall, set GITHUB_TOKEN for authenticated access.", err.Error())
}
