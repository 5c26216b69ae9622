// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shipm/shipm/internal/catalog"
	"github.com/shipm/shipm/internal/issue"
	"github.com/shipm/shipm/internal/pipeline"
	"github.com/shipm/shipm/internal/release"
	"github.com/shipm/shipm/pkg/types"

	"github.com/spf13/cobra"
)

// newInstallCommand creates the `shipm install` command, which runs the
// full pipeline for one package: native dependencies, release resolution,
// cached download, and artifact installation.
func newInstallCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <package>",
		Short: "Install a package from its latest release",
		Long: `Install a package from its latest GitHub release.

The install runs the full pipeline: native dependencies for the detected
distro family, release resolution, cached asset download, and artifact
installation dispatched on the asset's file type.

Downloaded assets are cached under the shipm cache directory keyed by
file name; a cached asset is reused without any network traffic.`,
		Example: `  # Install the asset matching the detected distro
  shipm install fastfetch

  # Redownload even when the asset is already cached
  shipm install fastfetch --force

  # Download and install every asset of the release
  shipm install fastfetch --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			force, _ := cmd.Flags().GetBool("force")
			all, _ := cmd.Flags().GetBool("all")

			ctx := cmd.Context()
			cfg, err := app.loadConfig(ctx)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: types.ExitUserError, Err: err}
			}

			env, err := app.buildPipeline(ctx, cfg)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: classifyExitCode(err), Err: err}
			}

			opts := pipeline.InstallOptions{Force: force, AllAssets: all}
			if err := env.orchestrator.Install(ctx, args[0], opts); err != nil {
				printIssueHint(cmd.ErrOrStderr(), err)
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", ErrorStyle.Render("Error:"), formatPipelineError(err, env.catalog))
				return &ExitError{Code: classifyExitCode(err), Err: err}
			}

			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Redownload the asset even when cached")
	cmd.Flags().Bool("all", false, "Download and install every asset of the release")

	return cmd
}

// formatPipelineError produces a user-facing error message with remediation
// guidance for install and deps failures.
func formatPipelineError(err error, c *catalog.Catalog) string {
	var unknownErr *catalog.UnknownPackageError
	if errors.As(err, &unknownErr) {
		return fmt.Sprintf("unknown package %q\n\nAvailable packages: %s",
			unknownErr.Name, strings.Join(c.Names(), ", "))
	}

	var rateErr *release.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Sprintf("%s\n\nTo increase your rate limit, set a GitHub token:\n  export GITHUB_TOKEN=ghp_...\nThen retry.",
			rateErr.Error())
	}

	if errors.Is(err, release.ErrAssetNotFound) {
		return fmt.Sprintf("%s\n\nThe release may not ship a build for your platform.\nPass --all to download every asset instead.",
			err.Error())
	}

	if errors.Is(err, release.ErrNoRelease) {
		return fmt.Sprintf("%s\n\nThe repository has not published a release yet.", err.Error())
	}

	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}

	return fmt.Sprintf("%s\n\nCheck your network connection and try again.", err.Error())
}
