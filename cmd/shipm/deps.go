// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/shipm/shipm/pkg/types"

	"github.com/spf13/cobra"
)

// newDepsCommand creates the `shipm deps` command, which installs only the
// native dependencies of a package without touching the package itself.
func newDepsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deps <package>",
		Short: "Install only a package's native dependencies",
		Long: `Install only the native dependencies of a package.

Dependencies are resolved for the detected distro family and installed
through its package manager (apt, pacman, or dnf), elevated with the
configured elevation command. On Windows and unrecognized distros the
dependencies are listed for manual installation instead.`,
		Example: `  # Install fastfetch's native dependencies, nothing else
  shipm deps fastfetch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

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

			if err := env.orchestrator.Deps(ctx, args[0]); err != nil {
				printIssueHint(cmd.ErrOrStderr(), err)
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", ErrorStyle.Render("Error:"), formatPipelineError(err, env.catalog))
				return &ExitError{Code: classifyExitCode(err), Err: err}
			}

			return nil
		},
	}
}
