// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/shipm/shipm/internal/issue"
	"github.com/shipm/shipm/pkg/types"

	"github.com/spf13/cobra"
)

// newUpdateCommand creates the `shipm update` command, which force-fetches
// the remote package index and rewrites the cached copy.
func newUpdateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Refresh the package catalog index",
		Long: `Refresh the package catalog from the remote index.

Unlike the automatic refresh before catalog-driven commands, a failure
here is an error: refreshing is the whole point of this command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			ctx := cmd.Context()
			cfg, err := app.loadConfig(ctx)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: types.ExitUserError, Err: err}
			}

			idx, err := app.newIndex(cfg)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: classifyExitCode(err), Err: err}
			}

			cat, err := idx.Refresh(ctx)
			if err != nil {
				rendered, _ := issue.Get(issue.IndexUnavailableId).Render("dark")
				fmt.Fprint(cmd.ErrOrStderr(), rendered)
				fmt.Fprintln(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: classifyExitCode(err), Err: err}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cached at %s\n", idx.CachedPath())
			fmt.Fprintln(out, SuccessStyle.Render(fmt.Sprintf("Catalog lists %d packages.", cat.Len())))
			return nil
		},
	}
}
