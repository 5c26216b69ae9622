// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/shipm/shipm/internal/catalog"
	"github.com/shipm/shipm/pkg/types"

	"github.com/spf13/cobra"
)

// newListCommand creates the `shipm list` command, which prints every
// package the resolved catalog offers.
func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available packages",
		Long: `List every package the catalog offers.

The catalog is refreshed from the remote index first; when the index is
unreachable the cached copy (or the embedded default) is listed instead.`,
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

			cat, source, err := idx.Load(ctx)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: classifyExitCode(err), Err: err}
			}

			renderPackageList(cmd.OutOrStdout(), cat)
			if verbose {
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), VerboseStyle.Render(fmt.Sprintf("Catalog source: %s (%d packages)", source, cat.Len())))
			}
			return nil
		},
	}
}

// renderPackageList writes the catalog contents, one package per line with
// its source repository.
func renderPackageList(w io.Writer, c *catalog.Catalog) {
	fmt.Fprintln(w, TitleStyle.Render("Available packages"))
	fmt.Fprintln(w)

	names := c.Names()
	if len(names) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("  (the catalog is empty)"))
		return
	}

	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}

	for _, name := range names {
		pkg, err := c.Lookup(name)
		if err != nil {
			continue
		}
		padded := fmt.Sprintf("%-*s", width, name)
		fmt.Fprintf(w, "  %s  %s\n", CmdStyle.Render(padded), SubtitleStyle.Render(pkg.Repo))
	}
}
