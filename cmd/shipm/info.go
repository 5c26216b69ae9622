// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/shipm/shipm/internal/config"
	"github.com/shipm/shipm/internal/platform"
	"github.com/shipm/shipm/pkg/types"

	"github.com/spf13/cobra"
)

// infoParams bundles the inputs of runInfo so tests can drive it with a
// stubbed host probe and a fixed profile.
type infoParams struct {
	stdout io.Writer
	cfg    *config.Config
	detect func() platform.Profile
	host   func(ctx context.Context) (platform.HostInfo, error)
}

// newInfoCommand creates the `shipm info` command, which reports the
// detected platform, host details, and the active directories.
func newInfoCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show platform and environment information",
		Long: `Show the detected platform, host details, and active directories.

The OS and distro lines show what the install pipeline will act on. The
host lines are descriptive only, gathered from the running system.`,
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

			p := infoParams{
				stdout: cmd.OutOrStdout(),
				cfg:    cfg,
				detect: platform.Detect,
				host:   platform.Host,
			}
			if err := runInfo(ctx, p); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: classifyExitCode(err), Err: err}
			}

			return nil
		},
	}
}

// runInfo writes the info report. The host probe is decoration: its
// failure prints a warning line but never fails the report.
func runInfo(ctx context.Context, p infoParams) error {
	fmt.Fprintln(p.stdout, TitleStyle.Render("shipm")+" "+getVersionString())
	fmt.Fprintln(p.stdout)

	profile := p.detect()
	fmt.Fprintf(p.stdout, "%s: %s\n", CmdStyle.Render("System"), profile.OS)
	fmt.Fprintf(p.stdout, "%s: %s\n", CmdStyle.Render("Distro"), profile.Distro)

	if info, hostErr := p.host(ctx); hostErr == nil {
		fmt.Fprintf(p.stdout, "%s: %s %s (%s family)\n", CmdStyle.Render("Host"), info.Platform, info.Version, info.Family)
		fmt.Fprintf(p.stdout, "%s: %s\n", CmdStyle.Render("Arch"), info.Arch)
		fmt.Fprintf(p.stdout, "%s: %s\n", CmdStyle.Render("Hostname"), info.Hostname)
	} else {
		fmt.Fprintf(p.stdout, "%s host details unavailable: %v\n", WarningStyle.Render("Warning:"), hostErr)
	}

	fmt.Fprintln(p.stdout)

	dataDir, err := p.cfg.ResolvedDataDir()
	if err != nil {
		return err
	}
	cacheDir, err := p.cfg.ResolvedCacheDir()
	if err != nil {
		return err
	}

	fmt.Fprintf(p.stdout, "%s: %s\n", CmdStyle.Render("Data dir"), dataDir)
	fmt.Fprintf(p.stdout, "%s: %s\n", CmdStyle.Render("Cache dir"), cacheDir)
	fmt.Fprintf(p.stdout, "%s: %s\n", CmdStyle.Render("Index URL"), p.cfg.ResolvedIndexURL())
	fmt.Fprintf(p.stdout, "%s: %s\n", CmdStyle.Render("API URL"), p.cfg.ResolvedAPIBaseURL())

	return nil
}
