// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shipm/shipm/internal/config"
	"github.com/shipm/shipm/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// logger emits diagnostic lines on stderr. Debug lines stay hidden
	// until --verbose (or ui.verbose in the config) raises the level.
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "shipm",
	})

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "shipm",
		Short: "A cross-platform meta-installer for prebuilt binaries",
		Long: TitleStyle.Render("shipm") + SubtitleStyle.Render(" - A cross-platform meta-installer for prebuilt binaries") + `

shipm installs tools straight from their latest GitHub release. It
detects your OS and distro family, installs the native dependencies a
package needs, picks the release asset that matches your platform, and
installs it with the right mechanism for its file type (.deb packages,
tarballs, zip archives, plain binaries).

Downloads are cached under ~/.shipm/cache, so reinstalling a package
never refetches an asset it already has.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'shipm list' to see the package catalog
  2. Install a package with: shipm install <name>

` + SubtitleStyle.Render("Examples:") + `
  shipm list                List available packages
  shipm install fastfetch   Install the 'fastfetch' package
  shipm deps fastfetch      Install only its native dependencies
  shipm update              Refresh the package catalog
  shipm upgrade --check     Check for a newer shipm release`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <config dir>/shipm/config.cue)")

	// Add subcommands
	app := NewApp(Dependencies{})
	rootCmd.AddCommand(newInstallCommand(app))
	rootCmd.AddCommand(newDepsCommand(app))
	rootCmd.AddCommand(newListCommand(app))
	rootCmd.AddCommand(newInfoCommand(app))
	rootCmd.AddCommand(newUpdateCommand(app))
	rootCmd.AddCommand(newUpgradeCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newCompletionCommand())
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig applies config-driven verbosity before any command runs.
// Load failures are swallowed here: command handlers load the config again
// and fail fast with the full diagnostic, so warning now would print the
// same error twice.
func initRootConfig() {
	if !verbose {
		cfg, err := config.NewProvider().Load(context.Background(), config.LoadOptions{ConfigFilePath: cfgFile})
		if err == nil {
			verbose = cfg.UI.Verbose
		}
	}

	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
