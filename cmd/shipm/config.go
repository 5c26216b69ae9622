// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shipm/shipm/internal/config"
	"github.com/shipm/shipm/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `shipm config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage shipm configuration",
		Long: `Manage shipm configuration.

Configuration is stored in:
  - Linux: ~/.config/shipm/config.cue
  - macOS: ~/Library/Application Support/shipm/config.cue
  - Windows: %APPDATA%\shipm\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{})
			if err != nil {
				return err
			}

			cueContent := config.GenerateCUE(cfg)
			fmt.Print(cueContent)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		fmt.Fprint(os.Stderr, rendered)
		return err
	}

	// Style definitions using shared color palette
	headerStyle := TitleStyle
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(headerStyle.Render("Current Configuration"))
	fmt.Println()

	// Derive the config file location from the standard config directory;
	// the provider does not report which file it resolved.
	cfgDir, dirErr := config.ConfigDir()
	if dirErr == nil {
		cfgPath := cfgDir + "/config.cue"
		if fileExistsCheck(cfgPath) {
			fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), cfgPath)
		} else {
			fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	// Show resolved values
	dataDir, err := cfg.ResolvedDataDir()
	if err != nil {
		return err
	}
	cacheDir, err := cfg.ResolvedCacheDir()
	if err != nil {
		return err
	}

	elevate := cfg.Elevate.String()
	if elevate == "" {
		elevate = config.DefaultElevate
	}

	// The token is a credential; only report whether one is configured.
	token := "(not set)"
	if cfg.GitHubToken != "" {
		token = "(set)"
	}

	fmt.Printf("%s: %s\n", keyStyle.Render("data_dir"), valueStyle.Render(dataDir))
	fmt.Printf("%s: %s\n", keyStyle.Render("cache_dir"), valueStyle.Render(cacheDir))
	fmt.Printf("%s: %s\n", keyStyle.Render("index_url"), valueStyle.Render(cfg.ResolvedIndexURL()))
	fmt.Printf("%s: %s\n", keyStyle.Render("api_base_url"), valueStyle.Render(cfg.ResolvedAPIBaseURL()))
	fmt.Printf("%s: %s\n", keyStyle.Render("github_token"), SubtitleStyle.Render(token))
	fmt.Printf("%s: %s\n", keyStyle.Render("elevate"), valueStyle.Render(elevate))
	fmt.Printf("%s: %s\n", keyStyle.Render("download_timeout"), valueStyle.Render(cfg.DownloadTimeout.String()))

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("ui"))
	fmt.Printf("  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Printf("  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func initConfig() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err = config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Printf("%s Created default configuration at %s/config.cue\n", SuccessStyle.Render("✓"), cfgDir)

	// Also create the data directory so the first install does not have to
	if dataDir, dirErr := config.DefaultDataDir(); dirErr == nil {
		if mkdirErr := os.MkdirAll(dataDir, 0o755); mkdirErr != nil {
			logger.Warn("failed to create data directory", "path", dataDir, "error", mkdirErr)
		} else {
			fmt.Printf("%s Created data directory at %s\n", SuccessStyle.Render("✓"), dataDir)
		}
	} else {
		logger.Warn("failed to determine data directory", "error", dirErr)
	}

	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Printf("Config directory: %s\n", cfgDir)
	fmt.Printf("Config file: %s/config.cue\n", cfgDir)

	return nil
}

func setConfigValue(ctx context.Context, app *App, key, value string) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		return err
	}

	switch key {
	case "data_dir":
		p := config.DataDirPath(value)
		if ok, errs := p.IsValid(); !ok {
			return errs[0]
		}
		cfg.DataDir = p

	case "cache_dir":
		p := config.CacheDirPath(value)
		if ok, errs := p.IsValid(); !ok {
			return errs[0]
		}
		cfg.CacheDir = p

	case "index_url":
		u := config.IndexURL(value)
		if ok, errs := u.IsValid(); !ok {
			return errs[0]
		}
		cfg.IndexURL = u

	case "api_base_url":
		u := config.APIBaseURL(value)
		if ok, errs := u.IsValid(); !ok {
			return errs[0]
		}
		cfg.APIBaseURL = u

	case "github_token":
		cfg.GitHubToken = value

	case "elevate":
		e := config.ElevateCommand(value)
		if ok, errs := e.IsValid(); !ok {
			return errs[0]
		}
		cfg.Elevate = e

	case "download_timeout":
		d, parseErr := time.ParseDuration(value)
		if parseErr != nil {
			return fmt.Errorf("invalid download_timeout: %w", parseErr)
		}
		if d < 0 {
			return &config.InvalidDownloadTimeoutError{Value: d}
		}
		cfg.DownloadTimeout = d

	case "ui.color_scheme":
		cs := config.ColorScheme(value)
		if ok, errs := cs.IsValid(); !ok {
			return errs[0]
		}
		cfg.UI.ColorScheme = cs

	case "ui.verbose":
		cfg.UI.Verbose = value == "true" || value == "1"

	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: data_dir, cache_dir, index_url, api_base_url, github_token, elevate, download_timeout, ui.color_scheme, ui.verbose", key)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
