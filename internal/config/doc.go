// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/shipm/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/shipm/config.cue on macOS, %APPDATA%\shipm\config.cue
// on Windows). The package provides type-safe configuration access and covers the data
// and cache directories, package index location, release API endpoint, authentication
// token, privilege elevation command, download timeout, and UI settings.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
