// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mvdan.cc/sh/v3/shell"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultElevate is the privilege elevation command used when none is configured.
	DefaultElevate = "sudo"
	// DefaultAPIBaseURL is the GitHub API endpoint used when none is configured.
	DefaultAPIBaseURL = "https://api.github.com"
	// DefaultIndexURL is the published package index used when none is configured.
	DefaultIndexURL = "https://raw.githubusercontent.com/shipm/shipm/main/packages.json"
	// DefaultDownloadTimeout bounds a single asset download. Zero disables the limit.
	DefaultDownloadTimeout = 5 * time.Minute
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidDataDirPath is returned when a DataDirPath value is whitespace-only.
	ErrInvalidDataDirPath = errors.New("invalid data dir path")
	// ErrInvalidCacheDirPath is returned when a CacheDirPath value is whitespace-only.
	ErrInvalidCacheDirPath = errors.New("invalid cache dir path")
	// ErrInvalidIndexURL is the sentinel error wrapped by InvalidIndexURLError.
	ErrInvalidIndexURL = errors.New("invalid index URL")
	// ErrInvalidAPIBaseURL is the sentinel error wrapped by InvalidAPIBaseURLError.
	ErrInvalidAPIBaseURL = errors.New("invalid API base URL")
	// ErrInvalidElevateCommand is the sentinel error wrapped by InvalidElevateCommandError.
	ErrInvalidElevateCommand = errors.New("invalid elevate command")
	// ErrInvalidDownloadTimeout is returned when a download timeout is negative.
	ErrInvalidDownloadTimeout = errors.New("invalid download timeout")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// DataDirPath represents a filesystem path to the shipm data directory.
	// The zero value ("") is valid and means "use ~/.shipm".
	// Non-zero values must not be whitespace-only.
	DataDirPath string

	// InvalidDataDirPathError is returned when a DataDirPath value is
	// non-empty but whitespace-only.
	InvalidDataDirPathError struct {
		Value DataDirPath
	}

	// CacheDirPath represents a filesystem path to the download cache directory.
	// The zero value ("") is valid and means "use <data dir>/cache".
	// Non-zero values must not be whitespace-only.
	CacheDirPath string

	// InvalidCacheDirPathError is returned when a CacheDirPath value is
	// non-empty but whitespace-only.
	InvalidCacheDirPathError struct {
		Value CacheDirPath
	}

	// IndexURL represents the URL of the remote package index document.
	// The zero value ("") is valid and means "use DefaultIndexURL".
	// Non-zero values must start with http:// or https://.
	IndexURL string

	// InvalidIndexURLError is returned when an IndexURL value is
	// non-empty but not an HTTP(S) URL.
	InvalidIndexURLError struct {
		Value IndexURL
	}

	// APIBaseURL represents the base URL of the release hosting API.
	// The zero value ("") is valid and means "use DefaultAPIBaseURL".
	// Non-zero values must start with http:// or https://.
	APIBaseURL string

	// InvalidAPIBaseURLError is returned when an APIBaseURL value is
	// non-empty but not an HTTP(S) URL.
	InvalidAPIBaseURLError struct {
		Value APIBaseURL
	}

	// ElevateCommand represents the privilege elevation command prefix
	// prepended to package-manager invocations (e.g., "sudo" or "sudo -A").
	// The zero value ("") is valid and means "use DefaultElevate".
	// Non-zero values must split into at least one argv word.
	ElevateCommand string

	// InvalidElevateCommandError is returned when an ElevateCommand value
	// cannot be split into argv words.
	InvalidElevateCommandError struct {
		Value ElevateCommand
		Cause error
	}

	// InvalidDownloadTimeoutError is returned when a download timeout is negative.
	// It wraps ErrInvalidDownloadTimeout for errors.Is() compatibility.
	InvalidDownloadTimeoutError struct {
		Value time.Duration
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// DataDir overrides the shipm data directory (default ~/.shipm).
		DataDir DataDirPath `json:"data_dir" mapstructure:"data_dir"`
		// CacheDir overrides the download cache directory (default <data dir>/cache).
		CacheDir CacheDirPath `json:"cache_dir" mapstructure:"cache_dir"`
		// IndexURL overrides the remote package index location.
		IndexURL IndexURL `json:"index_url" mapstructure:"index_url"`
		// APIBaseURL overrides the release hosting API endpoint.
		APIBaseURL APIBaseURL `json:"api_base_url" mapstructure:"api_base_url"`
		// GitHubToken authenticates API requests. Falls back to the
		// GITHUB_TOKEN environment variable when empty.
		GitHubToken string `json:"github_token" mapstructure:"github_token"`
		// Elevate is the privilege elevation command prefix for package-manager calls.
		Elevate ElevateCommand `json:"elevate" mapstructure:"elevate"`
		// DownloadTimeout bounds a single asset download. Zero disables the limit.
		DownloadTimeout time.Duration `json:"download_timeout" mapstructure:"download_timeout"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to each typed field's IsValid() and checks that the
// download timeout is not negative.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.DataDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.CacheDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.IndexURL.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.APIBaseURL.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Elevate.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.DownloadTimeout < 0 {
		errs = append(errs, &InvalidDownloadTimeoutError{Value: c.DownloadTimeout})
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the DataDirPath.
func (p DataDirPath) String() string { return string(p) }

// IsValid returns whether the DataDirPath is valid.
// The zero value ("") is valid (means "use ~/.shipm").
// Non-zero values must not be whitespace-only.
func (p DataDirPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidDataDirPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidDataDirPathError.
func (e *InvalidDataDirPathError) Error() string {
	return fmt.Sprintf("invalid data dir path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidDataDirPath for errors.Is() compatibility.
func (e *InvalidDataDirPathError) Unwrap() error { return ErrInvalidDataDirPath }

// String returns the string representation of the CacheDirPath.
func (p CacheDirPath) String() string { return string(p) }

// IsValid returns whether the CacheDirPath is valid.
// The zero value ("") is valid (means "use <data dir>/cache").
// Non-zero values must not be whitespace-only.
func (p CacheDirPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidCacheDirPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidCacheDirPathError.
func (e *InvalidCacheDirPathError) Error() string {
	return fmt.Sprintf("invalid cache dir path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidCacheDirPath for errors.Is() compatibility.
func (e *InvalidCacheDirPathError) Unwrap() error { return ErrInvalidCacheDirPath }

// String returns the string representation of the IndexURL.
func (u IndexURL) String() string { return string(u) }

// IsValid returns whether the IndexURL is valid.
// The zero value ("") is valid (means "use DefaultIndexURL").
// Non-zero values must start with http:// or https://.
func (u IndexURL) IsValid() (bool, []error) {
	if u == "" {
		return true, nil
	}
	s := string(u)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false, []error{&InvalidIndexURLError{Value: u}}
	}
	return true, nil
}

// Error implements the error interface for InvalidIndexURLError.
func (e *InvalidIndexURLError) Error() string {
	return fmt.Sprintf("invalid index URL %q: must start with http:// or https://", e.Value)
}

// Unwrap returns ErrInvalidIndexURL for errors.Is() compatibility.
func (e *InvalidIndexURLError) Unwrap() error { return ErrInvalidIndexURL }

// String returns the string representation of the APIBaseURL.
func (u APIBaseURL) String() string { return string(u) }

// IsValid returns whether the APIBaseURL is valid.
// The zero value ("") is valid (means "use DefaultAPIBaseURL").
// Non-zero values must start with http:// or https://.
func (u APIBaseURL) IsValid() (bool, []error) {
	if u == "" {
		return true, nil
	}
	s := string(u)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false, []error{&InvalidAPIBaseURLError{Value: u}}
	}
	return true, nil
}

// Error implements the error interface for InvalidAPIBaseURLError.
func (e *InvalidAPIBaseURLError) Error() string {
	return fmt.Sprintf("invalid API base URL %q: must start with http:// or https://", e.Value)
}

// Unwrap returns ErrInvalidAPIBaseURL for errors.Is() compatibility.
func (e *InvalidAPIBaseURLError) Unwrap() error { return ErrInvalidAPIBaseURL }

// String returns the string representation of the ElevateCommand.
func (e ElevateCommand) String() string { return string(e) }

// Argv splits the elevation command into argv words using shell field
// splitting. The zero value splits as DefaultElevate. Shell operators,
// substitutions, and unset variables are rejected.
func (e ElevateCommand) Argv() ([]string, error) {
	s := strings.TrimSpace(string(e))
	if s == "" {
		s = DefaultElevate
	}
	fields, err := shell.Fields(s, nil)
	if err != nil {
		return nil, &InvalidElevateCommandError{Value: e, Cause: err}
	}
	if len(fields) == 0 {
		return nil, &InvalidElevateCommandError{Value: e}
	}
	return fields, nil
}

// IsValid returns whether the ElevateCommand is valid.
// The zero value ("") is valid (means "use DefaultElevate").
// Non-zero values must split into at least one argv word.
func (e ElevateCommand) IsValid() (bool, []error) {
	if e == "" {
		return true, nil
	}
	if _, err := e.Argv(); err != nil {
		return false, []error{err}
	}
	return true, nil
}

// Error implements the error interface for InvalidElevateCommandError.
func (e *InvalidElevateCommandError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid elevate command %q: %v", e.Value, e.Cause)
	}
	return fmt.Sprintf("invalid elevate command %q: must contain at least one word", e.Value)
}

// Unwrap returns ErrInvalidElevateCommand for errors.Is() compatibility.
func (e *InvalidElevateCommandError) Unwrap() error { return ErrInvalidElevateCommand }

// Error implements the error interface for InvalidDownloadTimeoutError.
func (e *InvalidDownloadTimeoutError) Error() string {
	return fmt.Sprintf("invalid download timeout %v: must not be negative", e.Value)
}

// Unwrap returns ErrInvalidDownloadTimeout for errors.Is() compatibility.
func (e *InvalidDownloadTimeoutError) Unwrap() error { return ErrInvalidDownloadTimeout }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:         "", // Will use ~/.shipm if empty
		CacheDir:        "", // Will use <data dir>/cache if empty
		IndexURL:        DefaultIndexURL,
		APIBaseURL:      DefaultAPIBaseURL,
		GitHubToken:     "",
		Elevate:         DefaultElevate,
		DownloadTimeout: DefaultDownloadTimeout,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
