// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	UnknownPackageId Id = iota + 1
	IndexUnavailableId
	NetworkFailureId
	RateLimitExceededId
	NoMatchingAssetId
	UnsupportedPlatformId
	UnknownFileTypeId
	PermissionDeniedId
	ConfigLoadFailedId
	DependencyInstallFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	unknownPackageIssue = &Issue{
		id: UnknownPackageId,
		mdMsg: `
# Unknown package!

The package you asked for is not in the catalog.

## Things you can try:
- List all known packages:
~~~
$ shipm list
~~~

- Check for typos in the package name
- Refresh the package index:
~~~
$ shipm update
~~~

- Add the package to a local catalog overlay (packages.toml) if you
  maintain one`,
	}

	indexUnavailableIssue = &Issue{
		id: IndexUnavailableId,
		mdMsg: `
# Package index unavailable!

We could not fetch the remote package index. Catalog-driven commands
fall back to the last cached copy (or the built-in catalog); an
explicit update has nothing to fall back to and fails instead.

## Things you can try:
- Check your network connection and proxy settings
- Verify the index URL in your config:
~~~cue
index_url: "https://example.com/packages.json"
~~~

- Keep working with the cached catalog; most commands still work
- Retry later:
~~~
$ shipm update
~~~`,
	}

	networkFailureIssue = &Issue{
		id: NetworkFailureId,
		mdMsg: `
# Network failure!

A request to the GitHub API (or a download) failed before completing.

## Common causes:
- No network connectivity
- Proxy or firewall blocking api.github.com
- Transient server-side errors (HTTP 5xx)

## Things you can try:
- Check your connection and retry the command
- Run with verbose mode for the full request trace:
~~~
$ shipm --verbose install <package>
~~~

- If you are behind a proxy, make sure HTTPS_PROXY is set`,
	}

	rateLimitExceededIssue = &Issue{
		id: RateLimitExceededId,
		mdMsg: `
# GitHub rate limit exceeded!

Unauthenticated requests to the GitHub API are limited to 60 per hour.

## Things you can try:
- Set a personal access token to raise the limit to 5000 per hour:
~~~
$ export GITHUB_TOKEN=ghp_yourtoken
~~~

- Or put it in your config file:
~~~cue
github_token: "ghp_yourtoken"
~~~

- Wait for the limit to reset (at most one hour) and retry
- Rely on cached downloads in the meantime; cached artifacts install
  without touching the network`,
	}

	noMatchingAssetIssue = &Issue{
		id: NoMatchingAssetId,
		mdMsg: `
# No matching asset found!

The latest release exists, but none of its assets matched the filename
pattern for your platform.

## Common causes:
- The project renamed its release artifacts
- The release simply does not ship a build for your OS or distro
- The catalog entry's pattern is out of date

## Things you can try:
- Inspect the release assets:
~~~
$ shipm info <package>
~~~

- Download every asset and pick one manually:
~~~
$ shipm install <package> --all
~~~

- Update the asset pattern in your catalog overlay (packages.toml)`,
	}

	unsupportedPlatformIssue = &Issue{
		id: UnsupportedPlatformId,
		mdMsg: `
# Unsupported platform!

The downloaded artifact cannot be installed on this operating system or
distro. The file stays in the cache so nothing is lost.

## Examples:
- A .deb package on a non-Debian system
- An .rpm package on Arch
- An .msi installer on Linux

## Things you can try:
- Run shipm on a matching distro
- Extract archives manually from the cache directory
- Check whether the project ships an archive build (.tar.gz, .zip)
  that works everywhere`,
	}

	unknownFileTypeIssue = &Issue{
		id: UnknownFileTypeId,
		mdMsg: `
# Unknown file type!

The downloaded file has no recognized suffix, so shipm does not know
how to install it. The file stays in the cache.

## Recognized suffixes:
- Packages: .deb, .rpm
- Archives: .zip, .tar.gz, .tgz, .tar.xz, .tar

## Things you can try:
- Install the file manually from the cache directory
- If it is a bare binary, move it onto your PATH and mark it
  executable:
~~~
$ chmod +x <file> && mv <file> ~/.local/bin/
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

Installing native packages needs root privileges.

## Things you can try:
- Configure privilege elevation in your config file:
~~~cue
elevate: "sudo -A"
~~~

- Or run the failing package manager command yourself:
~~~
$ sudo apt install ./<file>.deb
~~~

- For archive installs no elevation is needed; they extract into a
  directory you own`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the shipm configuration file.

## Configuration file locations:
- Linux: ~/.config/shipm/config.cue
- Windows: %APPDATA%\shipm\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ shipm config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/shipm/config.cue
~~~

## Example configuration:
~~~cue
cache_dir: "/home/user/.cache/shipm"
index_url: "https://example.com/packages.json"
elevate: "sudo -A"
download_timeout: "5m"
~~~`,
	}

	dependencyInstallFailedIssue = &Issue{
		id: DependencyInstallFailedId,
		mdMsg: `
# Dependency install failed!

The native package manager returned an error while installing
dependencies. shipm continues with the download anyway, but the
installed tool may not work until the dependencies are present.

## Things you can try:
- Install the dependencies manually:
  - Debian/Ubuntu: ` + "`sudo apt install <deps>`" + `
  - Arch: ` + "`sudo pacman -S --needed <deps>`" + `
  - Fedora: ` + "`sudo dnf install <deps>`" + `

- Check that your package mirrors are reachable
- Run with verbose mode to see the package manager output:
~~~
$ shipm --verbose deps <package>
~~~`,
	}

	issues = map[Id]*Issue{
		unknownPackageIssue.Id():          unknownPackageIssue,
		indexUnavailableIssue.Id():        indexUnavailableIssue,
		networkFailureIssue.Id():          networkFailureIssue,
		rateLimitExceededIssue.Id():       rateLimitExceededIssue,
		noMatchingAssetIssue.Id():         noMatchingAssetIssue,
		unsupportedPlatformIssue.Id():     unsupportedPlatformIssue,
		unknownFileTypeIssue.Id():         unknownFileTypeIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		dependencyInstallFailedIssue.Id(): dependencyInstallFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
