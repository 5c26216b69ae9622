// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/shipm/shipm/internal/cache"
	"github.com/shipm/shipm/internal/catalog"
	"github.com/shipm/shipm/internal/config"
	"github.com/shipm/shipm/internal/deps"
	"github.com/shipm/shipm/internal/install"
	"github.com/shipm/shipm/internal/pipeline"
	"github.com/shipm/shipm/internal/release"
	"github.com/shipm/shipm/internal/run"
)

type (
	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources or mock
	// implementations.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra command handler receives an App
	// reference and assembles its collaborators through it.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp. Tests supply
	// replacements to capture output or stub config loading.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// pipelineEnv bundles the collaborators a catalog-driven command needs:
	// the assembled orchestrator plus the resolved catalog for listing and
	// error guidance.
	pipelineEnv struct {
		orchestrator *pipeline.Orchestrator
		catalog      *catalog.Catalog
		source       catalog.Source
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(d Dependencies) *App {
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Config == nil {
		d.Config = config.NewProvider()
	}

	return &App{
		Config: d.Config,
		stdout: d.Stdout,
		stderr: d.Stderr,
	}
}

// loadConfig loads the configuration, honoring the --config flag. A
// malformed config file is a hard failure; commands surface it and exit.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	return a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
}

// newIndex creates the catalog index loader rooted at the resolved data
// directory, creating the directory on first use.
func (a *App) newIndex(cfg *config.Config) (*catalog.Index, error) {
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, err
	}
	return catalog.NewIndex(cfg.ResolvedIndexURL(), dataDir, catalog.WithOutput(a.stdout)), nil
}

// newReleaseClient creates the hosting API client. The download timeout
// from the config bounds every release and asset request; zero disables
// the limit.
func (a *App) newReleaseClient(cfg *config.Config) *release.Client {
	opts := []release.ClientOption{
		release.WithBaseURL(cfg.ResolvedAPIBaseURL()),
		release.WithUserAgent("shipm/" + Version),
		release.WithHTTPClient(&http.Client{Timeout: cfg.DownloadTimeout}),
	}
	if cfg.GitHubToken != "" {
		opts = append(opts, release.WithToken(cfg.GitHubToken))
	}
	return release.NewClient(opts...)
}

// buildPipeline resolves the catalog and assembles the install pipeline
// from the configuration. The same environment serves install and deps.
func (a *App) buildPipeline(ctx context.Context, cfg *config.Config) (*pipelineEnv, error) {
	idx, err := a.newIndex(cfg)
	if err != nil {
		return nil, err
	}

	cat, source, err := idx.Load(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded package catalog", "source", source, "packages", cat.Len())

	cacheDir, err := cfg.ResolvedCacheDir()
	if err != nil {
		return nil, err
	}

	elevate, err := cfg.Elevate.Argv()
	if err != nil {
		return nil, err
	}

	client := a.newReleaseClient(cfg)
	runner := run.NewExecRunner(run.WithStdout(a.stdout), run.WithStderr(a.stderr))

	orch := pipeline.New(pipeline.Components{
		Catalog:   cat,
		Deps:      deps.New(runner, deps.WithElevate(elevate), deps.WithOutput(a.stdout)),
		Resolver:  client,
		Cache:     cache.New(cacheDir, client, cache.WithOutput(a.stdout)),
		Installer: install.New(runner, install.WithElevate(elevate), install.WithOutput(a.stdout)),
	}, pipeline.WithOutput(a.stdout))

	return &pipelineEnv{orchestrator: orch, catalog: cat, source: source}, nil
}
