// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shipm/shipm/internal/catalog"
	"github.com/shipm/shipm/internal/config"
)

// stubConfigProvider returns a canned config and records the options of
// the last Load call.
type stubConfigProvider struct {
	cfg      *config.Config
	err      error
	lastOpts config.LoadOptions
}

func (p *stubConfigProvider) Load(_ context.Context, opts config.LoadOptions) (*config.Config, error) {
	p.lastOpts = opts
	if p.err != nil {
		return nil, p.err
	}
	return p.cfg, nil
}

func TestNewApp_Defaults(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{})

	if app.Config == nil {
		t.Error("expected a default config provider, got nil")
	}
	if app.stdout != os.Stdout {
		t.Error("expected stdout to default to os.Stdout")
	}
	if app.stderr != os.Stderr {
		t.Error("expected stderr to default to os.Stderr")
	}
}

func TestNewApp_CustomDependencies(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	provider := &stubConfigProvider{cfg: &config.Config{}}

	app := NewApp(Dependencies{Config: provider, Stdout: &stdout, Stderr: &stderr})

	if app.Config != provider {
		t.Error("expected the injected config provider to be used")
	}
	if app.stdout != &stdout {
		t.Error("expected the injected stdout writer to be used")
	}
	if app.stderr != &stderr {
		t.Error("expected the injected stderr writer to be used")
	}
}

func TestApp_LoadConfig_HonorsConfigFlag(t *testing.T) {
	// Not parallel: mutates the package-level cfgFile flag variable.

	origCfgFile := cfgFile
	t.Cleanup(func() { cfgFile = origCfgFile })
	cfgFile = "/tmp/custom-config.cue"

	provider := &stubConfigProvider{cfg: &config.Config{}}
	app := NewApp(Dependencies{Config: provider})

	if _, err := app.loadConfig(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.lastOpts.ConfigFilePath != "/tmp/custom-config.cue" {
		t.Errorf("ConfigFilePath = %q, want %q", provider.lastOpts.ConfigFilePath, "/tmp/custom-config.cue")
	}
}

func TestApp_BuildPipeline_RemoteIndex(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"fastfetch": {"repo": "fastfetch-cli/fastfetch", "deps": {"debian": ["libvulkan1"]}, "assets": {"debian": "linux-amd64.deb"}},
			"lazygit": {"repo": "jesseduffield/lazygit"}
		}`))
	}))
	t.Cleanup(srv.Close)

	dataDir := t.TempDir()
	cfg := &config.Config{
		DataDir:  config.DataDirPath(dataDir),
		IndexURL: config.IndexURL(srv.URL),
	}

	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Config: &stubConfigProvider{cfg: cfg},
		Stdout: &stdout,
		Stderr: &stderr,
	})

	env, err := app.buildPipeline(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.source != catalog.SourceRemote {
		t.Errorf("source = %v, want %v", env.source, catalog.SourceRemote)
	}
	if env.orchestrator == nil {
		t.Fatal("expected an assembled orchestrator, got nil")
	}
	if got := env.catalog.Len(); got != 2 {
		t.Errorf("catalog.Len() = %d, want 2", got)
	}
	if _, err := env.catalog.Lookup("fastfetch"); err != nil {
		t.Errorf("Lookup(fastfetch) failed: %v", err)
	}

	out := stdout.String()
	for _, token := range []string{"Fetching package index...", "Package index updated."} {
		if !strings.Contains(out, token) {
			t.Errorf("stdout %q does not contain %q", out, token)
		}
	}

	// A successful remote fetch rewrites the cached copy.
	if _, err := os.Stat(filepath.Join(dataDir, catalog.CachedIndexFileName)); err != nil {
		t.Errorf("cached index copy missing: %v", err)
	}
}

func TestApp_BuildPipeline_ServerErrorFallsBackToEmbedded(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	// Fresh data dir: no cached copy exists, so the embedded index is the
	// last tier standing.
	cfg := &config.Config{
		DataDir:  config.DataDirPath(t.TempDir()),
		IndexURL: config.IndexURL(srv.URL),
	}

	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Config: &stubConfigProvider{cfg: cfg},
		Stdout: &stdout,
		Stderr: &stderr,
	})

	env, err := app.buildPipeline(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.source != catalog.SourceEmbedded {
		t.Errorf("source = %v, want %v", env.source, catalog.SourceEmbedded)
	}
	if env.catalog.Len() == 0 {
		t.Error("embedded catalog is empty")
	}

	if !strings.Contains(stdout.String(), "using cached file") {
		t.Errorf("stdout %q does not report the index fallback", stdout.String())
	}
}
