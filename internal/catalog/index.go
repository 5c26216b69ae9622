// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/shipm/shipm/internal/issue"
)

const (
	// CachedIndexFileName is the cached index document under the data dir.
	CachedIndexFileName = "packages.json"

	// OverlayFileName is the optional user overlay under the data dir.
	OverlayFileName = "packages.toml"

	// indexFetchTimeout bounds the remote index fetch. The index refresh
	// runs before every catalog-driven command, so an offline host must
	// fall back to the cached copy quickly instead of hanging.
	indexFetchTimeout = 5 * time.Second

	// maxIndexBytes caps the remote index response size (10 MB).
	maxIndexBytes = 10 << 20
)

//go:embed packages.json
var embeddedIndex []byte

const (
	// SourceRemote means the freshly fetched index document is active.
	SourceRemote Source = "remote"

	// SourceCached means the last successfully fetched copy is active.
	SourceCached Source = "cached"

	// SourceEmbedded means the index shipped inside the binary is active.
	SourceEmbedded Source = "embedded"
)

type (
	// Source identifies which tier of the index resolution ended up
	// providing the catalog document.
	Source string

	// IndexOption configures an Index.
	IndexOption func(*Index)

	// Index loads the catalog document. Resolution order: remote fetch
	// (rewriting the cached copy on success), then the cached copy, then
	// the embedded default. Tier failures degrade with a printed notice;
	// only the user overlay can fail a load outright.
	Index struct {
		url     string
		dataDir string
		client  *http.Client
		out     io.Writer
	}
)

// String returns the lowercase source tier name.
func (s Source) String() string { return string(s) }

// WithHTTPClient sets a custom HTTP client, useful for tests. The default
// client carries the fixed 5 second index timeout.
func WithHTTPClient(c *http.Client) IndexOption {
	return func(x *Index) {
		x.client = c
	}
}

// WithOutput sets the writer receiving notice and warning lines.
func WithOutput(w io.Writer) IndexOption {
	return func(x *Index) {
		x.out = w
	}
}

// NewIndex creates an index loader for the given remote URL and data
// directory. The cached copy and the user overlay live in the data dir.
func NewIndex(url, dataDir string, opts ...IndexOption) *Index {
	x := &Index{
		url:     url,
		dataDir: dataDir,
		client:  &http.Client{Timeout: indexFetchTimeout},
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// CachedPath returns the location of the cached index copy.
func (x *Index) CachedPath() string {
	return filepath.Join(x.dataDir, CachedIndexFileName)
}

// OverlayPath returns the location of the optional user overlay.
func (x *Index) OverlayPath() string {
	return filepath.Join(x.dataDir, OverlayFileName)
}

// Load resolves the catalog for one command invocation. The remote tier
// is always attempted first so every run picks up index updates, exactly
// like the original always-refresh behavior; any tier failure prints a
// notice and the next tier takes over.
func (x *Index) Load(ctx context.Context) (*Catalog, Source, error) {
	doc, source, err := x.loadDocument(ctx)
	if err != nil {
		return nil, source, err
	}

	doc, err = x.applyOverlay(doc)
	if err != nil {
		return nil, source, err
	}

	c, warnings := FromDocument(doc)
	for _, w := range warnings {
		fmt.Fprintln(x.out, "Warning:", w)
	}
	return c, source, nil
}

// Refresh force-updates the cached index copy from the remote URL. Unlike
// Load, a remote failure here is an error: refreshing is the whole point
// of the update command.
func (x *Index) Refresh(ctx context.Context) (*Catalog, error) {
	fmt.Fprintln(x.out, "Fetching package index...")

	data, status, err := x.fetchRemote(ctx)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("refresh package index").
			WithResource(x.url).
			WithSuggestion("Check your network connection").
			WithSuggestion("Retry in a few minutes").
			Wrap(err).
			BuildError()
	}
	if status != http.StatusOK {
		return nil, issue.NewErrorContext().
			WithOperation("refresh package index").
			WithResource(x.url).
			WithSuggestion("Check that the index URL is correct").
			WithSuggestion("Retry in a few minutes").
			Wrap(fmt.Errorf("unexpected status %d", status)).
			BuildError()
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("refresh package index").
			WithResource(x.url).
			WithSuggestion("The published index may be temporarily broken; retry later").
			Wrap(err).
			BuildError()
	}

	if err := x.writeCache(data); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("refresh package index").
			WithResource(x.CachedPath()).
			WithSuggestion("Check permissions on the shipm data directory").
			Wrap(err).
			BuildError()
	}
	fmt.Fprintln(x.out, "Package index updated.")

	doc, err = x.applyOverlay(doc)
	if err != nil {
		return nil, err
	}

	c, warnings := FromDocument(doc)
	for _, w := range warnings {
		fmt.Fprintln(x.out, "Warning:", w)
	}
	return c, nil
}

// loadDocument walks the resolution tiers and returns the first document
// that parses, along with the tier it came from.
func (x *Index) loadDocument(ctx context.Context) (Document, Source, error) {
	fmt.Fprintln(x.out, "Fetching package index...")

	data, status, err := x.fetchRemote(ctx)
	switch {
	case err != nil:
		fmt.Fprintln(x.out, "Network error, using cached package index...")
	case status != http.StatusOK:
		fmt.Fprintln(x.out, "Failed to update package index, using cached file...")
	default:
		doc, parseErr := ParseDocument(data)
		if parseErr == nil {
			// Best-effort cache rewrite: a read-only data dir should not
			// block an install that already has a fresh index in hand.
			if writeErr := x.writeCache(data); writeErr != nil {
				fmt.Fprintf(x.out, "Could not update cached package index: %v\n", writeErr)
			}
			fmt.Fprintln(x.out, "Package index updated.")
			return doc, SourceRemote, nil
		}
		fmt.Fprintln(x.out, "Malformed package index received, using cached file...")
	}

	if data, readErr := os.ReadFile(x.CachedPath()); readErr == nil {
		doc, parseErr := ParseDocument(data)
		if parseErr == nil {
			return doc, SourceCached, nil
		}
		fmt.Fprintln(x.out, "Cached package index is corrupt, using embedded index...")
	}

	doc, parseErr := ParseDocument(embeddedIndex)
	if parseErr != nil {
		return nil, SourceEmbedded, fmt.Errorf("internal error: embedded package index: %w", parseErr)
	}
	return doc, SourceEmbedded, nil
}

// fetchRemote downloads the index document. The returned error covers
// transport failures only; HTTP-level failures surface via the status.
func (x *Index) fetchRemote(ctx context.Context) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.url, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("creating index request: %w", err)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching package index: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIndexBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading package index: %w", err)
	}
	return data, resp.StatusCode, nil
}

// writeCache persists a freshly fetched index under the data dir.
func (x *Index) writeCache(data []byte) error {
	if err := os.MkdirAll(x.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(x.CachedPath(), data, 0o644); err != nil {
		return fmt.Errorf("writing cached index: %w", err)
	}
	return nil
}
