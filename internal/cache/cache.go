// SPDX-License-Identifier: MPL-2.0

// Package cache stores downloaded release assets on disk, keyed by asset
// file name. An existing entry is trusted as-is: no hashes, no expiry, no
// size checks. Staleness is only ever resolved by the caller passing
// force=true, which re-downloads and overwrites the entry.
//
// The cache directory is not locked. Two processes fetching the same asset
// name concurrently race on the entry; with release assets the payloads are
// identical, so the last writer wins without damage.
package cache

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shipm/shipm/internal/release"
)

// copyBufferSize bounds memory use while streaming a download to disk,
// regardless of asset size.
const copyBufferSize = 8 * 1024

type (
	// Downloader streams the contents of a URL. *release.Client satisfies it.
	Downloader interface {
		Download(ctx context.Context, url string) (io.ReadCloser, error)
	}

	// Option configures a Cache.
	Option func(*Cache)

	// Cache is a filename-keyed download cache rooted at a single directory.
	Cache struct {
		root string
		dl   Downloader
		out  io.Writer
	}
)

// WithOutput redirects the cache's progress lines, which go to stdout by
// default.
func WithOutput(w io.Writer) Option {
	return func(c *Cache) { c.out = w }
}

// New returns a Cache rooted at dir that downloads missing entries through dl.
func New(dir string, dl Downloader, opts ...Option) *Cache {
	c := &Cache{
		root: dir,
		dl:   dl,
		out:  os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the local path of asset, downloading it first unless a file
// with the asset's name already exists under the cache root. force bypasses
// the existence check and overwrites the entry.
//
// A failed download can leave a partial file behind; the next non-forced
// Fetch will treat it as a valid entry. force is the remedy.
func (c *Cache) Fetch(ctx context.Context, asset release.Asset, force bool) (string, error) {
	path := filepath.Join(c.root, asset.Name)

	if !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(c.out, "Using cached file: %s\n", path)
			return path, nil
		}
	}

	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory %s: %w", c.root, err)
	}

	fmt.Fprintf(c.out, "Downloading %s...\n", asset.Name)

	body, err := c.dl.Download(ctx, asset.DownloadURL)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }() // read-only HTTP response body

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating cache file %s: %w", path, err)
	}

	// os.File implements io.ReaderFrom, which would make CopyBuffer bypass
	// the fixed-size buffer; the bare-Writer wrapper keeps the copy staged
	// through buf.
	buf := make([]byte, copyBufferSize)
	_, err = io.CopyBuffer(struct{ io.Writer }{f}, body, buf)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(c.out, "Saved to cache: %s\n", path)
	return path, nil
}
