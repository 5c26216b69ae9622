// SPDX-License-Identifier: MPL-2.0

package install

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
)

// extractDir returns the destination directory for an archive at path.
func extractDir(path string) string { return path + "_extracted" }

func (i *Installer) extract(path string, kind Kind) error {
	dest := extractDir(path)
	// MkdirAll keeps re-extraction over an existing directory idempotent.
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	var err error
	if kind == KindZip {
		err = extractZip(path, dest)
	} else {
		err = extractTar(path, dest, kind)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(i.out, "Extracted to %s\n", dest)
	return nil
}

func extractZip(path, dest string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening zip %s: %w", path, err)
	}
	defer func() {
		// Read-only archive handle; close errors are exotic.
		_ = zr.Close()
	}()

	for _, f := range zr.File {
		if err := writeZipEntry(f, dest); err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

// writeZipEntry writes one archive entry under dest, as named. Entry paths
// are not sanitized; release archives are trusted input.
func writeZipEntry(f *zip.File, dest string) error {
	target := filepath.Join(dest, filepath.FromSlash(f.Name))

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }() // read-only entry handle

	return writeFile(target, rc, entryMode(f.Mode()))
}

func extractTar(path, dest string, kind Kind) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer func() { _ = f.Close() }() // read-only archive handle

	var src io.Reader = f
	switch kind {
	case KindTarGz:
		gz, gzErr := gzip.NewReader(f)
		if gzErr != nil {
			return fmt.Errorf("creating gzip reader: %w", gzErr)
		}
		defer func() { _ = gz.Close() }() // wraps the read-only file handle
		src = gz
	case KindTarXz:
		xzr, xzErr := xz.NewReader(f)
		if xzErr != nil {
			return fmt.Errorf("creating xz reader: %w", xzErr)
		}
		src = xzr
	}

	tr := tar.NewReader(src)
	for {
		hdr, nextErr := tr.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}
		if nextErr != nil {
			return fmt.Errorf("reading tar entry: %w", nextErr)
		}
		if err := writeTarEntry(tr, hdr, dest); err != nil {
			return fmt.Errorf("extracting %s: %w", hdr.Name, err)
		}
	}
	return nil
}

// writeTarEntry writes one archive entry under dest, as named. Entry paths
// are not sanitized; release archives are trusted input.
func writeTarEntry(tr *tar.Reader, hdr *tar.Header, dest string) error {
	target := filepath.Join(dest, filepath.FromSlash(hdr.Name))

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, 0o755)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return writeFile(target, tr, entryMode(hdr.FileInfo().Mode()))
	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		// Replace any previous link so re-extraction succeeds.
		_ = os.Remove(target)
		return os.Symlink(hdr.Linkname, target)
	default:
		// Hard links, devices and other specials are skipped.
		return nil
	}
}

// entryMode returns the permission bits for an extracted file. Archives
// written without permission metadata would otherwise produce an unreadable
// 0o000 file.
func entryMode(m os.FileMode) os.FileMode {
	if p := m.Perm(); p != 0 {
		return p
	}
	return 0o644
}

func writeFile(target string, r io.Reader, mode os.FileMode) (err error) {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(f, r)
	return err
}
