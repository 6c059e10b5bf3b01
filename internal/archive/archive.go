// Package archive classifies package blobs by their leading bytes and unpacks
// the supported archive formats into a directory.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	// ErrCorrupt is returned when an archive matched a signature but could
	// not be decoded.
	ErrCorrupt = errors.New("archive: corrupt archive")

	// ErrUnsafePath is returned when an entry would be written outside the
	// destination directory.
	ErrUnsafePath = errors.New("archive: entry escapes destination")
)

// Format is the closed set of blob kinds the store understands.
type Format int

const (
	// Opaque is anything without a known signature. It is stored as a single
	// executable.
	Opaque Format = iota
	GzipTar
	XzTar
	Zip
)

func (f Format) String() string {
	switch f {
	case GzipTar:
		return "tar+gzip"
	case XzTar:
		return "tar+xz"
	case Zip:
		return "zip"
	default:
		return "opaque"
	}
}

// Signatures, checked in this order.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
)

// Detect sniffs the leading bytes of data.
func Detect(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return GzipTar
	case bytes.HasPrefix(data, xzMagic):
		return XzTar
	case bytes.HasPrefix(data, zipMagic):
		return Zip
	default:
		return Opaque
	}
}

// Extract unpacks data into dest according to its detected format and
// returns that format. Opaque data is left untouched and yields a nil error.
// dest must already exist. Every write goes through an os.Root opened on
// dest, so entries cannot reach outside it even through symlinks created by
// earlier entries.
func Extract(data []byte, dest string) (Format, error) {
	format := Detect(data)
	if format == Opaque {
		return Opaque, nil
	}

	root, err := os.OpenRoot(dest)
	if err != nil {
		return format, fmt.Errorf("extract %s: %w", format, err)
	}
	defer root.Close()

	switch format {
	case GzipTar:
		err = extractGzipTar(bytes.NewReader(data), root)
	case XzTar:
		err = extractXzTar(bytes.NewReader(data), root)
	case Zip:
		err = extractZip(bytes.NewReader(data), int64(len(data)), root)
	}
	if err != nil {
		return format, fmt.Errorf("extract %s: %w", format, err)
	}
	return format, nil
}

// TryExtract reports whether data was an archive. A false result with a nil
// error means nothing was written.
func TryExtract(data []byte, dest string) (bool, error) {
	format, err := Extract(data, dest)
	if err != nil {
		return false, err
	}
	return format != Opaque, nil
}

// entryPath maps an archive entry name to a path relative to the
// destination root.
func entryPath(name string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(name))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return rel, nil
}

// linkTarget validates that a symlink created at name pointing to target
// stays inside the destination.
func linkTarget(name, target string) error {
	if filepath.IsAbs(target) {
		return fmt.Errorf("%w: %q -> %q", ErrUnsafePath, name, target)
	}
	rel := filepath.Join(filepath.Dir(filepath.FromSlash(name)), filepath.FromSlash(target))
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("%w: %q -> %q", ErrUnsafePath, name, target)
	}
	return nil
}

func writeFile(root *os.Root, name string, r io.Reader, perm os.FileMode) error {
	if err := root.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	if info, err := root.Lstat(name); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := root.Remove(name); err != nil {
			return err
		}
	}
	if perm == 0 {
		perm = 0o644
	}

	f, err := root.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// OpenFile applies the umask; archives carry exact bits
	return root.Chmod(name, perm)
}

func writeSymlink(root *os.Root, name, target string) error {
	if err := root.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	if err := root.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return root.Symlink(target, name)
}

func writeHardlink(root *os.Root, name, target string) error {
	if err := root.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	return root.Link(target, name)
}

func makeDir(root *os.Root, name string, perm os.FileMode) error {
	// the owner must be able to write children extracted later
	return root.MkdirAll(name, perm|0o700)
}
