package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

func extractGzipTar(r io.Reader, root *os.Root) error {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer zr.Close()
	return extractTar(zr, root)
}

func extractXzTar(r io.Reader, root *os.Root) error {
	xr, err := xz.NewReader(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return extractTar(xr, root)
}

func extractTar(r io.Reader, root *os.Root) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}

		name, err := entryPath(hdr.Name)
		if err != nil {
			return err
		}
		perm := hdr.FileInfo().Mode().Perm()

		switch hdr.Typeflag {
		case tar.TypeDir:
			err = makeDir(root, name, perm)
		case tar.TypeReg:
			err = writeFile(root, name, tr, perm)
		case tar.TypeSymlink:
			if err := linkTarget(hdr.Name, hdr.Linkname); err != nil {
				return err
			}
			err = writeSymlink(root, name, hdr.Linkname)
		case tar.TypeLink:
			target, terr := entryPath(hdr.Linkname)
			if terr != nil {
				return terr
			}
			err = writeHardlink(root, name, target)
		default:
			// devices, fifos and extended headers carry nothing a package needs
			continue
		}
		if err != nil {
			return fmt.Errorf("unpack %s: %w", hdr.Name, err)
		}
	}
}
