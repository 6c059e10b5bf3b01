package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zip"
)

func extractZip(r io.ReaderAt, size int64, root *os.Root) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	for _, f := range zr.File {
		name, err := entryPath(f.Name)
		if err != nil {
			return err
		}
		mode := f.Mode()

		switch {
		case mode.IsDir():
			err = makeDir(root, name, mode.Perm())
		case mode&os.ModeSymlink != 0:
			err = extractZipSymlink(f, root, name)
		default:
			err = extractZipFile(f, root, name, mode.Perm())
		}
		if err != nil {
			return fmt.Errorf("unpack %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractZipFile(f *zip.File, root *os.Root, name string, perm os.FileMode) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer rc.Close()
	return writeFile(root, name, rc, perm)
}

func extractZipSymlink(f *zip.File, root *os.Root, name string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	target, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := linkTarget(f.Name, string(target)); err != nil {
		return err
	}
	return writeSymlink(root, name, string(target))
}
