// Package hasher computes the content digests that address packages in the
// store.
//
// A regular file hashes to the sha256 of its bytes. A directory hashes to the
// sha256 of its entries visited in byte-wise name order, where each entry
// contributes its base name followed by the raw digest of that entry. Nothing
// but names and bytes is folded in, so ownership, timestamps and permission
// bits never change a digest. Devices, fifos and sockets inside a directory
// are left out entirely, since they cannot be stored.
package hasher

import (
	_ "crypto/sha256" // registers the algorithm behind digest.SHA256
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/opencontainers/go-digest"
)

// Algorithm is the digest algorithm used for content addresses.
const Algorithm = digest.SHA256

const chunkSize = 64 << 10

// Bytes returns the digest of an in-memory blob.
func Bytes(data []byte) digest.Digest {
	return Algorithm.FromBytes(data)
}

// Path returns the digest of a regular file or a directory tree.
// Paths that are neither (broken symlinks, devices, sockets) hash as the
// digest of no input.
func Path(path string) (digest.Digest, error) {
	sum, err := sumPath(path)
	if err != nil {
		return "", err
	}
	return digest.NewDigestFromBytes(Algorithm, sum), nil
}

// Hex returns the lowercase hex encoding used as the store folder name.
func Hex(d digest.Digest) string {
	return d.Encoded()
}

// Valid reports whether s is a well-formed hex encoded digest.
func Valid(s string) bool {
	return Algorithm.Validate(s) == nil
}

func sumPath(path string) ([]byte, error) {
	h := Algorithm.Hash()

	info, err := os.Stat(path)
	switch {
	case err != nil:
		if _, lerr := os.Lstat(path); lerr != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		// dangling symlink
	case info.Mode().IsRegular():
		if err := hashFile(h, path); err != nil {
			return nil, err
		}
	case info.IsDir():
		if err := hashDir(h, path); err != nil {
			return nil, err
		}
	}

	return h.Sum(nil), nil
}

func hashFile(h hash.Hash, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func hashDir(h hash.Hash, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		if Special(path) {
			continue
		}
		sum, err := sumPath(path)
		if err != nil {
			return err
		}
		h.Write([]byte(name))
		h.Write(sum)
	}
	return nil
}

// Special reports whether path resolves to something that is neither a
// regular file nor a directory. Dangling symlinks are not special.
func Special(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && !info.Mode().IsRegular()
}
