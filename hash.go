package nursery

import "github.com/aweris/nursery/internal/hasher"

// HashBytes returns the content address AddBytes would give data.
func HashBytes(data []byte) string {
	return hasher.Hex(hasher.Bytes(data))
}

// HashPath returns the content address AddPath would give a file or
// directory.
func HashPath(path string) (string, error) {
	d, err := hasher.Path(path)
	if err != nil {
		return "", &Error{Op: "hash", Kind: ErrReadFile, Path: path, Err: err}
	}
	return hasher.Hex(d), nil
}
