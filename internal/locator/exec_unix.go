//go:build unix

package locator

import "io/fs"

func executable(_ string, info fs.FileInfo) bool {
	return info.Mode().Perm()&0o111 != 0
}
