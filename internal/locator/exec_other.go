//go:build !unix

package locator

import (
	"io/fs"
	"path/filepath"
	"strings"
)

var executableExts = map[string]struct{}{
	".exe": {},
	".cmd": {},
	".bat": {},
}

func executable(path string, _ fs.FileInfo) bool {
	_, ok := executableExts[strings.ToLower(filepath.Ext(path))]
	return ok
}
